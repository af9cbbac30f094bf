// Package validator performs structural and cross-action validation of a
// parsed scenario beyond what scenario.Action/Assertion.Validate check in
// isolation, grounded on the teacher's scenario validator (accumulate
// Errors/Warnings, report both, fail only on Errors).
package validator

import (
	"fmt"
	"strings"

	"github.com/jihwankim/rdt-sim/pkg/rdt/scenario"
)

// Validator accumulates fatal Errors and non-fatal Warnings across a single
// Validate call.
type Validator struct {
	Errors   []string
	Warnings []string
}

// New returns an empty Validator.
func New() *Validator {
	return &Validator{}
}

// Validate checks s for structural and cross-action problems. It returns an
// error (after population of Errors) if any Errors were recorded; Warnings
// never fail validation.
func (v *Validator) Validate(s *scenario.Scenario) error {
	v.Errors = nil
	v.Warnings = nil

	v.validateTopLevel(s)
	v.validateChannels(s)
	v.validateActions(s)
	v.validateAssertions(s)

	if len(v.Errors) > 0 {
		return fmt.Errorf("scenario validation failed with %d error(s)", len(v.Errors))
	}
	return nil
}

// HasWarnings reports whether the last Validate call recorded any warnings.
func (v *Validator) HasWarnings() bool { return len(v.Warnings) > 0 }

// Report renders the accumulated Errors and Warnings for display.
func (v *Validator) Report() string {
	var sb strings.Builder
	if len(v.Errors) > 0 {
		sb.WriteString("errors:\n")
		for _, e := range v.Errors {
			fmt.Fprintf(&sb, "  - %s\n", e)
		}
	}
	if len(v.Warnings) > 0 {
		sb.WriteString("warnings:\n")
		for _, w := range v.Warnings {
			fmt.Fprintf(&sb, "  - %s\n", w)
		}
	}
	if len(v.Errors) == 0 && len(v.Warnings) == 0 {
		sb.WriteString("validation passed with no issues\n")
	}
	return sb.String()
}

func (v *Validator) validateTopLevel(s *scenario.Scenario) {
	if s.Name == "" {
		v.Errors = append(v.Errors, "name is required")
	}
	if s.MaxSimTimeMs <= 0 {
		v.Errors = append(v.Errors, "max_sim_time_ms must be positive")
	}
	if s.MaxEvents == 0 {
		v.Errors = append(v.Errors, "max_events must be positive")
	}
	if s.MaxEvents > 10_000_000 {
		v.Warnings = append(v.Warnings, fmt.Sprintf("max_events %d is very large, run may be slow", s.MaxEvents))
	}
}

func validateProbability(v *Validator, field string, p float64) {
	if p < 0 || p > 1 {
		v.Errors = append(v.Errors, fmt.Sprintf("%s must be in [0, 1], got %v", field, p))
	}
}

func (v *Validator) validateChannels(s *scenario.Scenario) {
	v.validateOneChannel("link_s2r", s.LinkS2R.LossProbability, s.LinkS2R.CorruptionProbability, s.LinkS2R.ReorderProbability, s.LinkS2R.DuplicateProbability)
	v.validateOneChannel("link_r2s", s.LinkR2S.LossProbability, s.LinkR2S.CorruptionProbability, s.LinkR2S.ReorderProbability, s.LinkR2S.DuplicateProbability)
}

func (v *Validator) validateOneChannel(name string, loss, corrupt, reorder, dup float64) {
	validateProbability(v, name+".loss_probability", loss)
	validateProbability(v, name+".corruption_probability", corrupt)
	validateProbability(v, name+".reorder_probability", reorder)
	validateProbability(v, name+".duplicate_probability", dup)
	if loss >= 1.0 {
		v.Warnings = append(v.Warnings, fmt.Sprintf("%s.loss_probability is 1.0, every packet on this link will be dropped", name))
	}
}

func (v *Validator) validateActions(s *scenario.Scenario) {
	if len(s.Actions) == 0 {
		v.Errors = append(v.Errors, "actions must be non-empty")
		return
	}
	var lastAt int64 = -1
	for i, a := range s.Actions {
		if err := a.Validate(); err != nil {
			v.Errors = append(v.Errors, fmt.Sprintf("actions[%d]: %v", i, err))
			continue
		}
		switch a.Type {
		case scenario.ActionAppSend:
			if a.From != "sender" && a.From != "receiver" {
				v.Errors = append(v.Errors, fmt.Sprintf("actions[%d]: from must be \"sender\" or \"receiver\", got %q", i, a.From))
			}
			if a.AtMs < lastAt {
				v.Warnings = append(v.Warnings, fmt.Sprintf("actions[%d]: at_ms %d precedes an earlier action's at_ms %d", i, a.AtMs, lastAt))
			}
			lastAt = a.AtMs
		case scenario.ActionMutateChannel:
			if a.Direction != "s2r" && a.Direction != "r2s" {
				v.Errors = append(v.Errors, fmt.Sprintf("actions[%d]: direction must be \"s2r\" or \"r2s\", got %q", i, a.Direction))
			}
			if _, err := a.BuildPatch(); err != nil {
				v.Errors = append(v.Errors, fmt.Sprintf("actions[%d]: %v", i, err))
			}
		case scenario.ActionWaitUntil:
			if a.TMs < lastAt {
				v.Errors = append(v.Errors, fmt.Sprintf("actions[%d]: wait_until t_ms %d is before the last scheduled action at %d", i, a.TMs, lastAt))
			}
		case scenario.ActionWaitQuiescent:
			if a.TimeoutMs <= 0 {
				v.Errors = append(v.Errors, fmt.Sprintf("actions[%d]: wait_quiescent timeout_ms must be positive", i))
			}
		}
	}
}

func (v *Validator) validateAssertions(s *scenario.Scenario) {
	if len(s.Assertions) == 0 {
		v.Warnings = append(v.Warnings, "assertions is empty, run will always pass")
	}
	for i, a := range s.Assertions {
		if err := a.Validate(); err != nil {
			v.Errors = append(v.Errors, fmt.Sprintf("assertions[%d]: %v", i, err))
			continue
		}
		switch a.Type {
		case scenario.AssertDeliveredEquals, scenario.AssertDeliveredNoDuplicatesNoGaps:
			if a.Endpoint != "sender" && a.Endpoint != "receiver" {
				v.Errors = append(v.Errors, fmt.Sprintf("assertions[%d]: endpoint must be \"sender\" or \"receiver\", got %q", i, a.Endpoint))
			}
		case scenario.AssertAtMostNRetransmissions:
			if a.N < 0 {
				v.Errors = append(v.Errors, fmt.Sprintf("assertions[%d]: n must be non-negative", i))
			}
			if a.DirectionAssert != "s2r" && a.DirectionAssert != "r2s" {
				v.Errors = append(v.Errors, fmt.Sprintf("assertions[%d]: direction must be \"s2r\" or \"r2s\", got %q", i, a.DirectionAssert))
			}
		case scenario.AssertMetricInRange:
			if a.Name == "" {
				v.Errors = append(v.Errors, fmt.Sprintf("assertions[%d]: name is required", i))
			}
			if a.Endpoint != "sender" && a.Endpoint != "receiver" {
				v.Errors = append(v.Errors, fmt.Sprintf("assertions[%d]: endpoint must be \"sender\" or \"receiver\", got %q", i, a.Endpoint))
			}
			if a.Min > a.Max {
				v.Errors = append(v.Errors, fmt.Sprintf("assertions[%d]: min %v exceeds max %v", i, a.Min, a.Max))
			}
			switch a.Aggregator {
			case "", scenario.AggLast, scenario.AggMax, scenario.AggMin, scenario.AggMean:
			default:
				v.Errors = append(v.Errors, fmt.Sprintf("assertions[%d]: unknown aggregator %q", i, a.Aggregator))
			}
		case scenario.AssertTerminationCause:
			switch a.Expected {
			case "completed", "timeout", "event_budget", "aborted":
			default:
				v.Errors = append(v.Errors, fmt.Sprintf("assertions[%d]: unknown termination cause %q", i, a.Expected))
			}
		}
	}
}
