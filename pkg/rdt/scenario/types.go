// Package scenario holds the declarative description of a simulation run:
// a seed, the two channel configs, an ordered action script, and the
// assertions evaluated against the resulting report (spec §4.8, §6).
package scenario

import (
	"fmt"

	"github.com/jihwankim/rdt-sim/pkg/rdt/simcore"
)

// Scenario is the parsed form of a scenario YAML file (spec §6).
type Scenario struct {
	Name         string              `yaml:"name"`
	Seed         uint64              `yaml:"seed"`
	MaxSimTimeMs int64               `yaml:"max_sim_time_ms"`
	MaxEvents    uint64              `yaml:"max_events"`
	LinkS2R      simcore.ChannelConfig `yaml:"link_s2r"`
	LinkR2S      simcore.ChannelConfig `yaml:"link_r2s"`
	Actions      []Action            `yaml:"actions"`
	Assertions   []Assertion         `yaml:"assertions"`
}

// SimConfig derives the engine's construction-time config from the scenario.
func (s *Scenario) SimConfig() simcore.SimConfig {
	return simcore.SimConfig{
		Seed:         s.Seed,
		MaxSimTimeMs: s.MaxSimTimeMs,
		MaxEvents:    s.MaxEvents,
		LinkS2R:      s.LinkS2R,
		LinkR2S:      s.LinkR2S,
	}
}

// ActionType tags the variant carried by an Action (spec §4.8).
type ActionType string

const (
	ActionAppSend        ActionType = "app_send"
	ActionMutateChannel  ActionType = "mutate_channel"
	ActionWaitUntil      ActionType = "wait_until"
	ActionWaitQuiescent  ActionType = "wait_quiescent"
)

// Action is one entry of a scenario's ordered action script. Exactly the
// fields relevant to Type are populated; the rest are zero.
type Action struct {
	Type ActionType `yaml:"type"`

	// app_send
	AtMs     int64  `yaml:"at_ms"`
	From     string `yaml:"from"`
	BytesText string `yaml:"bytes_text,omitempty"`
	BytesB64  string `yaml:"bytes_b64,omitempty"`

	// mutate_channel
	Direction string                    `yaml:"direction,omitempty"`
	Patch     map[string]interface{}    `yaml:"patch,omitempty"`

	// wait_until
	TMs int64 `yaml:"t_ms,omitempty"`

	// wait_quiescent
	TimeoutMs int64 `yaml:"timeout_ms,omitempty"`
}

// AssertionType tags the variant carried by an Assertion (spec §4.8).
type AssertionType string

const (
	AssertDeliveredEquals            AssertionType = "delivered_equals"
	AssertDeliveredNoDuplicatesNoGaps AssertionType = "delivered_no_duplicates_no_gaps"
	AssertAtMostNRetransmissions     AssertionType = "at_most_n_retransmissions"
	AssertMetricInRange              AssertionType = "metric_in_range"
	AssertTerminationCause           AssertionType = "termination_cause"
)

// Aggregator selects how MetricInRange reduces a metric series to a scalar.
type Aggregator string

const (
	AggLast Aggregator = "last"
	AggMax  Aggregator = "max"
	AggMin  Aggregator = "min"
	AggMean Aggregator = "mean"
)

// Assertion is one post-hoc check evaluated against the SimulationReport.
type Assertion struct {
	Type AssertionType `yaml:"type"`

	// delivered_equals, delivered_no_duplicates_no_gaps
	Endpoint     string `yaml:"endpoint,omitempty"`
	ExpectedText string `yaml:"expected_text,omitempty"`
	ExpectedB64  string `yaml:"expected_b64,omitempty"`

	// at_most_n_retransmissions
	DirectionAssert string `yaml:"direction,omitempty"`
	N               int    `yaml:"n,omitempty"`

	// metric_in_range
	Name       string     `yaml:"name,omitempty"`
	Min        float64    `yaml:"min,omitempty"`
	Max        float64    `yaml:"max,omitempty"`
	Aggregator Aggregator `yaml:"aggregator,omitempty"`

	// termination_cause
	Expected string `yaml:"expected,omitempty"`
}

// Validate checks structural well-formedness of a single action, independent
// of any other action in the scenario (cross-action checks live in validator.Validator).
func (a Action) Validate() error {
	switch a.Type {
	case ActionAppSend, ActionMutateChannel, ActionWaitUntil, ActionWaitQuiescent:
		return nil
	default:
		return fmt.Errorf("unknown action type %q", a.Type)
	}
}

// Validate checks structural well-formedness of a single assertion.
func (a Assertion) Validate() error {
	switch a.Type {
	case AssertDeliveredEquals, AssertDeliveredNoDuplicatesNoGaps, AssertAtMostNRetransmissions,
		AssertMetricInRange, AssertTerminationCause:
		return nil
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}
