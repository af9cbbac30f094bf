package validator

import (
	"testing"

	"github.com/jihwankim/rdt-sim/pkg/rdt/scenario"
	"github.com/jihwankim/rdt-sim/pkg/rdt/simcore"
)

func wellFormedScenario() *scenario.Scenario {
	return &scenario.Scenario{
		Name:         "ok",
		MaxSimTimeMs: 1000,
		MaxEvents:    100,
		LinkS2R:      simcore.ChannelConfig{LossProbability: 0.1},
		LinkR2S:      simcore.ChannelConfig{LossProbability: 0.1},
		Actions: []scenario.Action{
			{Type: scenario.ActionAppSend, AtMs: 0, From: "sender"},
		},
		Assertions: []scenario.Assertion{
			{Type: scenario.AssertTerminationCause, Expected: "completed"},
		},
	}
}

func TestValidatePassesAWellFormedScenario(t *testing.T) {
	v := New()
	if err := v.Validate(wellFormedScenario()); err != nil {
		t.Fatalf("Validate: %v (%s)", err, v.Report())
	}
}

func TestValidateRejectsOutOfRangeProbability(t *testing.T) {
	s := wellFormedScenario()
	s.LinkS2R.LossProbability = 1.5
	v := New()
	if err := v.Validate(s); err == nil {
		t.Error("expected an error for loss_probability > 1")
	}
}

func TestValidateWarnsOnLossProbabilityOfOne(t *testing.T) {
	s := wellFormedScenario()
	s.LinkS2R.LossProbability = 1.0
	v := New()
	if err := v.Validate(s); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !v.HasWarnings() {
		t.Error("expected a warning for loss_probability=1.0")
	}
}

func TestValidateRejectsBadAppSendFrom(t *testing.T) {
	s := wellFormedScenario()
	s.Actions[0].From = "somewhere"
	v := New()
	if err := v.Validate(s); err == nil {
		t.Error("expected an error for an invalid \"from\" endpoint")
	}
}

func TestValidateRejectsMutateChannelWithBadDirection(t *testing.T) {
	s := wellFormedScenario()
	s.Actions = append(s.Actions, scenario.Action{Type: scenario.ActionMutateChannel, Direction: "both"})
	v := New()
	if err := v.Validate(s); err == nil {
		t.Error("expected an error for an invalid mutate_channel direction")
	}
}

func TestValidateRejectsWaitUntilBeforeEarlierAction(t *testing.T) {
	s := wellFormedScenario()
	s.Actions[0].AtMs = 500
	s.Actions = append(s.Actions, scenario.Action{Type: scenario.ActionWaitUntil, TMs: 100})
	v := New()
	if err := v.Validate(s); err == nil {
		t.Error("expected an error for a wait_until that precedes an earlier action")
	}
}

func TestValidateRejectsAtMostNRetransmissionsWithBadDirection(t *testing.T) {
	s := wellFormedScenario()
	s.Assertions = append(s.Assertions, scenario.Assertion{Type: scenario.AssertAtMostNRetransmissions, DirectionAssert: "sideways", N: 1})
	v := New()
	if err := v.Validate(s); err == nil {
		t.Error("expected an error for an invalid at_most_n_retransmissions direction")
	}
}

func TestValidateRejectsMetricInRangeWithMinAboveMax(t *testing.T) {
	s := wellFormedScenario()
	s.Assertions = append(s.Assertions, scenario.Assertion{
		Type: scenario.AssertMetricInRange, Name: "retransmits", Endpoint: "sender", Min: 10, Max: 1,
	})
	v := New()
	if err := v.Validate(s); err == nil {
		t.Error("expected an error when min exceeds max")
	}
}

func TestValidateWarnsOnEmptyAssertions(t *testing.T) {
	s := wellFormedScenario()
	s.Assertions = nil
	v := New()
	if err := v.Validate(s); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !v.HasWarnings() {
		t.Error("expected a warning for an empty assertion list")
	}
}

func TestReportRendersNoIssuesWhenClean(t *testing.T) {
	v := New()
	if err := v.Validate(wellFormedScenario()); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if got := v.Report(); got == "" {
		t.Error("Report() should never be empty")
	}
}
