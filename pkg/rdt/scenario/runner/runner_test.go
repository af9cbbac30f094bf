package runner

import (
	"testing"

	"github.com/jihwankim/rdt-sim/pkg/rdt/protocols/rdt1"
	"github.com/jihwankim/rdt-sim/pkg/rdt/protocols/rdt22"
	"github.com/jihwankim/rdt-sim/pkg/rdt/protocols/rdt30"
	"github.com/jihwankim/rdt-sim/pkg/rdt/scenario"
	"github.com/jihwankim/rdt-sim/pkg/rdt/simcore"
)

func idealChannel() simcore.ChannelConfig {
	return simcore.ChannelConfig{BaseLatencyMs: 10}
}

func TestRunnerPassesAnIdealChannelScenario(t *testing.T) {
	s := &scenario.Scenario{
		Name:         "ideal",
		MaxSimTimeMs: 2000,
		MaxEvents:    100,
		LinkS2R:      idealChannel(),
		LinkR2S:      idealChannel(),
		Actions: []scenario.Action{
			{Type: scenario.ActionAppSend, AtMs: 0, From: "sender", BytesText: "hello"},
		},
		Assertions: []scenario.Assertion{
			{Type: scenario.AssertDeliveredEquals, Endpoint: "receiver", ExpectedText: "hello"},
			{Type: scenario.AssertTerminationCause, Expected: "completed"},
		},
	}

	rep, err := New(&rdt1.Sender{}, &rdt1.Receiver{}, nil).Run(s)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !rep.Verdict.Pass {
		t.Fatalf("verdict failed: %+v", rep.Verdict.Failures)
	}
}

func TestRunnerFailsDeliveredEqualsOnWrongBytes(t *testing.T) {
	s := &scenario.Scenario{
		Name:         "wrong-expectation",
		MaxSimTimeMs: 2000,
		MaxEvents:    100,
		LinkS2R:      idealChannel(),
		LinkR2S:      idealChannel(),
		Actions: []scenario.Action{
			{Type: scenario.ActionAppSend, AtMs: 0, From: "sender", BytesText: "hello"},
		},
		Assertions: []scenario.Assertion{
			{Type: scenario.AssertDeliveredEquals, Endpoint: "receiver", ExpectedText: "goodbye"},
		},
	}

	rep, err := New(&rdt1.Sender{}, &rdt1.Receiver{}, nil).Run(s)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rep.Verdict.Pass {
		t.Fatal("expected the verdict to fail on a mismatched delivered_equals assertion")
	}
}

func TestRunnerWaitUntilAdvancesClockBeforeLaterActions(t *testing.T) {
	s := &scenario.Scenario{
		Name:         "wait-until",
		MaxSimTimeMs: 2000,
		MaxEvents:    100,
		LinkS2R:      idealChannel(),
		LinkR2S:      idealChannel(),
		Actions: []scenario.Action{
			{Type: scenario.ActionAppSend, AtMs: 0, From: "sender", BytesText: "a"},
			{Type: scenario.ActionWaitUntil, TMs: 100},
			{Type: scenario.ActionAppSend, AtMs: 150, From: "sender", BytesText: "b"},
		},
		Assertions: []scenario.Assertion{
			{Type: scenario.AssertDeliveredEquals, Endpoint: "receiver", ExpectedText: "ab"},
		},
	}

	rep, err := New(&rdt22.Sender{}, &rdt22.Receiver{}, nil).Run(s)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !rep.Verdict.Pass {
		t.Fatalf("verdict failed: %+v", rep.Verdict.Failures)
	}
}

func TestRunnerAtMostNRetransmissionsCountsTransitAttempts(t *testing.T) {
	s := &scenario.Scenario{
		Name:         "loss-budget",
		Seed:         1,
		MaxSimTimeMs: 5000,
		MaxEvents:    1000,
		LinkS2R:      simcore.ChannelConfig{BaseLatencyMs: 10, LossProbability: 1},
		LinkR2S:      idealChannel(),
		Actions: []scenario.Action{
			{Type: scenario.ActionAppSend, AtMs: 0, From: "sender", BytesText: "x"},
		},
		Assertions: []scenario.Assertion{
			{Type: scenario.AssertAtMostNRetransmissions, DirectionAssert: "s2r", N: 2},
		},
	}

	rep, err := New(&rdt30.Sender{}, &rdt30.Receiver{}, nil).Run(s)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rep.Verdict.Pass {
		t.Fatal("expected more than 2 transit attempts under permanent loss with an active retransmit timer")
	}
}

func TestRunnerMetricInRangeChecksRetransmitCount(t *testing.T) {
	s := &scenario.Scenario{
		Name:         "metric-range",
		Seed:         1,
		MaxSimTimeMs: 1000,
		MaxEvents:    200,
		LinkS2R:      simcore.ChannelConfig{BaseLatencyMs: 10, CorruptionProbability: 1},
		LinkR2S:      idealChannel(),
		Actions: []scenario.Action{
			{Type: scenario.ActionAppSend, AtMs: 0, From: "sender", BytesText: "x"},
		},
		Assertions: []scenario.Assertion{
			{Type: scenario.AssertMetricInRange, Endpoint: "sender", Name: "retransmits", Min: 1, Max: 1000, Aggregator: scenario.AggMax},
		},
	}

	rep, err := New(&rdt22.Sender{}, &rdt22.Receiver{}, nil).Run(s)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !rep.Verdict.Pass {
		t.Fatalf("verdict failed: %+v", rep.Verdict.Failures)
	}
}

func TestRunnerNoDuplicatesNoGapsFailsOnRepeatedDelivery(t *testing.T) {
	s := &scenario.Scenario{
		Name:         "duplication",
		Seed:         1,
		MaxSimTimeMs: 2000,
		MaxEvents:    500,
		LinkS2R:      simcore.ChannelConfig{BaseLatencyMs: 10, DuplicateProbability: 1},
		LinkR2S:      idealChannel(),
		Actions: []scenario.Action{
			{Type: scenario.ActionAppSend, AtMs: 0, From: "sender", BytesText: "x"},
		},
		Assertions: []scenario.Assertion{
			{Type: scenario.AssertDeliveredNoDuplicatesNoGaps, Endpoint: "receiver"},
		},
	}

	// rdt1 has no sequence numbers or de-duplication, so a 100%-duplicate
	// channel must re-deliver the same bytes twice in a row.
	rep, err := New(&rdt1.Sender{}, &rdt1.Receiver{}, nil).Run(s)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rep.Verdict.Pass {
		t.Fatal("expected delivered_no_duplicates_no_gaps to fail against a protocol with no duplicate suppression")
	}
}

func TestRunnerNoDuplicatesNoGapsFailsOnAGap(t *testing.T) {
	s := &scenario.Scenario{
		Name:         "gap",
		MaxSimTimeMs: 1000,
		MaxEvents:    100,
		LinkS2R:      simcore.ChannelConfig{BaseLatencyMs: 10, LossProbability: 1},
		LinkR2S:      idealChannel(),
		Actions: []scenario.Action{
			{Type: scenario.ActionAppSend, AtMs: 0, From: "sender", BytesText: "ab"},
		},
		Assertions: []scenario.Assertion{
			{Type: scenario.AssertDeliveredNoDuplicatesNoGaps, Endpoint: "receiver"},
		},
	}

	// rdt1 never retransmits, so a permanently-dropping s2r link leaves the
	// receiver with nothing delivered against a peer that sent "ab" — a gap.
	rep, err := New(&rdt1.Sender{}, &rdt1.Receiver{}, nil).Run(s)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rep.Verdict.Pass {
		t.Fatal("expected delivered_no_duplicates_no_gaps to fail when app-sent bytes are never delivered")
	}
}

func TestRunnerEventBudgetSurfacesAsTerminationCause(t *testing.T) {
	s := &scenario.Scenario{
		Name:         "budget",
		MaxSimTimeMs: 5000,
		MaxEvents:    3,
		LinkS2R:      idealChannel(),
		LinkR2S:      idealChannel(),
		Actions: []scenario.Action{
			{Type: scenario.ActionAppSend, AtMs: 0, From: "sender", BytesText: "x"},
			{Type: scenario.ActionAppSend, AtMs: 10, From: "sender", BytesText: "y"},
			{Type: scenario.ActionAppSend, AtMs: 20, From: "sender", BytesText: "z"},
		},
		Assertions: []scenario.Assertion{
			{Type: scenario.AssertTerminationCause, Expected: "event_budget"},
		},
	}

	rep, err := New(&rdt1.Sender{}, &rdt1.Receiver{}, nil).Run(s)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !rep.Verdict.Pass {
		t.Fatalf("verdict failed: %+v", rep.Verdict.Failures)
	}
}
