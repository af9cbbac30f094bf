package rdt30

import (
	"testing"

	"github.com/jihwankim/rdt-sim/pkg/rdt/simcore"
	"github.com/jihwankim/rdt-sim/pkg/rdt/wire"
)

func idealConfig() simcore.SimConfig {
	return simcore.SimConfig{
		Seed:         1,
		MaxSimTimeMs: 5000,
		MaxEvents:    1000,
		LinkS2R:      simcore.ChannelConfig{BaseLatencyMs: 10},
		LinkR2S:      simcore.ChannelConfig{BaseLatencyMs: 10},
	}
}

func TestRdt30DeliversOverAnIdealChannel(t *testing.T) {
	e := simcore.NewEngine(idealConfig(), &Sender{}, &Receiver{}, nil)
	e.Init()
	e.PushAppData(wire.Sender, 0, []byte("a"))
	e.PushAppData(wire.Sender, 500, []byte("b"))
	e.Run()

	got := e.Endpoint(wire.Receiver).DeliveredBytes()
	if string(got) != "ab" {
		t.Errorf("delivered %q, want %q", got, "ab")
	}
}

// TestRdt30RecoversFromOneLostDataPacketViaTimeout verifies the defining difference
// from rdt2.2: a single dropped data packet is recovered by the
// retransmission timer rather than stalling the sender forever. The channel
// drops exactly the first s2r transmission by dropping with probability 1
// until the first app_send resolves, then is mutated back to ideal.
func TestRdt30RecoversFromOneLostDataPacketViaTimeout(t *testing.T) {
	cfg := idealConfig()
	cfg.LinkS2R.LossProbability = 1

	e := simcore.NewEngine(cfg, &Sender{}, &Receiver{}, nil)
	e.Init()
	e.PushAppData(wire.Sender, 0, []byte("x"))
	// Restore the link to ideal well before the retransmit timer fires so the
	// retransmit (not the original) gets through.
	one := 0.0
	e.PushChannelMutation(wire.SenderToReceiver, RetransmitTimeoutMs/2, simcore.ChannelConfigPatch{LossProbability: &one})
	e.Run()

	got := e.Endpoint(wire.Receiver).DeliveredBytes()
	if string(got) != "x" {
		t.Errorf("delivered %q, want %q (recovered via retransmission timer)", got, "x")
	}

	retransmits := e.Endpoint(wire.Sender).Metrics["retransmits"]
	if len(retransmits) == 0 {
		t.Error("expected at least one recorded retransmit")
	}
}

func TestRdt30StallsUntilEventBudgetUnderPermanentLoss(t *testing.T) {
	cfg := idealConfig()
	cfg.LinkS2R.LossProbability = 1
	cfg.MaxEvents = 10 // reached at 1800ms, well inside the 5000ms sim-time limit

	e := simcore.NewEngine(cfg, &Sender{}, &Receiver{}, nil)
	e.Init()
	e.PushAppData(wire.Sender, 0, []byte("x"))
	e.Run()

	if e.TerminationCause() != simcore.TerminationEventBudget {
		t.Fatalf("termination = %v, want EventBudget (the retransmit timer keeps firing under permanent loss)", e.TerminationCause())
	}
	if got := e.Endpoint(wire.Receiver).DeliveredBytes(); len(got) != 0 {
		t.Errorf("delivered %q, want nothing under permanent loss", got)
	}
}
