package fuzz

import (
	"fmt"

	"github.com/jihwankim/rdt-sim/pkg/rdt/report"
	"github.com/jihwankim/rdt-sim/pkg/rdt/reporting"
	"github.com/jihwankim/rdt-sim/pkg/rdt/scenario"
	"github.com/jihwankim/rdt-sim/pkg/rdt/scenario/runner"
	"github.com/jihwankim/rdt-sim/pkg/rdt/simcore"
)

// RoundResult is one entry of a fuzz sweep's result log.
type RoundResult struct {
	Round   int    `json:"round"`
	Seed    uint64 `json:"seed"`
	Link    string `json:"link"` // "s2r" or "r2s" — which direction was swept
	Config  string `json:"config"`
	Passed  bool   `json:"passed"`
	Detail  string `json:"detail,omitempty"`
}

// Config holds all settings for a fuzz sweep.
type Config struct {
	Rounds int
	Seed   uint64
	Params Params
	// Link selects which of the base scenario's two channels is replaced
	// with the sampled config each round; the other channel keeps the base
	// scenario's value unchanged.
	Link string
}

// ProtocolFactory constructs a fresh (sender, receiver) pair for one round —
// protocols carry per-run state, so a sweep cannot reuse one instance across
// rounds.
type ProtocolFactory func() (simcore.Protocol, simcore.Protocol)

// Runner executes a fuzz sweep: a base scenario's action script and
// assertions stay fixed while one channel's ChannelConfig is resampled every
// round.
type Runner struct {
	cfg     Config
	logger  *reporting.Logger
	newProt ProtocolFactory
}

// NewRunner builds a Runner.
func NewRunner(cfg Config, newProt ProtocolFactory, logger *reporting.Logger) *Runner {
	if logger == nil {
		logger = reporting.Nop()
	}
	return &Runner{cfg: cfg, logger: logger, newProt: newProt}
}

// Run executes cfg.Rounds rounds against base, returning one RoundResult per
// round. It returns an error only if cfg.Link is not "s2r" or "r2s"; a
// round whose run fails is recorded as a failed RoundResult instead.
func (r *Runner) Run(base *scenario.Scenario) ([]RoundResult, error) {
	if r.cfg.Link != "s2r" && r.cfg.Link != "r2s" {
		return nil, fmt.Errorf("fuzz: link must be \"s2r\" or \"r2s\", got %q", r.cfg.Link)
	}

	sampler := NewSampler(r.cfg.Seed)
	results := make([]RoundResult, 0, r.cfg.Rounds)

	for round := 0; round < r.cfg.Rounds; round++ {
		variant := *base
		sampled := sampler.Sample(r.cfg.Params)
		if r.cfg.Link == "s2r" {
			variant.LinkS2R = sampled
		} else {
			variant.LinkR2S = sampled
		}
		variant.Seed = r.cfg.Seed + uint64(round)

		sender, receiver := r.newProt()
		rep, err := runner.New(sender, receiver, nil).Run(&variant)

		res := RoundResult{
			Round:  round,
			Seed:   variant.Seed,
			Link:   r.cfg.Link,
			Config: Slug(sampled),
		}
		if err != nil {
			res.Passed = false
			res.Detail = err.Error()
		} else {
			res.Passed = rep.Verdict.Pass
			res.Detail = summarizeFailures(rep)
		}
		results = append(results, res)

		r.logger.Info("fuzz round complete", "round", round, "passed", res.Passed, "config", res.Config)
	}

	return results, nil
}

func summarizeFailures(rep *report.Report) string {
	if rep.Verdict.Pass || len(rep.Verdict.Failures) == 0 {
		return ""
	}
	return rep.Verdict.Failures[0].Assertion + ": " + rep.Verdict.Failures[0].Detail
}

// Summary counts passed/failed rounds.
func Summary(results []RoundResult) (passed, failed int) {
	for _, r := range results {
		if r.Passed {
			passed++
		} else {
			failed++
		}
	}
	return
}
