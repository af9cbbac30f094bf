// Package fuzz generates randomized ChannelConfig variants biased toward
// the near-threshold zone where protocol bugs hide (probabilities near
// their configured maximum, latencies that straddle a retransmission timeout), runs each
// variant's scenario, and reports which rounds failed their assertions.
// Grounded on the teacher's pkg/fuzz sampler/runner split, retargeted from
// Docker/tc fault parameters to ChannelConfig probability sweeps.
package fuzz

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/jihwankim/rdt-sim/pkg/rdt/simcore"
)

// Sampler holds a seeded RNG and produces ChannelConfig variants. It is
// independent of simcore's rngStream — a fuzz sweep draws scenario
// parameters before any engine exists, while simcore's stream drives a
// single run's channel fates.
type Sampler struct {
	rng *rand.Rand
}

// NewSampler returns a Sampler seeded with seed.
func NewSampler(seed uint64) *Sampler {
	return &Sampler{rng: rand.New(rand.NewSource(int64(seed)))}
}

// triangular samples from a triangular distribution on [lo, hi] peaked at mode.
func (s *Sampler) triangular(lo, hi, mode float64) float64 {
	u := s.rng.Float64()
	fc := (mode - lo) / (hi - lo)
	if u < fc {
		return lo + math.Sqrt(u*(hi-lo)*(mode-lo))
	}
	return hi - math.Sqrt((1-u)*(hi-lo)*(hi-mode))
}

// logUniform samples uniformly in log-space on [lo, hi]. Log-space is
// undefined at lo<=0, so that edge falls back to plain linear uniform
// sampling on [0, hi] instead of propagating -Inf/NaN through math.Exp.
func (s *Sampler) logUniform(lo, hi float64) uint32 {
	if lo <= 0 {
		return uint32(s.rng.Float64() * hi)
	}
	return uint32(math.Exp(s.rng.Float64()*(math.Log(hi)-math.Log(lo)) + math.Log(lo)))
}

// weightedChoice picks one element from choices according to integer weights.
func (s *Sampler) weightedChoice(choices []float64, weights []int) float64 {
	total := 0
	for _, w := range weights {
		total += w
	}
	r := s.rng.Intn(total)
	for i, w := range weights {
		r -= w
		if r < 0 {
			return choices[i]
		}
	}
	return choices[len(choices)-1]
}

// Params bounds the ranges a Sample draws from, normally seeded from
// config.FuzzConfig.
type Params struct {
	MinLatencyMs     uint32
	MaxLatencyMs     uint32
	MaxLossProb      float64
	MaxCorruptProb   float64
	MaxReorderProb   float64
	MaxDuplicateProb float64
}

// Sample draws one ChannelConfig variant, biasing each probability toward
// the near-threshold band (80%-100% of its configured maximum) where a
// protocol is most likely to have an off-by-one or a missed retry path, and
// the rest of the time uniformly across [0, max] so easy rounds still run
// for contrast.
func (s *Sampler) Sample(p Params) simcore.ChannelConfig {
	return simcore.ChannelConfig{
		BaseLatencyMs:         s.logUniform(float64(p.MinLatencyMs), float64(p.MaxLatencyMs)),
		JitterMs:              uint32(s.triangular(0, float64(p.MaxLatencyMs)/4, 0)),
		LossProbability:       s.nearThreshold(p.MaxLossProb),
		CorruptionProbability: s.nearThreshold(p.MaxCorruptProb),
		ReorderProbability:    s.nearThreshold(p.MaxReorderProb),
		DuplicateProbability:  s.nearThreshold(p.MaxDuplicateProb),
		BandwidthBps:          uint64(s.weightedChoice([]float64{0, 1_000_000, 10_000_000}, []int{5, 3, 2})),
	}
}

// nearThreshold biases 70% of draws into [0.8*max, max] and the remaining
// 30% into [0, max], so a sweep spends most of its budget where a protocol
// bug is likeliest while still sampling the easy end of the range.
func (s *Sampler) nearThreshold(max float64) float64 {
	if max <= 0 {
		return 0
	}
	if s.rng.Float64() < 0.7 {
		return s.triangular(0.8*max, max, max)
	}
	return s.rng.Float64() * max
}

// Slug renders a short human-readable label for a sampled config, used in
// RoundResult so a failing round can be identified from the log alone.
func Slug(cfg simcore.ChannelConfig) string {
	return fmt.Sprintf("loss=%.2f corrupt=%.2f reorder=%.2f dup=%.2f latency=%dms",
		cfg.LossProbability, cfg.CorruptionProbability, cfg.ReorderProbability, cfg.DuplicateProbability, cfg.BaseLatencyMs)
}
