package fuzz

import (
	"strings"
	"testing"
)

func defaultParams() Params {
	return Params{
		MinLatencyMs:     1,
		MaxLatencyMs:     100,
		MaxLossProb:      0.5,
		MaxCorruptProb:   0.3,
		MaxReorderProb:   0.2,
		MaxDuplicateProb: 0.1,
	}
}

func TestSampleIsDeterministicForASeed(t *testing.T) {
	p := defaultParams()
	a := NewSampler(1).Sample(p)
	b := NewSampler(1).Sample(p)
	if a != b {
		t.Errorf("two samplers with the same seed produced different configs: %+v vs %+v", a, b)
	}
}

func TestSampleStaysWithinConfiguredBounds(t *testing.T) {
	p := defaultParams()
	s := NewSampler(7)
	for i := 0; i < 500; i++ {
		cfg := s.Sample(p)
		if cfg.LossProbability < 0 || cfg.LossProbability > p.MaxLossProb {
			t.Fatalf("round %d: loss_probability %v out of [0, %v]", i, cfg.LossProbability, p.MaxLossProb)
		}
		if cfg.CorruptionProbability < 0 || cfg.CorruptionProbability > p.MaxCorruptProb {
			t.Fatalf("round %d: corruption_probability %v out of [0, %v]", i, cfg.CorruptionProbability, p.MaxCorruptProb)
		}
		if cfg.BaseLatencyMs < p.MinLatencyMs || cfg.BaseLatencyMs > p.MaxLatencyMs {
			t.Fatalf("round %d: base_latency_ms %v out of [%v, %v]", i, cfg.BaseLatencyMs, p.MinLatencyMs, p.MaxLatencyMs)
		}
	}
}

func TestLogUniformHandlesAZeroLowerBound(t *testing.T) {
	s := NewSampler(3)
	for i := 0; i < 200; i++ {
		v := s.logUniform(0, 100)
		if v > 100 {
			t.Fatalf("round %d: logUniform(0, 100) = %d, want <= 100", i, v)
		}
	}
}

func TestNearThresholdReturnsZeroForNonPositiveMax(t *testing.T) {
	s := NewSampler(1)
	if got := s.nearThreshold(0); got != 0 {
		t.Errorf("nearThreshold(0) = %v, want 0", got)
	}
}

func TestSlugIncludesAllFourProbabilities(t *testing.T) {
	cfg := NewSampler(1).Sample(defaultParams())
	slug := Slug(cfg)
	for _, want := range []string{"loss=", "corrupt=", "reorder=", "dup="} {
		if !strings.Contains(slug, want) {
			t.Errorf("slug %q missing %q", slug, want)
		}
	}
}
