package scenario

import (
	"fmt"

	"github.com/jihwankim/rdt-sim/pkg/rdt/simcore"
)

// channelPatchFields lists the ChannelConfig fields a mutate_channel action
// may override, matching spec §3's ChannelConfig exactly.
var channelPatchFields = map[string]bool{
	"base_latency_ms":        true,
	"jitter_ms":              true,
	"loss_probability":       true,
	"corruption_probability": true,
	"reorder_probability":    true,
	"duplicate_probability":  true,
	"bandwidth_bps":          true,
}

// BuildPatch converts a mutate_channel action's generic YAML map into a
// typed ChannelConfigPatch, rejecting unknown keys.
func (a Action) BuildPatch() (simcore.ChannelConfigPatch, error) {
	var patch simcore.ChannelConfigPatch
	for key, raw := range a.Patch {
		if !channelPatchFields[key] {
			return patch, fmt.Errorf("mutate_channel: unknown patch field %q", key)
		}
		switch key {
		case "base_latency_ms":
			v, err := toUint32(raw)
			if err != nil {
				return patch, fmt.Errorf("mutate_channel.base_latency_ms: %w", err)
			}
			patch.BaseLatencyMs = &v
		case "jitter_ms":
			v, err := toUint32(raw)
			if err != nil {
				return patch, fmt.Errorf("mutate_channel.jitter_ms: %w", err)
			}
			patch.JitterMs = &v
		case "loss_probability":
			v, err := toFloat64(raw)
			if err != nil {
				return patch, fmt.Errorf("mutate_channel.loss_probability: %w", err)
			}
			patch.LossProbability = &v
		case "corruption_probability":
			v, err := toFloat64(raw)
			if err != nil {
				return patch, fmt.Errorf("mutate_channel.corruption_probability: %w", err)
			}
			patch.CorruptionProbability = &v
		case "reorder_probability":
			v, err := toFloat64(raw)
			if err != nil {
				return patch, fmt.Errorf("mutate_channel.reorder_probability: %w", err)
			}
			patch.ReorderProbability = &v
		case "duplicate_probability":
			v, err := toFloat64(raw)
			if err != nil {
				return patch, fmt.Errorf("mutate_channel.duplicate_probability: %w", err)
			}
			patch.DuplicateProbability = &v
		case "bandwidth_bps":
			v, err := toUint64(raw)
			if err != nil {
				return patch, fmt.Errorf("mutate_channel.bandwidth_bps: %w", err)
			}
			patch.BandwidthBps = &v
		}
	}
	return patch, nil
}

func toFloat64(raw interface{}) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("expected a number, got %T", raw)
	}
}

func toUint32(raw interface{}) (uint32, error) {
	v, err := toFloat64(raw)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, fmt.Errorf("must be non-negative, got %v", v)
	}
	return uint32(v), nil
}

func toUint64(raw interface{}) (uint64, error) {
	v, err := toFloat64(raw)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, fmt.Errorf("must be non-negative, got %v", v)
	}
	return uint64(v), nil
}
