package simcore

import (
	"math"

	"github.com/jihwankim/rdt-sim/pkg/rdt/wire"
)

// ChannelConfig holds the per-direction link parameters of spec §3. All
// probabilities are independent draws per packet; fates compose in the
// fixed order of spec §4.3 — reordering that pipeline breaks determinism
// of existing seeds and must never be done (spec §9).
type ChannelConfig struct {
	BaseLatencyMs         uint32  `yaml:"base_latency_ms" json:"base_latency_ms"`
	JitterMs              uint32  `yaml:"jitter_ms" json:"jitter_ms"`
	LossProbability       float64 `yaml:"loss_probability" json:"loss_probability"`
	CorruptionProbability float64 `yaml:"corruption_probability" json:"corruption_probability"`
	ReorderProbability    float64 `yaml:"reorder_probability" json:"reorder_probability"`
	DuplicateProbability  float64 `yaml:"duplicate_probability" json:"duplicate_probability"`
	BandwidthBps          uint64  `yaml:"bandwidth_bps" json:"bandwidth_bps"`
}

// ChannelConfigPatch is a partial ChannelConfig: nil fields are left
// untouched by Mutate. Built from the "patch" map of a MutateChannel action.
type ChannelConfigPatch struct {
	BaseLatencyMs         *uint32
	JitterMs              *uint32
	LossProbability       *float64
	CorruptionProbability *float64
	ReorderProbability    *float64
	DuplicateProbability  *float64
	BandwidthBps          *uint64
}

// Apply returns cfg with the patch's non-nil fields overlaid.
func (p ChannelConfigPatch) Apply(cfg ChannelConfig) ChannelConfig {
	if p.BaseLatencyMs != nil {
		cfg.BaseLatencyMs = *p.BaseLatencyMs
	}
	if p.JitterMs != nil {
		cfg.JitterMs = *p.JitterMs
	}
	if p.LossProbability != nil {
		cfg.LossProbability = *p.LossProbability
	}
	if p.CorruptionProbability != nil {
		cfg.CorruptionProbability = *p.CorruptionProbability
	}
	if p.ReorderProbability != nil {
		cfg.ReorderProbability = *p.ReorderProbability
	}
	if p.DuplicateProbability != nil {
		cfg.DuplicateProbability = *p.DuplicateProbability
	}
	if p.BandwidthBps != nil {
		cfg.BandwidthBps = *p.BandwidthBps
	}
	return cfg
}

// Fate is the outcome of one transmission attempt through the channel.
type Fate int

const (
	Delivered Fate = iota
	Dropped
	Corrupted
	Duplicated
	Reordered
)

func (f Fate) String() string {
	switch f {
	case Delivered:
		return "delivered"
	case Dropped:
		return "dropped"
	case Corrupted:
		return "corrupted"
	case Duplicated:
		return "duplicated"
	case Reordered:
		return "reordered"
	default:
		return "unknown"
	}
}

// MarshalJSON renders a Fate as its lowercase name rather than its ordinal.
func (f Fate) MarshalJSON() ([]byte, error) {
	return []byte(`"` + f.String() + `"`), nil
}

// LinkEventSummary is the immutable record of one packet fate (spec §3).
type LinkEventSummary struct {
	EmitTimeMs   int64       `json:"emit_time_ms"`
	ArriveTimeMs int64       `json:"arrive_time_ms,omitempty"` // meaningful only when HasArrival
	HasArrival   bool        `json:"has_arrival"`
	From         wire.NodeId `json:"from"`
	To           wire.NodeId `json:"to"`
	Fate         Fate        `json:"fate"`
	Seq          uint32      `json:"seq"`
	Ack          uint32      `json:"ack"`
	PayloadLen   int         `json:"payload_len"`
}

// arrival is an internal (time, packet) pair the Channel hands back to the
// engine so it can be pushed onto the event queue as a PacketArrival.
type arrival struct {
	AtMs   int64
	Packet wire.Packet
}

// Channel holds the two directions' current parameters. Mutations (from a
// MutateChannel action) apply immediately and affect only emissions that
// happen afterwards — the per-direction independence of spec §4.3.
type Channel struct {
	configs [2]ChannelConfig
}

// NewChannel builds a Channel from the two initial configs.
func NewChannel(s2r, r2s ChannelConfig) *Channel {
	return &Channel{configs: [2]ChannelConfig{s2r, r2s}}
}

// Config returns the current parameters for direction d.
func (c *Channel) Config(d wire.Direction) ChannelConfig {
	return c.configs[d]
}

// SetConfig replaces the parameters for direction d wholesale.
func (c *Channel) SetConfig(d wire.Direction, cfg ChannelConfig) {
	c.configs[d] = cfg
}

// Mutate overlays a patch onto direction d's current parameters.
func (c *Channel) Mutate(d wire.Direction, patch ChannelConfigPatch) {
	c.configs[d] = patch.Apply(c.configs[d])
}

// Emit runs a single transmission of pkt, emitted at emitTimeMs on
// direction d, through the six-step fate pipeline of spec §4.3. It returns
// one or two LinkEventSummary entries (two only for the duplicate case) and
// the corresponding arrival(s) to schedule.
func (c *Channel) Emit(rng *rngStream, d wire.Direction, emitTimeMs int64, pkt wire.Packet) ([]LinkEventSummary, []arrival) {
	cfg := c.configs[d]
	from, to := d.From(), d.To()
	headerBytes := 15 // fixed-size header fields, spec §3: seq(4)+ack(4)+flags(1)+window(2)+checksum(2)+urgent(2)

	base := LinkEventSummary{
		EmitTimeMs: emitTimeMs,
		From:       from,
		To:         to,
		Seq:        pkt.Header.SeqNum,
		Ack:        pkt.Header.AckNum,
		PayloadLen: len(pkt.Payload),
	}

	// Step 1: loss test.
	if rng.draw() < cfg.LossProbability {
		base.Fate = Dropped
		return []LinkEventSummary{base}, nil
	}

	// Step 2: corruption test.
	corrupted := false
	if rng.draw() < cfg.CorruptionProbability {
		pkt = pkt.CorruptChecksum()
		corrupted = true
	}

	// Step 3: bandwidth serialization delay.
	sendTime := emitTimeMs
	if cfg.BandwidthBps > 0 {
		bits := float64(headerBytes+len(pkt.Payload)) * 8 * 1000
		serializeMs := int64(math.Ceil(bits / float64(cfg.BandwidthBps)))
		sendTime += serializeMs
	}

	// Step 4: propagation delay.
	u3 := rng.draw()
	latency := int64(cfg.BaseLatencyMs) + int64(math.Round(u3*2*float64(cfg.JitterMs)-float64(cfg.JitterMs)))
	if latency < 0 {
		latency = 0
	}

	// Step 5: reorder test.
	reordered := false
	if rng.draw() < cfg.ReorderProbability {
		latency += 2 * int64(cfg.BaseLatencyMs)
		reordered = true
	}

	arriveTime := sendTime + latency

	// Step 6: duplicate test.
	if rng.draw() < cfg.DuplicateProbability {
		u6 := rng.draw()
		dupLatency := latency + int64(math.Round(u6*float64(cfg.JitterMs)))
		dupArrive := sendTime + dupLatency

		first := base
		first.Fate = Duplicated
		first.HasArrival = true
		first.ArriveTimeMs = arriveTime

		second := base
		second.Fate = Delivered
		second.HasArrival = true
		second.ArriveTimeMs = dupArrive

		return []LinkEventSummary{first, second}, []arrival{
			{AtMs: arriveTime, Packet: pkt},
			{AtMs: dupArrive, Packet: pkt.Clone()},
		}
	}

	base.HasArrival = true
	base.ArriveTimeMs = arriveTime
	switch {
	case corrupted:
		base.Fate = Corrupted
	case reordered:
		base.Fate = Reordered
	default:
		base.Fate = Delivered
	}

	return []LinkEventSummary{base}, []arrival{{AtMs: arriveTime, Packet: pkt}}
}
