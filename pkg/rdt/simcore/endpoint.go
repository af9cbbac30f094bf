package simcore

import "github.com/jihwankim/rdt-sim/pkg/rdt/wire"

// Protocol is the four-hook contract a student (or reference) implementation
// exposes (spec §4.5). Hooks run to completion, synchronously, under a Host
// scoped to the calling endpoint; there is no re-entrancy.
type Protocol interface {
	// Init runs once per endpoint, before any other hook, at engine startup.
	Init(host Host)
	// OnAppData runs when the runner's AppData action reaches this endpoint.
	OnAppData(host Host, data []byte)
	// OnPacket runs when a PacketArrival is dispatched to this endpoint.
	// Payloads may already be corrupted by the channel; validate before trusting.
	OnPacket(host Host, pkt wire.Packet)
	// OnTimer runs when a TimerFire for timerID is dispatched. The engine has
	// already unregistered timerID before calling this, so it may be re-armed.
	OnTimer(host Host, timerID int32)
}

// DeliveryRecord is one append to an endpoint's delivery log.
type DeliveryRecord struct {
	AtMs  int64
	Bytes []byte
}

// MetricPoint is one sample of a named metric series.
type MetricPoint struct {
	AtMs  int64
	Value float64
}

// LogEntry is one append to the run log.
type LogEntry struct {
	AtMs    int64
	From    wire.NodeId
	Message string
}

// Endpoint owns one protocol instance plus its timers, delivery log, and
// metrics (spec §3, "Endpoint state"). Endpoints never hold a reference to
// each other; all interaction happens through Host operations dispatched by
// the Engine.
type Endpoint struct {
	ID         wire.NodeId
	Protocol   Protocol
	timers     timerTable
	Deliveries []DeliveryRecord
	Metrics    map[string][]MetricPoint
}

func newEndpoint(id wire.NodeId, proto Protocol) *Endpoint {
	return &Endpoint{
		ID:       id,
		Protocol: proto,
		timers:   make(timerTable),
		Metrics:  make(map[string][]MetricPoint),
	}
}

// DeliveredBytes concatenates the endpoint's full delivery log in order.
func (e *Endpoint) DeliveredBytes() []byte {
	var total int
	for _, d := range e.Deliveries {
		total += len(d.Bytes)
	}
	out := make([]byte, 0, total)
	for _, d := range e.Deliveries {
		out = append(out, d.Bytes...)
	}
	return out
}
