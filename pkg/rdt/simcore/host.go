package simcore

import "github.com/jihwankim/rdt-sim/pkg/rdt/wire"

// Host is the capability surface a protocol hook sees (spec §4.6). Every
// operation refers to the calling endpoint — a Host is only ever valid for
// the single hook invocation that received it, and is not thread-safe.
//
// send_packet and start_timer/cancel_timer enqueue future events; log, now,
// deliver_data, and record_metric take effect immediately (spec §4.5).
type Host interface {
	// SendPacket enqueues emission of pkt on this endpoint's outbound
	// direction. Channel fates are drawn at enqueue time; arrival (if any)
	// is scheduled accordingly.
	SendPacket(pkt wire.Packet)
	// SendPacketFlat is the flat-fields form of SendPacket (spec §6,
	// "External interfaces" — the shape a non-Go language bridge binds
	// against without marshaling a nested struct).
	SendPacketFlat(seq, ack uint32, flags uint8, window, checksum, urgent uint16, payload []byte)
	// StartTimer arms timerID to fire after delayMs, replacing any timer
	// already registered under the same id (spec §4.4).
	StartTimer(delayMs int64, timerID int32)
	// CancelTimer unregisters timerID; a no-op if it wasn't registered.
	CancelTimer(timerID int32)
	// DeliverData appends bytes to this endpoint's delivery log at the
	// current simulated time.
	DeliverData(bytes []byte)
	// Log appends message to the run log, tagged with this endpoint and the
	// current simulated time.
	Log(message string)
	// Now returns the current simulated time in milliseconds.
	Now() int64
	// RecordMetric appends (Now(), value) to the named metric series.
	RecordMetric(name string, value float64)
}

// hostImpl is the Engine's implementation of Host, scoped to one endpoint
// for the duration of a single hook dispatch. The Engine never keeps a
// hostImpl alive past the dispatch that created it — see the cyclic
// reference note in spec §9: the host must not own the endpoint, so it is
// reissued fresh on every hook call instead of held as a field.
type hostImpl struct {
	engine *Engine
	self   wire.NodeId
}

func (h *hostImpl) SendPacket(pkt wire.Packet) {
	h.engine.sendPacket(h.self, pkt)
}

func (h *hostImpl) SendPacketFlat(seq, ack uint32, flags uint8, window, checksum, urgent uint16, payload []byte) {
	pkt := wire.NewPacket(wire.Header{
		SeqNum:        seq,
		AckNum:        ack,
		Flags:         flags,
		WindowSize:    window,
		Checksum:      checksum,
		UrgentPointer: urgent,
	}, payload)
	h.SendPacket(pkt)
}

func (h *hostImpl) StartTimer(delayMs int64, timerID int32) {
	h.engine.startTimer(h.self, delayMs, timerID)
}

func (h *hostImpl) CancelTimer(timerID int32) {
	h.engine.cancelTimer(h.self, timerID)
}

func (h *hostImpl) DeliverData(bytes []byte) {
	h.engine.deliverData(h.self, bytes)
}

func (h *hostImpl) Log(message string) {
	h.engine.log(h.self, message)
}

func (h *hostImpl) Now() int64 {
	return h.engine.currentTimeMs
}

func (h *hostImpl) RecordMetric(name string, value float64) {
	h.engine.recordMetric(h.self, name, value)
}
