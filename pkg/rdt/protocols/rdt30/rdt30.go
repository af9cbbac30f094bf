// Package rdt30 implements rdt3.0: rdt2.2's stop-and-wait FSM plus a
// retransmission timer, so a lost data packet or a lost ACK no longer
// stalls the sender forever (spec §8's lossy-channel liveness property,
// SPEC_FULL.md §4.9).
package rdt30

import (
	"github.com/jihwankim/rdt-sim/pkg/rdt/protocols/internal/chk"
	"github.com/jihwankim/rdt-sim/pkg/rdt/simcore"
	"github.com/jihwankim/rdt-sim/pkg/rdt/wire"
)

// RetransmitTimeoutMs is the fixed retransmission timer duration. Real
// stacks estimate this from RTT samples; a teaching protocol fixes it so
// scenario authors can reason about exact retransmit times.
const RetransmitTimeoutMs = 200

const retransmitTimerID int32 = 1

// Sender is the rdt3.0 sending half.
type Sender struct {
	seq     uint32
	pending wire.Packet
	waiting bool
}

func (s *Sender) Init(host simcore.Host) {}

func (s *Sender) OnAppData(host simcore.Host, data []byte) {
	if s.waiting {
		return
	}
	checksum := chk.Compute(s.seq, 0, 0, data)
	s.pending = wire.NewPacket(wire.Header{SeqNum: s.seq, Checksum: checksum}, data)
	s.waiting = true
	host.SendPacket(s.pending)
	host.StartTimer(RetransmitTimeoutMs, retransmitTimerID)
}

func (s *Sender) OnPacket(host simcore.Host, pkt wire.Packet) {
	if !s.waiting {
		return
	}
	if !pkt.Header.Has(wire.FlagACK) {
		return
	}
	ok := chk.Verify(pkt.Header.SeqNum, pkt.Header.AckNum, pkt.Header.Flags, pkt.Payload, pkt.Header.Checksum)
	if !ok || pkt.Header.AckNum != s.seq {
		// Corrupted ACK, or a duplicate ACK for the previous bit: the timer
		// is still running and will eventually retransmit on its own, so do
		// nothing here (matches the textbook rdt3.0 FSM, which ignores
		// garbled/mismatched ACKs rather than racing the timer).
		return
	}
	host.CancelTimer(retransmitTimerID)
	s.waiting = false
	s.seq ^= 1
}

func (s *Sender) OnTimer(host simcore.Host, timerID int32) {
	if timerID != retransmitTimerID || !s.waiting {
		return
	}
	host.RecordMetric("retransmits", 1)
	host.SendPacket(s.pending)
	host.StartTimer(RetransmitTimeoutMs, retransmitTimerID)
}

// Receiver is the rdt3.0 receiving half — identical to rdt2.2's, since
// timeout-driven retransmission is purely a sender-side concern.
type Receiver struct {
	expected uint32
}

func (r *Receiver) Init(host simcore.Host) {}

func (r *Receiver) OnAppData(host simcore.Host, data []byte) {}

func (r *Receiver) OnPacket(host simcore.Host, pkt wire.Packet) {
	ok := chk.Verify(pkt.Header.SeqNum, pkt.Header.AckNum, pkt.Header.Flags, pkt.Payload, pkt.Header.Checksum)
	if ok && pkt.Header.SeqNum == r.expected {
		host.DeliverData(pkt.Payload)
		r.ackFor(host, r.expected)
		r.expected ^= 1
		return
	}
	r.ackFor(host, r.expected^1)
}

func (r *Receiver) ackFor(host simcore.Host, ackSeq uint32) {
	checksum := chk.Compute(0, ackSeq, uint8(wire.FlagACK), nil)
	ack := wire.NewPacket(wire.Header{AckNum: ackSeq, Flags: uint8(wire.FlagACK), Checksum: checksum}, nil)
	host.SendPacket(ack)
}

func (r *Receiver) OnTimer(host simcore.Host, timerID int32) {}
