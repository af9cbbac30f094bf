// Package rdt22 implements rdt2.2: stop-and-wait over a channel that can
// corrupt packets, using a single alternating sequence bit and a NAK-free
// design — a duplicate ACK for the prior sequence number plays the NAK role
// (spec §8 scenarios 3/6, SPEC_FULL.md §4.9). It does not handle loss: a
// dropped packet or dropped ACK stalls the sender forever, which is why
// rdt3.0 adds a timer on top of this FSM.
package rdt22

import (
	"github.com/jihwankim/rdt-sim/pkg/rdt/protocols/internal/chk"
	"github.com/jihwankim/rdt-sim/pkg/rdt/simcore"
	"github.com/jihwankim/rdt-sim/pkg/rdt/wire"
)

// Sender is the rdt2.2 sending half: a two-state stop-and-wait FSM
// (wait_call_i / wait_ack_i) keyed by the current sequence bit.
type Sender struct {
	seq     uint32
	pending wire.Packet
	waiting bool
}

func (s *Sender) Init(host simcore.Host) {}

func (s *Sender) OnAppData(host simcore.Host, data []byte) {
	if s.waiting {
		// A second app_send before the first is ACKed is a scenario-author
		// error for this stop-and-wait protocol; silently drop rather than
		// corrupt the pending transmission.
		return
	}
	checksum := chk.Compute(s.seq, 0, 0, data)
	s.pending = wire.NewPacket(wire.Header{SeqNum: s.seq, Checksum: checksum}, data)
	s.waiting = true
	host.SendPacket(s.pending)
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
		// Corrupted ACK, or a duplicate ACK for the previous sequence bit
		// playing the NAK role: resend the same packet.
		host.RecordMetric("retransmits", 1)
		host.SendPacket(s.pending)
		return
	}
	s.waiting = false
	s.seq ^= 1
}

func (s *Sender) OnTimer(host simcore.Host, timerID int32) {}

// Receiver is the rdt2.2 receiving half.
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
	// Corrupted, or a correctly-received retransmit of the packet we
	// already delivered: re-ack the other sequence bit without re-delivering.
	r.ackFor(host, r.expected^1)
}

func (r *Receiver) ackFor(host simcore.Host, ackSeq uint32) {
	checksum := chk.Compute(0, ackSeq, uint8(wire.FlagACK), nil)
	ack := wire.NewPacket(wire.Header{AckNum: ackSeq, Flags: uint8(wire.FlagACK), Checksum: checksum}, nil)
	host.SendPacket(ack)
}

func (r *Receiver) OnTimer(host simcore.Host, timerID int32) {}
