// Package rdt1 implements rdt1.0: reliable transfer over a perfectly
// reliable channel. No sequence numbers, no acknowledgments, no
// retransmission — the sender hands every app_send straight to the link,
// and the receiver delivers every arrival straight to the application
// (spec §8 scenario 1, SPEC_FULL.md §4.9).
package rdt1

import (
	"github.com/jihwankim/rdt-sim/pkg/rdt/simcore"
	"github.com/jihwankim/rdt-sim/pkg/rdt/wire"
)

// Sender is the rdt1.0 sending half.
type Sender struct{}

func (s *Sender) Init(host simcore.Host) {}

func (s *Sender) OnAppData(host simcore.Host, data []byte) {
	host.SendPacket(wire.NewPacket(wire.Header{}, data))
}

func (s *Sender) OnPacket(host simcore.Host, pkt wire.Packet) {}

func (s *Sender) OnTimer(host simcore.Host, timerID int32) {}

// Receiver is the rdt1.0 receiving half.
type Receiver struct{}

func (r *Receiver) Init(host simcore.Host) {}

func (r *Receiver) OnAppData(host simcore.Host, data []byte) {}

func (r *Receiver) OnPacket(host simcore.Host, pkt wire.Packet) {
	host.DeliverData(pkt.Payload)
}

func (r *Receiver) OnTimer(host simcore.Host, timerID int32) {}
