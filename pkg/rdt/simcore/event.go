package simcore

import "github.com/jihwankim/rdt-sim/pkg/rdt/wire"

// EventKind tags the variant carried by an Event.
type EventKind int

const (
	EventAppData EventKind = iota
	EventPacketArrival
	EventTimerFire
	EventChannelMutation
	EventWaitMarker
	EventHalt
)

// Event is one entry in the engine's event queue. Exactly one of the
// variant-specific fields is meaningful, selected by Kind.
type Event struct {
	Kind        EventKind
	ScheduledMs int64
	InsertionSeq uint64

	// EventAppData
	AppDataFrom  wire.NodeId
	AppDataBytes []byte

	// EventPacketArrival
	ArrivalTo     wire.NodeId
	ArrivalPacket wire.Packet

	// EventTimerFire
	TimerEndpoint wire.NodeId
	TimerID       int32

	// EventChannelMutation
	MutationDirection wire.Direction
	MutationPatch     ChannelConfigPatch

	// EventWaitMarker
	WaitMarkerID int
}

func (e Event) less(o Event) bool {
	if e.ScheduledMs != o.ScheduledMs {
		return e.ScheduledMs < o.ScheduledMs
	}
	return e.InsertionSeq < o.InsertionSeq
}
