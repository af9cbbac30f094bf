// Package simcore implements the deterministic discrete-event core: the
// event queue, channel, timer service, host capability, endpoint driver, and
// the engine that ties them together (spec §2-§5, §7 HostMisuse handling).
package simcore

import (
	"fmt"

	"github.com/jihwankim/rdt-sim/pkg/rdt/wire"
)

// SimConfig is the engine's construction-time configuration (spec §3).
type SimConfig struct {
	Seed         uint64        `json:"seed"`
	MaxSimTimeMs int64         `json:"max_sim_time_ms"`
	MaxEvents    uint64        `json:"max_events"`
	LinkS2R      ChannelConfig `json:"link_s2r"`
	LinkR2S      ChannelConfig `json:"link_r2s"`
}

// Termination is the cause the engine halted for (spec §4.7).
type Termination int

const (
	TerminationCompleted Termination = iota
	TerminationTimeout
	TerminationEventBudget
	TerminationAborted
)

func (t Termination) String() string {
	switch t {
	case TerminationCompleted:
		return "completed"
	case TerminationTimeout:
		return "timeout"
	case TerminationEventBudget:
		return "event_budget"
	case TerminationAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// LogFunc receives HostMisuse and protocol Log() entries as they happen;
// the engine never crashes on a student bug (spec §7), it only logs.
type LogFunc func(entry LogEntry)

// Engine orchestrates the two endpoints, the channel, and the event queue
// (spec §4.7). It owns all shared state — queue, PRNG, current time, channel
// configs, endpoint states — and is never a global: one Engine per run.
type Engine struct {
	cfg     SimConfig
	rng     *rngStream
	channel *Channel
	queue   *EventQueue

	currentTimeMs    int64
	dispatchedEvents uint64
	termination      Termination
	terminated       bool
	haltRequested    bool

	endpoints [2]*Endpoint
	linkEvents []LinkEventSummary
	logs       []LogEntry

	onLog LogFunc
}

// NewEngine constructs an Engine with the two given protocol instances
// wired as Sender and Receiver, seeded and configured per cfg.
func NewEngine(cfg SimConfig, sender, receiver Protocol, onLog LogFunc) *Engine {
	e := &Engine{
		cfg:     cfg,
		rng:     newRNGStream(cfg.Seed),
		channel: NewChannel(cfg.LinkS2R, cfg.LinkR2S),
		queue:   NewEventQueue(),
		onLog:   onLog,
	}
	e.endpoints[wire.Sender] = newEndpoint(wire.Sender, sender)
	e.endpoints[wire.Receiver] = newEndpoint(wire.Receiver, receiver)
	return e
}

// Init calls init on the sender then the receiver, exactly once each,
// before any other hook (spec §4.7).
func (e *Engine) Init() {
	e.withHost(wire.Sender, func(h Host) { e.endpoints[wire.Sender].Protocol.Init(h) })
	e.withHost(wire.Receiver, func(h Host) { e.endpoints[wire.Receiver].Protocol.Init(h) })
}

func (e *Engine) withHost(self wire.NodeId, fn func(Host)) {
	h := &hostImpl{engine: e, self: self}
	fn(h)
}

// CurrentTimeMs returns the engine's current simulated time.
func (e *Engine) CurrentTimeMs() int64 { return e.currentTimeMs }

// Terminated reports whether the engine has halted.
func (e *Engine) Terminated() bool { return e.terminated }

// TerminationCause returns the halt reason; only meaningful once Terminated().
func (e *Engine) TerminationCause() Termination { return e.termination }

// DispatchedEvents returns the number of events dispatched so far.
func (e *Engine) DispatchedEvents() uint64 { return e.dispatchedEvents }

// LinkEvents returns the recorded link-event summaries so far.
func (e *Engine) LinkEvents() []LinkEventSummary { return e.linkEvents }

// Logs returns the run log so far.
func (e *Engine) Logs() []LogEntry { return e.logs }

// Endpoint exposes one endpoint's driver state (deliveries, metrics) for
// report assembly; it must not be mutated by callers.
func (e *Engine) Endpoint(id wire.NodeId) *Endpoint { return e.endpoints[id] }

func (e *Engine) finish(cause Termination) {
	if e.terminated {
		return
	}
	e.terminated = true
	e.termination = cause
}

// RequestHalt causes the next Step to terminate with Aborted. The scenario
// runner has no halt action and does not call it.
func (e *Engine) RequestHalt() {
	e.haltRequested = true
}

// PushAppData schedules an AppData event for endpoint `from` at atMs.
func (e *Engine) PushAppData(from wire.NodeId, atMs int64, bytes []byte) {
	e.queue.Push(Event{Kind: EventAppData, ScheduledMs: atMs, AppDataFrom: from, AppDataBytes: bytes})
}

// PushChannelMutation schedules a ChannelMutation event at atMs.
func (e *Engine) PushChannelMutation(d wire.Direction, atMs int64, patch ChannelConfigPatch) {
	e.queue.Push(Event{Kind: EventChannelMutation, ScheduledMs: atMs, MutationDirection: d, MutationPatch: patch})
}

// PushWaitMarker schedules a WaitMarker event at atMs, identified by id.
func (e *Engine) PushWaitMarker(id int, atMs int64) {
	e.queue.Push(Event{Kind: EventWaitMarker, ScheduledMs: atMs, WaitMarkerID: id})
}

// Step dispatches at most one event and reports whether the engine is now
// terminated (either from this step or a prior one). It is the sole place
// spec §4.7's four termination causes are decided.
func (e *Engine) Step() (dispatched Event, ok bool, haltedNow bool) {
	if e.terminated {
		return Event{}, false, true
	}
	if e.haltRequested {
		e.finish(TerminationAborted)
		return Event{}, false, true
	}
	if e.dispatchedEvents >= e.cfg.MaxEvents {
		e.finish(TerminationEventBudget)
		return Event{}, false, true
	}
	ev, has := e.queue.Pop()
	if !has {
		e.finish(TerminationCompleted)
		return Event{}, false, true
	}
	if ev.ScheduledMs > e.cfg.MaxSimTimeMs {
		e.finish(TerminationTimeout)
		return Event{}, false, true
	}
	e.currentTimeMs = ev.ScheduledMs
	e.dispatchedEvents++
	e.dispatch(ev)
	return ev, true, e.terminated
}

// Run dispatches events until the engine terminates.
func (e *Engine) Run() {
	for {
		if _, _, halted := e.Step(); halted {
			return
		}
	}
}

// RunUntilMarker dispatches events until a WaitMarker with id is dispatched,
// or the engine terminates first (whichever comes first).
func (e *Engine) RunUntilMarker(id int) {
	for {
		ev, ok, halted := e.Step()
		if halted {
			return
		}
		if ok && ev.Kind == EventWaitMarker && ev.WaitMarkerID == id {
			return
		}
	}
}

// RunUntilQuiescent dispatches events until no non-timer event remains live
// in the queue, or timeoutMs of additional simulated time has elapsed,
// whichever comes first (spec §4.8, WaitQuiescent).
func (e *Engine) RunUntilQuiescent(timeoutMs int64) {
	deadline := e.currentTimeMs + timeoutMs
	for {
		if !e.queue.HasLiveNonTimer() {
			return
		}
		nextMs, has := e.queue.NextTimeMs()
		if !has || nextMs > deadline {
			return
		}
		if _, _, halted := e.Step(); halted {
			return
		}
	}
}

func (e *Engine) dispatch(ev Event) {
	switch ev.Kind {
	case EventAppData:
		ep := e.endpoints[ev.AppDataFrom]
		e.withHost(ev.AppDataFrom, func(h Host) { ep.Protocol.OnAppData(h, ev.AppDataBytes) })
	case EventPacketArrival:
		ep := e.endpoints[ev.ArrivalTo]
		e.withHost(ev.ArrivalTo, func(h Host) { ep.Protocol.OnPacket(h, ev.ArrivalPacket) })
	case EventTimerFire:
		ep := e.endpoints[ev.TimerEndpoint]
		ep.timers.unregister(ev.TimerID)
		e.withHost(ev.TimerEndpoint, func(h Host) { ep.Protocol.OnTimer(h, ev.TimerID) })
	case EventChannelMutation:
		e.channel.Mutate(ev.MutationDirection, ev.MutationPatch)
	case EventWaitMarker:
		// no-op: a pure synchronization point for RunUntilMarker.
	case EventHalt:
		e.finish(TerminationAborted)
	}
}

// --- Host operation implementations, called only from hostImpl. ---

func (e *Engine) sendPacket(self wire.NodeId, pkt wire.Packet) {
	d := wire.DirectionOf(self)
	summaries, arrivals := e.channel.Emit(e.rng, d, e.currentTimeMs, pkt)
	e.linkEvents = append(e.linkEvents, summaries...)
	for _, a := range arrivals {
		e.queue.Push(Event{
			Kind:          EventPacketArrival,
			ScheduledMs:   a.AtMs,
			ArrivalTo:     d.To(),
			ArrivalPacket: a.Packet,
		})
	}
}

func (e *Engine) startTimer(self wire.NodeId, delayMs int64, timerID int32) {
	if delayMs < 0 {
		e.log(self, fmt.Sprintf("host misuse: start_timer(%d) with negative delay %dms ignored", timerID, delayMs))
		return
	}
	ep := e.endpoints[self]
	tok := e.queue.Push(Event{
		Kind:          EventTimerFire,
		ScheduledMs:   e.currentTimeMs + delayMs,
		TimerEndpoint: self,
		TimerID:       timerID,
	})
	if prevTok, had := ep.timers.register(timerID, tok); had {
		e.queue.Cancel(prevTok)
	}
}

func (e *Engine) cancelTimer(self wire.NodeId, timerID int32) {
	ep := e.endpoints[self]
	if tok, had := ep.timers.unregister(timerID); had {
		e.queue.Cancel(tok)
	}
}

func (e *Engine) deliverData(self wire.NodeId, bytes []byte) {
	if bytes == nil {
		e.log(self, "host misuse: deliver_data with null bytes ignored")
		return
	}
	ep := e.endpoints[self]
	ep.Deliveries = append(ep.Deliveries, DeliveryRecord{AtMs: e.currentTimeMs, Bytes: bytes})
}

func (e *Engine) log(self wire.NodeId, message string) {
	entry := LogEntry{AtMs: e.currentTimeMs, From: self, Message: message}
	e.logs = append(e.logs, entry)
	if e.onLog != nil {
		e.onLog(entry)
	}
}

func (e *Engine) recordMetric(self wire.NodeId, name string, value float64) {
	ep := e.endpoints[self]
	ep.Metrics[name] = append(ep.Metrics[name], MetricPoint{AtMs: e.currentTimeMs, Value: value})
}
