// Package runner drives a simcore.Engine through a scenario's action script
// and evaluates its assertions against the resulting report, producing a
// Pass/Fail verdict (spec §4.8). Grounded on the teacher's
// core/orchestrator state-machine lifecycle and monitoring/detector's
// threshold evaluation.
package runner

import (
	"fmt"

	"github.com/jihwankim/rdt-sim/pkg/rdt/report"
	"github.com/jihwankim/rdt-sim/pkg/rdt/scenario"
	"github.com/jihwankim/rdt-sim/pkg/rdt/simcore"
	"github.com/jihwankim/rdt-sim/pkg/rdt/wire"
)

// Runner executes one scenario against a pair of protocol instances.
type Runner struct {
	Sender   simcore.Protocol
	Receiver simcore.Protocol
	OnLog    simcore.LogFunc
}

// New returns a Runner wired to the given sender/receiver protocol
// instances, which must be freshly constructed (the engine calls Init on
// both exactly once).
func New(sender, receiver simcore.Protocol, onLog simcore.LogFunc) *Runner {
	return &Runner{Sender: sender, Receiver: receiver, OnLog: onLog}
}

// Run executes s to termination and evaluates its assertions, returning the
// complete report (always well-formed, even on EngineLimitExceeded — spec
// §7's propagation policy: termination is always graceful).
func (r *Runner) Run(s *scenario.Scenario) (*report.Report, error) {
	engine := simcore.NewEngine(s.SimConfig(), r.Sender, r.Receiver, r.OnLog)
	engine.Init()

	marker := 0
	for i, action := range s.Actions {
		if err := r.schedule(engine, action, &marker); err != nil {
			return nil, fmt.Errorf("actions[%d]: %w", i, err)
		}
		if engine.Terminated() {
			break
		}
	}
	if !engine.Terminated() {
		engine.Run()
	}

	rep := assembleReport(engine, s)
	verdict := evaluate(engine, s)
	rep.Verdict = verdict
	return rep, nil
}

// schedule enqueues or runs one action. app_send and mutate_channel enqueue
// future events (their at_ms may be arbitrarily far ahead); wait_until and
// wait_quiescent actually dispatch events, advancing the engine's clock.
func (r *Runner) schedule(engine *simcore.Engine, a scenario.Action, marker *int) error {
	switch a.Type {
	case scenario.ActionAppSend:
		from, err := wire.ParseNodeId(a.From)
		if err != nil {
			return err
		}
		bytes, err := a.Bytes()
		if err != nil {
			return err
		}
		engine.PushAppData(from, a.AtMs, bytes)
	case scenario.ActionMutateChannel:
		d, err := wire.ParseDirection(a.Direction)
		if err != nil {
			return err
		}
		patch, err := a.BuildPatch()
		if err != nil {
			return err
		}
		engine.PushChannelMutation(d, a.AtMs, patch)
	case scenario.ActionWaitUntil:
		*marker++
		engine.PushWaitMarker(*marker, a.TMs)
		engine.RunUntilMarker(*marker)
	case scenario.ActionWaitQuiescent:
		engine.RunUntilQuiescent(a.TimeoutMs)
	default:
		return fmt.Errorf("unknown action type %q", a.Type)
	}
	return nil
}

func assembleReport(engine *simcore.Engine, s *scenario.Scenario) *report.Report {
	rep := &report.Report{
		Config:      s.SimConfig(),
		Termination: engine.TerminationCause().String(),
		LinkEvents:  engine.LinkEvents(),
		Deliveries:  map[string][]report.DeliveryRecord{},
		Metrics:     map[string][]report.MetricPoint{},
	}

	for _, id := range []wire.NodeId{wire.Sender, wire.Receiver} {
		ep := engine.Endpoint(id)
		drs := make([]report.DeliveryRecord, len(ep.Deliveries))
		for i, d := range ep.Deliveries {
			drs[i] = report.DeliveryRecord{AtMs: d.AtMs, Bytes: d.Bytes}
		}
		rep.Deliveries[id.String()] = drs

		for name, points := range ep.Metrics {
			key := id.String() + "." + name
			mps := make([]report.MetricPoint, len(points))
			for i, p := range points {
				mps[i] = report.MetricPoint{AtMs: p.AtMs, Value: p.Value}
			}
			rep.Metrics[key] = mps
		}
	}

	for _, l := range engine.Logs() {
		rep.Logs = append(rep.Logs, report.LogEntry{AtMs: l.AtMs, From: l.From.String(), Message: l.Message})
	}

	return rep
}

func evaluate(engine *simcore.Engine, s *scenario.Scenario) report.Verdict {
	v := report.Verdict{Pass: true}
	for _, a := range s.Assertions {
		if detail, ok := evalOne(engine, s, a); !ok {
			v.Pass = false
			v.Failures = append(v.Failures, report.Failure{Assertion: string(a.Type), Detail: detail})
		}
	}
	return v
}

func evalOne(engine *simcore.Engine, s *scenario.Scenario, a scenario.Assertion) (detail string, pass bool) {
	switch a.Type {
	case scenario.AssertDeliveredEquals:
		return evalDeliveredEquals(engine, a)
	case scenario.AssertDeliveredNoDuplicatesNoGaps:
		return evalNoDuplicatesNoGaps(engine, s, a)
	case scenario.AssertAtMostNRetransmissions:
		return evalAtMostNRetransmissions(engine, a)
	case scenario.AssertMetricInRange:
		return evalMetricInRange(engine, a)
	case scenario.AssertTerminationCause:
		return evalTerminationCause(engine, a)
	default:
		return fmt.Sprintf("unknown assertion type %q", a.Type), false
	}
}

func evalDeliveredEquals(engine *simcore.Engine, a scenario.Assertion) (string, bool) {
	id, err := wire.ParseNodeId(a.Endpoint)
	if err != nil {
		return err.Error(), false
	}
	want, err := a.ExpectedBytes()
	if err != nil {
		return err.Error(), false
	}
	got := engine.Endpoint(id).DeliveredBytes()
	if string(got) != string(want) {
		return fmt.Sprintf("%s delivered %q, want %q", a.Endpoint, got, want), false
	}
	return "", true
}

// evalNoDuplicatesNoGaps checks that every byte the endpoint's peer app_sent
// appears exactly once, in order, in the endpoint's delivery log: it
// concatenates the peer's app_send payloads in script order and compares
// that against the concatenation of the endpoint's DeliverData records.
// Equality here rules out gaps (missing bytes), non-adjacent duplicates, and
// out-of-order redelivery all at once, not just adjacent repeats.
func evalNoDuplicatesNoGaps(engine *simcore.Engine, s *scenario.Scenario, a scenario.Assertion) (string, bool) {
	id, err := wire.ParseNodeId(a.Endpoint)
	if err != nil {
		return err.Error(), false
	}
	peer := id.Other()

	var want []byte
	for _, act := range s.Actions {
		if act.Type != scenario.ActionAppSend || act.From != peer.String() {
			continue
		}
		b, err := act.Bytes()
		if err != nil {
			return err.Error(), false
		}
		want = append(want, b...)
	}

	var got []byte
	for _, d := range engine.Endpoint(id).Deliveries {
		got = append(got, d.Bytes...)
	}

	if string(got) != string(want) {
		return fmt.Sprintf("%s delivered %q, want exactly-once-in-order %q", a.Endpoint, got, want), false
	}
	return "", true
}

// evalAtMostNRetransmissions counts LinkEventSummary entries on the given
// direction whose fate represents a completed transit attempt (Delivered,
// Dropped, or Corrupted — spec's enumerated set for this assertion) and
// compares that total transit-attempt count against the budget n; it does
// not subtract the scenario's required minimum number of sends.
func evalAtMostNRetransmissions(engine *simcore.Engine, a scenario.Assertion) (string, bool) {
	d, err := wire.ParseDirection(a.DirectionAssert)
	if err != nil {
		return err.Error(), false
	}
	count := 0
	for _, le := range engine.LinkEvents() {
		if le.From != d.From() {
			continue
		}
		switch le.Fate {
		case simcore.Delivered, simcore.Dropped, simcore.Corrupted:
			count++
		}
	}
	if count > a.N {
		return fmt.Sprintf("direction %s had %d transit attempts, budget was %d", a.DirectionAssert, count, a.N), false
	}
	return "", true
}

func evalMetricInRange(engine *simcore.Engine, a scenario.Assertion) (string, bool) {
	id, err := wire.ParseNodeId(a.Endpoint)
	if err != nil {
		return err.Error(), false
	}
	points := engine.Endpoint(id).Metrics[a.Name]
	if len(points) == 0 {
		return fmt.Sprintf("metric %q has no samples on %s", a.Name, a.Endpoint), false
	}
	value := aggregate(points, a.Aggregator)
	if value < a.Min || value > a.Max {
		return fmt.Sprintf("metric %s.%s = %v, want [%v, %v]", a.Endpoint, a.Name, value, a.Min, a.Max), false
	}
	return "", true
}

func aggregate(points []simcore.MetricPoint, agg scenario.Aggregator) float64 {
	switch agg {
	case scenario.AggMax:
		max := points[0].Value
		for _, p := range points {
			if p.Value > max {
				max = p.Value
			}
		}
		return max
	case scenario.AggMin:
		min := points[0].Value
		for _, p := range points {
			if p.Value < min {
				min = p.Value
			}
		}
		return min
	case scenario.AggMean:
		sum := 0.0
		for _, p := range points {
			sum += p.Value
		}
		return sum / float64(len(points))
	default: // "last" or unset
		return points[len(points)-1].Value
	}
}

func evalTerminationCause(engine *simcore.Engine, a scenario.Assertion) (string, bool) {
	got := engine.TerminationCause().String()
	if got != a.Expected {
		return fmt.Sprintf("termination was %q, want %q", got, a.Expected), false
	}
	return "", true
}
