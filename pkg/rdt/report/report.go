// Package report defines the SimulationReport JSON shape produced after an
// engine run and consumed by the scenario runner's verdict evaluation (spec
// §6.2), grounded on the teacher's reporting.TestReport.
package report

import (
	"github.com/jihwankim/rdt-sim/pkg/rdt/simcore"
)

// DeliveryRecord is one payload appended to an endpoint's delivery log.
type DeliveryRecord struct {
	AtMs  int64  `json:"at_ms"`
	Bytes []byte `json:"bytes"`
}

// MetricPoint is one sample of a named metric series.
type MetricPoint struct {
	AtMs  int64   `json:"at_ms"`
	Value float64 `json:"value"`
}

// LogEntry is one run-log line.
type LogEntry struct {
	AtMs    int64  `json:"at_ms"`
	From    string `json:"from"`
	Message string `json:"message"`
}

// Failure describes one assertion that did not hold.
type Failure struct {
	Assertion string `json:"assertion"`
	Detail    string `json:"detail"`
}

// Verdict is the runner's pass/fail judgment.
type Verdict struct {
	Pass     bool      `json:"pass"`
	Failures []Failure `json:"failures"`
}

// Report is the complete JSON document emitted after a scenario run (spec
// §6.2): config echoed back, termination cause, link-event summaries,
// per-endpoint deliveries, metric series, the run log, and the verdict.
type Report struct {
	Config      simcore.SimConfig              `json:"config"`
	Termination string                         `json:"termination"`
	LinkEvents  []simcore.LinkEventSummary      `json:"link_events"`
	Deliveries  map[string][]DeliveryRecord     `json:"deliveries"`
	Metrics     map[string][]MetricPoint        `json:"metrics"`
	Logs        []LogEntry                     `json:"logs"`
	Verdict     Verdict                        `json:"verdict"`
}
