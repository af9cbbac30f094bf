package reporting

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/jihwankim/rdt-sim/pkg/rdt/report"
)

// FormatJSON renders rep as indented JSON, the canonical machine-readable
// output (spec §6.2, §6.4).
func FormatJSON(rep *report.Report) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		return nil, fmt.Errorf("encoding report: %w", err)
	}
	return buf.Bytes(), nil
}

// FormatText renders rep as a human-readable run summary for terminal use.
func FormatText(rep *report.Report) string {
	var sb strings.Builder

	status := "PASS"
	if !rep.Verdict.Pass {
		status = "FAIL"
	}

	sb.WriteString(strings.Repeat("=", 72) + "\n")
	fmt.Fprintf(&sb, "RDT SIMULATION REPORT — %s\n", status)
	sb.WriteString(strings.Repeat("=", 72) + "\n\n")

	fmt.Fprintf(&sb, "termination: %s\n", rep.Termination)
	fmt.Fprintf(&sb, "link events: %d\n\n", len(rep.LinkEvents))

	for _, ep := range sortedKeys(rep.Deliveries) {
		fmt.Fprintf(&sb, "deliveries[%s]:\n", ep)
		for _, d := range rep.Deliveries[ep] {
			fmt.Fprintf(&sb, "  at %6dms  %q\n", d.AtMs, d.Bytes)
		}
	}

	if len(rep.Metrics) > 0 {
		sb.WriteString("\nmetrics:\n")
		for _, name := range sortedMetricNames(rep.Metrics) {
			points := rep.Metrics[name]
			fmt.Fprintf(&sb, "  %s: %d sample(s), last=%v\n", name, len(points), points[len(points)-1].Value)
		}
	}

	if !rep.Verdict.Pass {
		sb.WriteString("\nfailures:\n")
		for _, f := range rep.Verdict.Failures {
			fmt.Fprintf(&sb, "  - %s: %s\n", f.Assertion, f.Detail)
		}
	}

	return sb.String()
}

func sortedKeys(m map[string][]report.DeliveryRecord) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedMetricNames(m map[string][]report.MetricPoint) []string {
	names := make([]string, 0, len(m))
	for n := range m {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
