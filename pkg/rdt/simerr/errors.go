// Package simerr defines the lab's error taxonomy (spec §7): two setup-time
// errors that abort before dispatch begins, and two post-run outcomes the
// CLI maps to exit codes. In-dispatch misuse is distinct: the engine only
// logs it and never raises it (simcore.Engine's HostMisuse log lines).
package simerr

import "fmt"

// ScenarioParseError wraps a failure to parse or structurally validate a
// scenario file.
type ScenarioParseError struct {
	Path string
	Err  error
}

func (e *ScenarioParseError) Error() string {
	return fmt.Sprintf("scenario parse error (%s): %v", e.Path, e.Err)
}

func (e *ScenarioParseError) Unwrap() error { return e.Err }

// ProtocolLoadError wraps a failure to resolve or construct the sender/
// receiver protocol pair a scenario names.
type ProtocolLoadError struct {
	Name string
	Err  error
}

func (e *ProtocolLoadError) Error() string {
	return fmt.Sprintf("protocol load error (%s): %v", e.Name, e.Err)
}

func (e *ProtocolLoadError) Unwrap() error { return e.Err }

// AssertionFailure reports that a run completed but its verdict failed.
// Unlike the two setup errors here it is raised after a well-formed report
// already exists — callers should still emit that report.
type AssertionFailure struct {
	Failures []string
}

func (e *AssertionFailure) Error() string {
	return fmt.Sprintf("%d assertion(s) failed", len(e.Failures))
}

// EngineLimitExceeded reports that the run terminated on a resource limit
// (event budget or sim-time budget) rather than completing naturally. The
// runner still evaluates assertions against the partial report; this error
// is only raised by the CLI layer to pick the exit code.
type EngineLimitExceeded struct {
	Cause string // "timeout" or "event_budget"
}

func (e *EngineLimitExceeded) Error() string {
	return fmt.Sprintf("engine limit exceeded: %s", e.Cause)
}
