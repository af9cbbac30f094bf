package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jihwankim/rdt-sim/pkg/rdt/config"
	"github.com/jihwankim/rdt-sim/pkg/rdt/reporting"
	"github.com/jihwankim/rdt-sim/pkg/rdt/scenario/parser"
	"github.com/jihwankim/rdt-sim/pkg/rdt/scenario/runner"
	"github.com/jihwankim/rdt-sim/pkg/rdt/scenario/validator"
	"github.com/jihwankim/rdt-sim/pkg/rdt/simcore"
	"github.com/jihwankim/rdt-sim/pkg/rdt/simerr"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Args:  cobra.NoArgs,
	Short: "Run one scenario and report its verdict",
	Long:  `Loads a scenario YAML file, runs it against a chosen protocol pair, and prints the resulting report.`,
	RunE:  runScenario,
}

func init() {
	runCmd.Flags().String("scenario", "", "path to scenario YAML file (required)")
	runCmd.Flags().String("protocol", "rdt22", "built-in protocol pair: rdt1, rdt22, or rdt30")
	runCmd.Flags().String("format", "text", "report format: text or json")
	runCmd.Flags().Bool("dry-run", false, "parse and validate the scenario without running it")
}

func runScenario(cmd *cobra.Command, args []string) error {
	scenarioPath, _ := cmd.Flags().GetString("scenario")
	protocolName, _ := cmd.Flags().GetString("protocol")
	format, _ := cmd.Flags().GetString("format")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	if scenarioPath == "" {
		return fmt.Errorf("--scenario is required")
	}

	appCfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if err := appCfg.Validate(); err != nil {
		return err
	}

	logLevel := reporting.LogLevel(appCfg.Logging.Level)
	if verbose {
		logLevel = reporting.LogLevelDebug
	}
	logger := reporting.NewLogger(reporting.LoggerConfig{
		Level:  logLevel,
		Format: reporting.LogFormat(appCfg.Logging.Format),
		Output: os.Stderr,
	}).WithField("run_id", uuid.NewString())

	p := parser.New(nil)
	scen, err := p.ParseFile(scenarioPath)
	if err != nil {
		return &simerr.ScenarioParseError{Path: scenarioPath, Err: err}
	}

	v := validator.New()
	if err := v.Validate(scen); err != nil {
		return &simerr.ScenarioParseError{Path: scenarioPath, Err: err}
	}
	if v.HasWarnings() {
		logger.Warn("scenario has warnings", "report", v.Report())
	}

	if dryRun {
		fmt.Println("scenario is valid (dry-run)")
		return nil
	}

	sender, receiver, err := newProtocolPair(protocolName)
	if err != nil {
		return &simerr.ProtocolLoadError{Name: protocolName, Err: err}
	}

	rep, err := runner.New(sender, receiver, engineLogFunc(logger)).Run(scen)
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	switch format {
	case "json":
		out, err := reporting.FormatJSON(rep)
		if err != nil {
			return err
		}
		fmt.Println(string(out))
	default:
		fmt.Println(reporting.FormatText(rep))
	}

	if !rep.Verdict.Pass {
		failures := make([]string, len(rep.Verdict.Failures))
		for i, f := range rep.Verdict.Failures {
			failures[i] = f.Assertion + ": " + f.Detail
		}
		return &simerr.AssertionFailure{Failures: failures}
	}
	if rep.Termination == "timeout" || rep.Termination == "event_budget" {
		return &simerr.EngineLimitExceeded{Cause: rep.Termination}
	}
	return nil
}

// exitFromError maps the error taxonomy to the grading contract's exit
// codes (spec §6.4).
func exitFromError(err error) int {
	if err == nil {
		return 0
	}
	switch err.(type) {
	case *simerr.AssertionFailure:
		return 1
	case *simerr.ScenarioParseError:
		return 2
	case *simerr.ProtocolLoadError:
		return 3
	case *simerr.EngineLimitExceeded:
		return 4
	default:
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
}

// engineLogFunc bridges the engine's per-hook Log() calls into the
// structured logger at debug level, tagged with simulated time and endpoint.
func engineLogFunc(logger *reporting.Logger) simcore.LogFunc {
	return func(entry simcore.LogEntry) {
		logger.Debug(entry.Message, "at_ms", entry.AtMs, "from", entry.From.String())
	}
}
