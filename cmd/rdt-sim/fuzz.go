package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jihwankim/rdt-sim/pkg/rdt/config"
	"github.com/jihwankim/rdt-sim/pkg/rdt/fuzz"
	"github.com/jihwankim/rdt-sim/pkg/rdt/reporting"
	"github.com/jihwankim/rdt-sim/pkg/rdt/scenario/parser"
	"github.com/jihwankim/rdt-sim/pkg/rdt/scenario/validator"
	"github.com/jihwankim/rdt-sim/pkg/rdt/simcore"
	"github.com/jihwankim/rdt-sim/pkg/rdt/simerr"
)

var fuzzCmd = &cobra.Command{
	Use:   "fuzz",
	Args:  cobra.NoArgs,
	Short: "Sweep a channel's fault parameters against a base scenario",
	Long:  `Resamples one channel's ChannelConfig every round, near the configured fault thresholds, and re-runs the base scenario's script and assertions against each sampled variant.`,
	RunE:  runFuzz,
}

func init() {
	fuzzCmd.Flags().String("scenario", "", "path to base scenario YAML file (required)")
	fuzzCmd.Flags().String("protocol", "rdt22", "built-in protocol pair: rdt1, rdt22, or rdt30")
	fuzzCmd.Flags().String("link", "s2r", "channel to sweep: s2r or r2s")
	fuzzCmd.Flags().Int("rounds", 0, "number of rounds (default: config fuzz.rounds)")
	fuzzCmd.Flags().Uint64("seed", 0, "base seed (default: config fuzz.seed)")
}

func runFuzz(cmd *cobra.Command, args []string) error {
	scenarioPath, _ := cmd.Flags().GetString("scenario")
	protocolName, _ := cmd.Flags().GetString("protocol")
	link, _ := cmd.Flags().GetString("link")
	rounds, _ := cmd.Flags().GetInt("rounds")
	seed, _ := cmd.Flags().GetUint64("seed")

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

	if rounds <= 0 {
		rounds = appCfg.Fuzz.Rounds
	}
	if !cmd.Flags().Changed("seed") {
		seed = appCfg.Fuzz.Seed
	}

	p := parser.New(nil)
	base, err := p.ParseFile(scenarioPath)
	if err != nil {
		return &simerr.ScenarioParseError{Path: scenarioPath, Err: err}
	}

	v := validator.New()
	if err := v.Validate(base); err != nil {
		return &simerr.ScenarioParseError{Path: scenarioPath, Err: err}
	}

	// newProtocolPair's errors surface once here, before the sweep starts,
	// rather than on every round.
	if _, _, err := newProtocolPair(protocolName); err != nil {
		return &simerr.ProtocolLoadError{Name: protocolName, Err: err}
	}
	factory := func() (simcore.Protocol, simcore.Protocol) {
		sender, receiver, _ := newProtocolPair(protocolName)
		return sender, receiver
	}

	runner := fuzz.NewRunner(fuzz.Config{
		Rounds: rounds,
		Seed:   seed,
		Link:   link,
		Params: fuzz.Params{
			MinLatencyMs:     appCfg.Fuzz.MinLatencyMs,
			MaxLatencyMs:     appCfg.Fuzz.MaxLatencyMs,
			MaxLossProb:      appCfg.Fuzz.MaxLossProb,
			MaxCorruptProb:   appCfg.Fuzz.MaxCorruptProb,
			MaxReorderProb:   appCfg.Fuzz.MaxReorderProb,
			MaxDuplicateProb: appCfg.Fuzz.MaxDuplicateProb,
		},
	}, factory, logger)

	results, err := runner.Run(base)
	if err != nil {
		return fmt.Errorf("fuzz sweep failed: %w", err)
	}

	passed, failed := fuzz.Summary(results)
	for _, r := range results {
		status := "PASS"
		if !r.Passed {
			status = "FAIL"
		}
		line := fmt.Sprintf("round %d [%s] seed=%d %s", r.Round, status, r.Seed, r.Config)
		if !r.Passed && r.Detail != "" {
			line += " (" + r.Detail + ")"
		}
		fmt.Println(line)
	}
	fmt.Printf("%d passed, %d failed (%d rounds)\n", passed, failed, len(results))

	if failed > 0 {
		details := make([]string, 0, failed)
		for _, r := range results {
			if !r.Passed {
				details = append(details, fmt.Sprintf("round %d (seed %d): %s", r.Round, r.Seed, r.Detail))
			}
		}
		return &simerr.AssertionFailure{Failures: details}
	}
	return nil
}
