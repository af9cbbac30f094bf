// Command rdt-sim runs scripted scenarios against student RDT protocol
// implementations and renders a pass/fail verdict, exiting with the code
// required by the grading contract (spec §6.4).
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
	version = "dev"
)

var rootCmd = &cobra.Command{
	Use:     "rdt-sim",
	Short:   "Deterministic discrete-event RDT protocol simulator",
	Long:    `rdt-sim executes scripted network scenarios against RDT protocol implementations over a simulated, seedable, faulty channel and evaluates assertions against the resulting report.`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./rdt-sim.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(fuzzCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitFromError(err))
	}
}
