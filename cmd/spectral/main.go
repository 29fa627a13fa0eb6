// Command spectral trains spectral hashing codecs over labeled vector
// datasets and evaluates their retrieval quality.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "spectral",
	Short: "Spectral hashing training and evaluation harness",
	Long: `Spectral trains binary hash codecs over labeled vector datasets,
sweeps code lengths, and records mAP and precision-recall curves per run.`,
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(newTrainCmd())
	rootCmd.AddCommand(newInfoCmd())
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
