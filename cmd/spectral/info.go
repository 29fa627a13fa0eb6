package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hupe1980/spectral/blobstore"
	"github.com/hupe1980/spectral/checkpoint"
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <checkpoint>",
		Short: "Verify a checkpoint and print its summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(cmd, args[0])
		},
	}
}

func runInfo(cmd *cobra.Command, path string) error {
	store := blobstore.NewLocalStore(filepath.Dir(path))

	cp, err := checkpoint.Load(cmd.Context(), store, filepath.Base(path), checkpoint.DefaultOptions())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "dataset:      %s\n", cp.Dataset)
	fmt.Fprintf(out, "code length:  %d\n", cp.CodeLength)
	fmt.Fprintf(out, "topk:         %d\n", cp.TopK)
	fmt.Fprintf(out, "seed:         %d\n", cp.Seed)
	fmt.Fprintf(out, "map:          %.4f\n", cp.MAP)
	fmt.Fprintf(out, "query codes:  %d rows\n", cp.QueryCodes.Rows())
	fmt.Fprintf(out, "retrieval:    %d rows\n", cp.RetrievalCodes.Rows())
	fmt.Fprintf(out, "pr curve:     %d thresholds\n", len(cp.Precision))
	return nil
}
