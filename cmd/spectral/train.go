package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	spectral "github.com/hupe1980/spectral"
	"github.com/hupe1980/spectral/checkpoint"
	"github.com/hupe1980/spectral/dataset"
)

func newTrainCmd() *cobra.Command {
	cfg := defaultTrainConfig()
	var configPath string

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Sweep code lengths over a dataset",
		Long: `Train fits one spectral hashing codec per code length on a dataset,
evaluates mAP and precision-recall, and optionally writes one checkpoint
artifact per length.

Examples:
  spectral train --dataset cifar10 --root ./data --checkpoint-dir ./checkpoints
  spectral train --dataset "synthetic://?dim=64&classes=10" --code-length 8,16,32
  spectral train --dataset sift1m --root s3://my-bucket/datasets --registry dynamodb://spectral-runs`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath != "" {
				fileCfg := defaultTrainConfig()
				if err := loadConfigFile(configPath, &fileCfg); err != nil {
					return err
				}
				mergeFlagOverrides(cmd, &fileCfg, cfg)
				cfg = fileCfg
			}
			return runTrain(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.Dataset, "dataset", cfg.Dataset, "dataset name under the root, or a synthetic:// URI")
	flags.StringVar(&cfg.Root, "root", cfg.Root, "dataset root: directory, s3://bucket/prefix or minio://endpoint/bucket/prefix")
	flags.StringVar(&cfg.CodeLengths, "code-length", cfg.CodeLengths, "comma-separated code lengths to sweep")
	flags.IntVar(&cfg.TopK, "topk", cfg.TopK, "ranking truncation for mAP, <= 0 scores the whole retrieval set")
	flags.Int64Var(&cfg.Seed, "seed", cfg.Seed, "seed for synthetic data and run records")
	flags.Float64Var(&cfg.Eps, "eps", cfg.Eps, "relative bound padding, <= 0 uses the default")
	flags.IntVar(&cfg.Workers, "workers", cfg.Workers, "goroutine bound for encode and eval, <= 0 uses GOMAXPROCS")
	flags.StringVar(&cfg.Compression, "compression", cfg.Compression, "checkpoint compression: none, lz4 or zstd")
	flags.StringVar(&cfg.CheckpointDir, "checkpoint-dir", cfg.CheckpointDir, "checkpoint store: directory, mem://, s3:// or minio:// (empty disables checkpoints)")
	flags.Int64Var(&cfg.CacheSize, "cache-size", cfg.CacheSize, "read-cache capacity in bytes for remote dataset stores, 0 disables")
	flags.StringVar(&cfg.Registry, "registry", cfg.Registry, "run registry: JSON-lines path or dynamodb://table (empty disables)")
	flags.BoolVar(&cfg.ContinueOnError, "continue-on-error", cfg.ContinueOnError, "skip failed code lengths instead of aborting")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	flags.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "text or json")
	flags.StringVar(&cfg.LogDir, "log-dir", cfg.LogDir, "also write logs to <dir>/<dataset>.log")
	flags.StringVar(&configPath, "config", "", "YAML config file, overridden by explicit flags")

	_ = cmd.MarkFlagRequired("dataset")

	return cmd
}

// mergeFlagOverrides copies explicitly set flag values over the file
// config so the precedence is flags > file > defaults.
func mergeFlagOverrides(cmd *cobra.Command, dst *trainConfig, flagCfg trainConfig) {
	set := func(name string) bool { return cmd.Flags().Changed(name) }
	if set("dataset") {
		dst.Dataset = flagCfg.Dataset
	}
	if set("root") {
		dst.Root = flagCfg.Root
	}
	if set("code-length") {
		dst.CodeLengths = flagCfg.CodeLengths
	}
	if set("topk") {
		dst.TopK = flagCfg.TopK
	}
	if set("seed") {
		dst.Seed = flagCfg.Seed
	}
	if set("eps") {
		dst.Eps = flagCfg.Eps
	}
	if set("workers") {
		dst.Workers = flagCfg.Workers
	}
	if set("compression") {
		dst.Compression = flagCfg.Compression
	}
	if set("checkpoint-dir") {
		dst.CheckpointDir = flagCfg.CheckpointDir
	}
	if set("cache-size") {
		dst.CacheSize = flagCfg.CacheSize
	}
	if set("registry") {
		dst.Registry = flagCfg.Registry
	}
	if set("continue-on-error") {
		dst.ContinueOnError = flagCfg.ContinueOnError
	}
	if set("log-level") {
		dst.LogLevel = flagCfg.LogLevel
	}
	if set("log-format") {
		dst.LogFormat = flagCfg.LogFormat
	}
	if set("log-dir") {
		dst.LogDir = flagCfg.LogDir
	}
}

func runTrain(ctx context.Context, cfg trainConfig) error {
	if cfg.Dataset == "" {
		return fmt.Errorf("--dataset is required")
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	codeLengths, err := parseCodeLengths(cfg.CodeLengths)
	if err != nil {
		return err
	}
	compression, err := checkpoint.ParseCompression(cfg.Compression)
	if err != nil {
		return err
	}

	logger, closeLog, err := buildLogger(cfg.LogLevel, cfg.LogFormat, cfg.LogDir, cfg.Dataset)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	ds, err := loadDataset(ctx, cfg)
	if err != nil {
		return err
	}
	stats := ds.Stats()
	logger.InfoContext(ctx, "dataset loaded",
		"dataset", ds.Name,
		"dim", stats.Dim,
		"train", stats.TrainRows,
		"query", stats.QueryRows,
		"retrieval", stats.RetrievalRows,
		"classes", stats.Classes,
	)

	opts := []spectral.Option{
		spectral.WithTopK(cfg.TopK),
		spectral.WithSeed(cfg.Seed),
		spectral.WithWorkers(cfg.Workers),
		spectral.WithLogger(logger),
		spectral.WithCompression(compression),
	}
	if cfg.Eps > 0 {
		opts = append(opts, spectral.WithEpsilon(cfg.Eps))
	}
	if cfg.ContinueOnError {
		opts = append(opts, spectral.WithContinueOnError())
	}
	if cfg.CheckpointDir != "" {
		store, err := openStore(ctx, cfg.CheckpointDir)
		if err != nil {
			return fmt.Errorf("checkpoint store: %w", err)
		}
		opts = append(opts, spectral.WithCheckpointStore(store))
	}
	if cfg.Registry != "" {
		reg, err := openRegistry(ctx, cfg.Registry)
		if err != nil {
			return fmt.Errorf("registry: %w", err)
		}
		opts = append(opts, spectral.WithRegistry(reg))
	}

	exp := spectral.NewExperiment(ds, codeLengths, opts...)
	results, runErr := exp.Run(ctx)

	printResults(results)
	return runErr
}

func loadDataset(ctx context.Context, cfg trainConfig) (*dataset.Dataset, error) {
	if dataset.IsSynthetic(cfg.Dataset) {
		return dataset.Open(ctx, nil, cfg.Dataset, cfg.Seed, dataset.LoadOptions{})
	}
	store, err := openStore(ctx, cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("dataset store: %w", err)
	}
	store = withReadCache(store, cfg.Root, cfg.CacheSize)
	return dataset.Open(ctx, store, cfg.Dataset, cfg.Seed, dataset.LoadOptions{})
}

func printResults(results []*spectral.Result) {
	if len(results) == 0 {
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CODE LENGTH\tMAP\tFIT\tENCODE\tEVAL")
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%.4f\t%s\t%s\t%s\n",
			r.CodeLength, r.MAP,
			r.FitDuration.Round(time.Millisecond),
			r.EncodeDuration.Round(time.Millisecond),
			r.EvaluateDuration.Round(time.Millisecond),
		)
	}
	_ = w.Flush()
}
