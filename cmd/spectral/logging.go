package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	spectral "github.com/hupe1980/spectral"
	"github.com/hupe1980/spectral/dataset"
)

// buildLogger constructs the harness logger. With logDir set, output is
// duplicated into <logDir>/<dataset>.log so every dataset keeps its own
// training log.
func buildLogger(level, format, logDir, datasetName string) (*spectral.Logger, func() error, error) {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "", "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		return nil, nil, fmt.Errorf("unknown log level %q", level)
	}

	var w io.Writer = os.Stderr
	closeFn := func() error { return nil }
	if logDir != "" {
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log dir: %w", err)
		}
		path := filepath.Join(logDir, logFileName(datasetName))
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w = io.MultiWriter(os.Stderr, f)
		closeFn = f.Close
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler
	switch strings.ToLower(format) {
	case "", "text":
		handler = slog.NewTextHandler(w, opts)
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		_ = closeFn()
		return nil, nil, fmt.Errorf("unknown log format %q", format)
	}

	return spectral.NewLogger(handler), closeFn, nil
}

// logFileName maps a dataset name to a safe file name. Synthetic URIs
// collapse to "synthetic".
func logFileName(name string) string {
	if dataset.IsSynthetic(name) {
		return "synthetic.log"
	}
	safe := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '?', '&', '=':
			return '_'
		}
		return r
	}, name)
	return safe + ".log"
}
