package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// trainConfig mirrors the train command's flags. A YAML config file fills
// it first; flags that were set explicitly override the file values.
type trainConfig struct {
	Dataset         string  `yaml:"dataset"`
	Root            string  `yaml:"root"`
	CodeLengths     string  `yaml:"code_lengths"`
	TopK            int     `yaml:"topk"`
	Seed            int64   `yaml:"seed"`
	Eps             float64 `yaml:"eps"`
	Workers         int     `yaml:"workers"`
	Compression     string  `yaml:"compression"`
	CheckpointDir   string  `yaml:"checkpoint_dir"`
	CacheSize       int64   `yaml:"cache_size"`
	Registry        string  `yaml:"registry"`
	ContinueOnError bool    `yaml:"continue_on_error"`
	LogLevel        string  `yaml:"log_level"`
	LogFormat       string  `yaml:"log_format"`
	LogDir          string  `yaml:"log_dir"`
}

func defaultTrainConfig() trainConfig {
	return trainConfig{
		Root:        ".",
		CodeLengths: "8,16,24,32,48,64,96,128",
		TopK:        -1,
		Seed:        3367,
		Compression: "zstd",
		LogLevel:    "info",
		LogFormat:   "text",
	}
}

// loadConfigFile reads a YAML config into cfg. Unknown keys are rejected.
func loadConfigFile(path string, cfg *trainConfig) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// parseCodeLengths parses a comma-separated list of positive ints.
func parseCodeLengths(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid code length %q: %w", p, err)
		}
		if n < 1 {
			return nil, fmt.Errorf("code length must be positive, got %d", n)
		}
		out = append(out, n)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no code lengths in %q", s)
	}
	return out, nil
}
