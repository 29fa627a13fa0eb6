package dataset

import (
	"fmt"
	"math"
	"math/rand"
	"net/url"
	"strconv"
	"strings"

	"github.com/hupe1980/spectral/eval"
)

// SyntheticScheme prefixes dataset names that are generated instead of
// loaded.
const SyntheticScheme = "synthetic://"

// SyntheticConfig sizes a generated dataset.
type SyntheticConfig struct {
	Dim       int
	Classes   int
	Train     int
	Query     int
	Retrieval int
	Spread    float64
}

// DefaultSyntheticConfig returns the sizes used when a synthetic URI
// leaves parameters out.
func DefaultSyntheticConfig() SyntheticConfig {
	return SyntheticConfig{
		Dim:       64,
		Classes:   10,
		Train:     1000,
		Query:     100,
		Retrieval: 1000,
		Spread:    0.3,
	}
}

// IsSynthetic reports whether a dataset name selects generation.
func IsSynthetic(name string) bool {
	return strings.HasPrefix(name, SyntheticScheme)
}

// ParseSynthetic parses a synthetic dataset URI, e.g.
//
//	synthetic://?dim=64&classes=10&train=1000&query=100&retrieval=1000&spread=0.3
//
// Missing parameters take their defaults; unknown parameters are rejected.
func ParseSynthetic(uri string) (SyntheticConfig, error) {
	cfg := DefaultSyntheticConfig()
	if !IsSynthetic(uri) {
		return cfg, fmt.Errorf("dataset: not a synthetic URI: %q", uri)
	}

	u, err := url.Parse(uri)
	if err != nil {
		return cfg, fmt.Errorf("dataset: parse %q: %w", uri, err)
	}

	for key, vals := range u.Query() {
		val := vals[len(vals)-1]
		switch key {
		case "spread":
			cfg.Spread, err = strconv.ParseFloat(val, 64)
		case "dim":
			cfg.Dim, err = strconv.Atoi(val)
		case "classes":
			cfg.Classes, err = strconv.Atoi(val)
		case "train":
			cfg.Train, err = strconv.Atoi(val)
		case "query":
			cfg.Query, err = strconv.Atoi(val)
		case "retrieval":
			cfg.Retrieval, err = strconv.Atoi(val)
		default:
			return cfg, fmt.Errorf("dataset: unknown synthetic parameter %q", key)
		}
		if err != nil {
			return cfg, fmt.Errorf("dataset: synthetic parameter %s=%q: %w", key, val, err)
		}
	}

	if cfg.Dim < 1 || cfg.Classes < 1 || cfg.Train < 1 || cfg.Query < 1 || cfg.Retrieval < 1 {
		return cfg, fmt.Errorf("dataset: synthetic sizes must be positive: %+v", cfg)
	}
	if !(cfg.Spread > 0) {
		return cfg, fmt.Errorf("dataset: synthetic spread must be > 0, got %v", cfg.Spread)
	}
	return cfg, nil
}

// Synthesize generates a clustered Gaussian dataset: one well-separated
// centroid per class, rows assigned round-robin, labeled by cluster.
// Deterministic for a fixed (config, seed) pair.
func Synthesize(cfg SyntheticConfig, seed int64) (*Dataset, error) {
	rng := rand.New(rand.NewSource(seed))

	// Centroids on a scaled hypersphere so cluster structure survives
	// the per-row noise.
	scale := 10 * cfg.Spread * math.Sqrt(float64(cfg.Dim))
	centroids := make([][]float64, cfg.Classes)
	for c := range centroids {
		v := make([]float64, cfg.Dim)
		var norm float64
		for j := range v {
			v[j] = rng.NormFloat64()
			norm += v[j] * v[j]
		}
		if norm == 0 {
			norm = 1
		}
		inv := scale / math.Sqrt(norm)
		for j := range v {
			v[j] *= inv
		}
		centroids[c] = v
	}

	sample := func(rows int) ([][]float32, []uint32) {
		vectors := make([][]float32, rows)
		labels := make([]uint32, rows)
		for i := 0; i < rows; i++ {
			c := i % cfg.Classes
			row := make([]float32, cfg.Dim)
			for j := range row {
				row[j] = float32(centroids[c][j] + rng.NormFloat64()*cfg.Spread)
			}
			vectors[i] = row
			labels[i] = uint32(c)
		}
		return vectors, labels
	}

	train, _ := sample(cfg.Train)
	query, queryLabels := sample(cfg.Query)
	retrieval, retrievalLabels := sample(cfg.Retrieval)

	d := &Dataset{
		Name:            "synthetic",
		Train:           train,
		Query:           query,
		Retrieval:       retrieval,
		QueryLabels:     eval.FromClasses(queryLabels),
		RetrievalLabels: eval.FromClasses(retrievalLabels),
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}
