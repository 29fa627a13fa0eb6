package checkpoint

import (
	"context"
	"fmt"

	"github.com/hupe1980/spectral/blobstore"
	"github.com/hupe1980/spectral/codec"
)

// Summary is the human-readable sidecar written next to every artifact.
// It repeats the scalar results and curves so sweeps can be inspected
// without decoding the binary container.
type Summary struct {
	Dataset    string    `json:"dataset"`
	CodeLength int       `json:"code_length"`
	TopK       int       `json:"top_k"`
	Seed       int64     `json:"seed"`
	MAP        float64   `json:"map"`
	Precision  []float64 `json:"precision"`
	Recall     []float64 `json:"recall"`
	Checkpoint string    `json:"checkpoint"`
	Codec      string    `json:"codec"`
}

// SummaryName returns the sidecar name for an artifact name.
func SummaryName(artifactName string) string {
	return artifactName + ".json"
}

// Summarize extracts the summary record of a checkpoint.
func Summarize(cp *Checkpoint) Summary {
	return Summary{
		Dataset:    cp.Dataset,
		CodeLength: cp.CodeLength,
		TopK:       cp.TopK,
		Seed:       cp.Seed,
		MAP:        cp.MAP,
		Precision:  cp.Precision,
		Recall:     cp.Recall,
		Checkpoint: cp.Name(),
	}
}

// SaveSummary writes the JSON sidecar for a checkpoint using the default
// codec. Returns the sidecar name.
func SaveSummary(ctx context.Context, store blobstore.BlobStore, cp *Checkpoint) (string, error) {
	s := Summarize(cp)
	s.Codec = codec.Default.Name()

	data, err := codec.Default.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("checkpoint: marshal summary: %w", err)
	}

	name := SummaryName(cp.Name())
	if err := store.Put(ctx, name, data); err != nil {
		return "", fmt.Errorf("checkpoint: write summary %s: %w", name, err)
	}
	return name, nil
}

// LoadSummary reads a sidecar back.
func LoadSummary(ctx context.Context, store blobstore.BlobStore, name string) (*Summary, error) {
	data, err := blobstore.ReadAll(ctx, store, name)
	if err != nil {
		return nil, fmt.Errorf("checkpoint: read summary %s: %w", name, err)
	}

	var s Summary
	if err := codec.Default.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("checkpoint: decode summary %s: %w", name, err)
	}
	return &s, nil
}
