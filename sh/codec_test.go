package sh

import (
	"context"
	"errors"
	"testing"

	"github.com/hupe1980/spectral/hashcode"
	"github.com/hupe1980/spectral/projection"
)

// twoClusters returns 16 three-dimensional points split into two tight
// clusters far apart along the first axis. Jitter is deterministic and
// small enough that the clusters stay well separated after projection.
func twoClusters() (data [][]float32, labels []int) {
	offsets := []float32{-0.4, -0.25, -0.1, 0.05, 0.1, 0.2, 0.3, 0.4}
	for i, off := range offsets {
		data = append(data, []float32{-10 + off, 0.3 * off, float32(i%2) * 0.1})
		labels = append(labels, 0)
	}
	for i, off := range offsets {
		data = append(data, []float32{10 + off, -0.2 * off, float32(i%2) * 0.1})
		labels = append(labels, 1)
	}
	return data, labels
}

func TestFitSeparatesClusters(t *testing.T) {
	data, labels := twoClusters()
	codec, err := Fit(data, 2, 0)
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if codec.Bits() != 2 {
		t.Fatalf("expected 2 bits, got %d", codec.Bits())
	}

	codes, err := codec.Encode(context.Background(), data)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	// All rows of a cluster share a code; the clusters differ in the
	// lowest-frequency bit.
	for i := 1; i < codes.Rows(); i++ {
		if labels[i] != labels[i-1] {
			continue
		}
		if hashcode.Hamming(codes.Row(i), codes.Row(i-1)) != 0 {
			t.Errorf("rows %d and %d share a cluster but differ: %v vs %v", i-1, i, codes.Signs(i-1), codes.Signs(i))
		}
	}
	if d := codes.Distance(0, codes, 8); d == 0 {
		t.Error("cross-cluster codes should differ")
	}
}

func TestFitDimensionErrors(t *testing.T) {
	data, _ := twoClusters()

	var dimErr *projection.DimensionError
	if _, err := Fit(data, 4, 0); !errors.As(err, &dimErr) {
		t.Errorf("expected DimensionError for bits > input dim, got %v", err)
	}
	if _, err := Fit(data[:1], 2, 0); !errors.As(err, &dimErr) {
		t.Errorf("expected DimensionError for bits > rows, got %v", err)
	}
	if _, err := Fit(nil, 2, 0); err == nil {
		t.Error("expected error for empty training data")
	}
}

func TestCodecEncodeValidation(t *testing.T) {
	data, _ := twoClusters()
	codec, err := Fit(data, 2, 0)
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if _, err := codec.Encode(context.Background(), [][]float32{{1, 2, 3, 4}}); err == nil {
		t.Error("expected error for mismatched input width")
	}
}

func TestCodecArtifactsExposed(t *testing.T) {
	data, _ := twoClusters()
	codec, err := Fit(data, 2, 0)
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if codec.Projector() == nil || codec.Bounds() == nil || codec.Modes() == nil {
		t.Fatal("trained codec must expose its artifacts")
	}
	if codec.Projector().Out() != 2 || codec.Bounds().Dims() != 2 || codec.Modes().Bits() != 2 {
		t.Errorf("artifact shapes inconsistent: proj=%d bounds=%d modes=%d",
			codec.Projector().Out(), codec.Bounds().Dims(), codec.Modes().Bits())
	}
	for j, r := range codec.Bounds().Range {
		if !(r > 0) {
			t.Errorf("range[%d] = %v, want positive", j, r)
		}
	}
}
