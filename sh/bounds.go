package sh

import (
	"fmt"
	"math"
)

// DefaultEpsilon is the bounds padding applied when no explicit epsilon
// is configured. It is the float64 machine epsilon (2^-52).
const DefaultEpsilon = 0x1p-52

// Bounds holds the per-dimension lower bound and range of the projected
// training data, padded so every range is strictly positive. Bounds are
// fit once on the projected training matrix and reused unchanged when
// encoding query or retrieval batches.
type Bounds struct {
	Min   []float64
	Range []float64
}

// FitBounds computes padded bounds over the columns of a projected
// matrix. eps must be > 0; pass DefaultEpsilon for the standard pad.
//
// Columns whose padded range would collapse to zero (a constant column
// far enough from zero that the pad is absorbed by rounding) are
// widened to the adjacent representable values instead of failing.
func FitBounds(projected [][]float64, eps float64) (*Bounds, error) {
	if len(projected) == 0 {
		return nil, fmt.Errorf("sh: empty projected matrix")
	}
	if !(eps > 0) {
		return nil, fmt.Errorf("sh: epsilon must be > 0, got %v", eps)
	}
	dims := len(projected[0])
	if dims == 0 {
		return nil, fmt.Errorf("sh: projected matrix has zero columns")
	}
	for i, row := range projected {
		if len(row) != dims {
			return nil, fmt.Errorf("sh: ragged projected matrix, row %d has %d columns, want %d", i, len(row), dims)
		}
	}

	b := &Bounds{
		Min:   make([]float64, dims),
		Range: make([]float64, dims),
	}
	for j := 0; j < dims; j++ {
		minv, maxv := projected[0][j], projected[0][j]
		for i := 1; i < len(projected); i++ {
			v := projected[i][j]
			if v < minv {
				minv = v
			}
			if v > maxv {
				maxv = v
			}
		}

		mn := minv - eps
		mx := maxv + eps
		if mn == minv {
			mn = math.Nextafter(minv, math.Inf(-1))
		}
		if mx == maxv {
			mx = math.Nextafter(maxv, math.Inf(1))
		}
		r := mx - mn
		if !(r > 0) {
			return nil, fmt.Errorf("sh: column %d has non-positive padded range %v (non-finite input?)", j, r)
		}
		b.Min[j] = mn
		b.Range[j] = r
	}
	return b, nil
}

// Dims returns the number of dimensions the bounds cover.
func (b *Bounds) Dims() int { return len(b.Min) }

func (b *Bounds) validate() error {
	if b == nil {
		return fmt.Errorf("sh: nil bounds")
	}
	if len(b.Min) == 0 || len(b.Min) != len(b.Range) {
		return fmt.Errorf("sh: malformed bounds, %d mins vs %d ranges", len(b.Min), len(b.Range))
	}
	for j, r := range b.Range {
		if !(r > 0) || math.IsInf(r, 0) {
			return fmt.Errorf("sh: bounds range[%d] = %v, must be positive and finite", j, r)
		}
	}
	return nil
}
