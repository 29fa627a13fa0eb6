// Package projection provides the PCA projection used to prepare vectors
// for spectral encoding.
//
// A Projector is fit once on a training matrix and then applied to any
// batch with the same dimensionality. The projection keeps the top
// principal directions of the centered training data, sorted by
// decreasing singular value. Public APIs speak plain slices; gonum is an
// implementation detail of this package.
package projection

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// DimensionError reports an input shape the projector cannot work with.
type DimensionError struct {
	Rows int // training rows (0 when not applicable)
	Dim  int // input dimensionality
	Out  int // requested output dimensionality
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("projection: output dimension %d not in [1, min(dim=%d, rows=%d)]", e.Out, e.Dim, e.Rows)
}

// ErrNotFitted is returned when Transform is called before Fit succeeded.
var ErrNotFitted = errors.New("projection: projector not fitted")

// Projector maps vectors into the top principal directions of the
// training data it was fit on.
type Projector struct {
	mean []float64 // column means of the training data, length dim
	w    *mat.Dense // dim x out projection matrix
	dim  int
	out  int
}

// Fit learns a projector from the training matrix, keeping the out
// leading principal directions.
//
// Requires 1 <= out <= min(dim, rows). The direction signs are
// normalized (largest-magnitude entry of each direction is non-negative)
// so the result is fully deterministic for a fixed input.
func Fit(train [][]float32, out int) (*Projector, error) {
	n := len(train)
	if n == 0 {
		return nil, errors.New("projection: empty training matrix")
	}
	dim := len(train[0])
	for i, row := range train {
		if len(row) != dim {
			return nil, fmt.Errorf("projection: ragged training matrix, row %d has %d columns, want %d", i, len(row), dim)
		}
	}
	if out < 1 || out > dim || out > n {
		return nil, &DimensionError{Rows: n, Dim: dim, Out: out}
	}

	mean := make([]float64, dim)
	for _, row := range train {
		for j, v := range row {
			mean[j] += float64(v)
		}
	}
	for j := range mean {
		mean[j] /= float64(n)
	}

	centered := mat.NewDense(n, dim, nil)
	for i, row := range train {
		for j, v := range row {
			centered.Set(i, j, float64(v)-mean[j])
		}
	}

	var svd mat.SVD
	if ok := svd.Factorize(centered, mat.SVDThin); !ok {
		return nil, errors.New("projection: SVD did not converge")
	}

	// Columns of V are the right singular vectors, already ordered by
	// decreasing singular value.
	var v mat.Dense
	svd.VTo(&v)

	w := mat.NewDense(dim, out, nil)
	for j := 0; j < out; j++ {
		pivot, maxAbs := 0, 0.0
		for i := 0; i < dim; i++ {
			if a := math.Abs(v.At(i, j)); a > maxAbs {
				maxAbs = a
				pivot = i
			}
		}
		sign := 1.0
		if v.At(pivot, j) < 0 {
			sign = -1.0
		}
		for i := 0; i < dim; i++ {
			w.Set(i, j, sign*v.At(i, j))
		}
	}

	return &Projector{mean: mean, w: w, dim: dim, out: out}, nil
}

// Dim returns the input dimensionality the projector was fit on.
func (p *Projector) Dim() int { return p.dim }

// Out returns the projected dimensionality.
func (p *Projector) Out() int { return p.out }

// Mean returns a copy of the training column means.
func (p *Projector) Mean() []float64 {
	out := make([]float64, len(p.mean))
	copy(out, p.mean)
	return out
}

// Components returns a copy of the projection matrix, one principal
// direction per entry, each of length Dim.
func (p *Projector) Components() [][]float64 {
	out := make([][]float64, p.out)
	for j := 0; j < p.out; j++ {
		col := make([]float64, p.dim)
		for i := 0; i < p.dim; i++ {
			col[i] = p.w.At(i, j)
		}
		out[j] = col
	}
	return out
}

// Transform centers each row by the training mean and projects it.
// The result has one row per input row, each of length Out.
func (p *Projector) Transform(x [][]float32) ([][]float64, error) {
	if p == nil || p.w == nil {
		return nil, ErrNotFitted
	}
	n := len(x)
	if n == 0 {
		return [][]float64{}, nil
	}
	for i, row := range x {
		if len(row) != p.dim {
			return nil, fmt.Errorf("projection: row %d has %d columns, projector expects %d", i, len(row), p.dim)
		}
	}

	centered := mat.NewDense(n, p.dim, nil)
	for i, row := range x {
		for j, v := range row {
			centered.Set(i, j, float64(v)-p.mean[j])
		}
	}

	var proj mat.Dense
	proj.Mul(centered, p.w)

	out := make([][]float64, n)
	for i := 0; i < n; i++ {
		row := make([]float64, p.out)
		copy(row, proj.RawRowView(i))
		out[i] = row
	}
	return out, nil
}
