package sh

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/spectral/hashcode"
)

// ctxCheckInterval is how many rows a worker encodes between
// cancellation checks.
const ctxCheckInterval = 4096

// Encode encodes projected rows into packed binary codes using up to
// GOMAXPROCS workers. The projected width must match the bounds and
// mode table dimensionality. Values outside the training bounds are
// encoded as-is, not clamped.
func Encode(ctx context.Context, projected [][]float64, bounds *Bounds, modes *ModeTable) (*hashcode.Set, error) {
	return EncodeWorkers(ctx, projected, bounds, modes, 0)
}

// EncodeWorkers is Encode with an explicit worker bound. workers <= 0
// means GOMAXPROCS. Output is independent of the worker count: every
// row is written to its own preallocated slot.
func EncodeWorkers(ctx context.Context, projected [][]float64, bounds *Bounds, modes *ModeTable, workers int) (*hashcode.Set, error) {
	if err := bounds.validate(); err != nil {
		return nil, err
	}
	if modes == nil || modes.Bits() == 0 {
		return nil, fmt.Errorf("sh: nil or empty mode table")
	}
	if modes.Dims() != bounds.Dims() {
		return nil, fmt.Errorf("sh: mode table covers %d dims, bounds cover %d", modes.Dims(), bounds.Dims())
	}
	for i, row := range projected {
		if len(row) != bounds.Dims() {
			return nil, fmt.Errorf("sh: projected row %d has %d dims, want %d", i, len(row), bounds.Dims())
		}
	}

	set, err := hashcode.NewSet(len(projected), modes.Bits())
	if err != nil {
		return nil, err
	}
	n := len(projected)
	if n == 0 {
		return set, nil
	}

	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > n {
		workers = n
	}

	enc := newEncoder(bounds, modes)
	chunk := (n + workers - 1) / workers

	g, gctx := errgroup.WithContext(ctx)
	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}
		g.Go(func() error {
			for i := start; i < end; i++ {
				if (i-start)%ctxCheckInterval == 0 {
					select {
					case <-gctx.Done():
						return gctx.Err()
					default:
					}
				}
				enc.encodeRow(set, i, projected[i])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return set, nil
}

// encoder holds the per-bit evaluation constants: active axis, lower
// bound of that axis and angular frequency mode*pi/range.
type encoder struct {
	dims   []int
	mins   []float64
	omegas []float64
}

func newEncoder(b *Bounds, t *ModeTable) *encoder {
	e := &encoder{
		dims:   make([]int, len(t.rows)),
		mins:   make([]float64, len(t.rows)),
		omegas: make([]float64, len(t.rows)),
	}
	for k, am := range t.rows {
		e.dims[k] = am.dim
		e.mins[k] = b.Min[am.dim]
		e.omegas[k] = float64(am.mode) * math.Pi / b.Range[am.dim]
	}
	return e
}

// encodeRow evaluates each eigenfunction at v and writes the sign bits.
// Table rows have a single active axis, so the product over dimensions
// collapses to one factor (inactive axes contribute sin(pi/2) = 1).
// A value of exactly zero counts as positive, keeping codes strictly
// binary; NaN inputs leave the bit unset.
func (e *encoder) encodeRow(set *hashcode.Set, i int, v []float64) {
	for k := range e.omegas {
		u := v[e.dims[k]] - e.mins[k]
		if y := math.Sin(u*e.omegas[k] + math.Pi/2); y >= 0 {
			set.SetBit(i, k)
		}
	}
}
