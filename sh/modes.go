package sh

import (
	"fmt"
	"math"
	"sort"
)

// ModeDeficitError reports that the bounds admit fewer candidate
// eigenfunctions than the requested number of bits.
type ModeDeficitError struct {
	Have int
	Want int
}

func (e *ModeDeficitError) Error() string {
	return fmt.Sprintf("sh: only %d candidate modes for %d bits", e.Have, e.Want)
}

// axisMode is one selected eigenfunction: oscillation mode along a
// single projected dimension.
type axisMode struct {
	dim  int
	mode int
	eig  float64 // analytic eigenvalue, always negative
}

// ModeTable assigns one sinusoidal eigenfunction to each output bit.
// It is a pure function of (bits, bounds): no data access, no
// randomness. Each row has exactly one active axis; the constant
// all-zero mode is never enumerated.
type ModeTable struct {
	dims int
	rows []axisMode
}

// BuildModeTable enumerates the candidate eigenfunctions admitted by
// the bounds and keeps the bits lowest-frequency ones.
//
// Per dimension j the candidate modes are 1..maxMode[j]-1 with
// maxMode[j] = ceil((bits+1) * Range[j] / max(Range)). The analytic
// eigenvalue of mode m on dimension j is -(m*pi/Range[j])^2; candidates
// are ranked by ascending magnitude, ties broken by (dimension, mode)
// so the table is deterministic.
func BuildModeTable(bits int, b *Bounds) (*ModeTable, error) {
	if bits < 1 {
		return nil, fmt.Errorf("sh: bits must be >= 1, got %d", bits)
	}
	if err := b.validate(); err != nil {
		return nil, err
	}

	maxRange := b.Range[0]
	for _, r := range b.Range[1:] {
		if r > maxRange {
			maxRange = r
		}
	}

	var cands []axisMode
	for j, r := range b.Range {
		maxMode := int(math.Ceil(float64(bits+1) * r / maxRange))
		for m := 1; m < maxMode; m++ {
			w := float64(m) * math.Pi / r
			cands = append(cands, axisMode{dim: j, mode: m, eig: -(w * w)})
		}
	}
	if len(cands) < bits {
		return nil, &ModeDeficitError{Have: len(cands), Want: bits}
	}

	sort.Slice(cands, func(i, j int) bool {
		a, c := cands[i], cands[j]
		if a.eig != c.eig {
			return a.eig > c.eig // larger eigenvalue = lower frequency first
		}
		if a.dim != c.dim {
			return a.dim < c.dim
		}
		return a.mode < c.mode
	})

	rows := make([]axisMode, bits)
	copy(rows, cands[:bits])
	return &ModeTable{dims: b.Dims(), rows: rows}, nil
}

// Bits returns the number of output bits (table rows).
func (t *ModeTable) Bits() int { return len(t.rows) }

// Dims returns the projected dimensionality the table was built for.
func (t *ModeTable) Dims() int { return t.dims }

// Axis returns the active dimension and oscillation mode of bit k.
func (t *ModeTable) Axis(k int) (dim, mode int) {
	return t.rows[k].dim, t.rows[k].mode
}

// Eigenvalue returns the analytic eigenvalue of bit k.
func (t *ModeTable) Eigenvalue(k int) float64 { return t.rows[k].eig }

// Matrix returns the dense bits x dims mode matrix as a copy.
func (t *ModeTable) Matrix() [][]int {
	out := make([][]int, len(t.rows))
	for k, am := range t.rows {
		row := make([]int, t.dims)
		row[am.dim] = am.mode
		out[k] = row
	}
	return out
}
