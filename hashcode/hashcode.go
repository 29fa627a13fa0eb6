// Package hashcode provides packed binary code sets and Hamming distance.
package hashcode

import (
	"fmt"
	"math/bits"
)

// Set holds a matrix of N binary codes with a fixed number of bits per code.
// Codes are packed row-major into uint64 words, bit k of a row at word k/64,
// bit position k%64. Unused high bits of the trailing word stay zero, so
// Hamming distances over raw words need no masking.
type Set struct {
	rows  int
	nbits int
	words int // uint64 words per row
	data  []uint64
}

// NewSet allocates a zeroed code set with the given shape.
func NewSet(rows, nbits int) (*Set, error) {
	if rows < 0 {
		return nil, fmt.Errorf("hashcode: negative row count %d", rows)
	}
	if nbits < 1 {
		return nil, fmt.Errorf("hashcode: code length must be >= 1, got %d", nbits)
	}
	words := (nbits + 63) / 64
	return &Set{
		rows:  rows,
		nbits: nbits,
		words: words,
		data:  make([]uint64, rows*words),
	}, nil
}

// NewSetFromData wraps an existing packed word slice, e.g. one read back
// from a checkpoint. The slice is used directly, not copied.
func NewSetFromData(rows, nbits int, data []uint64) (*Set, error) {
	if nbits < 1 {
		return nil, fmt.Errorf("hashcode: code length must be >= 1, got %d", nbits)
	}
	words := (nbits + 63) / 64
	if len(data) != rows*words {
		return nil, fmt.Errorf("hashcode: data length %d does not match %d rows x %d words", len(data), rows, words)
	}
	return &Set{rows: rows, nbits: nbits, words: words, data: data}, nil
}

// Rows returns the number of codes in the set.
func (s *Set) Rows() int { return s.rows }

// Bits returns the number of bits per code.
func (s *Set) Bits() int { return s.nbits }

// WordsPerRow returns the number of uint64 words backing each code.
func (s *Set) WordsPerRow() int { return s.words }

// Data returns the backing word slice (row-major). Shared, not a copy.
func (s *Set) Data() []uint64 { return s.data }

// Row returns the packed words of code i as a view into the set.
func (s *Set) Row(i int) []uint64 {
	return s.data[i*s.words : (i+1)*s.words]
}

// SetBit sets bit k of code i.
func (s *Set) SetBit(i, k int) {
	s.data[i*s.words+k/64] |= 1 << (k % 64)
}

// Bit reports whether bit k of code i is set.
func (s *Set) Bit(i, k int) bool {
	return s.data[i*s.words+k/64]&(1<<(k%64)) != 0
}

// Signs unpacks code i into +1/-1 values, one per bit. A set bit maps to +1.
func (s *Set) Signs(i int) []int8 {
	out := make([]int8, s.nbits)
	row := s.Row(i)
	for k := 0; k < s.nbits; k++ {
		if row[k/64]&(1<<(k%64)) != 0 {
			out[k] = 1
		} else {
			out[k] = -1
		}
	}
	return out
}

// Hamming returns the number of differing bits between two packed codes.
// Uses POPCNT via bits.OnesCount64. Both slices must have equal length.
func Hamming(a, b []uint64) int {
	var d int
	for i := range a {
		d += bits.OnesCount64(a[i] ^ b[i])
	}
	return d
}

// Distance returns the Hamming distance between code i of s and code j of t.
func (s *Set) Distance(i int, t *Set, j int) int {
	return Hamming(s.Row(i), t.Row(j))
}
