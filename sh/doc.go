// Package sh implements spectral hashing: learning compact binary codes
// whose Hamming distances approximate neighborhood structure in the
// input space.
//
// Training fits three artifacts from a training matrix:
//
//  1. a PCA projection onto the leading principal directions (package
//     projection),
//  2. per-dimension bounds of the projected training data, padded by a
//     small epsilon so no value sits exactly on a boundary,
//  3. a table of single-axis sinusoidal eigenfunctions, one per output
//     bit, selected by smallest analytic eigenvalue under a uniform
//     distribution assumption on each bounded interval.
//
// Encoding shifts a projected vector by the lower bounds, evaluates
// each selected eigenfunction and takes the sign as the bit value.
// Codes are packed 64 bits per word (package hashcode) so distance
// computation is XOR + POPCNT.
//
// The usual entry point is Fit followed by Codec.Encode:
//
//	codec, err := sh.Fit(train, 32, 0)
//	if err != nil { ... }
//	codes, err := codec.Encode(ctx, queries)
//
// Lower-level pieces (FitBounds, BuildModeTable, Encode) are exported
// for callers that manage projection themselves.
package sh
