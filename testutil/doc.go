// Package testutil provides testing utilities for Spectral.
//
// This package is intended for use in tests and benchmarks only.
// It provides seeded, deterministic generators for dense vectors and
// labeled cluster data, plus writers for fvecs/ivecs loader fixtures.
//
// # Random Vector Generation
//
//	rng := testutil.NewRNG(seed)
//	train := rng.GaussianVectors(256, 32)
//
// # Labeled Cluster Data
//
//	vectors, labels := rng.LabeledClusters(200, 16, 4, 0.05)
//
// # Loader Fixtures
//
//	var buf bytes.Buffer
//	_ = testutil.WriteFvecs(&buf, vectors)
package testutil
