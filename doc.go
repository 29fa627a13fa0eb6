// Package spectral learns compact binary hash codes for dense vectors via
// spectral hashing and measures their retrieval quality.
//
// Training fits three artifacts from a training matrix: a PCA projection
// to the requested code length, padded bounds of the projected training
// data, and a table of sinusoidal eigenfunctions picked by smallest
// analytic eigenvalue. Encoding pushes any vector batch through the
// projection and the eigenfunctions and takes signs, yielding packed
// binary codes whose Hamming distance approximates similarity in the
// original space.
//
// # Quick Start
//
// Train one code length on a dataset and evaluate it:
//
//	ds, err := dataset.Open(ctx, store, "cifar10", seed, dataset.LoadOptions{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := spectral.Train(ctx, ds, 32, spectral.WithTopK(-1))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("mAP@all = %.4f\n", result.MAP)
//
// # Sweeps
//
// An Experiment runs a list of code lengths over one dataset, writing a
// checkpoint artifact per length and recording each run in a registry:
//
//	exp := spectral.NewExperiment(ds, []int{8, 16, 32, 64},
//	    spectral.WithCheckpointStore(checkpoints),
//	    spectral.WithRegistry(reg),
//	)
//	results, err := exp.Run(ctx)
//
// The codec itself is deterministic and stateless after training: fitted
// artifacts are read-only and encoding is safe to run concurrently.
package spectral
