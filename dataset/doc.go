// Package dataset loads the train/query/retrieval splits a sweep runs on.
//
// On-disk datasets use the ANN-benchmarks vector format family: fvecs files
// for the float32 splits and ivecs files for per-row label class lists,
// laid out as
//
//	<root>/<name>/train.fvecs
//	<root>/<name>/query.fvecs
//	<root>/<name>/retrieval.fvecs
//	<root>/<name>/query_labels.ivecs
//	<root>/<name>/retrieval_labels.ivecs
//
// Files are read through the blobstore abstraction, so <root> can be a
// local directory, an S3 bucket or a MinIO bucket.
//
// Synthetic datasets ("synthetic://" names) generate seeded clustered
// Gaussian data with one class per cluster, for smoke tests and CI.
package dataset
