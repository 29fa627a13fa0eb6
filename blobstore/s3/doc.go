// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	cfg, err := config.LoadDefaultConfig(ctx)
//	if err != nil { ... }
//
//	store := s3.NewStore(awss3.NewFromConfig(cfg), "my-bucket", "experiments/")
//
//	ckpt, err := checkpoint.Load(ctx, store, "sift_code_32_map_0.2841.sph")
//
// # Features
//
//   - Range reads for efficient partial fetches
//   - Multipart uploads with CRC32C integrity validation
//   - Automatic pagination for listing
//   - Configurable prefix for separating experiment namespaces
//
// For S3 Express One Zone directory buckets, use ExpressStore, which also
// offers conditional writes (PutIfNotExists).
package s3
