// Package checkpoint persists the result of one sweep step as a single
// binary artifact plus a JSON summary sidecar.
//
// The artifact carries everything needed to re-evaluate or inspect a run
// without retraining: query and retrieval code sets, their label bitmaps,
// the PR curve and the mAP. The payload is optionally compressed (LZ4 or
// ZSTD) and guarded by a CRC32 checksum; corrupt or truncated artifacts
// fail to load with typed errors.
//
// Artifact names encode the run outcome, e.g.
//
//	cifar10_code_32_map_0.6212.sph
//
// so a directory listing doubles as a result table.
package checkpoint
