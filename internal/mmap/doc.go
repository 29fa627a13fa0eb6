// Package mmap provides memory-mapped file access for zero-copy I/O.
//
// # Overview
//
// Memory mapping allows direct access to file contents without copying data
// through kernel buffers. Dataset vector files and saved checkpoints can reach
// hundreds of megabytes, and mapping them lets readers stream rows straight
// from the page cache.
//
// # Usage
//
//	m, err := mmap.Open("retrieval.fvecs")
//	if err != nil { ... }
//	defer m.Close()
//
//	// Zero-copy access to file contents
//	data := m.Bytes()
//
//	// Provide kernel hints for access patterns
//	m.Advise(mmap.AccessSequential)
//
// # Platform Support
//
// The package provides a unified API across platforms:
//
//   - Unix (Linux, macOS, BSD): Uses mmap(2) with madvise(2) for access hints
//   - Windows: Uses CreateFileMapping/MapViewOfFile (madvise is a no-op)
//
// # Thread Safety
//
// Mapping is safe for concurrent read access. The Close() method is idempotent
// and protected by atomic operations. However, callers must ensure no
// goroutines access Bytes() after Close() returns.
package mmap
