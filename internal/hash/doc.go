// Package hash provides CRC32-Castagnoli checksums for object integrity.
//
// Checkpoint uploads attach a CRC32C checksum per part so S3 verifies the
// payload server-side. Go's crc32 package uses hardware instructions
// (SSE4.2, ARM CRC) when available.
package hash
