package checkpoint

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	// MagicNumber identifies checkpoint artifacts (ASCII: "SPH1").
	MagicNumber = 0x53504831
	// Version is the current artifact format version.
	Version = 0x00010000

	// headerSize is the fixed byte length of the artifact header.
	headerSize = 32
)

var (
	// ErrInvalidMagic is returned when a blob does not start with the
	// checkpoint magic number.
	ErrInvalidMagic = errors.New("checkpoint: invalid magic number")
	// ErrInvalidVersion is returned for artifacts written by an
	// unsupported format version.
	ErrInvalidVersion = errors.New("checkpoint: unsupported version")
	// ErrTruncated is returned when a blob is shorter than its header
	// claims.
	ErrTruncated = errors.New("checkpoint: truncated artifact")
)

// ChecksumError is returned when the payload CRC32 does not match the header.
type ChecksumError struct {
	Expected uint32
	Actual   uint32
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("checkpoint: checksum mismatch: expected 0x%08x, got 0x%08x", e.Expected, e.Actual)
}

// fileHeader is the fixed-size header at the start of every artifact.
type fileHeader struct {
	Magic           uint32
	Version         uint32
	Compression     CompressionType
	Padding         [3]byte
	UncompressedLen uint64
	PayloadLen      uint64
	Checksum        uint32 // CRC32 (IEEE) of the stored payload bytes
}

func (h *fileHeader) marshal() []byte {
	buf := make([]byte, headerSize)
	binary.LittleEndian.PutUint32(buf[0:], h.Magic)
	binary.LittleEndian.PutUint32(buf[4:], h.Version)
	buf[8] = byte(h.Compression)
	binary.LittleEndian.PutUint64(buf[12:], h.UncompressedLen)
	binary.LittleEndian.PutUint64(buf[20:], h.PayloadLen)
	binary.LittleEndian.PutUint32(buf[28:], h.Checksum)
	return buf
}

func (h *fileHeader) unmarshal(buf []byte) error {
	if len(buf) < headerSize {
		return ErrTruncated
	}
	h.Magic = binary.LittleEndian.Uint32(buf[0:])
	h.Version = binary.LittleEndian.Uint32(buf[4:])
	h.Compression = CompressionType(buf[8])
	h.UncompressedLen = binary.LittleEndian.Uint64(buf[12:])
	h.PayloadLen = binary.LittleEndian.Uint64(buf[20:])
	h.Checksum = binary.LittleEndian.Uint32(buf[28:])

	if h.Magic != MagicNumber {
		return ErrInvalidMagic
	}
	if h.Version != Version {
		return fmt.Errorf("%w: 0x%08x", ErrInvalidVersion, h.Version)
	}
	return nil
}
