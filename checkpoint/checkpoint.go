package checkpoint

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"math"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/spectral/blobstore"
	"github.com/hupe1980/spectral/eval"
	"github.com/hupe1980/spectral/hashcode"
	"github.com/hupe1980/spectral/resource"
)

// Checkpoint is the persisted result of one (dataset, code length) step.
type Checkpoint struct {
	Dataset    string
	CodeLength int
	TopK       int
	Seed       int64
	MAP        float64

	Precision []float64
	Recall    []float64

	QueryCodes     *hashcode.Set
	RetrievalCodes *hashcode.Set

	QueryLabels     *eval.LabelSet
	RetrievalLabels *eval.LabelSet
}

// Name returns the artifact name, encoding dataset, code length and mAP:
// <dataset>_code_<L>_map_<mAP:.4f>.sph
func (cp *Checkpoint) Name() string {
	return fmt.Sprintf("%s_code_%d_map_%.4f.sph", cp.Dataset, cp.CodeLength, cp.MAP)
}

// Options control how artifacts are written and read.
type Options struct {
	// Compression selects the payload compression. Defaults to ZSTD.
	Compression CompressionType
	// Controller, when set, rate-limits artifact IO.
	Controller *resource.Controller
}

// DefaultOptions returns the standard artifact options.
func DefaultOptions() Options {
	return Options{Compression: CompressionZSTD}
}

func (cp *Checkpoint) validate() error {
	if cp.Dataset == "" {
		return fmt.Errorf("checkpoint: empty dataset name")
	}
	if cp.QueryCodes == nil || cp.RetrievalCodes == nil {
		return fmt.Errorf("checkpoint: nil code set")
	}
	if cp.QueryLabels == nil || cp.RetrievalLabels == nil {
		return fmt.Errorf("checkpoint: nil label set")
	}
	if cp.QueryCodes.Bits() != cp.CodeLength || cp.RetrievalCodes.Bits() != cp.CodeLength {
		return fmt.Errorf("checkpoint: code sets have %d/%d bits, checkpoint says %d",
			cp.QueryCodes.Bits(), cp.RetrievalCodes.Bits(), cp.CodeLength)
	}
	return nil
}

// Save marshals, compresses and writes the checkpoint to the store under
// cp.Name(). The write is atomic where the store supports it (local
// stores stage to a temp file, object stores publish on Close). Returns
// the artifact name.
func Save(ctx context.Context, store blobstore.BlobStore, cp *Checkpoint, opts Options) (string, error) {
	if err := cp.validate(); err != nil {
		return "", err
	}

	payload, err := marshalPayload(cp)
	if err != nil {
		return "", err
	}

	stored, compression, err := compress(payload, opts.Compression)
	if err != nil {
		return "", err
	}

	hdr := fileHeader{
		Magic:           MagicNumber,
		Version:         Version,
		Compression:     compression,
		UncompressedLen: uint64(len(payload)),
		PayloadLen:      uint64(len(stored)),
		Checksum:        crc32.ChecksumIEEE(stored),
	}

	name := cp.Name()
	wb, err := store.Create(ctx, name)
	if err != nil {
		return "", fmt.Errorf("checkpoint: create %s: %w", name, err)
	}

	var w io.Writer = wb
	if opts.Controller != nil {
		w = resource.NewRateLimitedWriter(ctx, wb, opts.Controller)
	}

	if _, err := w.Write(hdr.marshal()); err != nil {
		_ = wb.Close()
		return "", fmt.Errorf("checkpoint: write header: %w", err)
	}
	if _, err := w.Write(stored); err != nil {
		_ = wb.Close()
		return "", fmt.Errorf("checkpoint: write payload: %w", err)
	}
	if err := wb.Close(); err != nil {
		return "", fmt.Errorf("checkpoint: commit %s: %w", name, err)
	}
	return name, nil
}

// Load reads an artifact back and verifies magic, version and checksum.
func Load(ctx context.Context, store blobstore.BlobStore, name string, opts Options) (*Checkpoint, error) {
	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("checkpoint: open %s: %w", name, err)
	}
	defer blob.Close()

	hdrBuf := make([]byte, headerSize)
	if _, err := io.ReadFull(io.NewSectionReader(blob, 0, headerSize), hdrBuf); err != nil {
		return nil, ErrTruncated
	}
	var hdr fileHeader
	if err := hdr.unmarshal(hdrBuf); err != nil {
		return nil, err
	}

	if blob.Size() < headerSize+int64(hdr.PayloadLen) {
		return nil, ErrTruncated
	}

	rc, err := blob.ReadRange(headerSize, int64(hdr.PayloadLen))
	if err != nil {
		return nil, fmt.Errorf("checkpoint: read payload: %w", err)
	}
	defer rc.Close()

	var r io.Reader = rc
	if opts.Controller != nil {
		r = resource.NewRateLimitedReader(ctx, rc, opts.Controller)
	}

	stored := make([]byte, hdr.PayloadLen)
	if _, err := io.ReadFull(r, stored); err != nil {
		return nil, ErrTruncated
	}

	if sum := crc32.ChecksumIEEE(stored); sum != hdr.Checksum {
		return nil, &ChecksumError{Expected: hdr.Checksum, Actual: sum}
	}

	payload, err := decompress(stored, hdr.Compression, int(hdr.UncompressedLen))
	if err != nil {
		return nil, err
	}

	return unmarshalPayload(payload)
}

// Payload layout, little-endian:
//
//	string   dataset        (u16 length + bytes)
//	u32      code length
//	i32      topK
//	i64      seed
//	f64      mAP
//	f64[]    precision      (u32 count + values)
//	f64[]    recall
//	codes    query          (u32 rows, u32 bits, raw words)
//	codes    retrieval
//	labels   query          (u32 rows, per row u32 length + roaring bytes)
//	labels   retrieval
func marshalPayload(cp *Checkpoint) ([]byte, error) {
	var buf bytes.Buffer

	writeString(&buf, cp.Dataset)
	writeUint32(&buf, uint32(cp.CodeLength))
	writeUint32(&buf, uint32(int32(cp.TopK)))
	writeUint64(&buf, uint64(cp.Seed))
	writeUint64(&buf, math.Float64bits(cp.MAP))

	writeFloat64Slice(&buf, cp.Precision)
	writeFloat64Slice(&buf, cp.Recall)

	if err := writeCodes(&buf, cp.QueryCodes); err != nil {
		return nil, err
	}
	if err := writeCodes(&buf, cp.RetrievalCodes); err != nil {
		return nil, err
	}
	if err := writeLabels(&buf, cp.QueryLabels); err != nil {
		return nil, err
	}
	if err := writeLabels(&buf, cp.RetrievalLabels); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func unmarshalPayload(data []byte) (*Checkpoint, error) {
	r := &payloadReader{data: data}
	cp := &Checkpoint{}

	cp.Dataset = r.readString()
	cp.CodeLength = int(r.readUint32())
	cp.TopK = int(int32(r.readUint32()))
	cp.Seed = int64(r.readUint64())
	cp.MAP = math.Float64frombits(r.readUint64())

	cp.Precision = r.readFloat64Slice()
	cp.Recall = r.readFloat64Slice()

	cp.QueryCodes = r.readCodes()
	cp.RetrievalCodes = r.readCodes()
	cp.QueryLabels = r.readLabels()
	cp.RetrievalLabels = r.readLabels()

	if r.err != nil {
		return nil, fmt.Errorf("checkpoint: decode payload: %w", r.err)
	}
	return cp, nil
}

func writeString(buf *bytes.Buffer, s string) {
	var l [2]byte
	binary.LittleEndian.PutUint16(l[:], uint16(len(s)))
	buf.Write(l[:])
	buf.WriteString(s)
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeUint64(buf *bytes.Buffer, v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	buf.Write(b[:])
}

func writeFloat64Slice(buf *bytes.Buffer, vals []float64) {
	writeUint32(buf, uint32(len(vals)))
	for _, v := range vals {
		writeUint64(buf, math.Float64bits(v))
	}
}

func writeCodes(buf *bytes.Buffer, set *hashcode.Set) error {
	writeUint32(buf, uint32(set.Rows()))
	writeUint32(buf, uint32(set.Bits()))
	return binary.Write(buf, binary.LittleEndian, set.Data())
}

func writeLabels(buf *bytes.Buffer, labels *eval.LabelSet) error {
	writeUint32(buf, uint32(labels.Rows()))
	for i := 0; i < labels.Rows(); i++ {
		data, err := labels.Row(i).MarshalBinary()
		if err != nil {
			return fmt.Errorf("checkpoint: marshal label row %d: %w", i, err)
		}
		writeUint32(buf, uint32(len(data)))
		buf.Write(data)
	}
	return nil
}

// payloadReader decodes the payload sequentially, latching the first error.
type payloadReader struct {
	data []byte
	off  int
	err  error
}

func (r *payloadReader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if r.off+n > len(r.data) {
		r.err = ErrTruncated
		return nil
	}
	out := r.data[r.off : r.off+n]
	r.off += n
	return out
}

func (r *payloadReader) readString() string {
	b := r.take(2)
	if r.err != nil {
		return ""
	}
	n := int(binary.LittleEndian.Uint16(b))
	return string(r.take(n))
}

func (r *payloadReader) readUint32() uint32 {
	b := r.take(4)
	if r.err != nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (r *payloadReader) readUint64() uint64 {
	b := r.take(8)
	if r.err != nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

func (r *payloadReader) readFloat64Slice() []float64 {
	n := int(r.readUint32())
	if r.err != nil {
		return nil
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Float64frombits(r.readUint64())
	}
	return out
}

func (r *payloadReader) readCodes() *hashcode.Set {
	rows := int(r.readUint32())
	bits := int(r.readUint32())
	if r.err != nil {
		return nil
	}
	words := (bits + 63) / 64
	raw := r.take(rows * words * 8)
	if r.err != nil {
		return nil
	}
	data := make([]uint64, rows*words)
	for i := range data {
		data[i] = binary.LittleEndian.Uint64(raw[i*8:])
	}
	set, err := hashcode.NewSetFromData(rows, bits, data)
	if err != nil {
		r.err = err
		return nil
	}
	return set
}

func (r *payloadReader) readLabels() *eval.LabelSet {
	rows := int(r.readUint32())
	if r.err != nil {
		return nil
	}
	bitmaps := make([]*roaring.Bitmap, rows)
	for i := range bitmaps {
		n := int(r.readUint32())
		raw := r.take(n)
		if r.err != nil {
			return nil
		}
		rb := roaring.New()
		if err := rb.UnmarshalBinary(raw); err != nil {
			r.err = fmt.Errorf("label row %d: %w", i, err)
			return nil
		}
		bitmaps[i] = rb
	}
	return eval.FromBitmaps(bitmaps)
}
