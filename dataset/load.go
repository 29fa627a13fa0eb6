package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/kshard/fvecs"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/spectral/blobstore"
	"github.com/hupe1980/spectral/eval"
	"github.com/hupe1980/spectral/resource"
)

// LoadOptions configure dataset loading.
type LoadOptions struct {
	// Controller, when set, bounds the in-flight decode memory and
	// rate-limits reads.
	Controller *resource.Controller
}

// Open loads a dataset by name: "synthetic://" names are generated with
// the given seed, everything else is read from the store.
func Open(ctx context.Context, store blobstore.BlobStore, name string, seed int64, opts LoadOptions) (*Dataset, error) {
	if IsSynthetic(name) {
		cfg, err := ParseSynthetic(name)
		if err != nil {
			return nil, err
		}
		return Synthesize(cfg, seed)
	}
	return Load(ctx, store, name, opts)
}

// Load reads all five split files of a named dataset from the store,
// in parallel, and validates the result.
func Load(ctx context.Context, store blobstore.BlobStore, name string, opts LoadOptions) (*Dataset, error) {
	d := &Dataset{Name: name}
	var queryLabels, retrievalLabels [][]uint32

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.Train, err = loadVectors(gctx, store, path.Join(name, "train.fvecs"), opts)
		return err
	})
	g.Go(func() (err error) {
		d.Query, err = loadVectors(gctx, store, path.Join(name, "query.fvecs"), opts)
		return err
	})
	g.Go(func() (err error) {
		d.Retrieval, err = loadVectors(gctx, store, path.Join(name, "retrieval.fvecs"), opts)
		return err
	})
	g.Go(func() (err error) {
		queryLabels, err = loadLabelLists(gctx, store, path.Join(name, "query_labels.ivecs"), opts)
		return err
	})
	g.Go(func() (err error) {
		retrievalLabels, err = loadLabelLists(gctx, store, path.Join(name, "retrieval_labels.ivecs"), opts)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	d.QueryLabels = eval.FromLists(queryLabels)
	d.RetrievalLabels = eval.FromLists(retrievalLabels)

	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// loadVectors decodes one fvecs file.
func loadVectors(ctx context.Context, store blobstore.BlobStore, name string, opts LoadOptions) ([][]float32, error) {
	var out [][]float32
	err := withBlobReader(ctx, store, name, opts, func(r io.Reader) error {
		dec := fvecs.NewDecoder[float32](r)
		for {
			row, err := dec.Read()
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("dataset: decode %s row %d: %w", name, len(out), err)
			}
			out = append(out, row)
		}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// loadLabelLists decodes one ivecs file into per-row class index lists.
func loadLabelLists(ctx context.Context, store blobstore.BlobStore, name string, opts LoadOptions) ([][]uint32, error) {
	var out [][]uint32
	err := withBlobReader(ctx, store, name, opts, func(r io.Reader) error {
		dec := fvecs.NewDecoder[uint32](r)
		for {
			row, err := dec.Read()
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("dataset: decode %s row %d: %w", name, len(out), err)
			}
			out = append(out, row)
		}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// withBlobReader opens a blob, reserves decode memory sized by the blob
// (released when decoding finishes) and hands a reader to fn.
func withBlobReader(ctx context.Context, store blobstore.BlobStore, name string, opts LoadOptions, fn func(io.Reader) error) error {
	blob, err := store.Open(ctx, name)
	if err != nil {
		return fmt.Errorf("dataset: open %s: %w", name, err)
	}
	defer blob.Close()

	size := blob.Size()
	if opts.Controller != nil {
		if err := opts.Controller.AcquireMemory(ctx, size); err != nil {
			return err
		}
		defer opts.Controller.ReleaseMemory(size)
	}

	rc, err := blob.ReadRange(0, size)
	if err != nil {
		return fmt.Errorf("dataset: read %s: %w", name, err)
	}
	defer rc.Close()

	var r io.Reader = rc
	if opts.Controller != nil {
		r = resource.NewRateLimitedReader(ctx, rc, opts.Controller)
	}
	return fn(r)
}
