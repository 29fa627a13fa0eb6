package spectral

import (
	"context"
	"errors"
	"time"

	"github.com/hupe1980/spectral/checkpoint"
	"github.com/hupe1980/spectral/dataset"
	"github.com/hupe1980/spectral/registry"
)

// Experiment sweeps a list of code lengths over one dataset. Each code
// length yields one Result; with a checkpoint store configured, each
// result is also persisted as an artifact plus JSON sidecar and,
// optionally, recorded in a registry.
type Experiment struct {
	ds          *dataset.Dataset
	codeLengths []int
	opts        options
}

// NewExperiment configures a sweep. Code lengths run in the given order.
func NewExperiment(ds *dataset.Dataset, codeLengths []int, opts ...Option) *Experiment {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Experiment{
		ds:          ds,
		codeLengths: codeLengths,
		opts:        o,
	}
}

// Run executes the sweep sequentially. Without WithContinueOnError the
// first failure aborts and the results so far are returned alongside
// the error. With it, failed code lengths are skipped and the joined
// per-length errors are returned after the sweep finishes.
func (e *Experiment) Run(ctx context.Context) ([]*Result, error) {
	if e.ds == nil {
		return nil, ErrNilDataset
	}
	if len(e.codeLengths) == 0 {
		return nil, ErrNoCodeLengths
	}

	results := make([]*Result, 0, len(e.codeLengths))
	var sweepErrs []error

	for _, bits := range e.codeLengths {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		result, err := e.runOne(ctx, bits)
		if err != nil {
			serr := &SweepError{CodeLength: bits, Err: err}
			if !e.opts.continueOnError {
				return results, serr
			}
			e.opts.logger.WarnContext(ctx, "sweep step failed, continuing",
				"dataset", e.ds.Name,
				"code_length", bits,
				"error", err,
			)
			sweepErrs = append(sweepErrs, serr)
			continue
		}
		results = append(results, result)
	}

	return results, errors.Join(sweepErrs...)
}

func (e *Experiment) runOne(ctx context.Context, bits int) (*Result, error) {
	result, err := train(ctx, e.ds, bits, e.opts)
	if err != nil {
		return nil, err
	}
	if e.opts.checkpointStore == nil {
		return result, nil
	}

	cp := &checkpoint.Checkpoint{
		Dataset:         result.Dataset,
		CodeLength:      result.CodeLength,
		TopK:            result.TopK,
		Seed:            result.Seed,
		MAP:             result.MAP,
		Precision:       result.Precision,
		Recall:          result.Recall,
		QueryCodes:      result.QueryCodes,
		RetrievalCodes:  result.RetrievalCodes,
		QueryLabels:     e.ds.QueryLabels,
		RetrievalLabels: e.ds.RetrievalLabels,
	}

	logger := e.opts.logger.WithDataset(result.Dataset).WithCodeLength(bits)

	start := time.Now()
	name, err := checkpoint.Save(ctx, e.opts.checkpointStore, cp, checkpoint.Options{
		Compression: e.opts.compression,
		Controller:  e.opts.controller,
	})
	dur := time.Since(start)
	logger.LogCheckpoint(ctx, cp.Name(), dur, err)
	e.opts.metrics.RecordCheckpoint(dur, err)
	if err != nil {
		return nil, err
	}
	if _, err := checkpoint.SaveSummary(ctx, e.opts.checkpointStore, cp); err != nil {
		return nil, err
	}

	if e.opts.registry != nil {
		run := registry.Run{
			Dataset:    result.Dataset,
			CodeLength: result.CodeLength,
			MAP:        result.MAP,
			TopK:       result.TopK,
			Seed:       result.Seed,
			Checkpoint: name,
			CreatedAt:  time.Now().UTC(),
		}
		if err := e.opts.registry.Put(ctx, run); err != nil {
			return nil, err
		}
	}

	return result, nil
}
