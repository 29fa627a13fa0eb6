package spectral

import (
	"context"
	"time"

	"github.com/hupe1980/spectral/dataset"
	"github.com/hupe1980/spectral/eval"
	"github.com/hupe1980/spectral/hashcode"
	"github.com/hupe1980/spectral/sh"
)

// Result holds everything Train produces for one code length.
type Result struct {
	Dataset    string
	CodeLength int
	TopK       int
	Seed       int64

	MAP       float64
	Precision []float64
	Recall    []float64

	QueryCodes     *hashcode.Set
	RetrievalCodes *hashcode.Set

	// Codec is the fitted codec, reusable for encoding further batches.
	Codec *sh.Codec

	// Stage timings.
	FitDuration      time.Duration
	EncodeDuration   time.Duration
	EvaluateDuration time.Duration
}

// Train fits a codec of the given code length on the dataset's training
// split, encodes the query and retrieval splits, and evaluates mAP and
// the precision-recall curves.
func Train(ctx context.Context, ds *dataset.Dataset, codeLength int, opts ...Option) (*Result, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return train(ctx, ds, codeLength, o)
}

func train(ctx context.Context, ds *dataset.Dataset, codeLength int, o options) (*Result, error) {
	if ds == nil {
		return nil, ErrNilDataset
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}

	if o.controller != nil {
		if err := o.controller.AcquireBackground(ctx); err != nil {
			return nil, err
		}
		defer o.controller.ReleaseBackground()
	}

	logger := o.logger.WithDataset(ds.Name).WithCodeLength(codeLength)
	stats := ds.Stats()

	start := time.Now()
	codec, err := sh.Fit(ds.Train, codeLength, o.epsilon)
	fitDur := time.Since(start)
	logger.LogFit(ctx, codeLength, stats.TrainRows, stats.Dim, fitDur, err)
	o.metrics.RecordFit(codeLength, stats.TrainRows, fitDur, err)
	if err != nil {
		return nil, err
	}

	start = time.Now()
	queryCodes, err := encodeSplit(ctx, logger, o, codec, "query", ds.Query)
	if err != nil {
		return nil, err
	}
	retrievalCodes, err := encodeSplit(ctx, logger, o, codec, "retrieval", ds.Retrieval)
	if err != nil {
		return nil, err
	}
	encodeDur := time.Since(start)

	start = time.Now()
	mAP, precision, recall, err := evaluate(ctx, o, queryCodes, retrievalCodes, ds)
	evalDur := time.Since(start)
	logger.LogEvaluate(ctx, stats.QueryRows, mAP, evalDur, err)
	o.metrics.RecordEvaluate(stats.QueryRows, evalDur, err)
	if err != nil {
		return nil, err
	}

	return &Result{
		Dataset:          ds.Name,
		CodeLength:       codeLength,
		TopK:             o.topK,
		Seed:             o.seed,
		MAP:              mAP,
		Precision:        precision,
		Recall:           recall,
		QueryCodes:       queryCodes,
		RetrievalCodes:   retrievalCodes,
		Codec:            codec,
		FitDuration:      fitDur,
		EncodeDuration:   encodeDur,
		EvaluateDuration: evalDur,
	}, nil
}

func encodeSplit(ctx context.Context, logger *Logger, o options, codec *sh.Codec, split string, rows [][]float32) (*hashcode.Set, error) {
	start := time.Now()
	codes, err := codec.EncodeWorkers(ctx, rows, o.workers)
	dur := time.Since(start)
	logger.LogEncode(ctx, split, len(rows), dur, err)
	o.metrics.RecordEncode(len(rows), dur, err)
	return codes, err
}

func evaluate(ctx context.Context, o options, queryCodes, retrievalCodes *hashcode.Set, ds *dataset.Dataset) (mAP float64, precision, recall []float64, err error) {
	mAP, err = eval.MeanAveragePrecisionWorkers(ctx, queryCodes, retrievalCodes, ds.QueryLabels, ds.RetrievalLabels, o.topK, o.workers)
	if err != nil {
		return 0, nil, nil, err
	}
	precision, recall, err = eval.PRCurveWorkers(ctx, queryCodes, retrievalCodes, ds.QueryLabels, ds.RetrievalLabels, o.workers)
	if err != nil {
		return 0, nil, nil, err
	}
	return mAP, precision, recall, nil
}
