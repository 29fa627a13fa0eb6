package eval

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/spectral/hashcode"
)

// chunkSize queries are scored per task so result merging happens in a
// fixed order independent of the worker count.
const chunkSize = 256

// ctxCheckInterval is how many queries a task scores between
// cancellation checks.
const ctxCheckInterval = 64

// MeanAveragePrecision ranks the retrieval set for every query by
// ascending Hamming distance (ties broken by ascending retrieval index)
// and returns the mean of the per-query average precisions.
//
// topK truncates each ranking; topK <= 0 scores the whole retrieval
// set. Queries without a relevant hit in the truncated ranking
// contribute zero and stay in the mean.
func MeanAveragePrecision(ctx context.Context, queries, retrieval *hashcode.Set, queryLabels, retrievalLabels *LabelSet, topK int) (float64, error) {
	return MeanAveragePrecisionWorkers(ctx, queries, retrieval, queryLabels, retrievalLabels, topK, 0)
}

// MeanAveragePrecisionWorkers is MeanAveragePrecision with an explicit
// worker bound. workers <= 0 means GOMAXPROCS.
func MeanAveragePrecisionWorkers(ctx context.Context, queries, retrieval *hashcode.Set, queryLabels, retrievalLabels *LabelSet, topK, workers int) (float64, error) {
	if err := validate(queries, retrieval, queryLabels, retrievalLabels); err != nil {
		return 0, err
	}
	nQ, nR := queries.Rows(), retrieval.Rows()
	k := topK
	if k <= 0 || k > nR {
		k = nR
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	// Per-query scores land in their own slot; the final sum runs in
	// index order so the result does not depend on scheduling.
	aps := make([]float64, nQ)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for start := 0; start < nQ; start += chunkSize {
		end := start + chunkSize
		if end > nQ {
			end = nQ
		}
		g.Go(func() error {
			buckets := make([][]int32, queries.Bits()+1)
			for i := start; i < end; i++ {
				if (i-start)%ctxCheckInterval == 0 {
					select {
					case <-gctx.Done():
						return gctx.Err()
					default:
					}
				}
				aps[i] = averagePrecision(queries, retrieval, queryLabels, retrievalLabels, i, k, buckets)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	var sum float64
	for _, ap := range aps {
		sum += ap
	}
	return sum / float64(nQ), nil
}

// averagePrecision scores one query. buckets is caller-owned scratch
// with Bits()+1 rows; distances are bounded by the code length, so the
// ranking is a counting sort: appending ascending retrieval indices
// into distance buckets and walking them in order yields the
// deterministic ranking.
func averagePrecision(queries, retrieval *hashcode.Set, queryLabels, retrievalLabels *LabelSet, i, k int, buckets [][]int32) float64 {
	for d := range buckets {
		buckets[d] = buckets[d][:0]
	}
	q := queries.Row(i)
	for j := 0; j < retrieval.Rows(); j++ {
		d := hashcode.Hamming(q, retrieval.Row(j))
		buckets[d] = append(buckets[d], int32(j))
	}

	rank, hits := 0, 0
	var sum float64
ranked:
	for d := range buckets {
		for _, j := range buckets[d] {
			if rank == k {
				break ranked
			}
			rank++
			if queryLabels.Relevant(i, retrievalLabels, int(j)) {
				hits++
				sum += float64(hits) / float64(rank)
			}
		}
	}
	if hits == 0 {
		return 0
	}
	return sum / float64(hits)
}

// PRCurve returns mean precision and recall over the queries at every
// Hamming threshold d in 0..L: precision counts relevant rows among
// those at distance <= d (0 when nothing is retrieved), recall counts
// them against the query's total relevant rows. Queries without any
// relevant row contribute zero curves and stay in the means.
func PRCurve(ctx context.Context, queries, retrieval *hashcode.Set, queryLabels, retrievalLabels *LabelSet) (precision, recall []float64, err error) {
	return PRCurveWorkers(ctx, queries, retrieval, queryLabels, retrievalLabels, 0)
}

// PRCurveWorkers is PRCurve with an explicit worker bound. workers <= 0
// means GOMAXPROCS.
func PRCurveWorkers(ctx context.Context, queries, retrieval *hashcode.Set, queryLabels, retrievalLabels *LabelSet, workers int) (precision, recall []float64, err error) {
	if err := validate(queries, retrieval, queryLabels, retrievalLabels); err != nil {
		return nil, nil, err
	}
	nQ := queries.Rows()
	bits := queries.Bits()
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	nChunks := (nQ + chunkSize - 1) / chunkSize
	partialP := make([][]float64, nChunks)
	partialR := make([][]float64, nChunks)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for c := 0; c < nChunks; c++ {
		start := c * chunkSize
		end := start + chunkSize
		if end > nQ {
			end = nQ
		}
		g.Go(func() error {
			p := make([]float64, bits+1)
			r := make([]float64, bits+1)
			cntAll := make([]int, bits+1)
			cntRel := make([]int, bits+1)

			for i := start; i < end; i++ {
				if (i-start)%ctxCheckInterval == 0 {
					select {
					case <-gctx.Done():
						return gctx.Err()
					default:
					}
				}

				for d := range cntAll {
					cntAll[d] = 0
					cntRel[d] = 0
				}
				q := queries.Row(i)
				for j := 0; j < retrieval.Rows(); j++ {
					d := hashcode.Hamming(q, retrieval.Row(j))
					cntAll[d]++
					if queryLabels.Relevant(i, retrievalLabels, j) {
						cntRel[d]++
					}
				}

				totalRel := 0
				for _, n := range cntRel {
					totalRel += n
				}
				if totalRel == 0 {
					continue
				}

				all, rel := 0, 0
				for d := 0; d <= bits; d++ {
					all += cntAll[d]
					rel += cntRel[d]
					if all > 0 {
						p[d] += float64(rel) / float64(all)
					}
					r[d] += float64(rel) / float64(totalRel)
				}
			}

			partialP[c] = p
			partialR[c] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	precision = make([]float64, bits+1)
	recall = make([]float64, bits+1)
	for c := 0; c < nChunks; c++ {
		for d := 0; d <= bits; d++ {
			precision[d] += partialP[c][d]
			recall[d] += partialR[c][d]
		}
	}
	for d := 0; d <= bits; d++ {
		precision[d] /= float64(nQ)
		recall[d] /= float64(nQ)
	}
	return precision, recall, nil
}

func validate(queries, retrieval *hashcode.Set, queryLabels, retrievalLabels *LabelSet) error {
	if queries == nil || retrieval == nil {
		return fmt.Errorf("eval: nil code set")
	}
	if queries.Rows() == 0 {
		return fmt.Errorf("eval: no queries")
	}
	if retrieval.Rows() == 0 {
		return fmt.Errorf("eval: empty retrieval set")
	}
	if queries.Bits() != retrieval.Bits() {
		return fmt.Errorf("eval: code length mismatch, queries %d bits vs retrieval %d bits", queries.Bits(), retrieval.Bits())
	}
	if err := queryLabels.validate(queries.Rows(), "query"); err != nil {
		return err
	}
	return retrievalLabels.validate(retrieval.Rows(), "retrieval")
}
