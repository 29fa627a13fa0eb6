package spectral

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/spectral/dataset"
	"github.com/hupe1980/spectral/projection"
)

func testDataset(t *testing.T, spread float64) *dataset.Dataset {
	t.Helper()

	ds, err := dataset.Synthesize(dataset.SyntheticConfig{
		Dim:       16,
		Classes:   4,
		Train:     400,
		Query:     40,
		Retrieval: 200,
		Spread:    spread,
	}, 42)
	require.NoError(t, err)
	return ds
}

func TestTrain(t *testing.T) {
	ctx := context.Background()
	ds := testDataset(t, 0.3)

	result, err := Train(ctx, ds, 16)
	require.NoError(t, err)

	assert.Equal(t, "synthetic", result.Dataset)
	assert.Equal(t, 16, result.CodeLength)
	assert.Equal(t, 16, result.Codec.Bits())
	assert.Equal(t, 40, result.QueryCodes.Rows())
	assert.Equal(t, 200, result.RetrievalCodes.Rows())

	assert.Greater(t, result.MAP, 0.0)
	assert.LessOrEqual(t, result.MAP, 1.0)

	// One precision and recall value per Hamming threshold 0..L.
	require.Len(t, result.Precision, 17)
	require.Len(t, result.Recall, 17)

	// Recall over increasing thresholds never drops, and the full
	// threshold retrieves everything relevant.
	for d := 1; d < len(result.Recall); d++ {
		assert.GreaterOrEqual(t, result.Recall[d], result.Recall[d-1])
	}
	assert.InDelta(t, 1.0, result.Recall[16], 1e-12)
}

func TestTrain_SeparatedClusters(t *testing.T) {
	ctx := context.Background()

	// Tight, well-separated clusters are nearly perfectly recoverable.
	ds := testDataset(t, 0.05)

	result, err := Train(ctx, ds, 16)
	require.NoError(t, err)
	assert.Greater(t, result.MAP, 0.8)
}

func TestTrain_Deterministic(t *testing.T) {
	ctx := context.Background()
	ds := testDataset(t, 0.3)

	a, err := Train(ctx, ds, 16)
	require.NoError(t, err)
	b, err := Train(ctx, ds, 16)
	require.NoError(t, err)

	assert.Equal(t, a.MAP, b.MAP)
	assert.Equal(t, a.QueryCodes.Data(), b.QueryCodes.Data())
	assert.Equal(t, a.RetrievalCodes.Data(), b.RetrievalCodes.Data())
}

func TestTrain_NilDataset(t *testing.T) {
	_, err := Train(context.Background(), nil, 16)
	require.ErrorIs(t, err, ErrNilDataset)
}

func TestTrain_InvalidCodeLength(t *testing.T) {
	ds := testDataset(t, 0.3)

	// More bits than input dimensions cannot be projected.
	_, err := Train(context.Background(), ds, 64)
	require.Error(t, err)

	var dimErr *projection.DimensionError
	assert.ErrorAs(t, err, &dimErr)
}

func TestTrain_Metrics(t *testing.T) {
	ctx := context.Background()
	ds := testDataset(t, 0.3)
	metrics := &BasicMetricsCollector{}

	_, err := Train(ctx, ds, 16, WithMetrics(metrics))
	require.NoError(t, err)

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.FitCount)
	assert.Equal(t, int64(0), stats.FitErrors)
	assert.Equal(t, int64(400), stats.FitRows)
	assert.Equal(t, int64(2), stats.EncodeCount)
	assert.Equal(t, int64(240), stats.EncodeRows)
	assert.Equal(t, int64(1), stats.EvaluateCount)
	assert.Equal(t, int64(40), stats.EvaluateQueries)
	assert.Equal(t, int64(0), stats.CheckpointCount)
}

func TestTrain_ContextCanceled(t *testing.T) {
	ds := testDataset(t, 0.3)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Train(ctx, ds, 16)
	require.ErrorIs(t, err, context.Canceled)
}

func TestTrain_TopK(t *testing.T) {
	ctx := context.Background()
	ds := testDataset(t, 0.3)

	full, err := Train(ctx, ds, 16, WithTopK(-1))
	require.NoError(t, err)
	truncated, err := Train(ctx, ds, 16, WithTopK(10))
	require.NoError(t, err)

	assert.Equal(t, -1, full.TopK)
	assert.Equal(t, 10, truncated.TopK)
	assert.Greater(t, truncated.MAP, 0.0)
	assert.LessOrEqual(t, truncated.MAP, 1.0)
}
