package spectral

import (
	"github.com/hupe1980/spectral/blobstore"
	"github.com/hupe1980/spectral/checkpoint"
	"github.com/hupe1980/spectral/registry"
	"github.com/hupe1980/spectral/resource"
	"github.com/hupe1980/spectral/sh"
)

// options holds the configuration shared by Train and Experiment.
type options struct {
	topK            int
	epsilon         float64
	workers         int
	seed            int64
	logger          *Logger
	metrics         MetricsCollector
	controller      *resource.Controller
	compression     checkpoint.CompressionType
	continueOnError bool
	checkpointStore blobstore.BlobStore
	registry        registry.Registry
}

func defaultOptions() options {
	return options{
		topK:        -1,
		epsilon:     sh.DefaultEpsilon,
		seed:        3367,
		logger:      NoopLogger(),
		metrics:     NoopMetricsCollector{},
		compression: checkpoint.CompressionZSTD,
	}
}

// Option configures training and sweeps.
type Option func(*options)

// WithTopK truncates each query's ranking during evaluation. Values <= 0
// score the full retrieval set. Default is -1.
func WithTopK(k int) Option {
	return func(o *options) { o.topK = k }
}

// WithEpsilon overrides the relative bound padding used when fitting.
// Values <= 0 keep the default.
func WithEpsilon(eps float64) Option {
	return func(o *options) { o.epsilon = eps }
}

// WithWorkers bounds the goroutines used for encoding and evaluation.
// Values <= 0 mean GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithSeed sets the seed recorded in checkpoints and registry rows.
// Training itself is deterministic; the seed identifies the dataset
// draw that produced the splits.
func WithSeed(seed int64) Option {
	return func(o *options) { o.seed = seed }
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics sets the metrics collector. Defaults to no-op.
func WithMetrics(m MetricsCollector) Option {
	return func(o *options) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithResourceController rate-limits checkpoint IO through the given
// controller.
func WithResourceController(c *resource.Controller) Option {
	return func(o *options) { o.controller = c }
}

// WithCompression selects the checkpoint payload compression.
// Defaults to zstd.
func WithCompression(c checkpoint.CompressionType) Option {
	return func(o *options) { o.compression = c }
}

// WithContinueOnError makes a sweep log and skip failed code lengths
// instead of aborting. Failures are still reported in the returned
// error, wrapped per code length.
func WithContinueOnError() Option {
	return func(o *options) { o.continueOnError = true }
}

// WithCheckpointStore makes a sweep persist one artifact plus JSON
// sidecar per code length into the given store. Without it, results
// stay in memory only.
func WithCheckpointStore(store blobstore.BlobStore) Option {
	return func(o *options) { o.checkpointStore = store }
}

// WithRegistry records every written checkpoint as a run row.
// Only effective together with WithCheckpointStore.
func WithRegistry(r registry.Registry) Option {
	return func(o *options) { o.registry = r }
}
