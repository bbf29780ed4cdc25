package kmeans

import (
	"math/rand/v2"

	"github.com/hupe1980/kmeans/resource"
)

// DefaultSeed is the seed of the pseudo-random source used for centroid
// seeding when none is configured.
const DefaultSeed uint64 = 42

// IndexSource draws uniformly distributed point indices in [0, n).
//
// *rand.Rand from math/rand/v2 satisfies this interface. Implementations
// need not be safe for concurrent use: seeding is serial.
type IndexSource interface {
	IntN(n int) int
}

type options struct {
	workers          int
	seed             uint64
	source           IndexSource
	logger           *Logger
	metricsCollector MetricsCollector
	resources        *resource.Controller
}

func defaultOptions() options {
	return options{
		seed:             DefaultSeed,
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
	}
}

// indexSource returns the configured source or a fresh PCG source seeded
// with the configured seed, so that every Run draws the same sequence.
func (o *options) indexSource() IndexSource {
	if o.source != nil {
		return o.source
	}
	return rand.New(rand.NewPCG(o.seed, o.seed))
}

// Option configures an Engine.
type Option func(*options)

// WithWorkers sets the number of workers each parallel phase is split into.
//
// If n is 0, runtime.GOMAXPROCS(0) is used. With n = 1 every phase runs on
// the calling goroutine with a single accumulator (the serial algorithm).
// The effective count never exceeds the number of points.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithSeed sets the seed of the pseudo-random source used to pick the
// initial centroids. Runs with equal seeds and inputs are identical.
func WithSeed(seed uint64) Option {
	return func(o *options) {
		o.seed = seed
	}
}

// WithIndexSource replaces the seeded pseudo-random source with src.
// The source is shared by every Run of the engine and is not reset.
func WithIndexSource(src IndexSource) Option {
	return func(o *options) {
		o.source = src
	}
}

// WithLogger sets the logger. If nil is passed, logging is disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithMetricsCollector sets the metrics collector.
// If nil is passed, a NoopMetricsCollector is used.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithResourceController shares a resource controller with the engine.
// Worker spans acquire a worker slot from it and each run reserves its
// accumulator memory against it.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.resources = rc
	}
}
