package prometheus

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/kmeans"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "kmeans"

// Run status label values.
const (
	StatusConverged = "converged"
	StatusExhausted = "exhausted"
	StatusError     = "error"
)

type options struct {
	namespace   string
	constLabels prom.Labels
}

// Option configures a Collector.
type Option func(*options)

// WithNamespace overrides DefaultNamespace.
func WithNamespace(ns string) Option {
	return func(o *options) {
		o.namespace = ns
	}
}

// WithConstLabels attaches labels to every metric, e.g. the dataset name.
func WithConstLabels(labels prom.Labels) Option {
	return func(o *options) {
		o.constLabels = labels
	}
}

// Collector implements kmeans.MetricsCollector on Prometheus metrics.
type Collector struct {
	seedLatency      prom.Histogram
	iterationLatency prom.Histogram
	iterations       prom.Counter
	reassigned       prom.Counter
	runLatency       *prom.HistogramVec
	runs             *prom.CounterVec
	runIterations    prom.Histogram
}

var _ kmeans.MetricsCollector = (*Collector)(nil)

// NewCollector creates the metrics and registers them on reg.
func NewCollector(reg prom.Registerer, optFns ...Option) (*Collector, error) {
	o := options{namespace: DefaultNamespace}
	for _, fn := range optFns {
		fn(&o)
	}

	c := &Collector{
		seedLatency: prom.NewHistogram(prom.HistogramOpts{
			Namespace:   o.namespace,
			Name:        "seed_duration_seconds",
			Help:        "Latency of centroid seeding",
			Buckets:     prom.DefBuckets,
			ConstLabels: o.constLabels,
		}),
		iterationLatency: prom.NewHistogram(prom.HistogramOpts{
			Namespace:   o.namespace,
			Name:        "iteration_duration_seconds",
			Help:        "Latency of one assign/recompute iteration",
			Buckets:     prom.DefBuckets,
			ConstLabels: o.constLabels,
		}),
		iterations: prom.NewCounter(prom.CounterOpts{
			Namespace:   o.namespace,
			Name:        "iterations_total",
			Help:        "Total assign/recompute iterations",
			ConstLabels: o.constLabels,
		}),
		reassigned: prom.NewCounter(prom.CounterOpts{
			Namespace:   o.namespace,
			Name:        "reassigned_points_total",
			Help:        "Total points that changed cluster",
			ConstLabels: o.constLabels,
		}),
		runLatency: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace:   o.namespace,
			Name:        "run_duration_seconds",
			Help:        "Latency of complete clustering runs",
			Buckets:     prom.ExponentialBuckets(0.001, 4, 10),
			ConstLabels: o.constLabels,
		}, []string{"status"}),
		runs: prom.NewCounterVec(prom.CounterOpts{
			Namespace:   o.namespace,
			Name:        "runs_total",
			Help:        "Total clustering runs by outcome",
			ConstLabels: o.constLabels,
		}, []string{"status"}),
		runIterations: prom.NewHistogram(prom.HistogramOpts{
			Namespace:   o.namespace,
			Name:        "run_iterations",
			Help:        "Iterations needed per successful run",
			Buckets:     prom.ExponentialBuckets(1, 2, 12),
			ConstLabels: o.constLabels,
		}),
	}

	for _, m := range []prom.Collector{
		c.seedLatency,
		c.iterationLatency,
		c.iterations,
		c.reassigned,
		c.runLatency,
		c.runs,
		c.runIterations,
	} {
		if err := reg.Register(m); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}

	return c, nil
}

// RecordSeed implements kmeans.MetricsCollector.
func (c *Collector) RecordSeed(d time.Duration) {
	c.seedLatency.Observe(d.Seconds())
}

// RecordIteration implements kmeans.MetricsCollector.
func (c *Collector) RecordIteration(_ int, moved int, d time.Duration) {
	c.iterationLatency.Observe(d.Seconds())
	c.iterations.Inc()
	c.reassigned.Add(float64(moved))
}

// RecordRun implements kmeans.MetricsCollector.
func (c *Collector) RecordRun(iterations int, term kmeans.Termination, d time.Duration, err error) {
	status := runStatus(term, err)
	c.runLatency.WithLabelValues(status).Observe(d.Seconds())
	c.runs.WithLabelValues(status).Inc()
	if err == nil {
		c.runIterations.Observe(float64(iterations))
	}
}

func runStatus(term kmeans.Termination, err error) string {
	switch {
	case err != nil:
		return StatusError
	case term == kmeans.Converged:
		return StatusConverged
	default:
		return StatusExhausted
	}
}

// Push sends everything gathered by g to the Pushgateway at url under job.
func Push(ctx context.Context, url, job string, g prom.Gatherer) error {
	if err := push.New(url, job).Gatherer(g).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics to %s: %w", url, err)
	}
	return nil
}
