// Command kmeans clusters the points of an input stream with Lloyd's
// algorithm and prints the final centroids and timings.
//
// Usage:
//
//	kmeans [flags] < points.txt
//	kmeans -input s3://datasets/points.txt.zst -workers 8 -format json
//
// The input starts with "total_points total_values K max_iterations
// has_name" followed by the records; see package dataset.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hupe1980/kmeans"
	"github.com/hupe1980/kmeans/codec"
	"github.com/hupe1980/kmeans/dataset"
	kmprom "github.com/hupe1980/kmeans/metrics/prometheus"
	"github.com/hupe1980/kmeans/resource"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

type config struct {
	input       string
	workers     int
	maxWorkers  int64
	seed        uint64
	format      string
	codec       string
	logLevel    string
	logJSON     bool
	memoryLimit int64
	pushgateway string
	job         string
}

func parseFlags(args []string, stderr io.Writer) (*config, error) {
	fs := flag.NewFlagSet("kmeans", flag.ContinueOnError)
	fs.SetOutput(stderr)

	cfg := &config{}
	fs.StringVar(&cfg.input, "input", dataset.Stdin, `input location: "-", a path, s3://bucket/key or minio://endpoint/bucket/key`)
	fs.IntVar(&cfg.workers, "workers", 0, "workers per parallel phase (0 = GOMAXPROCS)")
	fs.Int64Var(&cfg.maxWorkers, "max-workers", 0, "cap on concurrently running worker spans (0 = unbounded)")
	fs.Uint64Var(&cfg.seed, "seed", kmeans.DefaultSeed, "seed for the initial centroid choice")
	fs.StringVar(&cfg.format, "format", "text", "output format: text or json")
	fs.StringVar(&cfg.codec, "codec", "go-json", "JSON codec: go-json or json")
	fs.StringVar(&cfg.logLevel, "log-level", "warn", "log level: debug, info, warn or error")
	fs.BoolVar(&cfg.logJSON, "log-json", false, "log as JSON")
	fs.Int64Var(&cfg.memoryLimit, "memory-limit", 0, "accumulator memory limit in bytes (0 = unlimited)")
	fs.StringVar(&cfg.pushgateway, "pushgateway", "", "Pushgateway URL; metrics are pushed after the run when set")
	fs.StringVar(&cfg.job, "job", "kmeans", "Pushgateway job name")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if cfg.format != "text" && cfg.format != "json" {
		return nil, fmt.Errorf("unknown format %q", cfg.format)
	}
	return cfg, nil
}

func newLogger(cfg *config, w io.Writer) (*kmeans.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.logLevel)); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.logJSON {
		return kmeans.NewLogger(slog.NewJSONHandler(w, opts)), nil
	}
	return kmeans.NewLogger(slog.NewTextHandler(w, opts)), nil
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintln(stderr, "kmeans:", err)
		return exitUsage
	}

	logger, err := newLogger(cfg, stderr)
	if err != nil {
		fmt.Fprintln(stderr, "kmeans:", err)
		return exitUsage
	}

	c, err := codec.ByName(cfg.codec)
	if err != nil {
		fmt.Fprintln(stderr, "kmeans:", err)
		return exitUsage
	}

	var in io.ReadCloser
	if cfg.input == dataset.Stdin {
		in = io.NopCloser(stdin)
	} else if in, err = dataset.Open(ctx, cfg.input); err != nil {
		fmt.Fprintln(stderr, "kmeans:", err)
		return exitError
	}
	defer in.Close()

	h, points, err := dataset.Read(in)
	if err != nil {
		fmt.Fprintln(stderr, "kmeans: read input:", err)
		return exitError
	}

	reg := prometheus.NewRegistry()
	collector, err := kmprom.NewCollector(reg)
	if err != nil {
		fmt.Fprintln(stderr, "kmeans:", err)
		return exitError
	}

	engine, err := kmeans.New(h.K, h.TotalPoints, h.TotalValues, h.MaxIterations,
		kmeans.WithWorkers(cfg.workers),
		kmeans.WithSeed(cfg.seed),
		kmeans.WithLogger(logger),
		kmeans.WithMetricsCollector(collector),
		kmeans.WithResourceController(resource.NewController(resource.Config{
			MemoryLimitBytes: cfg.memoryLimit,
			MaxWorkers:       cfg.maxWorkers,
		})),
	)
	if err != nil {
		fmt.Fprintln(stderr, "kmeans:", err)
		return exitUsage
	}

	res, runErr := engine.Run(ctx, points)

	if cfg.pushgateway != "" {
		if err := kmprom.Push(ctx, cfg.pushgateway, cfg.job, reg); err != nil {
			logger.Warn("metrics push failed", "error", err)
		}
	}

	if runErr != nil {
		fmt.Fprintln(stderr, "kmeans:", runErr)
		if errors.Is(runErr, kmeans.ErrInvalidConfiguration) {
			return exitUsage
		}
		return exitError
	}

	if cfg.format == "json" {
		err = dataset.WriteJSON(stdout, c, res, points)
	} else {
		err = dataset.WriteText(stdout, res)
	}
	if err != nil {
		fmt.Fprintln(stderr, "kmeans: write result:", err)
		return exitError
	}
	return exitOK
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
