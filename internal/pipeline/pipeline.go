// Package pipeline runs one batch import: extract a CSV file, transform it
// into readings, load them into the store, and optionally publish them.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/iot-temp-pipeline/internal/domain"
	"github.com/couchcryptid/iot-temp-pipeline/internal/observability"
	"github.com/jonboulle/clockwork"
)

// Extractor reads an input file into a table.
type Extractor interface {
	Extract(ctx context.Context, path string) (*domain.Table, error)
}

// Loader persists readings atomically and returns the number written.
type Loader interface {
	Load(ctx context.Context, readings []domain.Reading) (int, error)
}

// Publisher fans committed readings out to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, readings []domain.Reading, loadedAt time.Time) (int, error)
}

// Result summarizes one run. Published counts messages accepted across all
// publishers.
type Result struct {
	Read      int
	Dropped   int
	Loaded    int
	Published int
	Duration  time.Duration
}

// Pipeline orchestrates the extract-transform-load run.
type Pipeline struct {
	extractor  Extractor
	loader     Loader
	publishers []Publisher
	clock      clockwork.Clock
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// New creates a Pipeline with the given stages and observability. Committed
// readings are handed to every publisher in order; with none, fan-out is off.
func New(e Extractor, l Loader, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics, publishers ...Publisher) *Pipeline {
	return &Pipeline{
		extractor:  e,
		loader:     l,
		publishers: publishers,
		clock:      clock,
		logger:     logger,
		metrics:    metrics,
	}
}

// Run imports the file at path. A failure in extract, transform, or load
// aborts the run with nothing persisted. A publish failure happens after
// the commit and is logged without failing the run.
func (p *Pipeline) Run(ctx context.Context, path string) (Result, error) {
	start := p.clock.Now()

	tbl, err := p.extractor.Extract(ctx, path)
	if err != nil {
		return Result{}, p.fail("extract", err)
	}

	readings, stats, err := domain.Transform(tbl)
	p.metrics.RowsRead.Add(float64(stats.Read))
	if err != nil {
		return Result{Read: stats.Read}, p.fail("transform", err)
	}
	p.metrics.RowsDropped.WithLabelValues("no_timestamp").Add(float64(stats.DroppedNoTimestamp))
	p.metrics.RowsDropped.WithLabelValues("no_temperature").Add(float64(stats.DroppedNoTemperature))
	if stats.Dropped() > 0 {
		p.logger.Debug("rows dropped",
			"no_timestamp", stats.DroppedNoTimestamp,
			"no_temperature", stats.DroppedNoTemperature,
		)
	}

	res := Result{Read: stats.Read, Dropped: stats.Dropped()}

	res.Loaded, err = p.loader.Load(ctx, readings)
	if err != nil {
		return Result{Read: res.Read, Dropped: res.Dropped}, p.fail("load", err)
	}
	p.metrics.RowsLoaded.Add(float64(res.Loaded))

	if res.Loaded > 0 {
		loadedAt := p.clock.Now()
		for _, pub := range p.publishers {
			res.Published += p.publish(ctx, pub, readings, loadedAt)
		}
	}

	res.Duration = p.clock.Since(start)
	p.metrics.RunDuration.Observe(res.Duration.Seconds())
	p.metrics.LastSuccessSeconds.Set(float64(p.clock.Now().Unix()))

	p.logger.Info("rows imported",
		"rows", res.Loaded,
		"read", res.Read,
		"dropped", res.Dropped,
		"published", res.Published,
		"duration", res.Duration,
		"path", path,
	)
	return res, nil
}

func (p *Pipeline) publish(ctx context.Context, pub Publisher, readings []domain.Reading, loadedAt time.Time) int {
	n, err := pub.Publish(ctx, readings, loadedAt)
	p.metrics.ReadingsPublished.Add(float64(n))
	if err != nil {
		p.metrics.PublishErrors.Inc()
		p.logger.Warn("publish failed, readings remain committed",
			"error", err, "readings", len(readings), "published", n)
	}
	return n
}

func (p *Pipeline) fail(stage string, err error) error {
	p.metrics.RunFailures.WithLabelValues(stage).Inc()
	return fmt.Errorf("%s: %w", stage, err)
}
