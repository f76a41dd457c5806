package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/oceanbight/buoy-telemetry-etl/internal/discovery"
	"github.com/oceanbight/buoy-telemetry-etl/internal/domain"
	"github.com/oceanbight/buoy-telemetry-etl/internal/observability"
)

// FileSource supplies ordered batches of dump-file paths.
type FileSource interface {
	Next(ctx context.Context) (discovery.Batch, error)
}

// Loader parses an ordered file list into one typed table.
type Loader interface {
	Load(files []string) (*domain.Result, error)
}

// Sink delivers a typed load result to a destination.
type Sink interface {
	Name() string
	Store(ctx context.Context, res *domain.Result) error
}

// Pipeline drives the discover-load-deliver loop: file batches come in from
// the source, get routed to their instrument's loader, and the typed result
// fans out to every sink. A failed load or delivery is logged and counted,
// never fatal to the loop.
type Pipeline struct {
	source  FileSource
	loaders map[string]Loader
	sinks   []Sink
	logger  *slog.Logger
	metrics *observability.Metrics
	ready   atomic.Bool
}

// New creates a Pipeline with loaders keyed by instrument name.
func New(source FileSource, loaders map[string]Loader, sinks []Sink, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		source:  source,
		loaders: loaders,
		sinks:   sinks,
		logger:  logger,
		metrics: metrics,
	}
}

// CheckReadiness returns nil once the pipeline has loaded at least one batch.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not loaded any batches yet")
	}
	return nil
}

// Run executes the loop until the context is cancelled or the source fails.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "sinks", len(p.sinks))
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	for {
		batch, err := p.source.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				p.logger.Info("pipeline stopping", "reason", ctx.Err())
				return nil
			}
			return err
		}
		p.processBatch(ctx, batch)
	}
}

// processBatch runs one load-and-deliver cycle for a single file batch.
func (p *Pipeline) processBatch(ctx context.Context, batch discovery.Batch) {
	loader, ok := p.loaders[batch.Instrument]
	if !ok {
		p.logger.Warn("no loader for instrument", "instrument", batch.Instrument)
		return
	}

	start := time.Now()
	res, err := loader.Load(batch.Paths)
	if err != nil {
		p.logger.Error("load failed",
			"instrument", batch.Instrument, "files", len(batch.Paths), "error", err)
		p.metrics.LoadErrors.WithLabelValues(batch.Instrument).Inc()
		return
	}
	p.metrics.LoadDuration.WithLabelValues(batch.Instrument).Observe(time.Since(start).Seconds())

	p.logger.Info("batch loaded",
		"instrument", batch.Instrument, "files", len(batch.Paths), "rows", res.NumRows)
	p.ready.Store(true)

	if res.NumRows == 0 {
		return
	}
	for _, sink := range p.sinks {
		if err := sink.Store(ctx, res); err != nil {
			p.logger.Error("sink delivery failed",
				"sink", sink.Name(), "instrument", res.Instrument, "error", err)
			p.metrics.SinkErrors.WithLabelValues(sink.Name()).Inc()
			continue
		}
		p.metrics.RecordsDelivered.WithLabelValues(sink.Name()).Add(float64(res.NumRows))
	}
}
