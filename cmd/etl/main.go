package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/oceanbight/buoy-telemetry-etl/internal/adapter/http"
	kafkaadapter "github.com/oceanbight/buoy-telemetry-etl/internal/adapter/kafka"
	"github.com/oceanbight/buoy-telemetry-etl/internal/config"
	"github.com/oceanbight/buoy-telemetry-etl/internal/discovery"
	"github.com/oceanbight/buoy-telemetry-etl/internal/observability"
	"github.com/oceanbight/buoy-telemetry-etl/internal/parser"
	"github.com/oceanbight/buoy-telemetry-etl/internal/pipeline"
	"github.com/oceanbight/buoy-telemetry-etl/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	loaders := map[string]pipeline.Loader{
		parser.InstrumentMetbk: parser.NewMetbk(logger, metrics, cfg.StrictRecovery),
		parser.InstrumentWavss: parser.NewWavss(logger, metrics),
		parser.InstrumentVelpt: parser.NewVelpt(logger, metrics),
	}

	var sinks []pipeline.Sink
	var closers []func() error

	if cfg.SQLitePath != "" {
		st, err := store.New(cfg.SQLitePath, logger)
		if err != nil {
			logger.Error("failed to open sqlite store", "error", err)
			os.Exit(1)
		}
		sinks = append(sinks, st)
		closers = append(closers, st.Close)
		logger.Info("sqlite sink enabled", "path", cfg.SQLitePath)
	}
	if cfg.KafkaEnabled() {
		w := kafkaadapter.NewWriter(cfg, logger)
		sinks = append(sinks, w)
		closers = append(closers, w.Close)
		logger.Info("kafka sink enabled", "topic", cfg.KafkaSinkTopic)
	}

	watcher, err := discovery.NewWatcher(cfg.DataDir, logger)
	if err != nil {
		logger.Error("failed to start file discovery", "error", err)
		os.Exit(1)
	}
	closers = append(closers, watcher.Close)

	p := pipeline.New(watcher, loaders, sinks, logger, metrics)
	srv := httpadapter.NewServer(cfg.HTTPAddr, p, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			logger.Error("close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
