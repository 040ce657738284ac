package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"

	httpadapter "github.com/couchcryptid/flood-sim-gateway/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/flood-sim-gateway/internal/adapter/kafka"
	"github.com/couchcryptid/flood-sim-gateway/internal/artifact"
	"github.com/couchcryptid/flood-sim-gateway/internal/config"
	"github.com/couchcryptid/flood-sim-gateway/internal/domain"
	"github.com/couchcryptid/flood-sim-gateway/internal/engine"
	"github.com/couchcryptid/flood-sim-gateway/internal/observability"
	"github.com/couchcryptid/flood-sim-gateway/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	invoker := engine.NewInvoker(cfg.EngineCommand, cfg.EngineWorkDir, cfg.EngineTimeout, logger)
	if err := invoker.CheckReadiness(context.Background()); err != nil {
		logger.Warn("simulation engine not ready at startup", "error", err)
	}

	locator := artifact.NewLocator(cfg.EngineWorkDir, cfg.TempOutputDir, cfg.TrustProxyHeaders, metrics, logger)

	var sweeper *artifact.Sweeper
	if cfg.TempSweepEnabled {
		sweeper, err = artifact.NewSweeper(locator, cfg.TempSweepSchedule, cfg.TempMaxAge, clockwork.NewRealClock(), metrics, logger)
		if err != nil {
			logger.Error("failed to schedule temp raster sweeper", "error", err)
			os.Exit(1)
		}
		sweeper.Start()
	}

	// Initialize event publisher (feature-flagged via EVENTS_ENABLED / KAFKA_BROKERS).
	var publisher pipeline.Publisher
	var writer *kafkaadapter.Writer
	if cfg.EventsEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
	} else {
		logger.Info("simulation events disabled")
	}

	p := pipeline.New(invoker, locator, publisher, pipeline.Options{
		Inputs:         domain.RasterInputs{Terrain: cfg.TerrainRaster, LandUse: cfg.LandUseRaster},
		PublishTimeout: cfg.KafkaPublishTimeout,
	}, logger, metrics)

	router := httpadapter.NewRouter(httpadapter.RouterDeps{
		Config:  cfg,
		Runner:  p,
		URLs:    locator,
		Ready:   p,
		Metrics: metrics,
		Logger:  logger,
	})
	srv := httpadapter.NewServer(cfg.HTTPAddr, router, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
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
	if sweeper != nil {
		select {
		case <-sweeper.Stop().Done():
		case <-shutdownCtx.Done():
			logger.Warn("temp raster sweep still running at shutdown")
		}
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
