// Package pipeline runs one simulation request end to end: encode, invoke
// the engine, classify its output and locate the artifacts.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/flood-sim-gateway/internal/artifact"
	"github.com/couchcryptid/flood-sim-gateway/internal/domain"
	"github.com/couchcryptid/flood-sim-gateway/internal/observability"
)

// Invoker runs the engine with a positional argument vector.
type Invoker interface {
	Invoke(ctx context.Context, args []string) domain.Invocation
	CheckReadiness(ctx context.Context) error
}

// Locator hands out output raster paths for a run.
type Locator interface {
	Lease(req domain.SimulationRequest) *artifact.Lease
}

// Publisher emits outcome events. It is optional.
type Publisher interface {
	Publish(ctx context.Context, event domain.SimulationEvent) error
}

// Options carries the per-deployment settings of a Pipeline.
type Options struct {
	Inputs         domain.RasterInputs
	PublishTimeout time.Duration
}

// Pipeline orchestrates a single engine run per call. Calls are independent
// and may run concurrently.
type Pipeline struct {
	invoker   Invoker
	locator   Locator
	publisher Publisher
	opts      Options
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// New creates a Pipeline. publisher may be nil when events are disabled.
func New(inv Invoker, loc Locator, pub Publisher, opts Options, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		invoker:   inv,
		locator:   loc,
		publisher: pub,
		opts:      opts,
		logger:    logger,
		metrics:   metrics,
	}
}

// CheckReadiness reports whether the engine can be started.
func (p *Pipeline) CheckReadiness(ctx context.Context) error {
	return p.invoker.CheckReadiness(ctx)
}

// Run executes one validated request. baseURL is scheme://host of the
// inbound request and is used only for the success bundle. The returned
// outcome is always classified; engine failures are data, not errors.
func (p *Pipeline) Run(ctx context.Context, requestID, baseURL string, req domain.SimulationRequest) domain.Outcome {
	enc := domain.Encode(req.RainTimeseries, req.Pumps)

	lease := p.locator.Lease(req)
	defer lease.Release()

	args := domain.BuildArgs(p.opts.Inputs, lease.Path, req, enc)
	log := p.logger.With("request_id", requestID)
	log.Debug("invoking engine", "output", lease.Path, "temporary", lease.Temporary(), "args", args)

	p.metrics.SimulationsInFlight.Inc()
	inv := p.invoker.Invoke(ctx, args)
	p.metrics.SimulationsInFlight.Dec()
	p.metrics.SimulationDuration.Observe(inv.Duration.Seconds())

	outcome := domain.Classify(inv)
	if outcome.Kind == domain.OutcomeSuccess {
		bundle := artifact.Bundle(baseURL, req, lease.Path)
		outcome.Artifacts = &bundle
	}
	p.metrics.SimulationsTotal.WithLabelValues(string(outcome.Kind)).Inc()

	switch outcome.Kind {
	case domain.OutcomeSuccess:
		log.Info("simulation finished", "outcome", outcome.Kind, "duration", inv.Duration)
	case domain.OutcomeDomainError:
		log.Warn("simulation rejected by engine", "outcome", outcome.Kind, "message", outcome.Message, "duration", inv.Duration)
	default:
		log.Error("simulation failed", "outcome", outcome.Kind, "error", inv.Err,
			"exit_status", inv.Status, "exit_code", inv.ExitCode, "duration", inv.Duration)
	}

	p.publish(ctx, log, domain.NewSimulationEvent(requestID, req, outcome, inv.Duration))
	return outcome
}

func (p *Pipeline) publish(ctx context.Context, log *slog.Logger, event domain.SimulationEvent) {
	if p.publisher == nil {
		return
	}

	ctx = context.WithoutCancel(ctx)
	if p.opts.PublishTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opts.PublishTimeout)
		defer cancel()
	}

	if err := p.publisher.Publish(ctx, event); err != nil {
		p.metrics.EventsPublished.WithLabelValues("error").Inc()
		log.Warn("publish simulation event failed", "event_id", event.ID, "error", err)
		return
	}
	p.metrics.EventsPublished.WithLabelValues("ok").Inc()
}
