// Package http exposes the gateway over HTTP: the /simulate endpoint, static
// engine output, health probes and metrics.
package http

import (
	"log/slog"
	"path/filepath"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/flood-sim-gateway/internal/config"
	"github.com/couchcryptid/flood-sim-gateway/internal/observability"
)

// RouterDeps are the collaborators the router wires into handlers.
type RouterDeps struct {
	Config  *config.Config
	Runner  SimulationRunner
	URLs    URLBuilder
	Ready   sharedobs.ReadinessChecker
	Metrics *observability.Metrics
	Logger  *slog.Logger
}

// NewRouter builds the gin engine serving every gateway route.
func NewRouter(d RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(d.Logger))
	r.Use(originPolicy(d.Config.Production(), d.Config.AllowedOrigins))

	sim := &simulateHandler{runner: d.Runner, urls: d.URLs, metrics: d.Metrics, logger: d.Logger}
	r.POST("/simulate", sim.handle)

	r.GET("/healthz", gin.WrapF(sharedobs.LivenessHandler()))
	r.GET("/readyz", gin.WrapF(sharedobs.ReadinessHandler(d.Ready)))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	for _, dir := range d.Config.StaticDirs {
		r.StaticFS("/"+dir, newStaticFS(filepath.Join(d.Config.EngineWorkDir, filepath.FromSlash(dir))))
	}

	return r
}
