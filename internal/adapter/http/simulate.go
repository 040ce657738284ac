package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/couchcryptid/flood-sim-gateway/internal/domain"
	"github.com/couchcryptid/flood-sim-gateway/internal/observability"
)

const maxRequestBody = 10 << 20

// SimulationRunner executes one validated request.
type SimulationRunner interface {
	Run(ctx context.Context, requestID, baseURL string, req domain.SimulationRequest) domain.Outcome
}

// URLBuilder derives the public base URL from an inbound request.
type URLBuilder interface {
	BaseURL(r *http.Request) string
}

type simulationResponse struct {
	Status  string                 `json:"status"`
	Message string                 `json:"message"`
	Data    *domain.ArtifactBundle `json:"data"`
}

type simulateHandler struct {
	runner  SimulationRunner
	urls    URLBuilder
	metrics *observability.Metrics
	logger  *slog.Logger
}

func (h *simulateHandler) handle(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxRequestBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"status": "error", "message": "request body too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid request body"})
		return
	}

	req, err := domain.ParseRequest(body)
	if err != nil {
		h.metrics.ValidationFailures.Inc()
		h.logger.Debug("request rejected", "request_id", c.GetString(requestIDKey), "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	// Client disconnects do not cancel the engine.
	ctx := context.WithoutCancel(c.Request.Context())
	outcome := h.runner.Run(ctx, c.GetString(requestIDKey), h.urls.BaseURL(c.Request), req)

	switch outcome.Kind {
	case domain.OutcomeSuccess:
		c.JSON(http.StatusOK, simulationResponse{Status: "success", Message: outcome.Message, Data: outcome.Artifacts})
	case domain.OutcomeDomainError:
		c.JSON(http.StatusBadRequest, simulationResponse{Status: "error", Message: outcome.Message})
	default:
		c.JSON(http.StatusInternalServerError, simulationResponse{Status: "error", Message: outcome.Message})
	}
}
