package domain

import (
	"time"

	"github.com/google/uuid"
)

// SimulationEvent records one classified engine run for downstream consumers.
type SimulationEvent struct {
	ID          string      `json:"id"`
	RequestID   string      `json:"request_id,omitempty"`
	Outcome     OutcomeKind `json:"outcome"`
	Message     string      `json:"message"`
	TilesDir    string      `json:"tiles_dir"`
	PumpLog     string      `json:"pump_log"`
	OutputTIF   string      `json:"output_tif,omitempty"` // persistent outputs only
	RainSamples int         `json:"rain_samples"`
	Pumps       int         `json:"pumps"`
	DurationMs  int64       `json:"duration_ms"`
	CompletedAt time.Time   `json:"completed_at"`
}

// NewSimulationEvent builds the event for a finished run. Temporary output
// rasters are not reported because they are gone by the time anyone reads the event.
func NewSimulationEvent(requestID string, req SimulationRequest, outcome Outcome, duration time.Duration) SimulationEvent {
	return SimulationEvent{
		ID:          uuid.NewString(),
		RequestID:   requestID,
		Outcome:     outcome.Kind,
		Message:     outcome.Message,
		TilesDir:    req.TilesDir,
		PumpLog:     req.PumpLog,
		OutputTIF:   req.OutputTIF,
		RainSamples: len(req.RainTimeseries),
		Pumps:       len(req.Pumps),
		DurationMs:  duration.Milliseconds(),
		CompletedAt: clock.Now().UTC(),
	}
}
