package domain

import (
	"regexp"
	"time"
)

// SuccessMessage is returned to the caller when the engine completes cleanly.
const SuccessMessage = "Simulation completed successfully"

// OutcomeKind tags the result of one engine run.
type OutcomeKind string

const (
	OutcomeSuccess     OutcomeKind = "success"
	OutcomeDomainError OutcomeKind = "domain_error"
	OutcomeSystemError OutcomeKind = "system_error"
)

// ExitStatus is how the engine process ended.
type ExitStatus int

const (
	ExitOK          ExitStatus = iota // exited zero
	ExitFailed                        // non-zero exit or killed by a signal
	ExitSpawnFailed                   // never started
)

func (s ExitStatus) String() string {
	switch s {
	case ExitOK:
		return "ok"
	case ExitFailed:
		return "failed"
	case ExitSpawnFailed:
		return "spawn_failed"
	default:
		return "unknown"
	}
}

// Invocation is everything captured from one engine run.
type Invocation struct {
	Stdout   string
	Stderr   string
	Status   ExitStatus
	ExitCode int   // -1 when the process never started or was signalled
	Err      error // process error when Status != ExitOK
	Duration time.Duration
}

// ArtifactBundle holds absolute URLs for everything a successful run produced.
type ArtifactBundle struct {
	Tiles      string `json:"tiles"`
	Leaflet    string `json:"leaflet"`
	OpenLayers string `json:"openlayers"`
	OutputTIF  string `json:"output_tif"`
	OutputPump string `json:"output_pump"`
}

// Outcome is the classified result of a run. Artifacts is set only on success.
type Outcome struct {
	Kind      OutcomeKind
	Message   string
	Artifacts *ArtifactBundle
}

// failedMarkerRe matches the engine's failure convention from the marker to end of line.
var failedMarkerRe = regexp.MustCompile(`(?i)failed:[^\r\n]*`)

// Classify decides the outcome of an engine run. A "Failed:" marker on stderr
// wins over the exit status.
func Classify(inv Invocation) Outcome {
	if msg := failedMarkerRe.FindString(inv.Stderr); msg != "" {
		return Outcome{Kind: OutcomeDomainError, Message: msg}
	}

	if inv.Status != ExitOK {
		msg := "simulation engine exited abnormally"
		if inv.Err != nil {
			msg = inv.Err.Error()
		}
		return Outcome{Kind: OutcomeSystemError, Message: msg}
	}

	return Outcome{Kind: OutcomeSuccess, Message: SuccessMessage}
}
