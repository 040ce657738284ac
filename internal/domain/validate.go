package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// pumpFields lists the mandatory pump attributes in the order they are checked.
var pumpFields = []string{"in_lat", "in_lon", "out_lat", "out_lon", "capacity", "threshold"}

// encodedPumpFields lists every pump attribute that ends up in a CSV argument.
var encodedPumpFields = []string{"in_lat", "in_lon", "out_lat", "out_lon", "capacity", "threshold", "radius"}

// ValidationError describes the first problem found in a request body.
type ValidationError struct {
	Field   string // offending top-level field, e.g. "pumps"
	Index   int    // element index within Field, or -1
	Message string
	Err     error // underlying decode error, if any
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(field string, index int, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Index: index, Message: fmt.Sprintf(format, args...)}
}

// ParseRequest decodes and validates a raw /simulate body. It returns a
// *ValidationError describing the first failure; checks run in a fixed order
// and stop at the first problem.
func ParseRequest(body []byte) (SimulationRequest, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return SimulationRequest{}, &ValidationError{Index: -1, Message: "invalid request body", Err: err}
	}
	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errors.New("unexpected data after request object")
		}
		return SimulationRequest{}, &ValidationError{Index: -1, Message: "invalid request body", Err: err}
	}
	return validate(doc)
}

func validate(doc map[string]any) (SimulationRequest, error) {
	var req SimulationRequest

	pumpLog, tilesDir := doc["pump_log"], doc["tiles_dir"]
	if isBlank(pumpLog) {
		return req, invalid("pump_log", -1, "pump_log and tiles_dir are required")
	}
	if isBlank(tilesDir) {
		return req, invalid("tiles_dir", -1, "pump_log and tiles_dir are required")
	}

	var ok bool
	if req.PumpLog, ok = pumpLog.(string); !ok {
		return req, invalid("pump_log", -1, "pump_log must be a string")
	}
	if req.TilesDir, ok = tilesDir.(string); !ok {
		return req, invalid("tiles_dir", -1, "tiles_dir must be a string")
	}
	if out := doc["output_tif"]; !isBlank(out) {
		if req.OutputTIF, ok = out.(string); !ok {
			return req, invalid("output_tif", -1, "output_tif must be a string")
		}
	}

	rain, err := validateRain(doc["rain_timeseries"])
	if err != nil {
		return req, err
	}
	req.RainTimeseries = rain

	pumps, err := validatePumps(doc["pumps"])
	if err != nil {
		return req, err
	}
	req.Pumps = pumps

	return req, nil
}

func validateRain(v any) ([]RainSample, error) {
	items, ok := v.([]any)
	if !ok || len(items) == 0 {
		return nil, invalid("rain_timeseries", -1, "rain_timeseries must be a non-empty array")
	}

	samples := make([]RainSample, 0, len(items))
	for i, item := range items {
		obj, _ := item.(map[string]any)
		mm, okMM := asNumber(obj["mm"])
		interval, okInterval := asNumber(obj["interval"])
		iter, okIter := asNumber(obj["iter"])
		if !okMM || !okInterval || !okIter {
			return nil, invalid("rain_timeseries", i, "rain_timeseries[%d] must have numeric mm, interval, and iter", i)
		}
		samples = append(samples, RainSample{MM: mm, Interval: interval, Iter: iter})
	}
	return samples, nil
}

func validatePumps(v any) ([]PumpSpec, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, invalid("pumps", -1, "pumps must be an array")
	}

	pumps := make([]PumpSpec, 0, len(items))
	for i, item := range items {
		obj, _ := item.(map[string]any)
		for _, field := range pumpFields {
			if obj[field] == nil {
				return nil, invalid("pumps", i, "pumps[%d] missing required field: %s", i, field)
			}
		}
		p := PumpSpec{
			InLat:     NewFieldValue(obj["in_lat"]),
			InLon:     NewFieldValue(obj["in_lon"]),
			OutLat:    NewFieldValue(obj["out_lat"]),
			OutLon:    NewFieldValue(obj["out_lon"]),
			Capacity:  NewFieldValue(obj["capacity"]),
			Threshold: NewFieldValue(obj["threshold"]),
			Radius:    NewFieldValue(obj["radius"]),
		}
		// Values are comma-joined; an embedded comma would shift every later element.
		for _, field := range encodedPumpFields {
			if strings.Contains(NewFieldValue(obj[field]).String(), ",") {
				return nil, invalid("pumps", i, "pumps[%d].%s must not contain commas", i, field)
			}
		}
		pumps = append(pumps, p)
	}
	return pumps, nil
}

// asNumber accepts only JSON numbers; numeric strings are rejected.
func asNumber(v any) (float64, bool) {
	n, ok := v.(json.Number)
	if !ok {
		return 0, false
	}
	f, err := n.Float64()
	if err != nil {
		return 0, false
	}
	return f, true
}

func isBlank(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}
