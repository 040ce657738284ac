package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// SimulationRequest is a validated /simulate request body.
type SimulationRequest struct {
	OutputTIF      string // empty when the caller did not ask for a persistent raster
	PumpLog        string
	TilesDir       string
	RainTimeseries []RainSample
	Pumps          []PumpSpec
}

// PersistentOutput reports whether the caller supplied its own output raster path.
func (r SimulationRequest) PersistentOutput() bool {
	return r.OutputTIF != ""
}

// RainSample is one step of the rainfall time series.
type RainSample struct {
	MM       float64 // rainfall depth in millimetres
	Interval float64 // minutes
	Iter     float64 // iteration count
}

// PumpSpec describes one pump. Values are forwarded to the engine verbatim.
type PumpSpec struct {
	InLat     FieldValue
	InLon     FieldValue
	OutLat    FieldValue
	OutLon    FieldValue
	Capacity  FieldValue
	Threshold FieldValue
	Radius    FieldValue // zero value when absent
}

// FieldValue holds an untyped JSON value destined for an engine argument.
type FieldValue struct {
	v any
}

// NewFieldValue wraps a decoded JSON value. Numbers decoded with UseNumber,
// plain Go numbers, strings and booleans are all accepted.
func NewFieldValue(v any) FieldValue {
	return FieldValue{v: v}
}

// IsSet reports whether the value is present and non-null.
func (f FieldValue) IsSet() bool {
	return f.v != nil
}

// Truthy follows JavaScript truthiness: null, 0, NaN, "" and false are falsy.
func (f FieldValue) Truthy() bool {
	switch v := f.v.(type) {
	case nil:
		return false
	case json.Number:
		n, err := v.Float64()
		if err != nil {
			return v != ""
		}
		return n != 0 && !math.IsNaN(n)
	case float64:
		return v != 0 && !math.IsNaN(v)
	case int:
		return v != 0
	case string:
		return v != ""
	case bool:
		return v
	default:
		return true
	}
}

// String renders the value the way the engine expects to read it: numbers in
// shortest decimal form, strings verbatim, anything else as compact JSON.
// A missing value renders as the empty string.
func (f FieldValue) String() string {
	switch v := f.v.(type) {
	case nil:
		return ""
	case json.Number:
		n, err := v.Float64()
		if err != nil {
			return v.String()
		}
		return formatNumber(n)
	case float64:
		return formatNumber(v)
	case int:
		return strconv.Itoa(v)
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// formatNumber renders n like JavaScript's Number#toString: plain decimals in
// [1e-6, 1e21), exponent form outside it, and negative zero as "0".
func formatNumber(n float64) string {
	switch {
	case n == 0:
		return "0"
	case math.IsNaN(n):
		return "NaN"
	case math.IsInf(n, 1):
		return "Infinity"
	case math.IsInf(n, -1):
		return "-Infinity"
	}
	if a := math.Abs(n); a >= 1e21 || a < 1e-6 {
		s := strconv.FormatFloat(n, 'e', -1, 64)
		mant, exp, _ := strings.Cut(s, "e")
		sign, digits := exp[:1], strings.TrimLeft(exp[1:], "0")
		return mant + "e" + sign + digits
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}
