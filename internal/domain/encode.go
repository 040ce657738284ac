package domain

import "strings"

// NoPumpSentinel is the engine's value for every pump argument when no pumps are configured.
const NoPumpSentinel = "0"

// ArgNames names each engine argument by position. The last entry is only
// present when the request carries radius data.
var ArgNames = []string{
	"terrain_raster",
	"land_use_raster",
	"output_raster_path",
	"pump_log_path",
	"tiles_dir",
	"rain_mm_csv",
	"interval_min_csv",
	"iter_csv",
	"pump_in_lat_csv",
	"pump_in_lon_csv",
	"pump_out_lat_csv",
	"pump_out_lon_csv",
	"pump_capacity_csv",
	"pump_threshold_csv",
	"pump_radius_csv",
}

// EncodedParameterSet is the parallel-list form of the rain and pump arrays.
type EncodedParameterSet struct {
	RainMM       string
	RainInterval string
	RainIter     string

	PumpInLat     string
	PumpInLon     string
	PumpOutLat    string
	PumpOutLon    string
	PumpCapacity  string
	PumpThreshold string

	PumpRadius string
	HasRadius  bool // false means the radius argument is omitted entirely
}

// RasterInputs are the convention-located inputs every run reads.
type RasterInputs struct {
	Terrain string
	LandUse string
}

// Encode flattens the rain and pump arrays into comma-joined parallel lists.
// Element order follows the input arrays.
func Encode(rain []RainSample, pumps []PumpSpec) EncodedParameterSet {
	enc := EncodedParameterSet{
		RainMM:       joinRain(rain, func(r RainSample) float64 { return r.MM }),
		RainInterval: joinRain(rain, func(r RainSample) float64 { return r.Interval }),
		RainIter:     joinRain(rain, func(r RainSample) float64 { return r.Iter }),
	}

	if len(pumps) == 0 {
		enc.PumpInLat = NoPumpSentinel
		enc.PumpInLon = NoPumpSentinel
		enc.PumpOutLat = NoPumpSentinel
		enc.PumpOutLon = NoPumpSentinel
		enc.PumpCapacity = NoPumpSentinel
		enc.PumpThreshold = NoPumpSentinel
		return enc
	}

	enc.PumpInLat = joinPumps(pumps, func(p PumpSpec) FieldValue { return p.InLat })
	enc.PumpInLon = joinPumps(pumps, func(p PumpSpec) FieldValue { return p.InLon })
	enc.PumpOutLat = joinPumps(pumps, func(p PumpSpec) FieldValue { return p.OutLat })
	enc.PumpOutLon = joinPumps(pumps, func(p PumpSpec) FieldValue { return p.OutLon })
	enc.PumpCapacity = joinPumps(pumps, func(p PumpSpec) FieldValue { return p.Capacity })
	enc.PumpThreshold = joinPumps(pumps, func(p PumpSpec) FieldValue { return p.Threshold })

	for _, p := range pumps {
		if p.Radius.Truthy() {
			enc.HasRadius = true
			break
		}
	}
	if enc.HasRadius {
		enc.PumpRadius = joinPumps(pumps, func(p PumpSpec) FieldValue { return p.Radius })
	}

	return enc
}

// Args returns the rain and pump positions of the argument vector, radius last when present.
func (e EncodedParameterSet) Args() []string {
	args := []string{
		e.RainMM, e.RainInterval, e.RainIter,
		e.PumpInLat, e.PumpInLon, e.PumpOutLat, e.PumpOutLon, e.PumpCapacity, e.PumpThreshold,
	}
	if e.HasRadius {
		args = append(args, e.PumpRadius)
	}
	return args
}

// BuildArgs assembles the full positional argument vector for one engine run.
func BuildArgs(in RasterInputs, outputRaster string, req SimulationRequest, enc EncodedParameterSet) []string {
	args := make([]string, 0, len(ArgNames))
	args = append(args, in.Terrain, in.LandUse, outputRaster, req.PumpLog, req.TilesDir)
	return append(args, enc.Args()...)
}

func joinRain(rain []RainSample, field func(RainSample) float64) string {
	parts := make([]string, len(rain))
	for i, r := range rain {
		parts[i] = formatNumber(field(r))
	}
	return strings.Join(parts, ",")
}

func joinPumps(pumps []PumpSpec, field func(PumpSpec) FieldValue) string {
	parts := make([]string, len(pumps))
	for i, p := range pumps {
		parts[i] = field(p).String()
	}
	return strings.Join(parts, ",")
}
