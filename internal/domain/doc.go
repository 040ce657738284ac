// Package domain models flood simulation requests and the positional command
// line contract of the external simulation engine.
//
// # Request Shape
//
// A request names where the engine writes its artifacts and supplies two
// ordered arrays:
//
//	rain_timeseries: [{mm, interval, iter}, ...]   non-empty, all numeric
//	pumps:           [{in_lat, in_lon, out_lat, out_lon, capacity, threshold, radius?}, ...]
//
// Pump attributes are passed through to the engine untyped: any non-null JSON
// value is accepted and rendered as text, numbers the way JavaScript prints
// them. A value whose text contains a comma is rejected. The engine is the authority on
// ranges and coordinate bounds; [ParseRequest] checks presence and shape only
// and reports the first failure.
//
// # Engine Arguments
//
// The engine takes fourteen or fifteen positional arguments:
//
//	terrain_raster land_use_raster output_raster pump_log tiles_dir
//	rain_mm interval_min iter
//	pump_in_lat pump_in_lon pump_out_lat pump_out_lon pump_capacity pump_threshold
//	[pump_radius]
//
// Array-valued inputs are flattened into comma-joined parallel lists. Element i
// of every rain list describes rain_timeseries[i]; element i of every pump list
// describes pumps[i]. An empty pump array is encoded as the literal "0" in every
// pump position, and the radius position is only present when at least one pump
// carries a truthy radius. See [Encode].
//
// # Outcome Classification
//
// The engine reports domain failures on stderr as a line containing
// "Failed:" (any case), often while still exiting zero. [Classify] therefore
// scans stderr before it looks at the exit status:
//
//	"Failed:" marker on stderr  → domain_error, message = the marker up to end of line
//	spawn error or non-zero exit → system_error, message = the process error
//	otherwise                    → success
package domain
