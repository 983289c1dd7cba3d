// Package units converts between the engineering unit systems used by process
// simulators, design charts and cost correlations.
//
// Simulators report duties in cal/s and densities in g/cc, the design charts
// behind package correlation are drawn in imperial units, and the cost model
// prices utilities per GJ over an 8760 h operating year. Every function here is
// a fixed scalar factor or offset; none of them can fail.
package units

const (
	calPerSecToGJPerYear = 0.1320349248
	calPerSecToKW        = 0.0041868
	kelvinOffset         = 273.15
	inchToM              = 0.0254
	sqinToM2             = 0.00064516
	kgM3ToLbFt3          = 0.062427960576145
	cfsToM3Sec           = 0.028316847
	sqftToM2             = 0.09290304
	ftToM                = 0.3048
)

// CalPerSecToGJPerYear converts a continuous duty in cal/s to GJ per year.
func CalPerSecToGJPerYear(v float64) float64 { return v * calPerSecToGJPerYear }

// GJPerYearToCalPerSec is the inverse of [CalPerSecToGJPerYear].
func GJPerYearToCalPerSec(v float64) float64 { return v / calPerSecToGJPerYear }

// CalPerSecToKW converts cal/s to kW (kJ/s).
func CalPerSecToKW(v float64) float64 { return v * calPerSecToKW }

// KWToCalPerSec converts kW to cal/s.
func KWToCalPerSec(v float64) float64 { return v / calPerSecToKW }

// CelsiusToKelvin converts °C to K.
func CelsiusToKelvin(c float64) float64 { return c + kelvinOffset }

// KelvinToCelsius converts K to °C.
func KelvinToCelsius(k float64) float64 { return k - kelvinOffset }

// GCcToKgM3 converts g/cm³ to kg/m³.
func GCcToKgM3(v float64) float64 { return v * 1000 }

// KgM3ToGCc converts kg/m³ to g/cm³.
func KgM3ToGCc(v float64) float64 { return v / 1000 }

// LMinToM3Sec converts L/min to m³/s.
func LMinToM3Sec(v float64) float64 { return v / 60 / 1000 }

// M3SecToLMin converts m³/s to L/min.
func M3SecToLMin(v float64) float64 { return v * 1000 * 60 }

// MMToM converts millimetres to metres.
func MMToM(v float64) float64 { return v / 1000 }

// MToMM converts metres to millimetres.
func MToMM(v float64) float64 { return v * 1000 }

// InchToM converts inches to metres.
func InchToM(v float64) float64 { return v * inchToM }

// MToInch converts metres to inches.
func MToInch(v float64) float64 { return v / inchToM }

// SqinToM2 converts square inches to m².
func SqinToM2(v float64) float64 { return v * sqinToM2 }

// M2ToSqin converts m² to square inches.
func M2ToSqin(v float64) float64 { return v / sqinToM2 }

// KgM3ToLbFt3 converts kg/m³ to lb/ft³.
func KgM3ToLbFt3(v float64) float64 { return v * kgM3ToLbFt3 }

// LbFt3ToKgM3 converts lb/ft³ to kg/m³.
func LbFt3ToKgM3(v float64) float64 { return v / kgM3ToLbFt3 }

// CfsToM3Sec converts ft³/s to m³/s.
func CfsToM3Sec(v float64) float64 { return v * cfsToM3Sec }

// M3SecToCfs converts m³/s to ft³/s.
func M3SecToCfs(v float64) float64 { return v / cfsToM3Sec }

// SqftToM2 converts ft² to m².
func SqftToM2(v float64) float64 { return v * sqftToM2 }

// M2ToSqft converts m² to ft².
func M2ToSqft(v float64) float64 { return v / sqftToM2 }

// FtToM converts feet to metres.
func FtToM(v float64) float64 { return v * ftToM }

// MToFt converts metres to feet.
func MToFt(v float64) float64 { return v / ftToM }
