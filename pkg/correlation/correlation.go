package correlation

import "math"

// TrayType selects between the sieve and bubble-cap fits of a chart.
// It mirrors column.TrayType without importing it so that this package stays
// a leaf.
type TrayType int

const (
	Sieve TrayType = iota
	Caps
)

// WeirCorrection returns the weep-point constant K2 for a clear liquid height
// of x = h_w + h_ow in mm.
//
// Based on: Towler fig. 17.37.
func WeirCorrection(x float64) float64 {
	return 1.6494*math.Log(x) + 23.434
}

// FloodingFactor returns the capacity parameter K1 (m/s) at flow parameter flv
// for a tray spacing in metres.
//
// Sieve: Towler fig. 17.34, a quadratic in flv whose coefficients are linear
// in spacing. Caps: exponential decay in flv fitted to Fair's bubble-cap curves.
func FloodingFactor(t TrayType, flv, spacing float64) float64 {
	if t == Caps {
		a := 0.1564*spacing + 0.0141
		b := -1.3495*spacing - 1.2082
		return a * math.Exp(b*flv)
	}
	a := spacing*0.171 - 0.0178
	b := spacing*-0.2992 + 0.0168
	c := spacing*0.1626 + 0.0156
	return a*flv*flv + b*flv + c
}

// Orifice returns the discharge coefficient C0 for a perforated-area ratio
// (hole area over perforated area) and the ratio of plate thickness to hole
// diameter.
//
// Based on: Towler fig. 17.42.
func Orifice(perfArea, thicknessOverDiameter float64) float64 {
	r := thicknessOverDiameter
	return 0.8*perfArea - 0.7667*math.Pow(r, 4) + 2.0287*math.Pow(r, 3) -
		1.6231*r*r + 0.5431*r + 0.5796
}

// Entrainment returns the fractional entrainment ψ at flow parameter flv and
// percent flooding pf (as a fraction, 0.8 for 80 %).
//
// Sieve: Towler fig. 17.36, a power law in flv whose prefactor and exponent are
// cubics in pf. Caps: logarithmic in flv, fitted to Fair's bubble-cap chart.
func Entrainment(t TrayType, flv, pf float64) float64 {
	if t == Caps {
		return -0.0154*pf*math.Log(flv) - 0.0044
	}
	num := 0.009*math.Pow(pf, 3) - 0.007*pf*pf + 0.0023*pf + 0.0005
	pow := -6.7762*math.Pow(pf, 3) + 14.882*pf*pf - 11.118*pf + 1.866
	return num * math.Pow(flv, pow)
}

// SlotOpening returns the fraction of the slot height opened by vapour for the
// slot loading group g.
//
// Based on: Bolles slot-opening chart.
func SlotOpening(g float64) float64 {
	return -0.1413*g*g + 0.8705*g + 0.0212
}

// DryCapCoefficient returns the dry cap pressure-drop coefficient K_c for the
// annular-to-riser area ratio r.
//
// Based on: Bolles dry cap pressure-drop chart.
func DryCapCoefficient(r float64) float64 {
	return 0.0299*r*r - 0.2026*r + 0.7794
}

// AerationFactor returns the liquid aeration factor β for the active-area
// F-factor u_a·√ρ_V in Pa^0.5.
//
// Based on: Bolles aeration-factor chart.
func AerationFactor(f float64) float64 {
	return 0.0236*f*f - 0.2199*f + 1.0097
}
