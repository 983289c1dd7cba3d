package column

import "math"

// MinPressureDrop is the floor applied to every per-stage pressure drop (bar).
const MinPressureDrop = 1e-6

// Section is a contiguous run of stages sharing one per-stage pressure drop.
type Section struct {
	Start int     `json:"start" toml:"start"`
	End   int     `json:"end" toml:"end"`
	Drop  float64 `json:"drop" toml:"drop"` // bar per stage
}

// Contains reports whether stage i lies in the section.
func (s Section) Contains(i int) bool {
	return i >= s.Start && i <= s.End
}

// PressureProfile splits the column into rectifying and stripping sections.
type PressureProfile struct {
	Rectifying Section `json:"rectifying" toml:"rectifying"`
	Stripping  Section `json:"stripping" toml:"stripping"`
}

// SplitProfile builds the standard partition for a column of the given size:
// stages 1..feed-1 rectifying and feed..stages stripping.
func SplitProfile(stages, feed int, rectifyingDrop, strippingDrop float64) PressureProfile {
	return PressureProfile{
		Rectifying: Section{Start: 1, End: feed - 1, Drop: rectifyingDrop},
		Stripping:  Section{Start: feed, End: stages, Drop: strippingDrop},
	}
}

// UniformProfile is [SplitProfile] with the same drop in both sections.
func UniformProfile(stages, feed int, drop float64) PressureProfile {
	return SplitProfile(stages, feed, drop, drop)
}

// CheckStagePressure validates the section boundaries of p against a column of
// the given stage count and returns a copy with both drops floored at
// [MinPressureDrop].
//
// It reports false when the rectifying section ends at or after the start of
// the stripping section, when the stripping section runs past the last stage,
// or when either section is empty or starts before stage 1.
func CheckStagePressure(p PressureProfile, stages int) (PressureProfile, bool) {
	r, s := p.Rectifying, p.Stripping
	switch {
	case r.Start < 1, r.End < r.Start:
		return p, false
	case s.End < s.Start:
		return p, false
	case r.End >= s.Start:
		return p, false
	case s.End > stages:
		return p, false
	}
	if !(r.Drop >= MinPressureDrop) {
		p.Rectifying.Drop = MinPressureDrop
	}
	if !(s.Drop >= MinPressureDrop) {
		p.Stripping.Drop = MinPressureDrop
	}
	return p, true
}

// StagePressures returns the pressure (bar) of every stage, index 0 being
// stage 1. Stage 1 sits at the condenser pressure; each lower stage adds the
// drop of the section it belongs to. Stages outside both sections use the
// rectifying drop.
func StagePressures(condenser float64, p PressureProfile, stages int) []float64 {
	out := make([]float64, stages)
	if stages == 0 {
		return out
	}
	out[0] = condenser
	for i := 2; i <= stages; i++ {
		drop := p.Rectifying.Drop
		if p.Stripping.Contains(i) {
			drop = p.Stripping.Drop
		}
		out[i-1] = out[i-2] + math.Max(drop, MinPressureDrop)
	}
	return out
}
