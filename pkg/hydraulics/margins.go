package hydraulics

import (
	"math"

	"github.com/kelvinchanwh/distillation-optimizer/pkg/column"
)

// Margins are the signed feasibility checks of one section. A margin of zero
// or more passes.
type Margins struct {
	Weeping     float64 `json:"weeping"`     // m/s above the weep point
	Entrainment float64 `json:"entrainment"` // fraction
	Flooding    float64 `json:"flooding"`    // fraction below design flooding
	Backup      float64 `json:"backup"`      // mm below the backup limit
	Residence   float64 `json:"residence"`   // s above the minimum

	// Bubble-cap trays only.
	SlotOpening       float64 `json:"slot_opening,omitempty"`
	SlotSealLower     float64 `json:"slot_seal_lower,omitempty"` // mm
	SlotSealUpper     float64 `json:"slot_seal_upper,omitempty"` // mm
	VaporDistribution float64 `json:"vapor_distribution,omitempty"`
}

// Margin names as reported by [Margins.Named].
const (
	MarginWeeping           = "weeping"
	MarginEntrainment       = "entrainment"
	MarginFlooding          = "flooding"
	MarginBackup            = "backup"
	MarginResidence         = "residence"
	MarginSlotOpening       = "slot_opening"
	MarginSlotSealLower     = "slot_seal_lower"
	MarginSlotSealUpper     = "slot_seal_upper"
	MarginVaporDistribution = "vapor_distribution"
)

// Named is one margin with its name.
type Named struct {
	Name  string
	Value float64
}

// Named lists the margins that apply to tray type t in a fixed order.
func (m Margins) Named(t column.TrayType) []Named {
	out := []Named{
		{MarginWeeping, m.Weeping},
		{MarginEntrainment, m.Entrainment},
		{MarginFlooding, m.Flooding},
		{MarginBackup, m.Backup},
		{MarginResidence, m.Residence},
	}
	if t == column.Caps {
		out = append(out,
			Named{MarginSlotOpening, m.SlotOpening},
			Named{MarginSlotSealLower, m.SlotSealLower},
			Named{MarginSlotSealUpper, m.SlotSealUpper},
			Named{MarginVaporDistribution, m.VaporDistribution},
		)
	}
	return out
}

// Pass reports whether every applicable margin is non-negative.
func (m Margins) Pass(t column.TrayType) bool {
	for _, n := range m.Named(t) {
		if n.Value < 0 {
			return false
		}
	}
	return true
}

// Failing returns the names of the applicable margins below zero.
func (m Margins) Failing(t column.TrayType) []string {
	var out []string
	for _, n := range m.Named(t) {
		if n.Value < 0 {
			out = append(out, n.Name)
		}
	}
	return out
}

func (m Margins) finite() bool {
	for _, v := range []float64{
		m.Weeping, m.Entrainment, m.Flooding, m.Backup, m.Residence,
		m.SlotOpening, m.SlotSealLower, m.SlotSealUpper, m.VaporDistribution,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
