package pipeline

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/kelvinchanwh/distillation-optimizer/pkg/column"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/costing"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/hydraulics"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/optimizer"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/units"
)

// Design is one configuration simulated, sized and priced.
type Design struct {
	Config    column.Configuration     `json:"config"`
	Result    *column.SimulationResult `json:"result"`
	Partition *column.Partition        `json:"partition"`
	Metrics   *hydraulics.Metrics      `json:"metrics"`
	Cost      *costing.Breakdown       `json:"cost"`

	// Constraints are the product-specification and margin values, labelled by Names,
	// exactly as the hydraulics-mode optimizer would see them.
	Constraints []float64     `json:"constraints"`
	Names       []string      `json:"constraint_names"`
	SimTime     time.Duration `json:"sim_time"`
}

// Failing lists the constraints below -tol.
func (d *Design) Failing(tol float64) []string {
	var out []string
	for i, c := range d.Constraints {
		if c < -tol {
			out = append(out, d.Names[i])
		}
	}
	return out
}

// Feasible reports whether every constraint holds to within tol.
func (d *Design) Feasible(tol float64) bool {
	return optimizer.Violation(d.Constraints) <= tol
}

// WriteText writes the product split, the margins of both sections and the
// cost breakdown.
func (d *Design) WriteText(w io.Writer) error {
	var b strings.Builder
	cfg := d.Config
	fmt.Fprintf(&b, "Column: %d stages, feed on %d, reflux %.4f, spacing %.3f m, %s trays\n",
		cfg.Stages, cfg.FeedStage, cfg.RefluxRatio, cfg.TraySpacing, cfg.TrayType)
	if p := d.Partition; p != nil {
		fmt.Fprintf(&b, "  keys              %s / %s\n", p.LightKey, p.HeavyKey)
		fmt.Fprintf(&b, "  purity            %.5f\n", p.Purity)
		fmt.Fprintf(&b, "  recovery          %.5f\n", p.Recovery)
	}
	fmt.Fprintf(&b, "  condenser duty    %.1f kW\n", -units.CalPerSecToKW(d.Result.CondenserDuty))
	fmt.Fprintf(&b, "  reboiler duty     %.1f kW\n", units.CalPerSecToKW(d.Result.ReboilerDuty))

	if m := d.Metrics; m != nil {
		fmt.Fprintf(&b, "\n  %-20s %10s %10s\n", "margin", "top", "bottom")
		top, bottom := m.Top.Margins.Named(cfg.TrayType), m.Bottom.Margins.Named(cfg.TrayType)
		for i := range top {
			fmt.Fprintf(&b, "  %-20s %10.4g %10.4g\n", top[i].Name, top[i].Value, bottom[i].Value)
		}
		fmt.Fprintf(&b, "  %-20s %9.1f%% %9.1f%%\n", "flooding", 100*m.Top.PercentFlooding, 100*m.Bottom.PercentFlooding)
	}

	if c := d.Cost; c != nil {
		fmt.Fprintf(&b, "\n  diameter          %.3f m\n", c.Diameter)
		fmt.Fprintf(&b, "  height            %.2f m\n", c.Height)
		fmt.Fprintf(&b, "  capital           $%.0f\n", c.Capital)
		fmt.Fprintf(&b, "  energy            $%.0f/yr (%s steam)\n", c.EnergyCost, c.Steam)
		fmt.Fprintf(&b, "  TAC               $%.0f/yr\n", c.TAC)
	}
	if failing := d.Failing(0); len(failing) > 0 {
		fmt.Fprintf(&b, "  violated          %s\n", strings.Join(failing, ", "))
	}
	_, err := io.WriteString(w, b.String())
	return err
}
