package optimizer

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/kelvinchanwh/distillation-optimizer/pkg/shortcut"
)

// Report summarizes a finished run.
type Report struct {
	RunID     string `json:"run_id"`
	Mode      string `json:"mode"`
	Converged bool   `json:"converged"`
	Status    string `json:"status"`

	Iterations  int           `json:"iterations"`
	Outer       int           `json:"outer_iterations"`
	Evaluations int           `json:"evaluations"`
	Failures    int           `json:"failures"`
	Elapsed     time.Duration `json:"elapsed"`
	SimTime     time.Duration `json:"sim_time"`

	Estimate *shortcut.Estimate `json:"estimate,omitempty"`

	// Final is the re-simulated solver result, or the best trial when that
	// simulation failed. It is nil only if no trial ever succeeded.
	Final    *Evaluation `json:"final,omitempty"`
	FinalErr error       `json:"-"`

	// Names labels Final.Constraints.
	Names []string `json:"constraint_names"`
}

// TAC returns the final total annualized cost in $/yr, or 0 without a
// final design.
func (r *Report) TAC() float64 {
	if r.Final == nil || r.Final.Cost == nil {
		return 0
	}
	return r.Final.Cost.TAC
}

// Failing lists the constraints of the final design below -tol.
func (r *Report) Failing(tol float64) []string {
	if r.Final == nil {
		return nil
	}
	var out []string
	for i, c := range r.Final.Constraints {
		if c < -tol && i < len(r.Names) {
			out = append(out, r.Names[i])
		}
	}
	return out
}

// WriteText writes the plain-text summary block.
func (r *Report) WriteText(w io.Writer) error {
	var b strings.Builder
	status := "not converged"
	if r.Converged {
		status = "converged"
	}
	fmt.Fprintf(&b, "Optimization %s (%s, %s mode)\n", status, r.Status, r.Mode)
	fmt.Fprintf(&b, "  run id            %s\n", r.RunID)
	fmt.Fprintf(&b, "  iterations        %d (%d outer)\n", r.Iterations, r.Outer)
	fmt.Fprintf(&b, "  evaluations       %d (%d failed)\n", r.Evaluations, r.Failures)
	fmt.Fprintf(&b, "  elapsed           %s (simulator %s)\n", r.Elapsed.Round(time.Millisecond), r.SimTime.Round(time.Millisecond))
	if r.FinalErr != nil {
		fmt.Fprintf(&b, "  final simulation  failed: %v\n", r.FinalErr)
	}

	if r.Final == nil {
		b.WriteString("  no successful evaluation\n")
		_, err := io.WriteString(w, b.String())
		return err
	}
	cfg := r.Final.Config
	fmt.Fprintf(&b, "  stages            %d\n", cfg.Stages)
	fmt.Fprintf(&b, "  feed stage        %d\n", cfg.FeedStage)
	fmt.Fprintf(&b, "  reflux ratio      %.4f\n", cfg.RefluxRatio)
	fmt.Fprintf(&b, "  tray spacing      %.3f m\n", cfg.TraySpacing)
	fmt.Fprintf(&b, "  condenser         %.4f bar\n", cfg.CondenserPressure)
	fmt.Fprintf(&b, "  rectifying drop   %.5f bar/stage (stages %d-%d)\n",
		cfg.Pressure.Rectifying.Drop, cfg.Pressure.Rectifying.Start, cfg.Pressure.Rectifying.End)
	fmt.Fprintf(&b, "  stripping drop    %.5f bar/stage (stages %d-%d)\n",
		cfg.Pressure.Stripping.Drop, cfg.Pressure.Stripping.Start, cfg.Pressure.Stripping.End)
	if c := r.Final.Cost; c != nil {
		fmt.Fprintf(&b, "  diameter          %.3f m\n", c.Diameter)
		fmt.Fprintf(&b, "  height            %.2f m\n", c.Height)
		fmt.Fprintf(&b, "  capital           $%.0f\n", c.Capital)
		fmt.Fprintf(&b, "  energy            $%.0f/yr (%s steam)\n", c.EnergyCost, c.Steam)
		fmt.Fprintf(&b, "  TAC               $%.0f/yr\n", c.TAC)
	}
	if failing := r.Failing(0); len(failing) > 0 {
		fmt.Fprintf(&b, "  violated          %s\n", strings.Join(failing, ", "))
	}
	_, err := io.WriteString(w, b.String())
	return err
}
