package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kelvinchanwh/distillation-optimizer/pkg/config"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/optimizer"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/pipeline"
)

// optimizeFlags holds the tuning overrides for the optimize command.
type optimizeFlags struct {
	sim       simFlags
	mode      string
	maxIter   int
	tolerance float64
	feasTol   float64
	tui       bool
	output    string
}

// apply lets flags override the case's [optimizer] section.
func (f *optimizeFlags) apply(c *config.Case) {
	if f.mode != "" {
		c.Optimizer.Mode = f.mode
	}
	if f.maxIter > 0 {
		c.Optimizer.MaxIterations = f.maxIter
	}
	if f.tolerance > 0 {
		c.Optimizer.Tolerance = f.tolerance
	}
	if f.feasTol > 0 {
		c.Optimizer.ConstraintTol = f.feasTol
	}
}

// optimizeCommand creates the optimize command for minimizing annualized cost.
func (c *CLI) optimizeCommand() *cobra.Command {
	var f optimizeFlags

	cmd := &cobra.Command{
		Use:   "optimize <case.toml>",
		Short: "Minimize the total annualized cost of a column",
		Long: `Minimize the total annualized cost of the column described by a case file.

The base configuration is simulated first and the shortcut method seeds the
search. The solver then varies reflux ratio, stage count and feed stage, and
depending on --mode the column pressures and tray spacing, subject to the
product specifications and the tray hydraulic margins.

Modes:
  hydraulics  pressures, spacing and all tray margins (default)
  const       one pressure drop for the whole column, specs only
  split       separate rectifying and stripping drops, specs only`,
		Example: `  distopt optimize benzene_toluene.toml
  distopt optimize case.toml --mode const --max-iter 500
  distopt optimize case.toml --simulator http://localhost:8088 --tui`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cs, err := loadCase(args[0], &f.sim)
			if err != nil {
				return err
			}
			f.apply(cs)

			opts, err := cs.Options()
			if err != nil {
				return err
			}

			runner, err := c.newRunner(ctx, cs, &f.sim)
			if err != nil {
				return err
			}
			defer runner.Close()

			var report *optimizer.Report
			if f.tui {
				report, err = c.runOptimizeTUI(ctx, runner, opts, cs.Name)
			} else {
				report, err = c.runOptimize(ctx, runner, opts, cs.Name)
			}
			if err != nil {
				return err
			}

			printNewline()
			if err := report.WriteText(os.Stdout); err != nil {
				return err
			}
			if report.Final != nil {
				printNewline()
				fmt.Println(renderConstraints(report.Names, report.Final.Constraints, opts.Settings.ConstraintTolerance))
			}

			if failing := report.Failing(opts.Settings.ConstraintTolerance); len(failing) > 0 {
				printWarning("Final design violates %v", failing)
			}

			if f.output != "" {
				if err := writeJSONFile(f.output, report); err != nil {
					return err
				}
				printFile(f.output)
			}

			if !report.Converged {
				printNewline()
				printNextStep("Retry with a larger budget", fmt.Sprintf("distopt optimize %s --max-iter %d", args[0], 2*opts.Settings.MaxIterations))
			}
			return nil
		},
	}

	f.sim.register(cmd)
	cmd.Flags().StringVar(&f.mode, "mode", "", "optimization mode: hydraulics, const or split")
	cmd.Flags().IntVar(&f.maxIter, "max-iter", 0, "solver iteration cap (default from the case file)")
	cmd.Flags().Float64Var(&f.tolerance, "tolerance", 0, "objective convergence tolerance in TAC/1e6")
	cmd.Flags().Float64Var(&f.feasTol, "constraint-tolerance", 0, "largest scaled constraint shortfall counted as feasible")
	cmd.Flags().BoolVar(&f.tui, "tui", false, "show live progress in an interactive view")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "also write the report as JSON to this file")

	return cmd
}

// runOptimize runs the search with one progress line per iteration on stdout.
func (c *CLI) runOptimize(ctx context.Context, runner *pipeline.Runner, opts pipeline.Options, name string) (*optimizer.Report, error) {
	logger := loggerFromContext(ctx)
	opts.Logger = logger.WithPrefix("optimizer")
	opts.Progress = optimizer.ProgressPrinter(os.Stdout)

	printInfo("Optimizing %s (%s mode)", name, opts.Mode)
	prog := newProgress(logger)
	report, err := runner.Optimize(ctx, opts)
	if err != nil {
		return nil, err
	}
	prog.done(fmt.Sprintf("Finished %d iterations", report.Iterations))
	return report, nil
}

// writeJSONFile writes v as indented JSON.
func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
