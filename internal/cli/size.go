package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// sizeCommand creates the size command for evaluating a single design.
func (c *CLI) sizeCommand() *cobra.Command {
	var (
		sim    simFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "size <case.toml>",
		Short: "Simulate, size and price the case's column as written",
		Long: `Simulate the base column of a case file once, size its trays and price it.

Prints the product compositions, duties, every hydraulic margin for the top
and bottom trays and the cost breakdown. Margins below zero are violations
the optimizer would reject.`,
		Example: `  distopt size benzene_toluene.toml
  distopt size case.toml -o design.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cs, err := loadCase(args[0], &sim)
			if err != nil {
				return err
			}
			opts, err := cs.Options()
			if err != nil {
				return err
			}

			runner, err := c.newRunner(ctx, cs, &sim)
			if err != nil {
				return err
			}
			defer runner.Close()

			spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Simulating %s...", cs.Name))
			spinner.Start()
			design, err := runner.Evaluate(ctx, opts)
			if err != nil {
				spinner.StopWithError("Simulation failed")
				return err
			}
			spinner.StopWithSuccess(fmt.Sprintf("Simulated %s in %s", cs.Name, design.SimTime.Round(time.Millisecond)))

			printNewline()
			if err := design.WriteText(os.Stdout); err != nil {
				return err
			}
			printNewline()
			fmt.Println(renderConstraints(design.Names, design.Constraints, opts.Settings.ConstraintTolerance))

			if failing := design.Failing(opts.Settings.ConstraintTolerance); len(failing) > 0 {
				printWarning("Infeasible: %v", failing)
				printNextStep("Search for a feasible design", "distopt optimize "+args[0])
			} else {
				printSuccess("All specifications and margins hold")
			}

			if output != "" {
				if err := writeJSONFile(output, design); err != nil {
					return err
				}
				printFile(output)
			}
			return nil
		},
	}

	sim.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "also write the design as JSON to this file")

	return cmd
}
