package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// shortcutCommand creates the shortcut command for Fenske-Underwood-Gilliland
// estimates.
func (c *CLI) shortcutCommand() *cobra.Command {
	var sim simFlags

	cmd := &cobra.Command{
		Use:   "shortcut <case.toml>",
		Short: "Print the shortcut estimates that seed an optimization",
		Long: `Simulate the base column and derive the Fenske minimum stages, Underwood
minimum reflux, Gilliland actual stages and Kirkbride feed stage from its
relative volatilities.`,
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

			session, err := runner.Initialize(ctx, opts)
			if err != nil {
				return err
			}
			est := session.Estimate

			fmt.Println(StyleTitle.Render("Shortcut estimates for " + cs.Name))
			printKeyValue("Nmin", fmt.Sprintf("%d", est.MinimumStages))
			printKeyValue("theta", fmt.Sprintf("%.4f", est.Theta))
			printKeyValue("Rmin", fmt.Sprintf("%.4f", est.MinimumReflux))
			printKeyValue("N", fmt.Sprintf("%d", est.ActualStages))
			printKeyValue("NF", fmt.Sprintf("%d", est.FeedStage))
			printKeyValue("D", fmt.Sprintf("%.3f kmol/h", est.DistillateRate))

			printNewline()
			printNextStep("Optimize from these estimates", "distopt optimize "+args[0])
			return nil
		},
	}

	sim.register(cmd)

	return cmd
}
