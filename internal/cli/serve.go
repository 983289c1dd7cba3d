package cli

import (
	"github.com/spf13/cobra"

	"github.com/kelvinchanwh/distillation-optimizer/pkg/simulator"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/simulator/remote"
)

// simulatorCommand creates the simulator command group.
func (c *CLI) simulatorCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulator",
		Short: "Run and inspect out-of-process simulators",
	}

	cmd.AddCommand(c.simulatorServeCommand())

	return cmd
}

// simulatorServeCommand creates the "simulator serve" subcommand, which
// exposes a case's surrogate over HTTP.
func (c *CLI) simulatorServeCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve <case.toml>",
		Short: "Serve the case's surrogate simulator over HTTP",
		Long: `Serve the surrogate simulator described by a case file on the remote
simulator protocol, so optimize and size can reach it with --simulator.

  POST ` + remote.SimulatePath + `  simulate one configuration
  GET  ` + remote.HealthPath + `    liveness`,
		Example: `  distopt simulator serve benzene_toluene.toml --addr :8088
  distopt optimize benzene_toluene.toml --simulator http://localhost:8088`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx).WithPrefix("server")

			cs, err := loadCase(args[0], &simFlags{})
			if err != nil {
				return err
			}
			sim, err := cs.NewSurrogate()
			if err != nil {
				return err
			}

			h := remote.Handler(simulator.Instrumented(sim), logger)
			return remote.Serve(ctx, addr, h, logger)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", defaultAddr, "listen address")

	return cmd
}
