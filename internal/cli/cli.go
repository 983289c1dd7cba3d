package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/kelvinchanwh/distillation-optimizer/pkg/buildinfo"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/cache"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/config"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/httputil"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/pipeline"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/simulator"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/simulator/remote"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "distopt"

	// defaultAddr is where "simulator serve" listens.
	defaultAddr = ":8088"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
	LogWarn  = log.WarnLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "distopt sizes distillation columns and minimizes their annualized cost",
		Long: `distopt optimizes a distillation column design for total annualized cost.

It drives a process simulator over reflux ratio, stage count, feed stage,
column pressures and tray spacing, sizes the trays and rejects designs that
weep, flood, entrain or back up.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.Logger.GetLevel() <= log.DebugLevel {
				installDebugHooks(c.Logger)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.optimizeCommand())
	root.AddCommand(c.sizeCommand())
	root.AddCommand(c.shortcutCommand())
	root.AddCommand(c.simulatorCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version, commit and build date",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), buildinfo.String())
		},
	})

	return root
}

// =============================================================================
// Shared Flags
// =============================================================================

// simFlags select the simulator and the result cache.
type simFlags struct {
	url     string
	timeout time.Duration
	noCache bool
	redis   string
}

func (f *simFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.url, "simulator", "", "remote simulator base URL (default: the case's surrogate)")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 0, "per-request timeout for the remote simulator")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the simulation cache")
	cmd.Flags().StringVar(&f.redis, "redis", "", "cache simulations in Redis at this URL (redis://host:port/db)")
}

// apply lets flags override the case's [simulator] section.
func (f *simFlags) apply(c *config.Case) {
	if f.url != "" {
		c.Simulator.URL = f.url
	}
	if f.timeout > 0 {
		c.Simulator.Timeout = f.timeout
	}
}

// =============================================================================
// Runner Factory
// =============================================================================

// loadCase reads a case file and applies the simulator flags.
func loadCase(path string, f *simFlags) (*config.Case, error) {
	c, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	f.apply(c)
	return c, nil
}

// newSimulator returns the remote simulator named by the case, or its
// surrogate.
func newSimulator(c *config.Case) (simulator.Simulator, error) {
	if c.Simulator.URL != "" {
		client, err := remote.NewClient(c.Simulator.URL, remote.WithHTTPClient(httputil.NewClient(c.Simulator.Timeout)))
		if err != nil {
			return nil, err
		}
		return client, nil
	}
	s, err := c.NewSurrogate()
	if err != nil {
		return nil, err
	}
	return s, nil
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, cs *config.Case, f *simFlags) (*pipeline.Runner, error) {
	sim, err := newSimulator(cs)
	if err != nil {
		return nil, err
	}
	store, err := newCache(ctx, f)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("simulator", "name", simulator.Name(sim))
	return pipeline.NewRunner(sim, store, nil, c.Logger), nil
}

func newCache(ctx context.Context, f *simFlags) (cache.Cache, error) {
	if f.noCache {
		return cache.NewNullCache(), nil
	}
	if f.redis != "" {
		return cache.NewRedisCache(ctx, f.redis)
	}
	return cache.NewFileCache(cacheDir())
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the simulation cache directory (~/.cache/distopt/ on
// Linux, honouring XDG_CACHE_HOME).
func cacheDir() string {
	return cache.DefaultDir()
}
