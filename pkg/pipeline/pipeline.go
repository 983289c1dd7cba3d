// Package pipeline runs the column design workflow end to end.
//
// The workflow has three entry points that CLI commands and the simulator
// server share, so every surface sizes and prices a column the same way:
//
//  1. Initialize: simulate the base configuration once and compute the
//     shortcut estimates that anchor the search
//  2. Optimize: minimize the total annualized cost subject to the product
//     specs and, in hydraulics mode, every tray margin
//  3. Evaluate: simulate, size and price one design without searching
//
// # Usage
//
//	runner := pipeline.NewRunner(sim, cache.NewNullCache(), nil, logger)
//	defer runner.Close()
//
//	report, err := runner.Optimize(ctx, opts)
//	if err != nil {
//	    return err
//	}
//	report.WriteText(os.Stdout)
package pipeline

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/kelvinchanwh/distillation-optimizer/pkg/column"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/costing"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/hydraulics"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/optimizer"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/shortcut"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/simulator"
)

// DefaultMode is the search mode used when none is named.
const DefaultMode = optimizer.ModeHydraulics

// =============================================================================
// Options
// =============================================================================

// Options is the full description of a design case. Zero-valued tuning
// sections take their package defaults.
type Options struct {
	Base  column.Configuration `json:"column"`
	Specs optimizer.Specs      `json:"specs"`
	Mode  string               `json:"mode,omitempty"`

	Encoding   optimizer.Encoding      `json:"encoding"`
	Limits     optimizer.Limits        `json:"limits"`
	Scales     optimizer.Scales        `json:"scales"`
	Settings   optimizer.Settings      `json:"settings"`
	Penalty    optimizer.PenaltyPolicy `json:"penalty"`
	Shortcut   shortcut.Params         `json:"shortcut"`
	Hydraulics hydraulics.Params       `json:"hydraulics"`
	Costing    costing.Params          `json:"costing"`

	// Runtime options (not serialized)
	Progress optimizer.ProgressFunc `json:"-"`
	Logger   *log.Logger            `json:"-"`

	mode      optimizer.Mode
	validated bool
}

// ValidateAndSetDefaults checks the case and applies defaults. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.Base.Validate(); err != nil {
		return err
	}
	if err := o.Specs.Validate(); err != nil {
		return err
	}
	if o.Mode == "" {
		o.Mode = DefaultMode
	}
	o.Encoding.SetDefaults()
	mode, err := optimizer.ParseMode(o.Mode, o.Encoding)
	if err != nil {
		return err
	}
	o.mode, o.Mode = mode, mode.Name()

	if err := o.Limits.ValidateAndSetDefaults(); err != nil {
		return err
	}
	o.Scales.SetDefaults()
	if err := o.Settings.ValidateAndSetDefaults(); err != nil {
		return err
	}
	if err := o.Shortcut.ValidateAndSetDefaults(); err != nil {
		return err
	}
	if err := o.Hydraulics.ValidateAndSetDefaults(); err != nil {
		return err
	}
	o.Costing.SetDefaults()
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// OptimizerConfig builds the optimizer configuration for a run against sim.
func (o *Options) OptimizerConfig(sim simulator.Simulator) (optimizer.Config, error) {
	if err := o.ValidateAndSetDefaults(); err != nil {
		return optimizer.Config{}, err
	}
	return optimizer.Config{
		Simulator:  sim,
		Base:       o.Base,
		Mode:       o.mode,
		Specs:      o.Specs,
		Scales:     o.Scales,
		Limits:     o.Limits,
		Encoding:   o.Encoding,
		Settings:   o.Settings,
		Penalty:    o.Penalty,
		Shortcut:   o.Shortcut,
		Hydraulics: o.Hydraulics,
		Costing:    o.Costing,
		Progress:   o.Progress,
		Logger:     o.Logger,
	}, nil
}
