// Package config loads design cases from TOML files.
//
// A case file describes one column design problem: the base configuration,
// the feed, the product specs and, optionally, tuning for the optimizer,
// the hydraulic and cost models, the shortcut estimates and the offline
// surrogate simulator. Sections left out take their package defaults.
//
//	name = "benzene-toluene"
//
//	[column]
//	condenser_pressure = 1.12
//	reflux_ratio = 1.8
//	stages = 36
//	feed_stage = 18
//	tray_spacing = 0.6
//	efficiency = 0.75
//	pressure_drop = 0.0068
//
//	[feed]
//	flow = 100.0
//	pressure = 1.5
//
//	[specs]
//	main = "BENZENE"
//	purity = { lower = 0.95, upper = 1.0 }
//	recovery = { lower = 0.95, upper = 1.0 }
//
// See testdata/benzene_toluene.toml for every section.
package config

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/kelvinchanwh/distillation-optimizer/pkg/column"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/costing"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/errors"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/hydraulics"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/optimizer"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/pipeline"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/shortcut"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/simulator/surrogate"
)

// Case is a decoded case file.
type Case struct {
	Name string `toml:"name"`

	Column     ColumnSection     `toml:"column"`
	Feed       FeedSection       `toml:"feed"`
	Specs      SpecsSection      `toml:"specs"`
	Optimizer  OptimizerSection  `toml:"optimizer"`
	Hydraulics hydraulics.Params `toml:"hydraulics"`
	Costing    costing.Params    `toml:"costing"`
	Shortcut   shortcut.Params   `toml:"shortcut"`
	Simulator  SimulatorSection  `toml:"simulator"`
	Surrogate  SurrogateSection  `toml:"surrogate"`
}

// ColumnSection is the base configuration. The scalar efficiency and
// pressure drop apply to both sections unless a per-section value is set.
type ColumnSection struct {
	CondenserPressure float64         `toml:"condenser_pressure"` // bar
	RefluxRatio       float64         `toml:"reflux_ratio"`
	Stages            int             `toml:"stages"`
	FeedStage         int             `toml:"feed_stage"`
	TraySpacing       float64         `toml:"tray_spacing"` // m
	Passes            int             `toml:"passes"`
	TrayType          column.TrayType `toml:"tray_type"`

	Efficiency           float64 `toml:"efficiency"`
	RectifyingEfficiency float64 `toml:"rectifying_efficiency"`
	StrippingEfficiency  float64 `toml:"stripping_efficiency"`

	PressureDrop   float64 `toml:"pressure_drop"` // bar per stage
	RectifyingDrop float64 `toml:"rectifying_drop"`
	StrippingDrop  float64 `toml:"stripping_drop"`
}

// FeedSection describes the feed stream.
type FeedSection struct {
	Flow     float64 `toml:"flow"`     // kmol/h
	Pressure float64 `toml:"pressure"` // bar, upstream of the feed valve
}

// SpecsSection holds the product requirements.
type SpecsSection struct {
	Main     string          `toml:"main"`
	Purity   optimizer.Range `toml:"purity"`
	Recovery optimizer.Range `toml:"recovery"`
}

// OptimizerSection tunes the search.
type OptimizerSection struct {
	Mode          string  `toml:"mode"`
	Tolerance     float64 `toml:"tolerance"`
	ConstraintTol float64 `toml:"constraint_tolerance"`
	MaxIterations int     `toml:"max_iterations"`
	MaxOuter      int     `toml:"max_outer"`
	Fallback      float64 `toml:"fallback"`
	StageScale    int     `toml:"stage_scale"`
	FeedScale     int     `toml:"feed_scale"`

	Scales optimizer.Scales `toml:"scales"`
	Bounds optimizer.Limits `toml:"bounds"`
}

// SimulatorSection selects an out-of-process simulator. Without a URL the
// surrogate is used.
type SimulatorSection struct {
	URL     string        `toml:"url"`
	Timeout time.Duration `toml:"timeout"`
}

// SurrogateSection is the process data of the offline simulator. Feed flow
// and pressure come from [FeedSection].
type SurrogateSection struct {
	Distillate        float64               `toml:"distillate"` // kmol/h
	SizingFlooding    float64               `toml:"sizing_flooding"`
	DowncomerFraction float64               `toml:"downcomer_fraction"`
	WeirFraction      float64               `toml:"weir_fraction"`
	Components        []surrogate.Component `toml:"components"`
}

// Load reads and validates a case file.
func Load(path string) (*Case, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidCaseFile, err, "open case file")
	}
	defer f.Close()

	c, err := Decode(f)
	if err != nil {
		return nil, err
	}
	if c.Name == "" {
		c.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return c, nil
}

// Decode parses a case from r. Unknown keys are an error so typos do not
// silently fall back to defaults.
func Decode(r io.Reader) (*Case, error) {
	var c Case
	md, err := toml.NewDecoder(r).Decode(&c)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidCaseFile, err, "parse case file")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, errors.New(errors.ErrCodeInvalidCaseFile, "unknown keys in case file: %s", strings.Join(keys, ", "))
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks the sections every case needs. Model parameters are
// checked when the pipeline applies its defaults.
func (c *Case) Validate() error {
	if err := c.Column.Configuration().Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidCaseFile, err, "[column]")
	}
	if err := errors.ValidatePositive("feed.pressure", c.Feed.Pressure); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidCaseFile, err, "[feed]")
	}
	if err := c.specs().Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidCaseFile, err, "[specs]")
	}
	return nil
}

// Configuration returns the base column configuration.
func (s ColumnSection) Configuration() column.Configuration {
	eff := column.Efficiency{
		Rectifying: or(s.RectifyingEfficiency, s.Efficiency),
		Stripping:  or(s.StrippingEfficiency, s.Efficiency),
	}
	passes := s.Passes
	if passes == 0 {
		passes = 1
	}
	return column.Configuration{
		CondenserPressure: s.CondenserPressure,
		Pressure:          column.SplitProfile(s.Stages, s.FeedStage, or(s.RectifyingDrop, s.PressureDrop), or(s.StrippingDrop, s.PressureDrop)),
		RefluxRatio:       s.RefluxRatio,
		Stages:            s.Stages,
		FeedStage:         s.FeedStage,
		TraySpacing:       s.TraySpacing,
		Efficiency:        eff,
		Passes:            passes,
		TrayType:          s.TrayType,
	}
}

func (c *Case) specs() optimizer.Specs {
	return optimizer.Specs{
		Main:         c.Specs.Main,
		Purity:       c.Specs.Purity,
		Recovery:     c.Specs.Recovery,
		FeedPressure: c.Feed.Pressure,
	}
}

// Options converts the case into validated pipeline options.
func (c *Case) Options() (pipeline.Options, error) {
	o := c.Optimizer
	opts := pipeline.Options{
		Base:  c.Column.Configuration(),
		Specs: c.specs(),
		Mode:  o.Mode,
		Encoding: optimizer.Encoding{
			StageScale: o.StageScale,
			FeedScale:  o.FeedScale,
		},
		Limits: o.Bounds,
		Scales: o.Scales,
		Settings: optimizer.Settings{
			Tolerance:           o.Tolerance,
			ConstraintTolerance: o.ConstraintTol,
			MaxIterations:       o.MaxIterations,
			MaxOuter:            o.MaxOuter,
		},
		Penalty:    optimizer.PenaltyPolicy{Tolerance: o.Tolerance, Fallback: o.Fallback},
		Shortcut:   c.Shortcut,
		Hydraulics: c.Hydraulics,
		Costing:    c.Costing,
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return pipeline.Options{}, err
	}
	return opts, nil
}

// SurrogateConfig returns the surrogate process data.
func (c *Case) SurrogateConfig() surrogate.Config {
	s := c.Surrogate
	return surrogate.Config{
		Components:        s.Components,
		FeedFlow:          c.Feed.Flow,
		FeedPressure:      c.Feed.Pressure,
		Distillate:        s.Distillate,
		SizingFlooding:    s.SizingFlooding,
		DowncomerFraction: s.DowncomerFraction,
		WeirFraction:      s.WeirFraction,
	}
}

// NewSurrogate builds the offline simulator described by the case.
func (c *Case) NewSurrogate() (*surrogate.Simulator, error) {
	if len(c.Surrogate.Components) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidCaseFile, "case %q has no [[surrogate.components]]", c.Name)
	}
	return surrogate.New(c.SurrogateConfig())
}

func or(v, fallback float64) float64 {
	if v != 0 {
		return v
	}
	return fallback
}
