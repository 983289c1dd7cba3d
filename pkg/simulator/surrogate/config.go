package surrogate

import (
	"github.com/kelvinchanwh/distillation-optimizer/pkg/errors"
)

// Component describes one species of the feed.
type Component struct {
	Name          string  `json:"name" toml:"name"`
	BoilingPoint  float64 `json:"boiling_point" toml:"boiling_point"`   // normal boiling point, °C
	MW            float64 `json:"mw" toml:"mw"`                         // kg/kmol
	LiquidDensity float64 `json:"liquid_density" toml:"liquid_density"` // kg/m³ near the boiling point
	FeedFraction  float64 `json:"feed_fraction" toml:"feed_fraction"`   // mole fraction
}

// Config is the fixed process data of the surrogate.
type Config struct {
	Components []Component `json:"components" toml:"components"`

	FeedFlow     float64 `json:"feed_flow" toml:"feed_flow"`         // kmol/h, saturated liquid
	FeedPressure float64 `json:"feed_pressure" toml:"feed_pressure"` // bar
	Distillate   float64 `json:"distillate" toml:"distillate"`       // kmol/h, held fixed

	// SizingFlooding is the flooding fraction trays are sized to.
	SizingFlooding float64 `json:"sizing_flooding" toml:"sizing_flooding"`

	// DowncomerFraction is one downcomer's share of the column cross-section.
	DowncomerFraction float64 `json:"downcomer_fraction" toml:"downcomer_fraction"`

	// WeirFraction is the weir length over the column diameter.
	WeirFraction float64 `json:"weir_fraction" toml:"weir_fraction"`
}

const (
	DefaultSizingFlooding    = 0.8
	DefaultDowncomerFraction = 0.12
	DefaultWeirFraction      = 0.77
)

// ValidateAndSetDefaults fills zero tuning fields and checks the process
// data.
func (c *Config) ValidateAndSetDefaults() error {
	if c.SizingFlooding == 0 {
		c.SizingFlooding = DefaultSizingFlooding
	}
	if c.DowncomerFraction == 0 {
		c.DowncomerFraction = DefaultDowncomerFraction
	}
	if c.WeirFraction == 0 {
		c.WeirFraction = DefaultWeirFraction
	}

	if len(c.Components) < 2 {
		return errors.New(errors.ErrCodeInvalidInput, "surrogate needs at least two components, got %d", len(c.Components))
	}
	seen := make(map[string]bool, len(c.Components))
	var total float64
	for _, comp := range c.Components {
		if err := errors.ValidateComponentName(comp.Name); err != nil {
			return err
		}
		if seen[comp.Name] {
			return errors.New(errors.ErrCodeInvalidInput, "component %s listed twice", comp.Name)
		}
		seen[comp.Name] = true
		for name, v := range map[string]float64{
			"mw":             comp.MW,
			"liquid_density": comp.LiquidDensity,
			"feed_fraction":  comp.FeedFraction,
		} {
			if err := errors.ValidatePositive(comp.Name+"."+name, v); err != nil {
				return err
			}
		}
		if comp.BoilingPoint <= -273.15 {
			return errors.New(errors.ErrCodeInvalidInput, "%s boiling point %v °C below absolute zero", comp.Name, comp.BoilingPoint)
		}
		total += comp.FeedFraction
	}
	if total < 0.999 || total > 1.001 {
		return errors.New(errors.ErrCodeInvalidInput, "feed fractions sum to %v, want 1", total)
	}

	if err := errors.ValidatePositive("feed_flow", c.FeedFlow); err != nil {
		return err
	}
	if err := errors.ValidatePositive("feed_pressure", c.FeedPressure); err != nil {
		return err
	}
	if err := errors.ValidatePositive("distillate", c.Distillate); err != nil {
		return err
	}
	if c.Distillate >= c.FeedFlow {
		return errors.New(errors.ErrCodeInvalidInput, "distillate %v kmol/h must be below feed %v kmol/h", c.Distillate, c.FeedFlow)
	}
	for name, v := range map[string]float64{
		"sizing_flooding":    c.SizingFlooding,
		"downcomer_fraction": c.DowncomerFraction,
		"weir_fraction":      c.WeirFraction,
	} {
		if err := errors.ValidateFraction(name, v); err != nil {
			return err
		}
	}
	if c.DowncomerFraction >= 0.5 {
		return errors.New(errors.ErrCodeInvalidInput, "downcomer fraction %v leaves no active area", c.DowncomerFraction)
	}
	return nil
}
