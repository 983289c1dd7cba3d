package column

import (
	"math"

	"github.com/kelvinchanwh/distillation-optimizer/pkg/errors"
)

// Efficiency holds the Murphree tray efficiency of each section.
type Efficiency struct {
	Rectifying float64 `json:"rectifying" toml:"rectifying"`
	Stripping  float64 `json:"stripping" toml:"stripping"`
}

// UniformEfficiency returns the same efficiency for both sections.
func UniformEfficiency(e float64) Efficiency {
	return Efficiency{Rectifying: e, Stripping: e}
}

// Configuration is the complete set of manipulated variables handed to a
// process simulator.
type Configuration struct {
	CondenserPressure float64         `json:"condenser_pressure" toml:"condenser_pressure"` // bar
	Pressure          PressureProfile `json:"pressure" toml:"pressure"`
	RefluxRatio       float64         `json:"reflux_ratio" toml:"reflux_ratio"`
	Stages            int             `json:"stages" toml:"stages"`
	FeedStage         int             `json:"feed_stage" toml:"feed_stage"`
	TraySpacing       float64         `json:"tray_spacing" toml:"tray_spacing"` // m
	Efficiency        Efficiency      `json:"efficiency" toml:"efficiency"`
	Passes            int             `json:"passes" toml:"passes"`
	TrayType          TrayType        `json:"tray_type" toml:"tray_type"`
}

// Validate checks the configuration invariants. It returns an
// [errors.ErrCodeInvalidConfig] error describing the first violation.
func (c Configuration) Validate() error {
	if !(c.CondenserPressure > 0) || math.IsInf(c.CondenserPressure, 0) {
		return errors.New(errors.ErrCodeInvalidConfig, "condenser pressure must be positive, got %v", c.CondenserPressure)
	}
	if !(c.RefluxRatio > 0) || math.IsInf(c.RefluxRatio, 0) {
		return errors.New(errors.ErrCodeInvalidConfig, "reflux ratio must be positive, got %v", c.RefluxRatio)
	}
	if c.Stages < 3 {
		return errors.New(errors.ErrCodeInvalidConfig, "column needs at least 3 stages, got %d", c.Stages)
	}
	if c.FeedStage <= 1 || c.FeedStage >= c.Stages {
		return errors.New(errors.ErrCodeInvalidConfig, "feed stage %d must lie strictly between 1 and %d", c.FeedStage, c.Stages)
	}
	if !(c.TraySpacing > 0) {
		return errors.New(errors.ErrCodeInvalidConfig, "tray spacing must be positive, got %v", c.TraySpacing)
	}
	for name, e := range map[string]float64{"rectifying": c.Efficiency.Rectifying, "stripping": c.Efficiency.Stripping} {
		if !(e > 0 && e <= 1) {
			return errors.New(errors.ErrCodeInvalidConfig, "%s efficiency must be within (0, 1], got %v", name, e)
		}
	}
	if c.Passes < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "liquid passes must be at least 1, got %d", c.Passes)
	}
	if c.TrayType != Sieve && c.TrayType != Caps {
		return errors.New(errors.ErrCodeInvalidConfig, "unknown tray type %d", int(c.TrayType))
	}
	if _, ok := CheckStagePressure(c.Pressure, c.Stages); !ok {
		return errors.New(errors.ErrCodeInvalidConfig,
			"pressure sections [%d-%d] and [%d-%d] do not partition %d stages",
			c.Pressure.Rectifying.Start, c.Pressure.Rectifying.End,
			c.Pressure.Stripping.Start, c.Pressure.Stripping.End, c.Stages)
	}
	return nil
}

// Normalized returns a copy whose pressure drops are floored at
// [MinPressureDrop]. Invalid section boundaries are left untouched for
// [Configuration.Validate] to report.
func (c Configuration) Normalized() Configuration {
	if p, ok := CheckStagePressure(c.Pressure, c.Stages); ok {
		c.Pressure = p
	}
	return c
}

// WithStages returns a copy resized to the given stage count and feed stage.
// The pressure sections are rebuilt around the new feed stage, keeping their
// per-stage drops.
func (c Configuration) WithStages(stages, feed int) Configuration {
	c.Pressure = SplitProfile(stages, feed, c.Pressure.Rectifying.Drop, c.Pressure.Stripping.Drop)
	c.Stages = stages
	c.FeedStage = feed
	return c
}

// StagePressures returns the pressure of every stage (index 0 is stage 1).
func (c Configuration) StagePressures() []float64 {
	return StagePressures(c.CondenserPressure, c.Pressure, c.Stages)
}

// Height returns the shell height in metres: 1.2 × tray spacing × stages.
func (c Configuration) Height() float64 {
	return 1.2 * c.TraySpacing * float64(c.Stages)
}
