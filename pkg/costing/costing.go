// Package costing prices a simulated column as a total annualized cost: the
// capital of the shell and both exchangers spread over a payback period, plus
// a year of cooling water and steam.
package costing

import (
	"fmt"
	"math"

	"github.com/kelvinchanwh/distillation-optimizer/pkg/column"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/errors"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/units"
)

// Steam is a reboiler steam grade.
type Steam string

const (
	LowPressure  Steam = "lp"
	HighPressure Steam = "hp"
)

// SteamSelection decides the steam grade from the reboiler temperature.
// With LowPressureBelow set, temperatures below Crossover use low-pressure
// steam; otherwise the assignment is reversed.
type SteamSelection struct {
	Crossover        float64 `json:"crossover" toml:"crossover"` // °C
	LowPressureBelow bool    `json:"low_pressure_below" toml:"low_pressure_below"`
}

// SelectSteam returns the steam grade for a reboiler at temperature t (°C).
func SelectSteam(t float64, sel SteamSelection) Steam {
	below := t < sel.Crossover
	if below == sel.LowPressureBelow {
		return LowPressure
	}
	return HighPressure
}

// Utility is an inlet/outlet temperature pair in °C.
type Utility struct {
	In  float64 `json:"in" toml:"in"`
	Out float64 `json:"out" toml:"out"`
}

// Params are the utility and price assumptions of the cost model.
type Params struct {
	CoolingWater Utility `json:"cooling_water" toml:"cooling_water"`
	HPSteam      Utility `json:"hp_steam" toml:"hp_steam"`
	LPSteam      Utility `json:"lp_steam" toml:"lp_steam"`

	CondenserU float64 `json:"condenser_u" toml:"condenser_u"` // kW/m²K
	ReboilerU  float64 `json:"reboiler_u" toml:"reboiler_u"`   // kW/m²K

	CoolingPrice float64 `json:"cooling_price" toml:"cooling_price"` // $/GJ
	HPPrice      float64 `json:"hp_price" toml:"hp_price"`
	LPPrice      float64 `json:"lp_price" toml:"lp_price"`

	PaybackYears float64 `json:"payback_years" toml:"payback_years"`

	Steam SteamSelection `json:"steam" toml:"steam"`
}

// DefaultParams returns the reference utility set.
func DefaultParams() Params {
	return Params{
		CoolingWater: Utility{In: 25, Out: 35},
		HPSteam:      Utility{In: 254, Out: 253},
		LPSteam:      Utility{In: 160, Out: 159},
		CondenserU:   0.85,
		ReboilerU:    0.90,
		CoolingPrice: 0.354,
		HPPrice:      9.88,
		LPPrice:      7.78,
		PaybackYears: 3,
		Steam:        SteamSelection{Crossover: 150, LowPressureBelow: true},
	}
}

// SetDefaults fills zero fields from [DefaultParams]. A zero Steam selection
// takes the default crossover and direction as a pair.
func (p *Params) SetDefaults() {
	d := DefaultParams()
	if p.CoolingWater == (Utility{}) {
		p.CoolingWater = d.CoolingWater
	}
	if p.HPSteam == (Utility{}) {
		p.HPSteam = d.HPSteam
	}
	if p.LPSteam == (Utility{}) {
		p.LPSteam = d.LPSteam
	}
	for _, f := range []struct {
		v *float64
		d float64
	}{
		{&p.CondenserU, d.CondenserU},
		{&p.ReboilerU, d.ReboilerU},
		{&p.CoolingPrice, d.CoolingPrice},
		{&p.HPPrice, d.HPPrice},
		{&p.LPPrice, d.LPPrice},
		{&p.PaybackYears, d.PaybackYears},
	} {
		if *f.v == 0 {
			*f.v = f.d
		}
	}
	if p.Steam == (SteamSelection{}) {
		p.Steam = d.Steam
	}
}

// Breakdown itemizes the total annualized cost. Money is in $ and $/yr.
type Breakdown struct {
	CondenserLMTD float64 `json:"condenser_lmtd"` // K
	ReboilerLMTD  float64 `json:"reboiler_lmtd"`  // K
	CondenserArea float64 `json:"condenser_area"` // m²
	ReboilerArea  float64 `json:"reboiler_area"`  // m²
	Steam         Steam   `json:"steam"`

	Diameter float64 `json:"diameter"` // m
	Height   float64 `json:"height"`   // m

	CondenserCost float64 `json:"condenser_cost"`
	ReboilerCost  float64 `json:"reboiler_cost"`
	ShellCost     float64 `json:"shell_cost"`
	Capital       float64 `json:"capital"`

	CoolingCost float64 `json:"cooling_cost"`
	SteamCost   float64 `json:"steam_cost"`
	EnergyCost  float64 `json:"energy_cost"`

	TAC float64 `json:"tac"`
}

func (b *Breakdown) String() string {
	return fmt.Sprintf("TAC $%.0f/yr (capital $%.0f over payback, energy $%.0f/yr, %s steam)",
		b.TAC, b.Capital, b.EnergyCost, b.Steam)
}

// Evaluate prices the column. Temperatures come from the condenser (stage 1)
// and reboiler (stage N); the shell diameter is the larger of the two
// sections' diameters.
func Evaluate(cfg column.Configuration, res *column.SimulationResult, p Params) (*Breakdown, error) {
	p.SetDefaults()
	if res == nil || len(res.Stages) < 2 {
		return nil, errors.New(errors.ErrCodeNumerical, "costing needs condenser and reboiler stages")
	}
	if err := errors.ValidatePositive("payback_years", p.PaybackYears); err != nil {
		return nil, err
	}

	condT := res.Stages[0].Temperature
	rebT := res.Stages[len(res.Stages)-1].Temperature

	b := &Breakdown{Steam: SelectSteam(rebT, p.Steam)}
	steam, price := p.LPSteam, p.LPPrice
	if b.Steam == HighPressure {
		steam, price = p.HPSteam, p.HPPrice
	}

	var err error
	if b.CondenserLMTD, err = lmtd("condenser", condT-p.CoolingWater.Out, condT-p.CoolingWater.In); err != nil {
		return nil, err
	}
	if b.ReboilerLMTD, err = lmtd("reboiler", steam.In-rebT, steam.Out-rebT); err != nil {
		return nil, err
	}

	condDuty := math.Abs(res.CondenserDuty)
	rebDuty := math.Abs(res.ReboilerDuty)
	b.CondenserArea = units.CalPerSecToKW(condDuty) / (p.CondenserU * b.CondenserLMTD)
	b.ReboilerArea = units.CalPerSecToKW(rebDuty) / (p.ReboilerU * b.ReboilerLMTD)

	b.Diameter = math.Max(res.Top.Diameter, res.Bottom.Diameter)
	b.Height = cfg.Height()

	b.CondenserCost = ExchangerCost(b.CondenserArea)
	b.ReboilerCost = ExchangerCost(b.ReboilerArea)
	b.ShellCost = ShellCost(b.Diameter, b.Height)
	b.Capital = b.CondenserCost + b.ReboilerCost + b.ShellCost

	b.CoolingCost = p.CoolingPrice * units.CalPerSecToGJPerYear(condDuty)
	b.SteamCost = price * units.CalPerSecToGJPerYear(rebDuty)
	b.EnergyCost = b.CoolingCost + b.SteamCost

	b.TAC = b.Capital/p.PaybackYears + b.EnergyCost
	if math.IsNaN(b.TAC) || math.IsInf(b.TAC, 0) {
		return nil, errors.New(errors.ErrCodeNumerical, "total annualized cost is %v", b.TAC)
	}
	return b, nil
}

func lmtd(name string, dt1, dt2 float64) (float64, error) {
	if !(dt1 > 0 && dt2 > 0) {
		return 0, errors.New(errors.ErrCodeNumerical, "%s temperature cross: ΔT1=%.2f ΔT2=%.2f", name, dt1, dt2)
	}
	return ChenLMTD(dt1, dt2), nil
}

// ChenLMTD is Chen's approximation of the log-mean temperature difference.
func ChenLMTD(dt1, dt2 float64) float64 {
	return math.Cbrt(dt1 * dt2 * (dt1 + dt2) / 2)
}

// ExchangerCost is the installed cost ($) of a heat exchanger of the given
// area (m²).
func ExchangerCost(area float64) float64 {
	return 7296 * math.Pow(area, 0.65)
}

// ShellCost is the installed cost ($) of a column shell of diameter d and
// height h (m).
func ShellCost(d, h float64) float64 {
	return 17640 * math.Pow(d, 1.066) * math.Pow(h, 0.802)
}
