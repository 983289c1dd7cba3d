package costing

import (
	"math"
	"testing"

	"github.com/kelvinchanwh/distillation-optimizer/pkg/column"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/errors"
)

func fixture(reboilerT float64) (column.Configuration, *column.SimulationResult) {
	cfg := column.Configuration{
		CondenserPressure: 1.1,
		Pressure:          column.UniformProfile(10, 5, 0.01),
		RefluxRatio:       1.2,
		Stages:            10,
		FeedStage:         5,
		TraySpacing:       0.5,
		Efficiency:        column.UniformEfficiency(1),
		Passes:            1,
	}
	stages := make([]column.Stage, cfg.Stages)
	for i := range stages {
		stages[i].Temperature = 80 + float64(i)*(reboilerT-80)/float64(cfg.Stages-1)
	}
	return cfg, &column.SimulationResult{
		Stages:        stages,
		CondenserDuty: -500,
		ReboilerDuty:  600,
		Top:           column.TrayGeometry{Diameter: 1.2},
		Bottom:        column.TrayGeometry{Diameter: 1.4},
	}
}

func TestSelectSteam(t *testing.T) {
	def := DefaultParams().Steam
	tests := []struct {
		name string
		t    float64
		sel  SteamSelection
		want Steam
	}{
		{"below crossover", 140, def, LowPressure},
		{"above crossover", 155, def, HighPressure},
		{"at crossover", 150, def, HighPressure},
		{"reversed below", 140, SteamSelection{Crossover: 150}, HighPressure},
		{"reversed above", 155, SteamSelection{Crossover: 150}, LowPressure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SelectSteam(tt.t, tt.sel); got != tt.want {
				t.Errorf("SelectSteam(%v) = %v, want %v", tt.t, got, tt.want)
			}
		})
	}
}

func TestEvaluateSteamGrade(t *testing.T) {
	for _, tt := range []struct {
		reboilerT float64
		want      Steam
		price     float64
	}{
		{140, LowPressure, 7.78},
		{155, HighPressure, 9.88},
	} {
		cfg, res := fixture(tt.reboilerT)
		b, err := Evaluate(cfg, res, Params{})
		if err != nil {
			t.Fatal(err)
		}
		if b.Steam != tt.want {
			t.Errorf("T=%v: Steam = %v, want %v", tt.reboilerT, b.Steam, tt.want)
		}
		want := tt.price * 600 * 0.1320349248
		if math.Abs(b.SteamCost-want) > 1e-9 {
			t.Errorf("T=%v: SteamCost = %v, want %v", tt.reboilerT, b.SteamCost, want)
		}
	}
}

func TestEvaluateBreakdown(t *testing.T) {
	cfg, res := fixture(140)
	b, err := Evaluate(cfg, res, Params{})
	if err != nil {
		t.Fatal(err)
	}

	if b.TAC <= 0 {
		t.Errorf("TAC = %v, want > 0", b.TAC)
	}
	if b.Diameter != 1.4 {
		t.Errorf("Diameter = %v, want the larger section 1.4", b.Diameter)
	}
	if math.Abs(b.Height-1.2*0.5*10) > 1e-12 {
		t.Errorf("Height = %v, want 6", b.Height)
	}
	// Condenser at 80 °C against 25→35 °C cooling water.
	if want := ChenLMTD(45, 55); math.Abs(b.CondenserLMTD-want) > 1e-12 {
		t.Errorf("CondenserLMTD = %v, want %v", b.CondenserLMTD, want)
	}
	wantArea := 500 * 0.0041868 / (0.85 * b.CondenserLMTD)
	if math.Abs(b.CondenserArea-wantArea) > 1e-12 {
		t.Errorf("CondenserArea = %v, want %v (duty sign ignored)", b.CondenserArea, wantArea)
	}
	sum := b.Capital/3 + b.CoolingCost + b.SteamCost
	if math.Abs(b.TAC-sum) > 1e-9*b.TAC {
		t.Errorf("TAC = %v, want %v", b.TAC, sum)
	}
}

func TestEvaluateTemperatureCross(t *testing.T) {
	// Reboiler above the HP steam temperature.
	cfg, res := fixture(260)
	_, err := Evaluate(cfg, res, Params{})
	if !errors.Is(err, errors.ErrCodeNumerical) {
		t.Errorf("Evaluate() error = %v, want %s", err, errors.ErrCodeNumerical)
	}
}

func TestChenLMTD(t *testing.T) {
	if got := ChenLMTD(10, 10); math.Abs(got-10) > 1e-12 {
		t.Errorf("ChenLMTD(10, 10) = %v, want 10", got)
	}
	// True LMTD of 10 and 40 is 21.64; Chen is within 1 %.
	exact := 30 / math.Log(4)
	if got := ChenLMTD(10, 40); math.Abs(got-exact)/exact > 0.01 {
		t.Errorf("ChenLMTD(10, 40) = %v, want ≈ %v", got, exact)
	}
}

func TestCapitalCorrelations(t *testing.T) {
	if got := ExchangerCost(1); got != 7296 {
		t.Errorf("ExchangerCost(1) = %v, want 7296", got)
	}
	if got := ShellCost(1, 1); got != 17640 {
		t.Errorf("ShellCost(1, 1) = %v, want 17640", got)
	}
	if ExchangerCost(20) <= ExchangerCost(10) || ShellCost(2, 10) <= ShellCost(1, 10) {
		t.Error("capital cost not increasing with size")
	}
}

func TestTACPositive(t *testing.T) {
	for _, duty := range []float64{1, 250, 5e4} {
		cfg, res := fixture(120)
		res.CondenserDuty, res.ReboilerDuty = -duty, duty
		b, err := Evaluate(cfg, res, Params{})
		if err != nil {
			t.Fatal(err)
		}
		if !(b.TAC > 0) {
			t.Errorf("duty %v: TAC = %v, want > 0", duty, b.TAC)
		}
	}
}
