package optimizer

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/kelvinchanwh/distillation-optimizer/pkg/column"
	coded "github.com/kelvinchanwh/distillation-optimizer/pkg/errors"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/hydraulics"
)

func TestEncodingDecode(t *testing.T) {
	var enc Encoding
	enc.SetDefaults()
	tests := []struct {
		name         string
		xn, xf       float64
		wantN, wantF int
		wantErr      bool
	}{
		{"documented default", 0.72, 0.45, 36, 23, false},
		{"full scale", 1, 0.98, 50, 50, true},
		{"too few stages", 0.04, 0.02, 2, 1, true},
		{"feed at top", 0.6, 0.01, 30, 1, true},
		{"rounding", 0.51, 0.3, 26, 15, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, f, err := enc.Decode(tt.xn, tt.xf)
			if n != tt.wantN || f != tt.wantF {
				t.Errorf("Decode(%v, %v) = %d, %d, want %d, %d", tt.xn, tt.xf, n, f, tt.wantN, tt.wantF)
			}
			if (err != nil) != tt.wantErr {
				t.Errorf("Decode() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !coded.Is(err, coded.ErrCodeInvalidConfig) {
				t.Errorf("Decode() error code = %s, want INVALID_CONFIG", coded.GetCode(err))
			}
		})
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in         string
		want       string
		dims       int
		hydraulics bool
	}{
		{"const-pressure", ModeConstPressure, 5, false},
		{"SPLIT", ModeSplitPressure, 6, false},
		{"hydraulics", ModeHydraulics, 7, true},
		{"", ModeHydraulics, 7, true},
	}
	for _, tt := range tests {
		m, err := ParseMode(tt.in, Encoding{})
		if err != nil {
			t.Fatalf("ParseMode(%q) error = %v", tt.in, err)
		}
		if m.Name() != tt.want || len(m.Variables()) != tt.dims || m.Hydraulics() != tt.hydraulics {
			t.Errorf("ParseMode(%q) = %s/%d/%v, want %s/%d/%v", tt.in,
				m.Name(), len(m.Variables()), m.Hydraulics(), tt.want, tt.dims, tt.hydraulics)
		}
	}
	if _, err := ParseMode("simplex", Encoding{}); !coded.Is(err, coded.ErrCodeInvalidInput) {
		t.Errorf("ParseMode(simplex) error = %v, want INVALID_INPUT", err)
	}
}

func testAnchors() Anchors {
	return Anchors{
		CondenserPressure: 1.2,
		RectifyingDrop:    0.006,
		StrippingDrop:     0.008,
		TraySpacing:       0.55,
		MinimumReflux:     1.4,
		RefluxRatio:       1.54,
		Stages:            30,
		FeedStage:         15,
	}
}

func TestModeConfigure(t *testing.T) {
	base := baseColumn()
	for _, name := range []string{ModeConstPressure, ModeSplitPressure, ModeHydraulics} {
		t.Run(name, func(t *testing.T) {
			m, _ := ParseMode(name, Encoding{})
			x := m.Start(testAnchors())
			if len(x) != len(m.Variables()) {
				t.Fatalf("Start() has %d values, want %d", len(x), len(m.Variables()))
			}
			b := m.Bounds(testAnchors(), DefaultLimits())
			if !b.Contains(x) {
				t.Errorf("start %v outside bounds %v..%v", x, b.Lower, b.Upper)
			}

			cfg, err := m.Configure(x, base)
			if err != nil {
				t.Fatalf("Configure() error = %v", err)
			}
			if cfg.Stages != 30 || cfg.FeedStage != 15 {
				t.Errorf("stages = %d/%d, want 30/15", cfg.Stages, cfg.FeedStage)
			}
			if cfg.RefluxRatio != 1.54 || cfg.CondenserPressure != 1.2 {
				t.Errorf("reflux/pressure = %v/%v", cfg.RefluxRatio, cfg.CondenserPressure)
			}
			if err := cfg.Validate(); err != nil {
				t.Errorf("decoded configuration invalid: %v", err)
			}
			if cfg.Pressure.Stripping.Start != 15 || cfg.Pressure.Stripping.End != 30 {
				t.Errorf("stripping section = %+v", cfg.Pressure.Stripping)
			}

			wantSpacing := base.TraySpacing
			if m.Hydraulics() {
				wantSpacing = 0.55
			}
			if cfg.TraySpacing != wantSpacing {
				t.Errorf("tray spacing = %v, want %v", cfg.TraySpacing, wantSpacing)
			}

			shown := m.Display(x)
			if shown[len(shown)-2-boolInt(m.Hydraulics())] != 30 {
				t.Errorf("Display() = %v, want decoded stage count", shown)
			}

			if _, err := m.Configure(x[:2], base); !coded.Is(err, coded.ErrCodeInternal) {
				t.Errorf("Configure(short) error = %v, want INTERNAL_ERROR", err)
			}
		})
	}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func TestConstPressureUsesOneDrop(t *testing.T) {
	m := ConstPressure{Encoding: Encoding{StageScale: 50, FeedScale: 51}}
	x := m.Start(testAnchors())
	if got := m.Vector(x).PressureDrop; math.Abs(got-0.007) > 1e-15 {
		t.Errorf("start drop = %v, want mean 0.007", got)
	}
	cfg, _ := m.Configure(x, baseColumn())
	if cfg.Pressure.Rectifying.Drop != cfg.Pressure.Stripping.Drop {
		t.Errorf("drops differ: %+v", cfg.Pressure)
	}
}

func TestBoundsUnitMapping(t *testing.T) {
	b := Bounds{Lower: []float64{1, -2}, Upper: []float64{3, 2}}
	u := b.toUnit([]float64{2, 0})
	if u[0] != 0.5 || u[1] != 0.5 {
		t.Errorf("toUnit = %v, want [0.5 0.5]", u)
	}
	x, outside := b.fromUnit([]float64{1.5, -0.5})
	if x[0] != 3 || x[1] != -2 {
		t.Errorf("fromUnit = %v, want projection [3 -2]", x)
	}
	if outside != 0.5 {
		t.Errorf("outside = %v, want 0.5", outside)
	}
	if got := b.Clamp([]float64{0, 5}); got[0] != 1 || got[1] != 2 {
		t.Errorf("Clamp = %v", got)
	}
}

func TestNewAnchors(t *testing.T) {
	var enc Encoding
	enc.SetDefaults()
	a, err := NewAnchors(baseColumn(), shortcutEstimate(1.4, 80, 70), 1.1, enc)
	if err != nil {
		t.Fatal(err)
	}
	if a.Stages != 50 || a.FeedStage != 49 {
		t.Errorf("anchors = %d/%d, want capped at 50/49", a.Stages, a.FeedStage)
	}
	if math.Abs(a.RefluxRatio-1.54) > 1e-12 {
		t.Errorf("start reflux = %v, want 1.54", a.RefluxRatio)
	}
	if _, err := NewAnchors(baseColumn(), shortcutEstimate(-0.2, 30, 15), 1.1, enc); !coded.Is(err, coded.ErrCodeNumerical) {
		t.Errorf("NewAnchors(negative Rmin) error = %v, want NUMERICAL", err)
	}
}

func TestPenaltyPolicy(t *testing.T) {
	p := PenaltyPolicy{Tolerance: 0.01}
	tests := []struct {
		name string
		err  error
		last float64
		ok   bool
		want float64
	}{
		{"after success", coded.New(coded.ErrCodeNotConverged, "x"), 2.5, true, 2.52},
		{"before success", coded.New(coded.ErrCodeNumerical, "x"), 0, false, DefaultFallback},
		{"non-finite last", errors.New("boom"), math.Inf(1), true, DefaultFallback},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Penalty(tt.err, tt.last, tt.ok)
			if err != nil {
				t.Fatalf("Penalty() error = %v", err)
			}
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Penalty() = %v, want %v", got, tt.want)
			}
		})
	}
	if _, err := p.Penalty(context.DeadlineExceeded, 1, true); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Penalty(deadline) error = %v, want passthrough", err)
	}
}

func TestConstraintSet(t *testing.T) {
	s, err := NewConstraintSet(specs(), Scales{}, true, column.Caps)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := s.Len(), 5+2*9; got != want {
		t.Errorf("Len() = %d, want %d", got, want)
	}
	if got := s.Names()[5]; got != "top."+hydraulics.MarginWeeping {
		t.Errorf("first margin = %q, want top.weeping", got)
	}
	if got := s.scale(hydraulics.MarginSlotSealUpper); got != DefaultSlotSealScale {
		t.Errorf("slot seal scale = %v", got)
	}

	plain, _ := NewConstraintSet(specs(), Scales{}, false, column.Sieve)
	res := &column.SimulationResult{
		Stages:     make([]column.Stage, 36),
		Feed:       column.Stream{Flow: 100, Composition: map[string]float64{"BENZENE": 0.5, "TOLUENE": 0.5}},
		Distillate: column.Stream{Flow: 50, Composition: map[string]float64{"BENZENE": 0.97, "TOLUENE": 0.03}},
		Bottoms:    column.Stream{Flow: 50, Composition: map[string]float64{"BENZENE": 0.03, "TOLUENE": 0.97}},
		KValues:    map[string]float64{"BENZENE": 1.4, "TOLUENE": 0.6},
	}
	res.Stages[17].Pressure = 1.6
	c, err := plain.Evaluate(baseColumn(), res, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{0.02, 0.03, 0.02, 0.03, -0.1}
	for i := range want {
		if math.Abs(c[i]-want[i]) > 1e-9 {
			t.Errorf("%s = %v, want %v", plain.Names()[i], c[i], want[i])
		}
	}
	if got := Violation(c); math.Abs(got-0.1) > 1e-9 {
		t.Errorf("Violation() = %v, want 0.1", got)
	}
}
