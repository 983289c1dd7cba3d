package optimizer

import (
	"context"
	stderrors "errors"
	"io"
	"math"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/kelvinchanwh/distillation-optimizer/pkg/column"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/errors"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/shortcut"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/simulator"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/simulator/surrogate"
)

func baseColumn() column.Configuration {
	return column.Configuration{
		CondenserPressure: 1.0,
		Pressure:          column.UniformProfile(36, 18, 0.0068),
		RefluxRatio:       1.8,
		Stages:            36,
		FeedStage:         18,
		TraySpacing:       0.6,
		Efficiency:        column.UniformEfficiency(0.75),
		Passes:            1,
		TrayType:          column.Sieve,
	}
}

func benzeneToluene(t *testing.T) simulator.Simulator {
	t.Helper()
	s, err := surrogate.New(surrogate.Config{
		Components: []surrogate.Component{
			{Name: "BENZENE", BoilingPoint: 80.1, MW: 78.11, LiquidDensity: 815, FeedFraction: 0.5},
			{Name: "TOLUENE", BoilingPoint: 110.6, MW: 92.14, LiquidDensity: 780, FeedFraction: 0.5},
		},
		FeedFlow:     100,
		FeedPressure: 1.5,
		Distillate:   50,
	})
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func specs() Specs {
	return Specs{
		Main:         "BENZENE",
		Purity:       Range{Lower: 0.95, Upper: 1},
		Recovery:     Range{Lower: 0.95, Upper: 1},
		FeedPressure: 1.5,
	}
}

func testConfig(t *testing.T, sim simulator.Simulator, name string) Config {
	t.Helper()
	mode, err := ParseMode(name, Encoding{})
	if err != nil {
		t.Fatal(err)
	}
	return Config{
		Simulator: sim,
		Base:      baseColumn(),
		Mode:      mode,
		Specs:     specs(),
		Shortcut:  shortcut.Params{Seeds: [2]float64{1.05, 2.3}},
		Settings:  Settings{MaxIterations: 20},
		Logger:    log.New(io.Discard),
	}
}

var failing = simulator.Func(func(context.Context, column.Configuration) (*column.SimulationResult, error) {
	return nil, simulator.NotConverged("stub always fails")
})

func TestObjectivePenaltyPath(t *testing.T) {
	o, err := New(testConfig(t, failing, ModeConstPressure))
	if err != nil {
		t.Fatal(err)
	}
	x := ConstPressure{Encoding: o.cfg.Encoding}.Start(Anchors{
		CondenserPressure: 1.2, RectifyingDrop: 0.01, StrippingDrop: 0.01,
		RefluxRatio: 1.5, Stages: 30, FeedStage: 15,
	})
	for i := 0; i < 3; i++ {
		got, err := o.Objective(context.Background(), x)
		if err != nil {
			t.Fatalf("Objective() error = %v, want penalty", err)
		}
		if math.IsNaN(got) || math.IsInf(got, 0) || got != DefaultFallback {
			t.Fatalf("Objective() = %v, want finite fallback %v", got, DefaultFallback)
		}
	}
	st := o.State()
	if st.Failures != 3 || st.TotalEvaluations != 3 {
		t.Errorf("failures = %d, evaluations = %d, want 3 and 3", st.Failures, st.TotalEvaluations)
	}
	var evErr *EvaluationError
	if !stderrors.As(st.LastErr, &evErr) || evErr.Step != StepSimulate {
		t.Errorf("LastErr = %v, want simulate EvaluationError", st.LastErr)
	}
}

func TestObjectivePenaltyAfterSuccess(t *testing.T) {
	good := benzeneToluene(t)
	fail := false
	sim := simulator.Func(func(ctx context.Context, cfg column.Configuration) (*column.SimulationResult, error) {
		if fail {
			return nil, errors.New(errors.ErrCodeNumerical, "zero vapor flow")
		}
		return good.Simulate(ctx, cfg)
	})
	o, err := New(testConfig(t, sim, ModeConstPressure))
	if err != nil {
		t.Fatal(err)
	}
	enc := o.cfg.Encoding
	x := ConstPressureVector{1.0, 0.0068, 1.8, enc.StageFraction(36), enc.FeedFraction(18)}.Slice()

	tac, err := o.Objective(context.Background(), x)
	if err != nil {
		t.Fatalf("Objective() error = %v", err)
	}
	if !(tac > 0) || tac >= DefaultFallback {
		t.Fatalf("Objective() = %v, want a positive TAC/1e6", tac)
	}

	fail = true
	got, err := o.Objective(context.Background(), x)
	if err != nil {
		t.Fatalf("Objective() error = %v", err)
	}
	if want := tac + 2*DefaultTolerance; math.Abs(got-want) > 1e-12 {
		t.Errorf("penalty = %v, want %v", got, want)
	}
}

func TestObjectiveDecodeFailureIsPenalized(t *testing.T) {
	o, err := New(testConfig(t, benzeneToluene(t), ModeConstPressure))
	if err != nil {
		t.Fatal(err)
	}
	// Feed stage 26 of a 20-stage column.
	x := ConstPressureVector{1.0, 0.0068, 1.8, 0.4, 0.5}.Slice()
	got, err := o.Objective(context.Background(), x)
	if err != nil || got != DefaultFallback {
		t.Errorf("Objective() = %v, %v; want fallback penalty", got, err)
	}
	if !errors.Is(o.State().LastErr, errors.ErrCodeInvalidConfig) {
		t.Errorf("LastErr = %v, want INVALID_CONFIG", o.State().LastErr)
	}
}

func TestObjectiveCanceled(t *testing.T) {
	o, err := New(testConfig(t, simulator.Func(func(ctx context.Context, _ column.Configuration) (*column.SimulationResult, error) {
		return nil, ctx.Err()
	}), ModeConstPressure))
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	x := ConstPressureVector{1.0, 0.0068, 1.8, 0.72, 0.35}.Slice()
	if _, err := o.Objective(ctx, x); !stderrors.Is(err, context.Canceled) {
		t.Errorf("Objective() error = %v, want context.Canceled", err)
	}
}

func TestInitialize(t *testing.T) {
	o, err := New(testConfig(t, benzeneToluene(t), ModeConstPressure))
	if err != nil {
		t.Fatal(err)
	}
	est, err := o.Initialize(context.Background())
	if err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if est.MinimumStages < 1 || est.ActualStages <= est.MinimumStages || !(est.MinimumReflux > 0) {
		t.Errorf("estimate = %+v", est)
	}
	if o.anchors.Stages < 3 || o.anchors.Stages > DefaultStageScale {
		t.Errorf("anchor stages = %d", o.anchors.Stages)
	}
	if lo, hi := o.bounds.Lower[2], o.bounds.Upper[2]; lo != est.MinimumReflux || math.Abs(hi-1.2*lo) > 1e-12 {
		t.Errorf("reflux bounds = [%v, %v], want [Rmin, 1.2 Rmin]", lo, hi)
	}

	cfg := testConfig(t, benzeneToluene(t), ModeConstPressure)
	cfg.Shortcut.Seeds = [2]float64{1.5, 2.0}
	o, _ = New(cfg)
	if _, err := o.Initialize(context.Background()); !errors.Is(err, errors.ErrCodeRootNotBracketed) {
		t.Errorf("Initialize() with bad seeds error = %v, want ROOT_NOT_BRACKETED", err)
	}
}

func TestRun(t *testing.T) {
	var lines []Progress
	cfg := testConfig(t, benzeneToluene(t), ModeConstPressure)
	cfg.Progress = func(p Progress) { lines = append(lines, p) }
	o, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}

	r, err := o.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if r.Iterations < 1 || r.Iterations > 20 {
		t.Errorf("iterations = %d, want 1..20", r.Iterations)
	}
	if len(lines) != r.Iterations {
		t.Errorf("progress lines = %d, want one per iteration (%d)", len(lines), r.Iterations)
	}
	if r.Final == nil || !(r.TAC() > 0) {
		t.Fatalf("final = %+v, want a priced design", r.Final)
	}
	if got := o.State().Phase; got != PhaseClosed {
		t.Errorf("phase = %v, want CLOSED", got)
	}
	if r.Evaluations < r.Iterations {
		t.Errorf("evaluations = %d < iterations = %d", r.Evaluations, r.Iterations)
	}

	var b strings.Builder
	if err := r.WriteText(&b); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"stages", "feed stage", "reflux ratio", "TAC", r.RunID} {
		if !strings.Contains(b.String(), want) {
			t.Errorf("report missing %q:\n%s", want, b.String())
		}
	}

	if _, err := o.Run(context.Background()); err == nil {
		t.Error("second Run() succeeded, want error")
	}
}

func TestRunInitializationFailure(t *testing.T) {
	o, err := New(testConfig(t, failing, ModeConstPressure))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := o.Run(context.Background()); !errors.Is(err, errors.ErrCodeNotConverged) {
		t.Errorf("Run() error = %v, want NOT_CONVERGED", err)
	}
	if got := o.State().Phase; got != PhaseClosed {
		t.Errorf("phase = %v, want CLOSED", got)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no simulator", func(c *Config) { c.Simulator = nil }},
		{"bad base", func(c *Config) { c.Base.FeedStage = 1 }},
		{"bad specs", func(c *Config) { c.Specs.Purity = Range{0.9, 0.8} }},
		{"bad limits", func(c *Config) { c.Limits.CondenserPressure = [2]float64{0.5, 2} }},
		{"bad settings", func(c *Config) { c.Settings.PenaltyGrowth = 0.5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t, failing, ModeConstPressure)
			tt.mutate(&cfg)
			if _, err := New(cfg); err == nil {
				t.Error("New() succeeded, want error")
			}
		})
	}
}

func TestSimulatorSeesFlooredDrops(t *testing.T) {
	good := benzeneToluene(t)
	var seen []column.Configuration
	sim := simulator.Func(func(ctx context.Context, cfg column.Configuration) (*column.SimulationResult, error) {
		seen = append(seen, cfg)
		return good.Simulate(ctx, cfg)
	})
	cfg := testConfig(t, sim, ModeConstPressure)
	cfg.Base.Pressure = column.UniformProfile(36, 18, 0)
	o, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := o.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	enc := o.cfg.Encoding
	x := ConstPressureVector{1.0, 0, 1.8, enc.StageFraction(36), enc.FeedFraction(18)}.Slice()
	if _, err := o.Objective(context.Background(), x); err != nil {
		t.Fatalf("Objective() error = %v", err)
	}

	if len(seen) == 0 {
		t.Fatal("simulator never called")
	}
	for i, c := range seen {
		if r, s := c.Pressure.Rectifying.Drop, c.Pressure.Stripping.Drop; r < column.MinPressureDrop || s < column.MinPressureDrop {
			t.Errorf("call %d: drops = %v, %v, want at least %v", i, r, s, column.MinPressureDrop)
		}
	}
}

func TestBetterUsesConstraintTolerance(t *testing.T) {
	// Purity 0.9484 against a 0.95 floor is short by 0.0016.
	short := &Evaluation{Objective: 1, Constraints: []float64{-0.0016, 0.2}}
	met := &Evaluation{Objective: 2, Constraints: []float64{0.001, 0.2}}

	if short.Feasible(DefaultConstraintTolerance) {
		t.Error("short design feasible under the default constraint tolerance")
	}
	if better(short, met, DefaultConstraintTolerance) {
		t.Error("cheaper infeasible design ranked above a feasible one")
	}
	if !better(met, short, DefaultConstraintTolerance) {
		t.Error("feasible design not ranked above the infeasible one")
	}

	var s State
	s.record(met, nil, 0, DefaultConstraintTolerance)
	s.record(short, nil, 0, DefaultConstraintTolerance)
	if s.Best != met {
		t.Errorf("best objective = %v, want the feasible design", s.Best.Objective)
	}
}
