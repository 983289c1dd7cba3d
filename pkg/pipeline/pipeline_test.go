package pipeline

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/kelvinchanwh/distillation-optimizer/pkg/cache"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/column"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/errors"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/hydraulics"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/optimizer"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/shortcut"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/simulator"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/simulator/surrogate"
)

func testOptions() Options {
	return Options{
		Base: column.Configuration{
			CondenserPressure: 1.0,
			Pressure:          column.UniformProfile(36, 18, 0.0068),
			RefluxRatio:       1.8,
			Stages:            36,
			FeedStage:         18,
			TraySpacing:       0.6,
			Efficiency:        column.UniformEfficiency(0.75),
			Passes:            1,
			TrayType:          column.Sieve,
		},
		Specs: optimizer.Specs{
			Main:         "BENZENE",
			Purity:       optimizer.Range{Lower: 0.95, Upper: 1},
			Recovery:     optimizer.Range{Lower: 0.95, Upper: 1},
			FeedPressure: 1.5,
		},
		Shortcut: shortcut.Params{Seeds: [2]float64{1.05, 2.3}},
		Logger:   log.New(io.Discard),
	}
}

func newSurrogate(t *testing.T) simulator.Simulator {
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

// counting reports how many calls reach the wrapped simulator.
func counting(inner simulator.Simulator, n *atomic.Int32) simulator.Simulator {
	return simulator.Func(func(ctx context.Context, cfg column.Configuration) (*column.SimulationResult, error) {
		n.Add(1)
		return inner.Simulate(ctx, cfg)
	})
}

func TestOptionsValidateAndSetDefaults(t *testing.T) {
	opts := testOptions()
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error = %v", err)
	}
	if opts.Mode != optimizer.ModeHydraulics {
		t.Errorf("Mode = %q, want %q", opts.Mode, optimizer.ModeHydraulics)
	}
	if opts.Settings.Tolerance != optimizer.DefaultTolerance {
		t.Errorf("Settings.Tolerance = %v, want default", opts.Settings.Tolerance)
	}
	if opts.Hydraulics.SizingFraction == 0 {
		t.Error("hydraulics defaults not applied")
	}
	// Idempotent.
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Errorf("second ValidateAndSetDefaults() error = %v", err)
	}

	tests := []struct {
		name   string
		modify func(*Options)
		code   errors.Code
	}{
		{"unknown mode", func(o *Options) { o.Mode = "gradient" }, errors.ErrCodeInvalidInput},
		{"bad purity", func(o *Options) { o.Specs.Purity.Lower = 1.2 }, errors.ErrCodeInvalidInput},
		{"feed on last stage", func(o *Options) { o.Base.FeedStage = 36 }, errors.ErrCodeInvalidConfig},
		{"low condenser bound", func(o *Options) { o.Limits.CondenserPressure = [2]float64{0.5, 2} }, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := testOptions()
			tt.modify(&o)
			err := o.ValidateAndSetDefaults()
			if !errors.Is(err, tt.code) {
				t.Errorf("ValidateAndSetDefaults() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestOptimizerConfigMode(t *testing.T) {
	opts := testOptions()
	opts.Mode = "split"
	cfg, err := opts.OptimizerConfig(newSurrogate(t))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Mode.Name() != optimizer.ModeSplitPressure {
		t.Errorf("Mode = %s, want %s", cfg.Mode.Name(), optimizer.ModeSplitPressure)
	}
	if opts.Mode != optimizer.ModeSplitPressure {
		t.Errorf("Options.Mode = %q, want canonical name", opts.Mode)
	}
}

func TestEvaluate(t *testing.T) {
	r := NewRunner(newSurrogate(t), nil, nil, log.New(io.Discard))
	defer r.Close()

	d, err := r.Evaluate(context.Background(), testOptions())
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if d.Partition.LightKey != "BENZENE" || d.Partition.HeavyKey != "TOLUENE" {
		t.Errorf("keys = %s/%s", d.Partition.LightKey, d.Partition.HeavyKey)
	}
	if d.Partition.Purity < 0.99 {
		t.Errorf("purity = %v, want > 0.99", d.Partition.Purity)
	}
	if d.Cost.TAC <= 0 || d.Cost.Diameter <= 0 {
		t.Errorf("cost = %+v, want positive TAC and diameter", d.Cost)
	}
	if got, want := len(d.Constraints), 5+2*len((hydraulics.Margins{}).Named(column.Sieve)); got != want {
		t.Errorf("constraints = %d, want %d", got, want)
	}
	if len(d.Names) != len(d.Constraints) {
		t.Errorf("names = %d, constraints = %d", len(d.Names), len(d.Constraints))
	}

	var buf bytes.Buffer
	if err := d.WriteText(&buf); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"36 stages", "BENZENE / TOLUENE", hydraulics.MarginWeeping, "TAC", "diameter"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("WriteText() missing %q:\n%s", want, buf.String())
		}
	}
}

func TestEvaluateUsesCache(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	var calls atomic.Int32
	r := NewRunner(counting(newSurrogate(t), &calls), fc, nil, log.New(io.Discard))
	defer r.Close()

	first, err := r.Evaluate(context.Background(), testOptions())
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.Evaluate(context.Background(), testOptions())
	if err != nil {
		t.Fatal(err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("simulator calls = %d, want 1", got)
	}
	if first.Cost.TAC != second.Cost.TAC {
		t.Errorf("cached TAC = %v, want %v", second.Cost.TAC, first.Cost.TAC)
	}
	if first.Result == second.Result {
		t.Error("cache hit shares the result pointer")
	}
}

func TestEvaluateFloorsZeroDrop(t *testing.T) {
	inner := newSurrogate(t)
	var drop float64
	sim := simulator.Func(func(ctx context.Context, cfg column.Configuration) (*column.SimulationResult, error) {
		drop = cfg.Pressure.Rectifying.Drop
		return inner.Simulate(ctx, cfg)
	})
	r := NewRunner(sim, nil, nil, log.New(io.Discard))
	defer r.Close()

	opts := testOptions()
	opts.Base.Pressure = column.UniformProfile(36, 18, 0)
	if _, err := r.Evaluate(context.Background(), opts); err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if drop != column.MinPressureDrop {
		t.Errorf("simulated drop = %v, want %v", drop, column.MinPressureDrop)
	}
}

func TestEvaluateSimulatorError(t *testing.T) {
	opts := testOptions()
	opts.Base.RefluxRatio = 1.2
	r := NewRunner(newSurrogate(t), nil, nil, log.New(io.Discard))
	_, err := r.Evaluate(context.Background(), opts)
	if !errors.Is(err, errors.ErrCodeNotConverged) {
		t.Errorf("Evaluate() error = %v, want NOT_CONVERGED", err)
	}
}

func TestInitialize(t *testing.T) {
	r := NewRunner(newSurrogate(t), nil, nil, log.New(io.Discard))
	s, err := r.Initialize(context.Background(), testOptions())
	if err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if s.Estimate.MinimumReflux <= 0 || s.Estimate.ActualStages < s.Estimate.MinimumStages {
		t.Errorf("estimate = %+v", s.Estimate)
	}
	if got := s.Optimizer.State().Phase; got != optimizer.PhaseInitializing {
		t.Errorf("phase = %s, want INITIALIZING", got)
	}

	opts := testOptions()
	opts.Specs.Main = "XYLENE"
	if _, err := r.Initialize(context.Background(), opts); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Initialize(unknown main) error = %v, want INVALID_INPUT", err)
	}
}

func TestOptimize(t *testing.T) {
	opts := testOptions()
	opts.Mode = optimizer.ModeConstPressure
	opts.Settings.MaxIterations = 15
	var updates int
	opts.Progress = func(optimizer.Progress) { updates++ }

	r := NewRunner(newSurrogate(t), nil, nil, log.New(io.Discard))
	report, err := r.Optimize(context.Background(), opts)
	if err != nil {
		t.Fatalf("Optimize() error = %v", err)
	}
	if report.Final == nil || report.TAC() <= 0 {
		t.Fatalf("report has no final design: %+v", report)
	}
	if report.Iterations < 1 || report.Iterations > 15 {
		t.Errorf("iterations = %d, want 1..15", report.Iterations)
	}
	if updates != report.Iterations {
		t.Errorf("progress updates = %d, want %d", updates, report.Iterations)
	}
}
