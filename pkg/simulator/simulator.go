// Package simulator defines the contract between the optimizer and a process
// simulator, plus decorators that add caching and instrumentation to any
// implementation.
//
// A simulator receives a complete [column.Configuration] and returns a fresh
// [column.SimulationResult]. Results are never shared between calls; callers
// may mutate what they receive.
//
// Implementations live in subpackages:
//
//   - surrogate: an offline constant-relative-volatility model
//   - remote: an HTTP client for a simulator running in another process
package simulator

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/kelvinchanwh/distillation-optimizer/pkg/column"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/errors"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/observability"
)

// ErrNotConverged is wrapped by every non-convergence failure.
var ErrNotConverged = stderrors.New("simulation did not converge")

// Simulator runs a column simulation.
type Simulator interface {
	Simulate(ctx context.Context, cfg column.Configuration) (*column.SimulationResult, error)
}

// Namer is implemented by simulators that report a stable name. The name
// is part of the cache key.
type Namer interface {
	Name() string
}

// Name returns the simulator's name, or "custom".
func Name(s Simulator) string {
	if n, ok := s.(Namer); ok {
		return n.Name()
	}
	return "custom"
}

// Func adapts a function to [Simulator].
type Func func(ctx context.Context, cfg column.Configuration) (*column.SimulationResult, error)

// Simulate calls f.
func (f Func) Simulate(ctx context.Context, cfg column.Configuration) (*column.SimulationResult, error) {
	return f(ctx, cfg)
}

// NotConverged returns a NOT_CONVERGED error wrapping [ErrNotConverged].
func NotConverged(format string, args ...any) error {
	return errors.Wrap(errors.ErrCodeNotConverged, ErrNotConverged, format, args...)
}

// Instrumented reports every call to the registered
// [observability.SimulatorHooks] and checks results against the
// configuration that produced them.
func Instrumented(inner Simulator) Simulator {
	return &instrumented{inner: inner, name: Name(inner)}
}

type instrumented struct {
	inner Simulator
	name  string
}

func (s *instrumented) Name() string { return s.name }

func (s *instrumented) Simulate(ctx context.Context, cfg column.Configuration) (*column.SimulationResult, error) {
	hooks := observability.Simulator()
	hooks.OnSimulateStart(ctx, s.name, cfg.Stages)
	start := time.Now()

	res, err := s.inner.Simulate(ctx, cfg)
	if err == nil {
		err = res.Check(cfg)
	}
	hooks.OnSimulateComplete(ctx, s.name, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return res, nil
}
