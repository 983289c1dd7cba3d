package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/kelvinchanwh/distillation-optimizer/pkg/observability"
)

// debugHooks logs every observability event at debug level.
type debugHooks struct {
	logger *log.Logger
}

var (
	_ observability.OptimizerHooks = (*debugHooks)(nil)
	_ observability.SimulatorHooks = (*debugHooks)(nil)
	_ observability.CacheHooks     = (*debugHooks)(nil)
	_ observability.HTTPHooks      = (*debugHooks)(nil)
)

// installDebugHooks registers [debugHooks] for every event family.
func installDebugHooks(logger *log.Logger) {
	h := &debugHooks{logger: logger.WithPrefix("hooks")}
	observability.SetOptimizerHooks(h)
	observability.SetSimulatorHooks(h)
	observability.SetCacheHooks(h)
	observability.SetHTTPHooks(h)
}

func (h *debugHooks) OnRunStart(_ context.Context, runID, mode string, dims int) {
	h.logger.Debug("run start", "run", runID, "mode", mode, "dims", dims)
}

func (h *debugHooks) OnIteration(_ context.Context, runID string, iteration int, tac float64) {
	h.logger.Debug("iteration", "run", runID, "iter", iteration, "tac", tac)
}

func (h *debugHooks) OnEvaluationFailed(_ context.Context, runID string, err error) {
	h.logger.Debug("evaluation failed", "run", runID, "err", err)
}

func (h *debugHooks) OnRunComplete(_ context.Context, runID string, iterations int, converged bool, d time.Duration, err error) {
	h.logger.Debug("run complete", "run", runID, "iterations", iterations, "converged", converged, "duration", d, "err", err)
}

func (h *debugHooks) OnSimulateStart(_ context.Context, name string, stages int) {
	h.logger.Debug("simulate", "simulator", name, "stages", stages)
}

func (h *debugHooks) OnSimulateComplete(_ context.Context, name string, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("simulate failed", "simulator", name, "duration", d, "err", err)
		return
	}
	h.logger.Debug("simulated", "simulator", name, "duration", d)
}

func (h *debugHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *debugHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *debugHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *debugHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("request", "method", method, "host", host, "path", path)
}

func (h *debugHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("response", "method", method, "host", host, "path", path, "status", status, "duration", d)
}

func (h *debugHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Debug("request error", "method", method, "host", host, "path", path, "err", err)
}
