// Package remote runs simulations in another process over HTTP.
//
// The protocol is a single JSON endpoint:
//
//	POST /v1/simulate    {"configuration": {...}}
//	200                  {"result": {...}}
//	400 | 422 | 500      {"error": {"code": "NOT_CONVERGED", "message": "..."}}
//
// 422 reports a simulation that ran but failed (non-convergence or a
// numerical fault). The optimizer treats it as an infeasible trial point.
// 400 reports a configuration the simulator refused. Every request carries
// an X-Request-ID header that the server echoes and logs.
//
// [Handler] serves any [simulator.Simulator]; [Client] implements
// [simulator.Simulator] on top of such a server.
package remote

import (
	"github.com/kelvinchanwh/distillation-optimizer/pkg/column"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/errors"
)

// Paths served by [Handler].
const (
	SimulatePath = "/v1/simulate"
	HealthPath   = "/healthz"
)

// RequestIDHeader carries the per-call correlation ID.
const RequestIDHeader = "X-Request-ID"

// Request is the body of a simulate call.
type Request struct {
	Configuration column.Configuration `json:"configuration"`
}

// Response is the body of every simulate reply. Exactly one field is set.
type Response struct {
	Result *column.SimulationResult `json:"result,omitempty"`
	Error  *ErrorBody               `json:"error,omitempty"`
}

// ErrorBody describes a failed simulation.
type ErrorBody struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

// Health is the body of a health check.
type Health struct {
	Status    string `json:"status"`
	Simulator string `json:"simulator"`
}
