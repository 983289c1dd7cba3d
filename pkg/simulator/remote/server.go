package remote

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/kelvinchanwh/distillation-optimizer/pkg/errors"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/simulator"
)

// maxBody bounds a request body. Configurations are a few hundred bytes.
const maxBody = 1 << 20

// Handler returns a router exposing sim at [SimulatePath] and a health check
// at [HealthPath]. A nil logger uses log.Default().
func Handler(sim simulator.Simulator, logger *log.Logger) http.Handler {
	if logger == nil {
		logger = log.Default()
	}
	s := &server{sim: sim, name: simulator.Name(sim), logger: logger}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.Recoverer)
	r.Post(SimulatePath, s.simulate)
	r.Get(HealthPath, s.health)
	return r
}

type server struct {
	sim    simulator.Simulator
	name   string
	logger *log.Logger
}

func (s *server) simulate(w http.ResponseWriter, r *http.Request) {
	id := w.Header().Get(RequestIDHeader)
	var req Request
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.logger.Warn("bad request", "request_id", id, "err", err)
		writeJSON(w, http.StatusBadRequest, Response{Error: &ErrorBody{
			Code:    errors.ErrCodeInvalidInput,
			Message: "decode request: " + err.Error(),
		}})
		return
	}

	start := time.Now()
	res, err := s.sim.Simulate(r.Context(), req.Configuration)
	elapsed := time.Since(start)
	if err != nil {
		status, code := classify(err)
		s.logger.Warn("simulation failed", "request_id", id, "stages", req.Configuration.Stages,
			"duration", elapsed, "code", code, "err", err)
		writeJSON(w, status, Response{Error: &ErrorBody{Code: code, Message: errors.UserMessage(err)}})
		return
	}
	s.logger.Info("simulated", "request_id", id, "stages", req.Configuration.Stages, "duration", elapsed)
	writeJSON(w, http.StatusOK, Response{Result: res})
}

func (s *server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, Health{Status: "ok", Simulator: s.name})
}

// classify maps a simulator error onto an HTTP status and error code.
func classify(err error) (int, errors.Code) {
	switch code := errors.GetCode(err); code {
	case errors.ErrCodeNotConverged, errors.ErrCodeNumerical, errors.ErrCodeSimulationFailed:
		return http.StatusUnprocessableEntity, code
	case errors.ErrCodeInvalidConfig, errors.ErrCodeInvalidInput:
		return http.StatusBadRequest, code
	}
	switch {
	case stderrors.Is(err, simulator.ErrNotConverged):
		return http.StatusUnprocessableEntity, errors.ErrCodeNotConverged
	case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, errors.ErrCodeTimeout
	}
	return http.StatusInternalServerError, errors.ErrCodeInternal
}

// requestID echoes the caller's request ID or assigns a fresh one.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully.
func Serve(ctx context.Context, addr string, h http.Handler, logger *log.Logger) error {
	if logger == nil {
		logger = log.Default()
	}
	srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 10 * time.Second}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	logger.Info("serving simulator", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdown); err != nil {
		return err
	}
	if err := <-errc; !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
