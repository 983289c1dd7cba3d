package remote

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/kelvinchanwh/distillation-optimizer/pkg/column"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/errors"
	"github.com/kelvinchanwh/distillation-optimizer/pkg/simulator"
)

func testConfig() column.Configuration {
	return column.Configuration{
		CondenserPressure: 1.2,
		Pressure:          column.UniformProfile(10, 5, 0.01),
		RefluxRatio:       2,
		Stages:            10,
		FeedStage:         5,
		TraySpacing:       0.6,
		Efficiency:        column.UniformEfficiency(0.8),
		Passes:            1,
		TrayType:          column.Sieve,
	}
}

func fakeSimulator(err error) simulator.Simulator {
	return simulator.Func(func(_ context.Context, cfg column.Configuration) (*column.SimulationResult, error) {
		if err != nil {
			return nil, err
		}
		return &column.SimulationResult{
			Stages:        make([]column.Stage, cfg.Stages),
			CondenserDuty: -500,
			ReboilerDuty:  600,
			KValues:       map[string]float64{"A": 2, "B": 0.5},
		}, nil
	})
}

func quietLogger() *log.Logger { return log.New(io.Discard) }

func newPair(t *testing.T, sim simulator.Simulator, opts ...ClientOption) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(Handler(sim, quietLogger()))
	t.Cleanup(srv.Close)
	c, err := NewClient(srv.URL, append([]ClientOption{WithRetry(3, time.Millisecond)}, opts...)...)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return c, srv
}

func TestSimulateRoundTrip(t *testing.T) {
	c, _ := newPair(t, fakeSimulator(nil))
	res, err := c.Simulate(context.Background(), testConfig())
	if err != nil {
		t.Fatalf("Simulate() error = %v", err)
	}
	if got := len(res.Stages); got != 10 {
		t.Errorf("stages = %d, want 10", got)
	}
	if res.ReboilerDuty != 600 || res.KValues["A"] != 2 {
		t.Errorf("result = %+v, want duty 600 and K(A) 2", res)
	}
}

func TestSimulateErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code errors.Code
	}{
		{"not converged", simulator.NotConverged("reflux below minimum"), errors.ErrCodeNotConverged},
		{"numerical", errors.New(errors.ErrCodeNumerical, "zero vapor"), errors.ErrCodeNumerical},
		{"invalid", errors.New(errors.ErrCodeInvalidConfig, "feed stage"), errors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newPair(t, fakeSimulator(tt.err))
			_, err := c.Simulate(context.Background(), testConfig())
			if !errors.Is(err, tt.code) {
				t.Errorf("Simulate() error = %v, want code %s", err, tt.code)
			}
		})
	}

	c, _ := newPair(t, fakeSimulator(simulator.NotConverged("diverged")))
	_, err := c.Simulate(context.Background(), testConfig())
	if !stderrors.Is(err, simulator.ErrNotConverged) {
		t.Errorf("Simulate() error = %v, want ErrNotConverged in chain", err)
	}
}

func TestSimulateRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	inner := Handler(fakeSimulator(nil), quietLogger())
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		inner.ServeHTTP(w, r)
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, WithRetry(3, time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Simulate(context.Background(), testConfig()); err != nil {
		t.Fatalf("Simulate() error = %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("calls = %d, want 3", got)
	}
}

func TestSimulateRetriesExhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	c, _ := NewClient(srv.URL, WithRetry(2, time.Millisecond))
	_, err := c.Simulate(context.Background(), testConfig())
	if !errors.Is(err, errors.ErrCodeNetwork) {
		t.Errorf("Simulate() error = %v, want NETWORK_ERROR", err)
	}
	if !errors.Recoverable(err) {
		t.Error("network failure should be recoverable")
	}
}

func TestRequestID(t *testing.T) {
	var seen string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get(RequestIDHeader)
		Handler(fakeSimulator(nil), quietLogger()).ServeHTTP(w, r)
	}))
	defer srv.Close()

	c, _ := NewClient(srv.URL)
	if _, err := c.Simulate(context.Background(), testConfig()); err != nil {
		t.Fatal(err)
	}
	if len(seen) != 36 {
		t.Errorf("request ID = %q, want a UUID", seen)
	}

	resp, err := http.Post(srv.URL+SimulatePath, "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.Header.Get(RequestIDHeader) == "" {
		t.Error("server did not assign a request ID")
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("empty body status = %d, want 400", resp.StatusCode)
	}
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(Handler(fakeSimulator(nil), quietLogger()))
	defer srv.Close()

	resp, err := http.Get(srv.URL + HealthPath)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var h Health
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		t.Fatal(err)
	}
	if h.Status != "ok" || h.Simulator != "custom" {
		t.Errorf("health = %+v, want ok/custom", h)
	}
}

func TestNewClient(t *testing.T) {
	for _, bad := range []string{"", "localhost:8088", "ftp://host/", "http://"} {
		if _, err := NewClient(bad); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("NewClient(%q) error = %v, want INVALID_INPUT", bad, err)
		}
	}
	c, err := NewClient("http://sim.local:8088/base")
	if err != nil {
		t.Fatal(err)
	}
	if got := c.endpoint.String(); got != "http://sim.local:8088/base/v1/simulate" {
		t.Errorf("endpoint = %q", got)
	}
	if got := c.Name(); got != "remote:sim.local:8088" {
		t.Errorf("Name() = %q", got)
	}
	if got := simulator.Name(mustClient(t, "http://x", WithName("aspen-v14"))); got != "aspen-v14" {
		t.Errorf("Name() = %q, want aspen-v14", got)
	}
}

func mustClient(t *testing.T, u string, opts ...ClientOption) *Client {
	t.Helper()
	c, err := NewClient(u, opts...)
	if err != nil {
		t.Fatal(err)
	}
	return c
}
