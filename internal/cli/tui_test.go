package cli

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kelvinchanwh/distillation-optimizer/pkg/optimizer"
)

func progressUpdate(iter int, tac float64, err error) progressMsg {
	return progressMsg(optimizer.Progress{
		RunID:       "run-1",
		Iteration:   iter,
		Evaluations: 3,
		Names:       []string{"RR", "N", "NF"},
		Values:      []float64{1.5, 30, 15},
		TAC:         tac,
		Err:         err,
	})
}

func TestOptimizeModelProgress(t *testing.T) {
	updates := make(chan tea.Msg, 1)
	var m tea.Model = NewOptimizeModel("benzene-toluene", optimizer.ModeHydraulics, updates, nil)

	m, _ = m.Update(progressUpdate(1, 900000, nil))
	m, _ = m.Update(progressUpdate(2, 800000, nil))
	m, _ = m.Update(progressUpdate(3, 0, errors.New("not converged")))

	got := m.(OptimizeModel)
	if got.Best != 800000 {
		t.Errorf("Best = %v, want 800000", got.Best)
	}
	if got.Trials != 9 || got.Failed != 1 {
		t.Errorf("Trials, Failed = %d, %d, want 9, 1", got.Trials, got.Failed)
	}
	if len(got.History) != 3 {
		t.Errorf("len(History) = %d, want 3", len(got.History))
	}

	view := got.View()
	for _, want := range []string{"benzene-toluene", "ERROR", "RR", "$800000/yr"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q:\n%s", want, view)
		}
	}
}

func TestOptimizeModelHistoryCap(t *testing.T) {
	var m tea.Model = NewOptimizeModel("case", optimizer.ModeConstPressure, make(chan tea.Msg), nil)
	for i := 1; i <= historyRows+5; i++ {
		m, _ = m.Update(progressUpdate(i, 1e6, nil))
	}
	got := m.(OptimizeModel)
	if len(got.History) != historyRows {
		t.Fatalf("len(History) = %d, want %d", len(got.History), historyRows)
	}
	if got.History[0].Iteration != 6 {
		t.Errorf("oldest iteration = %d, want 6", got.History[0].Iteration)
	}
}

func TestOptimizeModelQuitCancels(t *testing.T) {
	cancelled := 0
	var m tea.Model = NewOptimizeModel("case", optimizer.ModeHydraulics, make(chan tea.Msg), func() { cancelled++ })

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd != nil {
		t.Error("quit key should wait for the run to finish")
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cancelled != 1 {
		t.Errorf("cancel called %d times, want 1", cancelled)
	}
	if !strings.Contains(m.View(), "stopping") {
		t.Error("View() should show the stopping state")
	}

	report := &optimizer.Report{Status: "IterationLimit"}
	m, cmd = m.Update(doneMsg{report: report})
	if cmd == nil {
		t.Fatal("done message should quit")
	}
	if got := m.(OptimizeModel).Report; got != report {
		t.Errorf("Report = %v, want %v", got, report)
	}
}

func TestStartRunAfterViewQuits(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	// Nobody reads updates once the view has gone.
	updates := make(chan tea.Msg)
	release := make(chan struct{})
	finished := startRun(ctx, func(ctx context.Context) (*optimizer.Report, error) {
		<-release
		return nil, ctx.Err()
	}, updates)

	cancel()
	close(release)
	select {
	case got := <-finished:
		if !errors.Is(got.err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", got.err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("run outcome never delivered")
	}
}

func TestStartRunDeliversUpdate(t *testing.T) {
	updates := make(chan tea.Msg, 1)
	want := &optimizer.Report{RunID: "run-1"}
	finished := startRun(context.Background(), func(context.Context) (*optimizer.Report, error) {
		return want, nil
	}, updates)

	if got := (<-finished).report; got != want {
		t.Errorf("finished report = %v, want %v", got, want)
	}
	select {
	case msg := <-updates:
		if done, ok := msg.(doneMsg); !ok || done.report != want {
			t.Errorf("update = %#v, want doneMsg", msg)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("doneMsg never sent to the view")
	}
}
