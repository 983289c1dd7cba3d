package cli

import (
	"bytes"
	"context"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNewLoggerFormat(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, log.InfoLevel).Info("simulated", "stages", 36)

	out := buf.String()
	if !regexp.MustCompile(`^\d{2}:\d{2}:\d{2}\.\d{2} `).MatchString(out) {
		t.Errorf("output = %q, want an HH:MM:SS.ms timestamp first", out)
	}
	if !strings.Contains(out, "simulated") || !strings.Contains(out, "stages=36") {
		t.Errorf("output = %q, want message and fields", out)
	}
}

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		level log.Level
		debug bool
		warn  bool
	}{
		{log.DebugLevel, true, true},
		{log.InfoLevel, false, true},
		{log.WarnLevel, false, true},
		{log.ErrorLevel, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			var buf bytes.Buffer
			l := newLogger(&buf, tt.level)
			l.Debug("cache lookup")
			l.Warn("final simulation failed")

			if got := strings.Contains(buf.String(), "cache lookup"); got != tt.debug {
				t.Errorf("debug logged = %v, want %v", got, tt.debug)
			}
			if got := strings.Contains(buf.String(), "final simulation failed"); got != tt.warn {
				t.Errorf("warn logged = %v, want %v", got, tt.warn)
			}
		})
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, log.InfoLevel))
	prog.start = prog.start.Add(-1500 * time.Millisecond)
	prog.done("Finished 40 iterations")

	out := buf.String()
	if !regexp.MustCompile(`Finished 40 iterations \(1\.5\d*s\)`).MatchString(out) {
		t.Errorf("output = %q, want the message with millisecond-rounded elapsed time", out)
	}
}

func TestProgressDoneQuietAboveInfo(t *testing.T) {
	var buf bytes.Buffer
	newProgress(newLogger(&buf, log.WarnLevel)).done("Finished 3 iterations")
	if buf.Len() != 0 {
		t.Errorf("output = %q, want nothing at warn level", buf.String())
	}
}

func TestLoggerFromContext(t *testing.T) {
	if loggerFromContext(context.Background()) != log.Default() {
		t.Error("loggerFromContext() on a bare context is not log.Default()")
	}

	var buf bytes.Buffer
	l := newLogger(&buf, log.InfoLevel)
	ctx := withLogger(context.Background(), l)
	if got := loggerFromContext(ctx); got != l {
		t.Fatalf("loggerFromContext() = %p, want %p", got, l)
	}

	loggerFromContext(ctx).WithPrefix("optimizer").Info("optimizing", "mode", "const")
	if out := buf.String(); !strings.Contains(out, "optimizer") || !strings.Contains(out, "mode=const") {
		t.Errorf("output = %q, want the prefixed optimizer line", out)
	}
}
