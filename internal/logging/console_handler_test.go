package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

func TestDerivedHandlersShareWriteLock(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	base := newConsoleHandler(&buf, lvl).(*consoleHandler)

	withAttrs := base.WithAttrs([]slog.Attr{slog.String("component", "bridge")}).(*consoleHandler)
	withGroup := base.WithGroup("worker").(*consoleHandler)

	if withAttrs.mu != base.mu {
		t.Fatal("WithAttrs clone does not share the base handler's write lock")
	}
	if withGroup.mu != base.mu {
		t.Fatal("WithGroup clone does not share the base handler's write lock")
	}
}

func TestConcurrentBaseAndDerivedWritesStayLineDelimited(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	base := slog.New(newConsoleHandler(&buf, lvl))
	derived := base.With(slog.String("component", "bridge"))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			base.Info("base message")
		}()
		go func() {
			defer wg.Done()
			derived.Info("derived message")
		}()
	}
	wg.Wait()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 40 {
		t.Fatalf("expected 40 log lines, got %d", len(lines))
	}
	for _, line := range lines {
		if !strings.Contains(line, "base message") && !strings.Contains(line, "derived message") {
			t.Fatalf("interleaved log line: %q", line)
		}
	}
}
