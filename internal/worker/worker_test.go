package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestCandidatePathsOrder(t *testing.T) {
	paths := candidatePaths("/opt/clipcap/core", "/app", "/src")
	name := binaryName()
	want := []string{
		"/opt/clipcap/core",
		filepath.Join("/app", name),
		filepath.Join("/app", "bin", name),
		filepath.Join("/app", "..", "Resources", name),
		filepath.Join("/src", "core", "target", "release", name),
		filepath.Join("/src", "core", "target", "debug", name),
	}
	if len(paths) != len(want) {
		t.Fatalf("got %d candidates, want %d: %v", len(paths), len(want), paths)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Fatalf("candidate %d = %q, want %q", i, paths[i], want[i])
		}
	}
}

func TestLocatePrefersOverride(t *testing.T) {
	dir := t.TempDir()
	override := filepath.Join(dir, binaryName())
	writeExecutable(t, override)

	if got := Locate(override); got != override {
		t.Fatalf("Locate = %q, want %q", got, override)
	}
}

func TestLocateFallsBackToBareName(t *testing.T) {
	if got := Locate(filepath.Join(t.TempDir(), "missing")); got != binaryName() {
		t.Fatalf("Locate = %q, want bare %q", got, binaryName())
	}
}

func TestToolDirPrefersBinSibling(t *testing.T) {
	dir := t.TempDir()
	workerPath := filepath.Join(dir, binaryName())
	writeExecutable(t, workerPath)
	if got := toolDir(workerPath); got != dir {
		t.Fatalf("toolDir without bin/ = %q, want %q", got, dir)
	}

	binDir := filepath.Join(dir, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		t.Fatalf("mkdir bin: %v", err)
	}
	if got := toolDir(workerPath); got != binDir {
		t.Fatalf("toolDir with bin/ = %q, want %q", got, binDir)
	}
}

func TestBuildEnvWiresToolDir(t *testing.T) {
	tools := t.TempDir()
	env := buildEnv([]string{"PATH=/usr/bin", "HOME=/home/u", FFmpegPathEnv + "=/stale/ffmpeg"}, "/app/"+binaryName(), tools)

	var path, ffmpeg string
	for _, kv := range env {
		key, value, _ := strings.Cut(kv, "=")
		switch key {
		case "PATH":
			path = value
		case FFmpegPathEnv:
			ffmpeg = value
		}
	}
	wantPrefix := tools + string(os.PathListSeparator)
	if !strings.HasPrefix(path, wantPrefix) {
		t.Fatalf("PATH %q does not start with tool dir %q", path, wantPrefix)
	}
	if !strings.HasSuffix(path, "/usr/bin") {
		t.Fatalf("PATH %q lost the inherited entries", path)
	}
	if ffmpeg != filepath.Join(tools, ffmpegName()) {
		t.Fatalf("%s = %q, want bundled ffmpeg under %q", FFmpegPathEnv, ffmpeg, tools)
	}
	for _, kv := range env {
		if kv == FFmpegPathEnv+"=/stale/ffmpeg" {
			t.Fatal("stale FFMPEG_PATH survived")
		}
	}
}

func TestStartSpawnFailureIsSynchronous(t *testing.T) {
	_, err := Start(context.Background(), Options{
		BinaryPath: filepath.Join(t.TempDir(), "definitely-missing"),
	})
	if err == nil {
		t.Fatal("expected spawn failure")
	}
}

func TestStartExchangesLinesAndReportsExit(t *testing.T) {
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1")
		return cmd
	}
	t.Cleanup(func() { commandContext = original })

	// Bare name: no working-directory override, so the helper binary runs
	// from the test's own directory.
	proc, err := Start(context.Background(), Options{BinaryPath: binaryName()})
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	if _, err := fmt.Fprintln(proc.Stdin(), `{"id":"x","method":"ping","params":{}}`); err != nil {
		t.Fatalf("write stdin: %v", err)
	}
	scanner := bufio.NewScanner(proc.Stdout())
	if !scanner.Scan() {
		t.Fatalf("no response line: %v", scanner.Err())
	}
	if got := scanner.Text(); got != `{"id":"x","result":{"ok":true}}` {
		t.Fatalf("unexpected response %q", got)
	}

	if err := proc.Stop(); err != nil {
		t.Fatalf("Stop returned error: %v", err)
	}
	select {
	case err := <-proc.Done():
		if err != nil {
			t.Fatalf("worker exit error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not exit after stdin close")
	}
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) == "" {
			continue
		}
		fmt.Println(`{"id":"x","result":{"ok":true}}`)
	}
	os.Exit(0)
}

func writeExecutable(t *testing.T, path string) {
	t.Helper()
	mode := os.FileMode(0o755)
	if runtime.GOOS == "windows" {
		mode = 0o644
	}
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"), mode); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
