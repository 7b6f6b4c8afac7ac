package worker

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

var commandContext = exec.CommandContext

// Options configures how the worker is spawned.
type Options struct {
	Logger *slog.Logger
	// BinaryPath overrides worker discovery when set.
	BinaryPath string
	// ToolDir overrides the bundled tool directory (FFmpeg and friends).
	ToolDir string
}

// Process is a running worker. The bridge borrows its streams; the
// supervisor keeps ownership of the process itself.
type Process struct {
	cmd    *exec.Cmd
	path   string
	stdin  io.WriteCloser
	stdout io.ReadCloser
	done   chan error
}

// Start locates and spawns the worker. The working directory is set to the
// binary's own directory so the worker can resolve sibling resources by
// relative path. Spawn failures are returned synchronously; the returned
// Process is live on success and reports exit via Done.
func Start(ctx context.Context, opts Options) (*Process, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	path := opts.BinaryPath
	if path == "" {
		path = Locate("")
	}

	cmd := commandContext(ctx, path) //nolint:gosec
	if strings.ContainsRune(path, os.PathSeparator) {
		cmd.Dir = filepath.Dir(path)
	}
	if cmd.Env == nil {
		cmd.Env = buildEnv(os.Environ(), path, opts.ToolDir)
	}
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start worker %s: %w", path, err)
	}

	logger.Info("worker started",
		slog.String("binary", path),
		slog.Int("pid", cmd.Process.Pid))

	p := &Process{
		cmd:    cmd,
		path:   path,
		stdin:  stdin,
		stdout: stdout,
		done:   make(chan error, 1),
	}
	go func() {
		err := cmd.Wait()
		if err != nil {
			logger.Warn("worker exited", slog.String("error", err.Error()))
		} else {
			logger.Info("worker exited")
		}
		p.done <- err
	}()
	return p, nil
}

// Stdin is the write end of the worker's standard input.
func (p *Process) Stdin() io.WriteCloser { return p.stdin }

// Stdout is the line-oriented read end of the worker's standard output.
func (p *Process) Stdout() io.ReadCloser { return p.stdout }

// Done delivers the worker's exit error (nil for a clean exit) once.
func (p *Process) Done() <-chan error { return p.done }

// Path is the executable the worker was spawned from.
func (p *Process) Path() string { return p.path }

// PID returns the worker's process id.
func (p *Process) PID() int {
	if p.cmd.Process == nil {
		return 0
	}
	return p.cmd.Process.Pid
}

// Stop closes the worker's stdin so it can exit cleanly; a line-driven
// worker terminates when its input reaches EOF.
func (p *Process) Stop() error {
	return p.stdin.Close()
}

// Kill forcibly terminates the worker.
func (p *Process) Kill() error {
	if p.cmd.Process == nil {
		return nil
	}
	return p.cmd.Process.Kill()
}

// buildEnv augments the inherited environment: the bundled tool directory
// is prepended to PATH and FFMPEG_PATH points straight at the bundled
// FFmpeg so the worker never picks up a mismatched system install.
func buildEnv(base []string, workerPath, toolDirOverride string) []string {
	tools := toolDirOverride
	if tools == "" {
		tools = toolDir(workerPath)
	}
	if abs, err := filepath.Abs(tools); err == nil {
		tools = abs
	}

	env := make([]string, 0, len(base)+2)
	pathSet := false
	for _, kv := range base {
		key, value, ok := strings.Cut(kv, "=")
		if ok && strings.EqualFold(key, "PATH") && !pathSet {
			env = append(env, key+"="+tools+string(os.PathListSeparator)+value)
			pathSet = true
			continue
		}
		if ok && key == FFmpegPathEnv {
			continue
		}
		env = append(env, kv)
	}
	if !pathSet {
		env = append(env, "PATH="+tools)
	}
	env = append(env, FFmpegPathEnv+"="+filepath.Join(tools, ffmpegName()))
	return env
}
