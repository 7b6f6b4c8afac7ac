package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"clipcap/internal/bridge"
	"clipcap/internal/config"
	"clipcap/internal/deps"
	"clipcap/internal/history"
	"clipcap/internal/protocol"
	"clipcap/internal/worker"
)

// Daemon coordinates the worker, the bridge, and the UI-facing API, and
// enforces single-instance execution.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *history.Store

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	proc    *worker.Process
	br      *bridge.Bridge
	api     *apiServer
	hub     *eventHub

	ctx    context.Context
	cancel context.CancelFunc
}

// historyRetention caps the rows kept in the call history store across
// daemon lifetimes.
const historyRetention = 500

// Status represents daemon runtime information.
type Status struct {
	Running      bool          `json:"running"`
	PID          int           `json:"pid"`
	WorkerBinary string        `json:"worker_binary"`
	WorkerAlive  bool          `json:"worker_alive"`
	LockFilePath string        `json:"lock_file_path"`
	HistoryDB    string        `json:"history_db"`
	Dependencies []deps.Status `json:"dependencies"`
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *history.Store, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || logger == nil {
		return nil, errors.New("daemon requires config, history store, and logger")
	}
	lockPath := filepath.Join(cfg.Paths.LogDir, "clipcapd.lock")
	return &Daemon{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
		hub:      newEventHub(logger),
	}, nil
}

// Start acquires the instance lock, spawns the worker, verifies it answers
// ping, and brings up the API server.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another clipcapd instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	d.pruneHistory(d.ctx)

	proc, err := worker.Start(d.ctx, worker.Options{
		Logger:     d.logger,
		BinaryPath: d.workerBinary(),
		ToolDir:    d.cfg.Worker.ToolDir,
	})
	if err != nil {
		d.teardown()
		return fmt.Errorf("start worker: %w", err)
	}
	d.proc = proc

	d.br = bridge.New(proc.Stdin(), proc.Stdout(), bridge.Options{
		Logger:     d.logger,
		WriteGrace: d.cfg.WriteGrace(),
		QueueSize:  d.cfg.Worker.QueueSize,
		OnEvent:    d.hub.relayWorkerEvent,
	})

	pingCtx, cancel := context.WithTimeout(d.ctx, d.cfg.StartupTimeout())
	err = d.br.Ping(pingCtx)
	cancel()
	if err != nil {
		d.br.Close()
		_ = proc.Kill()
		d.teardown()
		return fmt.Errorf("worker did not answer ping: %w", err)
	}

	go d.watchExit()

	api, err := newAPIServer(d.cfg, d, d.logger)
	if err != nil {
		d.br.Close()
		_ = proc.Kill()
		d.teardown()
		return err
	}
	d.api = api
	if api != nil {
		if err := api.start(d.ctx); err != nil {
			d.br.Close()
			_ = proc.Kill()
			d.teardown()
			return err
		}
	}

	d.running.Store(true)
	d.logger.Info("daemon started", slog.Int("worker_pid", proc.PID()))
	return nil
}

// watchExit propagates worker death to the bridge so outstanding calls are
// rejected instead of hanging forever.
func (d *Daemon) watchExit() {
	select {
	case err := <-d.proc.Done():
		if err != nil {
			d.logger.Error("worker terminated", slog.String("error", err.Error()))
		}
		d.br.Close()
	case <-d.ctx.Done():
	}
}

// Stop shuts down the API, the bridge, and the worker, and releases the
// instance lock.
func (d *Daemon) Stop() {
	if !d.running.Swap(false) {
		d.teardown()
		return
	}
	if d.api != nil {
		d.api.stop()
	}
	if d.br != nil {
		d.br.Close()
	}
	if d.proc != nil {
		if err := d.proc.Stop(); err == nil {
			select {
			case <-d.proc.Done():
			case <-time.After(5 * time.Second):
				_ = d.proc.Kill()
			}
		} else {
			_ = d.proc.Kill()
		}
	}
	d.teardown()
	d.logger.Info("daemon stopped")
}

func (d *Daemon) teardown() {
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	_ = d.lock.Unlock()
}

// Call forwards one RPC to the worker and records its outcome. The token
// identifies the call in progress events and history; an empty token gets
// a fresh one. It returns the token actually used.
func (d *Daemon) Call(ctx context.Context, token, method string, params json.RawMessage) (string, json.RawMessage, error) {
	if strings.TrimSpace(method) == "" {
		return token, nil, errors.New("method required")
	}
	if token == "" {
		token = uuid.NewString()
	}
	if d.br == nil {
		return token, nil, &bridge.WorkerError{Kind: bridge.KindUnavailable}
	}

	started := time.Now()
	result, err := d.br.Call(ctx, method, params, func(update protocol.ProgressUpdate) {
		d.hub.broadcastProgress(token, update)
	})
	d.record(token, method, started, err)
	return token, result, err
}

func (d *Daemon) record(token, method string, started time.Time, callErr error) {
	rec := history.Record{
		ID:         token,
		Method:     method,
		StartedAt:  started,
		FinishedAt: time.Now(),
		OK:         callErr == nil,
	}
	var werr *bridge.WorkerError
	if errors.As(callErr, &werr) {
		rec.ErrorKind = string(werr.Kind)
		rec.ErrorMessage = werr.UserMessage()
	} else if callErr != nil {
		rec.ErrorMessage = callErr.Error()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := d.store.Add(ctx, rec); err != nil {
		d.logger.Warn("record call history", slog.String("error", err.Error()))
	}
}

// Status reports runtime and dependency information.
func (d *Daemon) Status() Status {
	binary := d.workerBinary()
	status := Status{
		Running:      d.running.Load(),
		WorkerBinary: binary,
		LockFilePath: d.lockPath,
		HistoryDB:    d.store.Path(),
	}
	if d.proc != nil {
		status.PID = d.proc.PID()
	}
	if d.br != nil {
		status.WorkerAlive = !d.br.Dead()
	}
	status.Dependencies = []deps.Status{
		deps.CheckBinaries([]deps.Requirement{{
			Name:        "Caption worker",
			Command:     binary,
			Description: "Transcription and caption rendering",
		}})[0],
		deps.CheckFFmpegForWorker(binary),
	}
	return status
}

// pruneHistory trims old call records on startup so the store cannot grow
// without bound.
func (d *Daemon) pruneHistory(ctx context.Context) {
	removed, err := d.store.Prune(ctx, historyRetention)
	if err != nil {
		d.logger.Warn("prune call history", slog.String("error", err.Error()))
		return
	}
	if removed > 0 {
		d.logger.Info("pruned call history", slog.Int64("removed", removed))
	}
}

// History returns the most recent settled calls.
func (d *Daemon) History(ctx context.Context, limit int) ([]history.Record, error) {
	return d.store.Recent(ctx, limit)
}

func (d *Daemon) workerBinary() string {
	if d.cfg.Worker.Binary != "" {
		return d.cfg.Worker.Binary
	}
	return worker.Locate("")
}
