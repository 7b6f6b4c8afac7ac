package bridge

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"clipcap/internal/protocol"
)

const (
	// Transcription results can carry a full transcript on one line.
	maxLineBytes = 16 * 1024 * 1024

	defaultQueueSize = 64
)

// Options configures a Bridge.
type Options struct {
	Logger *slog.Logger
	// WriteGrace is the pause after each outbound write. The worker reads
	// line-by-line, so this is a conservative throttle rather than a
	// protocol requirement; zero disables it.
	WriteGrace time.Duration
	// QueueSize bounds the outbound write queue.
	QueueSize int
	// OnEvent, when set, observes every inbound progress and log event
	// regardless of per-call subscriptions. Used by the daemon to fan
	// events out to connected UIs.
	OnEvent func(protocol.Message)
}

type settlement struct {
	result json.RawMessage
	err    error
}

type outbound struct {
	id      string
	payload []byte
}

// Bridge correlates concurrent RPC calls with the worker's stdio streams.
type Bridge struct {
	logger     *slog.Logger
	stdin      io.Writer
	stdout     io.Reader
	writeGrace time.Duration
	onEvent    func(protocol.Message)

	mu       sync.Mutex
	pending  map[string]chan settlement
	progress map[string]func(protocol.ProgressUpdate)
	dead     bool

	writes    chan outbound
	quit      chan struct{}
	closeOnce sync.Once
}

// New wires a Bridge over the worker's stdin/stdout and starts its reader
// and writer goroutines. The caller retains ownership of the streams; when
// stdout reaches EOF (worker exit) every outstanding call is rejected with
// KindWorkerTerminated.
func New(stdin io.Writer, stdout io.Reader, opts Options) *Bridge {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	grace := opts.WriteGrace
	if grace < 0 {
		grace = 0
	}
	queueSize := opts.QueueSize
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}

	b := &Bridge{
		logger:     logger,
		stdin:      stdin,
		stdout:     stdout,
		writeGrace: grace,
		onEvent:    opts.OnEvent,
		pending:    make(map[string]chan settlement),
		progress:   make(map[string]func(protocol.ProgressUpdate)),
		writes:     make(chan outbound, queueSize),
		quit:       make(chan struct{}),
	}
	go b.writeLoop()
	go b.readLoop()
	return b
}

// Call issues one RPC and blocks until it settles, the context is done, or
// the worker terminates. Progress events for this call invoke onProgress
// (which may be nil) strictly before settlement; events arriving after
// settlement are dropped.
func (b *Bridge) Call(ctx context.Context, method string, params any, onProgress func(protocol.ProgressUpdate)) (json.RawMessage, error) {
	rawParams, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("encode params for %s: %w", method, err)
	}
	id := uuid.NewString()
	payload, err := json.Marshal(protocol.Request{ID: id, Method: method, Params: rawParams})
	if err != nil {
		return nil, fmt.Errorf("encode request %s: %w", method, err)
	}

	ch := make(chan settlement, 1)
	b.mu.Lock()
	if b.dead {
		b.mu.Unlock()
		return nil, &WorkerError{Kind: KindUnavailable}
	}
	// Register before writing so a fast response cannot arrive to an
	// unknown id and be dropped.
	b.pending[id] = ch
	if onProgress != nil {
		b.progress[id] = onProgress
	}
	b.mu.Unlock()

	select {
	case b.writes <- outbound{id: id, payload: payload}:
	case <-b.quit:
		b.remove(id)
		return nil, &WorkerError{Kind: KindUnavailable}
	case <-ctx.Done():
		b.remove(id)
		return nil, ctx.Err()
	}

	select {
	case s := <-ch:
		return s.result, s.err
	case <-ctx.Done():
		b.remove(id)
		return nil, ctx.Err()
	}
}

// Close marks the bridge dead, rejects every outstanding call, and stops
// the writer. It does not touch the worker process; that is the
// supervisor's job.
func (b *Bridge) Close() {
	b.failPending()
	b.closeOnce.Do(func() { close(b.quit) })
}

// Dead reports whether the bridge can no longer reach the worker.
func (b *Bridge) Dead() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dead
}

func (b *Bridge) writeLoop() {
	for {
		var ob outbound
		select {
		case ob = <-b.writes:
		case <-b.quit:
			return
		}
		if b.Dead() {
			b.settle(ob.id, settlement{err: &WorkerError{Kind: KindWorkerTerminated}})
			continue
		}
		line := make([]byte, 0, len(ob.payload)+1)
		line = append(line, ob.payload...)
		line = append(line, '\n')
		if _, err := b.stdin.Write(line); err != nil {
			b.logger.Warn("worker write failed",
				slog.String("request", ob.id),
				slog.String("error", err.Error()))
			b.settle(ob.id, settlement{err: &WorkerError{Kind: KindUnavailable}})
			continue
		}
		if b.writeGrace > 0 {
			time.Sleep(b.writeGrace)
		}
	}
}

func (b *Bridge) readLoop() {
	scanner := bufio.NewScanner(b.stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		b.dispatch(scanner.Bytes())
	}
	if err := scanner.Err(); err != nil {
		b.logger.Warn("worker stdout closed", slog.String("error", err.Error()))
	}
	b.failPending()
}

// dispatch handles exactly one inbound line. It runs only on the reader
// goroutine; the mutex protects the tables against concurrent Call
// registration, not against other dispatchers.
func (b *Bridge) dispatch(line []byte) {
	msg, ok := protocol.ParseLine(line)
	if !ok {
		b.logger.Debug("ignoring non-protocol worker output", slog.String("line", truncate(line, 200)))
		return
	}
	if b.onEvent != nil && (msg.IsProgress() || msg.IsLog()) {
		b.onEvent(msg)
	}
	switch {
	case msg.IsLog():
		b.logger.Debug("worker", slog.String("request", msg.ID), slog.String("message", msg.Message))
	case msg.IsProgress():
		b.mu.Lock()
		cb := b.progress[msg.ID]
		b.mu.Unlock()
		if cb == nil {
			return
		}
		cb(protocol.ProgressUpdate{ID: msg.ID, Progress: msg.Progress, Status: msg.Status})
	case msg.IsTerminal():
		var s settlement
		if msg.Error != nil {
			s.err = Classify(*msg.Error)
		} else {
			s.result = append(json.RawMessage(nil), msg.Result...)
		}
		if !b.settle(msg.ID, s) {
			b.logger.Debug("dropping response for unknown request", slog.String("request", msg.ID))
		}
	default:
		b.logger.Debug("dropping unrecognized worker message", slog.String("request", msg.ID))
	}
}

// settle delivers the terminal outcome for id and clears both table
// entries. It reports false when the id is unknown (late, duplicate, or
// already removed).
func (b *Bridge) settle(id string, s settlement) bool {
	b.mu.Lock()
	ch, ok := b.pending[id]
	if ok {
		delete(b.pending, id)
		delete(b.progress, id)
	}
	b.mu.Unlock()
	if !ok {
		return false
	}
	ch <- s
	return true
}

// remove clears both table entries without delivering an outcome. Used
// when the caller abandons the request (context cancellation).
func (b *Bridge) remove(id string) {
	b.mu.Lock()
	delete(b.pending, id)
	delete(b.progress, id)
	b.mu.Unlock()
}

// failPending marks the bridge dead and rejects every outstanding call.
func (b *Bridge) failPending() {
	b.mu.Lock()
	if b.dead {
		b.mu.Unlock()
		return
	}
	b.dead = true
	pending := b.pending
	b.pending = make(map[string]chan settlement)
	b.progress = make(map[string]func(protocol.ProgressUpdate))
	b.mu.Unlock()

	if len(pending) > 0 {
		b.logger.Warn("rejecting requests after worker termination", slog.Int("count", len(pending)))
	}
	for _, ch := range pending {
		ch <- settlement{err: &WorkerError{Kind: KindWorkerTerminated}}
	}
}

func truncate(line []byte, limit int) string {
	if len(line) <= limit {
		return string(line)
	}
	return string(line[:limit]) + "..."
}
