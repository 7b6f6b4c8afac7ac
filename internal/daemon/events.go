package daemon

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"clipcap/internal/protocol"
)

// wireEvent is one message pushed to connected UIs.
type wireEvent struct {
	Type     string  `json:"type"`
	ID       string  `json:"id,omitempty"`
	Progress float64 `json:"progress,omitempty"`
	Status   string  `json:"status,omitempty"`
	Message  string  `json:"message,omitempty"`
}

const (
	// clientQueueSize bounds the events buffered per subscriber. A
	// subscriber that falls this far behind is disconnected.
	clientQueueSize = 64
	clientWriteWait = 5 * time.Second
)

// eventHub fans progress and log events out to WebSocket subscribers.
// Broadcasting runs on the bridge's dispatch goroutine, so it must never
// block on a subscriber: each client gets a bounded queue drained by its
// own writer goroutine, and a full queue evicts the client.
type eventHub struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]chan wireEvent
}

func newEventHub(logger *slog.Logger) *eventHub {
	return &eventHub{
		logger: logger,
		upgrader: websocket.Upgrader{
			// The API binds to loopback; the UI connects from a file://
			// or app-scheme origin that the default check would refuse.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]chan wireEvent),
	}
}

func (h *eventHub) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	send := make(chan wireEvent, clientQueueSize)
	h.mu.Lock()
	h.clients[conn] = send
	h.mu.Unlock()

	go h.writeLoop(conn, send)

	// Subscribers only listen; drain until the peer goes away.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.drop(conn)
				return
			}
		}
	}()
}

// writeLoop owns all writes to one subscriber and closes the connection
// once its queue is closed.
func (h *eventHub) writeLoop(conn *websocket.Conn, send chan wireEvent) {
	defer conn.Close()
	for event := range send {
		_ = conn.SetWriteDeadline(time.Now().Add(clientWriteWait))
		if err := conn.WriteJSON(event); err != nil {
			h.drop(conn)
			for range send {
			}
			return
		}
	}
}

// drop deregisters a subscriber. Closing the queue ends its writeLoop,
// which closes the connection.
func (h *eventHub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if send, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		close(send)
	}
}

// broadcastProgress relays one progress update, tagged with the caller's
// token rather than the bridge's internal request id.
func (h *eventHub) broadcastProgress(token string, update protocol.ProgressUpdate) {
	h.broadcast(wireEvent{
		Type:     "progress",
		ID:       token,
		Progress: update.Progress,
		Status:   update.Status,
	})
}

// relayWorkerEvent forwards worker log lines to subscribers. Progress
// events are delivered through per-call subscriptions instead so they
// carry caller tokens.
func (h *eventHub) relayWorkerEvent(msg protocol.Message) {
	if !msg.IsLog() {
		return
	}
	h.broadcast(wireEvent{Type: "log", Message: msg.Message})
}

// broadcast enqueues the event for every subscriber without blocking.
// Subscribers whose queues are full are evicted so a stalled UI cannot
// stall RPC dispatch.
func (h *eventHub) broadcast(event wireEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, send := range h.clients {
		select {
		case send <- event:
		default:
			h.logger.Warn("dropping slow event subscriber",
				slog.String("remote", conn.RemoteAddr().String()))
			delete(h.clients, conn)
			close(send)
		}
	}
}

func (h *eventHub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, send := range h.clients {
		delete(h.clients, conn)
		close(send)
	}
}
