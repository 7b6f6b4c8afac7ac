package protocol

import (
	"encoding/json"
	"strings"
)

// Request is one outbound RPC frame.
type Request struct {
	ID     string          `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

// Message is one parsed inbound line. The worker multiplexes progress
// events, log events, and terminal result/error frames on a single stream;
// the populated fields determine the shape.
type Message struct {
	Event    string          `json:"event,omitempty"`
	ID       string          `json:"id"`
	Progress float64         `json:"progress,omitempty"`
	Status   string          `json:"status,omitempty"`
	Message  string          `json:"message,omitempty"`
	Result   json.RawMessage `json:"result,omitempty"`
	Error    *string         `json:"error,omitempty"`
}

// Message event names emitted by the worker.
const (
	EventProgress = "progress"
	EventLog      = "log"
)

// IsProgress reports whether the message is an intermediate progress event.
func (m *Message) IsProgress() bool {
	return m.Event == EventProgress
}

// IsLog reports whether the message is a diagnostic log event.
func (m *Message) IsLog() bool {
	return m.Event == EventLog
}

// IsTerminal reports whether the message settles a request. A frame with no
// event tag and either a result payload or an error string is terminal.
func (m *Message) IsTerminal() bool {
	return m.Event == "" && (m.Result != nil || m.Error != nil)
}

// ProgressUpdate is the normalized progress payload handed to callers.
type ProgressUpdate struct {
	ID       string  `json:"id"`
	Progress float64 `json:"progress"`
	Status   string  `json:"status"`
}

// ParseLine decodes one inbound line. Blank lines and lines that are not
// JSON objects return ok=false; the worker prints diagnostics to stdout in
// some failure modes and those must never be treated as protocol errors.
func ParseLine(line []byte) (Message, bool) {
	trimmed := strings.TrimSpace(string(line))
	if trimmed == "" || !strings.HasPrefix(trimmed, "{") {
		return Message{}, false
	}
	var msg Message
	if err := json.Unmarshal([]byte(trimmed), &msg); err != nil {
		return Message{}, false
	}
	return msg, true
}
