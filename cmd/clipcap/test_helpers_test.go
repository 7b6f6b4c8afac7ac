package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"clipcap/internal/bridge"
	"clipcap/internal/daemon"
)

// stubDaemon serves the daemon API shape so CLI commands can be exercised
// without a worker process.
func stubDaemon(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/call", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Token  string          `json:"token"`
			Method string          `json:"method"`
			Params json.RawMessage `json:"params"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("X-Clipcap-Request", req.Token)
		w.Header().Set("Content-Type", "application/json")
		switch req.Method {
		case "ping":
			fmt.Fprint(w, `{"ok":true,"result":{"ok":true}}`)
		case "checkModelExists":
			var model string
			_ = json.Unmarshal(req.Params, &model)
			fmt.Fprintf(w, `{"ok":true,"result":%t}`, model == "base")
		case "deleteModel":
			fmt.Fprint(w, `{"ok":true,"result":{"model":"base","path":"/models/ggml-base.bin"}}`)
		case "fail-auth":
			w.WriteHeader(http.StatusBadGateway)
			fmt.Fprintf(w, `{"ok":false,"kind":"%s","error":"Invalid API key. Check your OpenAI credentials."}`,
				bridge.KindCredentialsInvalid)
		default:
			w.WriteHeader(http.StatusBadGateway)
			fmt.Fprint(w, `{"ok":false,"kind":"unknown","error":"Unexpected worker error: Unknown method"}`)
		}
	})
	mux.HandleFunc("/api/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(daemon.Status{
			Running:      true,
			PID:          4242,
			WorkerBinary: "/opt/clipcap/clipcap-core",
			WorkerAlive:  true,
		})
	})
	mux.HandleFunc("/api/history", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"calls":[
			{"id":"a","method":"generateCaptions","started_at":"2026-08-29T10:00:00Z","duration_ms":5250,"ok":true},
			{"id":"b","method":"downloadModel","started_at":"2026-08-29T09:00:00Z","duration_ms":120,"ok":false,"error_kind":"network_failure","error_message":"Network error while contacting the transcription service."}
		]}`)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func runCLI(t *testing.T, server *httptest.Server, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	address := strings.TrimPrefix(server.URL, "http://")
	cmd.SetArgs(append([]string{"--address", address, "--config", testConfigPath(t)}, args...))
	err := cmd.Execute()
	return stdout.String(), err
}

// testConfigPath writes a minimal config pointing at temp paths so commands
// never touch the real home directory.
func testConfigPath(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	path := filepath.Join(root, "config.toml")
	content := fmt.Sprintf("[paths]\nlog_dir = %q\nhistory_db = %q\n",
		filepath.Join(root, "logs"), filepath.Join(root, "history.db"))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
