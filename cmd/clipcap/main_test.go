package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestCallCommandPrintsResult(t *testing.T) {
	server := stubDaemon(t)

	out, err := runCLI(t, server, "call", "ping")
	if err != nil {
		t.Fatalf("call ping: %v", err)
	}
	requireContains(t, out, `"ok": true`)
}

func TestCallCommandRejectsInvalidParams(t *testing.T) {
	server := stubDaemon(t)

	if _, err := runCLI(t, server, "call", "ping", "{not json"); err == nil {
		t.Fatal("expected error for invalid params JSON")
	}
}

func TestCallCommandSurfacesClassifiedError(t *testing.T) {
	server := stubDaemon(t)

	_, err := runCLI(t, server, "call", "fail-auth")
	if err == nil {
		t.Fatal("expected classified error")
	}
	if !strings.Contains(err.Error(), "Invalid API key") {
		t.Fatalf("expected user-facing message, got %q", err.Error())
	}
}

func TestStatusCommandRendersTable(t *testing.T) {
	server := stubDaemon(t)

	out, err := runCLI(t, server, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "Worker alive")
	requireContains(t, out, "4242")
	requireContains(t, out, "/opt/clipcap/clipcap-core")
}

func TestHistoryCommandRendersOutcomes(t *testing.T) {
	server := stubDaemon(t)

	out, err := runCLI(t, server, "history", "--limit", "5")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "generateCaptions")
	requireContains(t, out, "network_failure")
	requireContains(t, out, "5.25s")
}

func TestModelsListMarksDownloaded(t *testing.T) {
	server := stubDaemon(t)

	out, err := runCLI(t, server, "models", "list")
	if err != nil {
		t.Fatalf("models list: %v", err)
	}
	requireContains(t, out, "ggml-base.bin")
	requireContains(t, out, "ggml-large-v3.bin")
	lines := strings.Split(out, "\n")
	var baseLine string
	for _, line := range lines {
		if strings.Contains(line, "ggml-base.bin") {
			baseLine = line
		}
	}
	requireContains(t, baseLine, "yes")
}

func TestModelsDownloadRejectsUnknownModel(t *testing.T) {
	server := stubDaemon(t)

	if _, err := runCLI(t, server, "models", "download", "gigantic"); err == nil {
		t.Fatal("expected error for unknown model")
	}
}

func TestModelsDeletePrintsPath(t *testing.T) {
	server := stubDaemon(t)

	out, err := runCLI(t, server, "models", "delete", "base")
	if err != nil {
		t.Fatalf("models delete: %v", err)
	}
	requireContains(t, out, "/models/ggml-base.bin")
}

func TestConfigInitWritesSample(t *testing.T) {
	server := stubDaemon(t)

	target := filepath.Join(t.TempDir(), "config.toml")
	out, err := runCLI(t, server, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, err := runCLI(t, server, "config", "init", "--path", target); err == nil {
		t.Fatal("expected error when config already exists")
	}
	if _, err := runCLI(t, server, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestConfigShowPrintsResolvedValues(t *testing.T) {
	server := stubDaemon(t)

	out, err := runCLI(t, server, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "[paths]")
	requireContains(t, out, "history.db")
}

func TestWatchEventsDeliversStream(t *testing.T) {
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.WriteJSON(map[string]any{"type": "progress", "id": "other", "progress": 0.1})
		_ = conn.WriteJSON(map[string]any{"type": "progress", "id": "mine", "progress": 0.7, "status": "rendering"})
	}))
	defer server.Close()

	client := newAPIClient(strings.TrimPrefix(server.URL, "http://"))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var got []progressEvent
	_ = client.watchEvents(ctx, func(event progressEvent) {
		got = append(got, event)
		if len(got) == 2 {
			cancel()
		}
	})

	if len(got) < 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
	if got[1].ID != "mine" || got[1].Progress != 0.7 || got[1].Status != "rendering" {
		t.Fatalf("unexpected event: %+v", got[1])
	}
}

func TestVersionCommand(t *testing.T) {
	cmd := newRootCommand()
	var out strings.Builder
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("version: %v", err)
	}
	requireContains(t, out.String(), "clipcap")
}

func TestRootHelpListsCommands(t *testing.T) {
	cmd := newRootCommand()
	var out strings.Builder
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--help"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("help: %v", err)
	}
	for _, name := range []string{"call", "models", "status", "history", "config"} {
		requireContains(t, out.String(), name)
	}
}
