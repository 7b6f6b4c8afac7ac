package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"clipcap/internal/config"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if want := filepath.Join(tempHome, ".local", "share", "clipcap", "logs"); cfg.Paths.LogDir != want {
		t.Fatalf("unexpected log dir: got %q want %q", cfg.Paths.LogDir, want)
	}
	if cfg.Paths.APIBind != "127.0.0.1:8419" {
		t.Fatalf("unexpected api bind: %q", cfg.Paths.APIBind)
	}
	if cfg.Worker.WriteGraceMS != 10 {
		t.Fatalf("unexpected write grace: %d", cfg.Worker.WriteGraceMS)
	}
	if cfg.Worker.QueueSize != 64 {
		t.Fatalf("unexpected queue size: %d", cfg.Worker.QueueSize)
	}
	if cfg.Transcription.Model != "base" {
		t.Fatalf("unexpected model: %q", cfg.Transcription.Model)
	}
	if cfg.Transcription.APIKey != "sk-test" {
		t.Fatalf("expected API key from env, got %q", cfg.Transcription.APIKey)
	}
}

func TestLoadParsesFileAndExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[paths]
log_dir = "~/logs"

[worker]
binary = "~/core/clipcap-core"
write_grace_ms = 0

[transcription]
model = "whisper-1"
language = "pt-BR"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if want := filepath.Join(tempHome, "logs"); cfg.Paths.LogDir != want {
		t.Fatalf("log dir not expanded: %q", cfg.Paths.LogDir)
	}
	if want := filepath.Join(tempHome, "core", "clipcap-core"); cfg.Worker.Binary != want {
		t.Fatalf("worker binary not expanded: %q", cfg.Worker.Binary)
	}
	if cfg.Worker.WriteGraceMS != 0 {
		t.Fatalf("explicit zero write grace overridden: %d", cfg.Worker.WriteGraceMS)
	}
	if cfg.Transcription.Language != "pt" {
		t.Fatalf("language hint not canonicalized: %q", cfg.Transcription.Language)
	}
	if cfg.WriteGrace() != 0 {
		t.Fatalf("WriteGrace() = %v, want 0", cfg.WriteGrace())
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "bad model",
			content: "[transcription]\nmodel = \"gigantic\"\n",
			wantErr: "transcription.model",
		},
		{
			name:    "bad language",
			content: "[transcription]\nlanguage = \"not a tag!\"\n",
			wantErr: "transcription.language",
		},
		{
			name:    "negative grace",
			content: "[worker]\nwrite_grace_ms = -5\n",
			wantErr: "write_grace_ms",
		},
		{
			name:    "bad log format",
			content: "[logging]\nformat = \"xml\"\n",
			wantErr: "logging.format",
		},
		{
			name:    "bad bind",
			content: "[paths]\napi_bind = \"no-port\"\n",
			wantErr: "api_bind",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tc.content), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			_, _, _, err := config.Load(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("error %q does not mention %q", err, tc.wantErr)
			}
		})
	}
}

func TestCreateSampleRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	written, err := config.CreateSample(path)
	if err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	if written != path {
		t.Fatalf("unexpected path: %q", written)
	}
	if _, err := config.CreateSample(path); err == nil {
		t.Fatal("expected error when sample already exists")
	}

	// The sample must itself be loadable.
	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample config does not load: %v", err)
	}
}
