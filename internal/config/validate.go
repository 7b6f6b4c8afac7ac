package config

import (
	"errors"
	"fmt"
	"net"

	"clipcap/internal/protocol"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateWorker(); err != nil {
		return err
	}
	if err := c.validateTranscription(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.APIBind != "" {
		if _, _, err := net.SplitHostPort(c.Paths.APIBind); err != nil {
			return fmt.Errorf("paths.api_bind: %w", err)
		}
	}
	return nil
}

func (c *Config) validateWorker() error {
	if c.Worker.WriteGraceMS < 0 {
		return errors.New("worker.write_grace_ms must not be negative")
	}
	if c.Worker.QueueSize < 1 {
		return errors.New("worker.queue_size must be at least 1")
	}
	if c.Worker.StartupTimeout < 1 {
		return errors.New("worker.startup_timeout must be at least 1 second")
	}
	return nil
}

func (c *Config) validateTranscription() error {
	// "whisper-1" selects the OpenAI API; everything else must be a local
	// whisper model the worker knows how to load.
	if c.Transcription.Model != "whisper-1" && !protocol.IsKnownModel(c.Transcription.Model) {
		return fmt.Errorf("transcription.model: unknown model %q", c.Transcription.Model)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
