package config

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/language"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeWorker(); err != nil {
		return err
	}
	if err := c.normalizeTranscription(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.HistoryDB) == "" {
		c.Paths.HistoryDB = defaultHistoryDB
	}
	if c.Paths.HistoryDB, err = expandPath(c.Paths.HistoryDB); err != nil {
		return fmt.Errorf("paths.history_db: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	return nil
}

func (c *Config) normalizeWorker() error {
	var err error
	if c.Worker.Binary = strings.TrimSpace(c.Worker.Binary); c.Worker.Binary != "" {
		if c.Worker.Binary, err = expandPath(c.Worker.Binary); err != nil {
			return fmt.Errorf("worker.binary: %w", err)
		}
	}
	if c.Worker.ToolDir = strings.TrimSpace(c.Worker.ToolDir); c.Worker.ToolDir != "" {
		if c.Worker.ToolDir, err = expandPath(c.Worker.ToolDir); err != nil {
			return fmt.Errorf("worker.tool_dir: %w", err)
		}
	}
	if c.Worker.QueueSize == 0 {
		c.Worker.QueueSize = defaultQueueSize
	}
	if c.Worker.StartupTimeout == 0 {
		c.Worker.StartupTimeout = defaultStartupTimeout
	}
	return nil
}

func (c *Config) normalizeTranscription() error {
	if c.Transcription.APIKey == "" {
		if value, ok := os.LookupEnv("OPENAI_API_KEY"); ok {
			c.Transcription.APIKey = value
		}
	}
	c.Transcription.Model = strings.TrimSpace(c.Transcription.Model)
	if c.Transcription.Model == "" {
		c.Transcription.Model = defaultModel
	}
	// Canonicalize the language hint to a BCP-47 base ("english" is a user
	// typo we don't rescue; "en-US" becomes "en").
	if hint := strings.TrimSpace(c.Transcription.Language); hint != "" {
		tag, err := language.Parse(hint)
		if err != nil {
			return fmt.Errorf("transcription.language: unrecognized tag %q: %w", hint, err)
		}
		base, _ := tag.Base()
		c.Transcription.Language = base.String()
	} else {
		c.Transcription.Language = ""
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
