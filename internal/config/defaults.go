package config

const (
	defaultLogDir         = "~/.local/share/clipcap/logs"
	defaultHistoryDB      = "~/.local/share/clipcap/history.db"
	defaultAPIBind        = "127.0.0.1:8419"
	defaultWriteGraceMS   = 10
	defaultQueueSize      = 64
	defaultStartupTimeout = 15
	defaultModel          = "base"
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:    defaultLogDir,
			HistoryDB: defaultHistoryDB,
			APIBind:   defaultAPIBind,
		},
		Worker: Worker{
			WriteGraceMS:   defaultWriteGraceMS,
			QueueSize:      defaultQueueSize,
			StartupTimeout: defaultStartupTimeout,
		},
		Transcription: Transcription{
			Model: defaultModel,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
