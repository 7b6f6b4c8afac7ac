// Package logging builds the slog loggers used across clipcap.
//
// Two output formats are supported: "console" for interactive use and
// "json" for machine consumption. Loggers can tee to a log file under the
// configured log directory in addition to the terminal streams.
package logging
