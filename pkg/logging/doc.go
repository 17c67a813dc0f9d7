// Package logging provides the structured logging system for tmc with
// unified log handling and level filtering.
//
// The package is a thin layer over Go's standard slog package. Every log
// entry carries a timestamp, a level, a subsystem identifier and the
// formatted message; errors passed to Error are attached as a structured
// attribute.
//
// # Log Levels
//
//   - **Debug**: request URLs, cache hits and misses, per-step progress
//   - **Info**: general informational messages
//   - **Warn**: recoverable problems such as unwritable cache entries
//   - **Error**: failures and exceptional conditions
//
// # Usage
//
//	import "tmc/pkg/logging"
//
//	// Initialize at startup, before anything logs.
//	logging.Init(logging.LevelWarn, os.Stderr)
//
//	logging.Debug("api", "GET %s", target)
//	logging.Warn("cache", "writing entry for %q: %v", signature, err)
//	logging.Error("cli", err, "dump failed")
//
// # Subsystem Organization
//
// Logs are tagged by subsystem so that a debug run can be filtered down to
// one layer: api, cache, cli, config, pdq and query are the subsystems in
// use.
//
// # Thread Safety
//
// The logging system is safe for concurrent use from multiple goroutines;
// level filtering happens in the slog handler before any formatting cost
// is paid for suppressed messages.
package logging
