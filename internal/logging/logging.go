// Package logging provides adw's logging infrastructure built on charmbracelet/log.
//
// It wraps charmbracelet/log to provide a centralized logger factory with
// component prefixes, level configuration, and stderr-only console output.
// Stdout is reserved for structured output (the webhook JSON envelopes,
// health reports, and phase results).
//
// Usage:
//
//	// During CLI initialization (PersistentPreRun):
//	logging.Setup(verbose, quiet, jsonFormat)
//
//	// In each package:
//	var logger = logging.New("state")
//	logger.Info("saving record", "adw_id", id)
//
// Setup must be called before New so child loggers inherit the correct level
// and formatter. charmbracelet/log copies state at creation time; later
// changes to the default logger do not propagate to existing children.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// Level aliases for charmbracelet/log levels, re-exported so consumers do not
// need to import charmbracelet/log directly.
const (
	LevelDebug = log.DebugLevel
	LevelInfo  = log.InfoLevel
	LevelWarn  = log.WarnLevel
	LevelError = log.ErrorLevel
	LevelFatal = log.FatalLevel
)

// Setup configures the global logging defaults. Call once during CLI
// initialization.
//
// Parameters:
//   - verbose: sets level to Debug (shows all messages)
//   - quiet: sets level to Error (hides Info and Warn messages)
//   - jsonFormat: switches to JSON formatter (NDJSON, suitable for CI)
//
// If both verbose and quiet are set, quiet wins: in scripted environments
// --quiet should always suppress noise regardless of other flags.
func Setup(verbose, quiet, jsonFormat bool) {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	if quiet {
		level = log.ErrorLevel
	}

	log.SetLevel(level)
	log.SetOutput(os.Stderr)

	if jsonFormat {
		log.SetFormatter(log.JSONFormatter)
	} else {
		log.SetFormatter(log.TextFormatter)
	}
}

// New creates a logger with the given component prefix. The returned logger
// inherits global level and output settings from the default logger at
// creation time.
func New(component string) *log.Logger {
	return log.WithPrefix(component)
}

// SetOutput overrides the output writer for the default logger. Primarily
// useful for testing, where output can be captured with a bytes.Buffer.
func SetOutput(w io.Writer) {
	log.SetOutput(w)
}

// ForWorkflow creates a logger that writes to both stderr and the workflow's
// execution log at <agentsDir>/<adwID>/<trigger>/execution.log. The file
// captures everything at debug level for post-run audit; the console keeps
// the globally configured level.
//
// The returned closer must be called when the phase finishes to flush and
// close the log file.
func ForWorkflow(agentsDir, adwID, trigger string) (*log.Logger, func() error, error) {
	dir := filepath.Join(agentsDir, adwID, trigger)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("logging: creating log directory %q: %w", dir, err)
	}

	path := filepath.Join(dir, "execution.log")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("logging: opening log file %q: %w", path, err)
	}

	logger := log.NewWithOptions(io.MultiWriter(os.Stderr, f), log.Options{
		ReportTimestamp: true,
		Prefix:          trigger,
		Level:           log.DebugLevel,
	})

	return logger, f.Close, nil
}
