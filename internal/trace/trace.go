// Package trace provides timed-section diagnostic logging for the conversion
// pipeline. It is enabled by the APEXMARK_PROFILE environment variable, read
// once at init, and has no effect on conversion output.
package trace

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

var logger = newLogger()

func newLogger() *log.Logger {
	w := io.Writer(io.Discard)
	level := log.WarnLevel
	if os.Getenv("APEXMARK_PROFILE") != "" {
		w = os.Stderr
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Level:           level,
		Prefix:          "apexmark",
	})
}

// Enabled reports whether profiling output is active.
func Enabled() bool {
	return logger.GetLevel() <= log.DebugLevel
}

// Section logs the duration of a named pipeline stage. Use with defer:
//
//	defer trace.Section("metadata")()
func Section(name string) func() {
	if !Enabled() {
		return func() {}
	}
	start := time.Now()
	return func() {
		logger.Debug("stage complete", "stage", name, "duration", time.Since(start).Round(time.Microsecond))
	}
}

// Logf emits a diagnostic message with structured key/value pairs.
func Logf(msg string, kv ...any) {
	logger.Debug(msg, kv...)
}
