package telemetry

import (
	"log/slog"
	"os"
)

// InitSlog replaces the default slog logger with a text handler
// writing to stderr. Verbose mode enables debug-level output,
// which also turns on HTTP message dumping in lib/restyutil.
func InitSlog(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}
