package app

import (
	"log/slog"
	"os"
)

// NewLogger builds the process-wide logger. The json format feeds the log
// shipper in deployment; the text handler keeps local output readable.
// Every record carries the service name since the gateway's logs land next
// to the upstream's.
func NewLogger(cfg *Config) *slog.Logger {
	var handler slog.Handler
	if cfg != nil && cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{AddSource: true})
	} else {
		handler = slog.NewTextHandler(os.Stdout, nil)
	}
	return slog.New(handler).With(slog.String("service", "meridian-front"))
}
