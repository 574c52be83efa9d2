package logging

import (
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// NewHandler returns a JSON handler when format is "json" and a text handler otherwise
func NewHandler(w io.Writer, format string, level slog.Leveler) slog.Handler {
	opts := &slog.HandlerOptions{
		Level: level,
	}
	if format == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// NewLogger configures a stdout logger from the log format and level
func NewLogger(cfg *LogConf) *slog.Logger {
	return slog.New(NewHandler(os.Stdout, cfg.Format, cfg.Level))
}

// SlogFormatter is a chi log formatter backed by slog
type SlogFormatter struct {
	Logger *slog.Logger
}

// NewLogEntry creates a new log entry for an HTTP request
func (sf *SlogFormatter) NewLogEntry(r *http.Request) middleware.LogEntry {
	return &SlogLogEntry{
		Logger: sf.Logger,
		req:    r,
	}
}

// SlogLogEntry is a request log entry that writes through slog
type SlogLogEntry struct {
	Logger *slog.Logger
	req    *http.Request
}

// Write logs the response details
func (l *SlogLogEntry) Write(status, bytes int, header http.Header, elapsed time.Duration, extra interface{}) {
	l.Logger.Info("HTTP Request",
		"method", l.req.Method, "uri", l.req.RequestURI, "status", status,
		"bytes", bytes, "elapsed", elapsed.String(), "remote", l.req.RemoteAddr)
}

// Panic logs the panic details
func (l *SlogLogEntry) Panic(v interface{}, stack []byte) {
	l.Logger.Error("HTTP Request Panic",
		"method", l.req.Method, "uri", l.req.RequestURI, "panic", v, "stack", string(stack))
}
