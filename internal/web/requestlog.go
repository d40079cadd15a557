package web

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/tahsinratul/life-client/internal/logging"
)

// requestLogFormatter writes chi's per-request log lines through zerolog.
type requestLogFormatter struct {
	logger zerolog.Logger
}

func (f requestLogFormatter) NewLogEntry(r *http.Request) middleware.LogEntry {
	return requestLogEntry{
		logger: f.logger.With().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str(logging.FieldPath, r.URL.Path).
			Str("remote", r.RemoteAddr).
			Logger(),
	}
}

type requestLogEntry struct {
	logger zerolog.Logger
}

func (e requestLogEntry) Write(status, bytes int, _ http.Header, elapsed time.Duration, _ any) {
	event := e.logger.Info()
	if status >= http.StatusInternalServerError {
		event = e.logger.Error()
	}
	event.Int(logging.FieldStatus, status).
		Int("bytes", bytes).
		Dur("elapsed", elapsed).
		Msg("request")
}

func (e requestLogEntry) Panic(v any, stack []byte) {
	e.logger.Error().
		Str("panic", fmt.Sprint(v)).
		Bytes("stack", stack).
		Msg("request panicked")
}
