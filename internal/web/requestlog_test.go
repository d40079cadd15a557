package web_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tahsinratul/life-client/internal/web"
)

func logLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var lines []map[string]any
	dec := json.NewDecoder(buf)
	for dec.More() {
		var line map[string]any
		require.NoError(t, dec.Decode(&line))
		lines = append(lines, line)
	}
	return lines
}

func TestRouter_LogsRequestsThroughZerolog(t *testing.T) {
	_, srv := newFakeBackend(t, nil)
	_, opts := newDashboard(t, srv.URL, "ann@example.com", time.Second)

	var buf bytes.Buffer
	opts.Logger = zerolog.New(&buf)

	rec := serve(web.NewRouter(opts), http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	lines := logLines(t, &buf)
	require.Len(t, lines, 1)
	line := lines[0]
	assert.Equal(t, "request", line["message"])
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "web", line["component"])
	assert.Equal(t, "GET", line["method"])
	assert.Equal(t, "/health", line["path"])
	assert.EqualValues(t, http.StatusOK, line["status"])
	assert.NotEmpty(t, line["request_id"])
}

func TestRouter_LogsRecoveredPanic(t *testing.T) {
	_, srv := newFakeBackend(t, nil)
	_, opts := newDashboard(t, srv.URL, "ann@example.com", time.Second)

	var buf bytes.Buffer
	opts.Logger = zerolog.New(&buf)
	opts.Middleware = []func(http.Handler) http.Handler{
		func(http.Handler) http.Handler {
			return http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") })
		},
	}

	rec := serve(web.NewRouter(opts), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var panicked map[string]any
	for _, line := range logLines(t, &buf) {
		if line["message"] == "request panicked" {
			panicked = line
		}
	}
	require.NotNil(t, panicked)
	assert.Equal(t, "error", panicked["level"])
	assert.Equal(t, "boom", panicked["panic"])
}
