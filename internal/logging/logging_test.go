package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComponentLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := Component(New(&buf, true), "session")

	logger.Debug().Str(FieldAddress, "ann@example.com").Msg("identity applied")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "session", entry[FieldComponent])
	assert.Equal(t, "ann@example.com", entry[FieldAddress])
	assert.Equal(t, "debug", entry["level"])
}

func TestNew_DefaultLevelDropsDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, false)

	logger.Debug().Msg("hidden")
	logger.Info().Msg("hidden too")
	assert.Empty(t, buf.String())

	logger.Warn().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}
