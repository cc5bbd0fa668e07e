package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf)

	log.Info().Str("document_id", "doc-1").Msg("statement extracted")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "statement extracted", entry["message"])
	assert.Equal(t, "doc-1", entry["document_id"])
	assert.Contains(t, entry, "time")
}

func TestFromContextReturnsAttachedLogger(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf)
	ctx := log.WithContext(context.Background())

	FromContext(ctx).Warn().Msg("collaborator degraded")

	assert.Contains(t, buf.String(), "collaborator degraded")
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	log := FromContext(context.Background())
	require.NotNil(t, log)
	assert.NotEqual(t, zerolog.Disabled, log.GetLevel())
}
