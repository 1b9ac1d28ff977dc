package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelMapping(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, DebugLevel.zerologLevel())
	assert.Equal(t, zerolog.WarnLevel, LogLevel("WARN").zerologLevel())
	assert.Equal(t, zerolog.InfoLevel, LogLevel("verbose").zerologLevel())
	assert.Equal(t, zerolog.InfoLevel, LogLevel("").zerologLevel())
}

func TestComponentTagsOutput(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: InfoLevel, Output: &buf})
	t.Cleanup(func() { Configure(Config{Level: InfoLevel, Pretty: true}) })

	l := Component("registration")
	l.Info().Int64("course_id", 7).Msg("submitted")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "registration", line["component"])
	assert.Equal(t, "submitted", line["message"])
	assert.EqualValues(t, 7, line["course_id"])
}
