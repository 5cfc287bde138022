package log

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelError, ParseLevel(" ERROR "))
	assert.Equal(t, LevelInfo, ParseLevel("info"))
	assert.Equal(t, LevelInfo, ParseLevel("verbose"))
}

func TestErrorPrependsErrField(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	restore := setCore(core)
	defer restore()

	Error("store add failed", errors.New("boom"), "id", "abc")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "store add failed", entries[0].Message)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)

	fields := entries[0].ContextMap()
	assert.Equal(t, "boom", fields["err"])
	assert.Equal(t, "abc", fields["id"])
}

func TestInfoKeyValues(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	restore := setCore(core)
	defer restore()

	Debug("hidden")
	Info("session created", "id", "s1", "days", 7)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(7), entries[0].ContextMap()["days"])
}
