package infrastructure_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Raikerian/go-discord-backup/pkg/infrastructure"
)

func newObservedAdapter(t *testing.T) (fxevent.Logger, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	adapter := infrastructure.NewFxLoggerAdapter(zap.New(core))

	return adapter, logs
}

func TestFxLoggerAdapter(t *testing.T) {
	t.Run("StartedLogsAtInfo", func(t *testing.T) {
		adapter, logs := newObservedAdapter(t)

		adapter.LogEvent(&fxevent.Started{})

		entries := logs.All()
		require.Len(t, entries, 1)
		assert.Equal(t, zap.InfoLevel, entries[0].Level)
		assert.Equal(t, "STARTED", entries[0].Message)
	})

	t.Run("StartedErrorLogsAtError", func(t *testing.T) {
		adapter, logs := newObservedAdapter(t)

		adapter.LogEvent(&fxevent.Started{Err: errors.New("boom")})

		entries := logs.All()
		require.Len(t, entries, 1)
		assert.Equal(t, zap.ErrorLevel, entries[0].Level)
		assert.Contains(t, entries[0].Message, "boom")
	})

	t.Run("HookExecutionLogsAtDebug", func(t *testing.T) {
		adapter, logs := newObservedAdapter(t)

		adapter.LogEvent(&fxevent.OnStartExecuted{CallerName: "caller", FunctionName: "fn"})

		entries := logs.All()
		require.Len(t, entries, 1)
		assert.Equal(t, zap.DebugLevel, entries[0].Level)
	})

	t.Run("ProvidedLogsEachOutputType", func(t *testing.T) {
		adapter, logs := newObservedAdapter(t)

		adapter.LogEvent(&fxevent.Provided{OutputTypeNames: []string{"*zap.Logger", "*config.Config"}})

		assert.Len(t, logs.All(), 2)
	})

	t.Run("InvokeFailureLogsAtError", func(t *testing.T) {
		adapter, logs := newObservedAdapter(t)

		adapter.LogEvent(&fxevent.Invoked{FunctionName: "fn", Err: errors.New("bad wiring")})

		entries := logs.All()
		require.Len(t, entries, 1)
		assert.Equal(t, zap.ErrorLevel, entries[0].Level)
		assert.Contains(t, entries[0].Message, "bad wiring")
	})
}
