package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	t.Run("Should fall back to info on a bad level", func(t *testing.T) {
		log, err := New(Config{Level: "loud", Encoding: "console"})
		require.NoError(t, err)
		assert.False(t, log.Core().Enabled(zap.DebugLevel))
		assert.True(t, log.Core().Enabled(zap.InfoLevel))
	})
}

func TestWithRequestID(t *testing.T) {
	t.Run("Should attach request and user fields", func(t *testing.T) {
		core, logs := observer.New(zap.InfoLevel)
		ctx := ContextWithUserID(ContextWithRequestID(context.Background(), "req-1"), "u1")

		WithRequestID(ctx, zap.New(core)).Info("hello")

		require.Equal(t, 1, logs.Len())
		fields := logs.All()[0].ContextMap()
		assert.Equal(t, "req-1", fields["request_id"])
		assert.Equal(t, "u1", fields["user_id"])
		assert.Equal(t, "u1", UserIDFromContext(ctx))
	})

	t.Run("Should return the base logger without context values", func(t *testing.T) {
		base := zap.NewNop()
		assert.Same(t, base, WithRequestID(context.Background(), base))
		assert.Empty(t, UserIDFromContext(context.Background()))
	})
}
