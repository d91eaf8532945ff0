package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/lorrc/helpdesk-portal/internal/core/errors"
)

func TestOTPStore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	store := NewOTPStore()
	store.now = func() time.Time { return now }

	require.NoError(t, store.Save(ctx, " Ada@Example.com", "123456", 10*time.Minute))

	code, err := store.Consume(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "123456", code)

	_, err = store.Consume(ctx, "ada@example.com")
	assert.ErrorIs(t, err, apperrors.ErrInvalidOTP)

	t.Run("expired", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, "bob@example.com", "654321", time.Minute))
		now = now.Add(time.Minute)

		_, err := store.Consume(ctx, "bob@example.com")
		assert.ErrorIs(t, err, apperrors.ErrInvalidOTP)
	})

	t.Run("save sweeps expired entries", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, "old@example.com", "1", time.Minute))
		now = now.Add(2 * time.Minute)
		require.NoError(t, store.Save(ctx, "new@example.com", "2", time.Minute))

		assert.Len(t, store.entries, 1)
	})
}
