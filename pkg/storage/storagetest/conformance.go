// Package storagetest holds behaviour checks every storage backend must pass.
package storagetest

import (
	"context"
	"errors"
	"testing"

	"slotbook/pkg/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run exercises the storage.Store contract against a fresh store per subtest.
func Run(t *testing.T, newStore func(t *testing.T) storage.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing key returns ErrNotFound", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Get(ctx, "bookings")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("set then get", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, "bookings", []byte(`{"2025-01-10":[1,0,0,0,0]}`)))

		got, err := s.Get(ctx, "bookings")
		require.NoError(t, err)
		assert.JSONEq(t, `{"2025-01-10":[1,0,0,0,0]}`, string(got))
	})

	t.Run("set overwrites", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, "userDetails", []byte(`{"name":"Ada"}`)))
		require.NoError(t, s.Set(ctx, "userDetails", []byte(`{"name":"Grace"}`)))

		got, err := s.Get(ctx, "userDetails")
		require.NoError(t, err)
		assert.JSONEq(t, `{"name":"Grace"}`, string(got))
	})

	t.Run("keys are independent", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, "bookings", []byte(`{}`)))
		_, err := s.Get(ctx, "userDetails")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("delete removes key and is idempotent", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, "userDetails", []byte(`{}`)))
		require.NoError(t, s.Delete(ctx, "userDetails"))
		require.NoError(t, s.Delete(ctx, "userDetails"))

		_, err := s.Get(ctx, "userDetails")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("invalid key rejected", func(t *testing.T) {
		s := newStore(t)
		err := s.Set(ctx, "../escape", []byte(`{}`))
		assert.True(t, errors.Is(err, storage.ErrInvalidKey), "expected ErrInvalidKey, got %v", err)
	})

	t.Run("ping", func(t *testing.T) {
		s := newStore(t)
		assert.NoError(t, s.Ping(ctx))
	})

	t.Run("cancelled context", func(t *testing.T) {
		s := newStore(t)
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		assert.Error(t, s.Set(cctx, "bookings", []byte(`{}`)))
	})
}
