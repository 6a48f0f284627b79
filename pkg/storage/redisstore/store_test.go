package redisstore

import (
	"context"
	"testing"

	"slotbook/pkg/storage"
	"slotbook/pkg/storage/storagetest"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_Conformance(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Store {
		mr := miniredis.RunT(t)
		return New(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "slotbook:")
	})
}

func TestStore_UsesPrefix(t *testing.T) {
	mr := miniredis.RunT(t)
	s := New(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "tenant-a:")

	require.NoError(t, s.Set(context.Background(), "bookings", []byte(`{}`)))

	assert.True(t, mr.Exists("tenant-a:bookings"))
	assert.False(t, mr.Exists("bookings"))
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)

	s, err := Connect(context.Background(), Options{Addr: mr.Addr(), KeyPrefix: "slotbook:"})
	require.NoError(t, err)
	defer s.Close()
	assert.NoError(t, s.Ping(context.Background()))
}

func TestConnect_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := Connect(context.Background(), Options{Addr: addr})
	assert.Error(t, err)
}
