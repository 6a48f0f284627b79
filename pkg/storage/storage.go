// Package storage is the local key-value persistence used for the booking
// ledger and the saved contact profile. Each backend stores opaque JSON
// documents under a small set of well-known keys.
package storage

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

var (
	ErrNotFound   = errors.New("key not found")
	ErrInvalidKey = errors.New("invalid storage key")
	ErrClosed     = errors.New("storage is closed")
)

type Store interface {
	// Get returns ErrNotFound when the key has never been written or was deleted.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

var keyRegex = regexp.MustCompile(`^[A-Za-z0-9_.-]{1,128}$`)

func ValidateKey(key string) error {
	if !keyRegex.MatchString(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}
