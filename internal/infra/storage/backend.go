// Package storage holds the client's local key/value store: one named entry
// per key, read and written whole.
package storage

import (
	"context"
	"fmt"
	"io"
	"regexp"
)

// Backend is the local-storage analog used for persisted client state.
type Backend interface {
	// Get returns ok=false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	// Remove is a no-op for an absent key.
	Remove(ctx context.Context, key string) error
	io.Closer
}

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9_.-]{1,128}$`)

// ValidateKey validates key format (alphanumeric, dot, dash, underscore, max 128 chars)
func ValidateKey(key string) error {
	if !keyPattern.MatchString(key) || key == "." || key == ".." {
		return fmt.Errorf("invalid storage key %q", key)
	}
	return nil
}
