// Package kv is the durable client-side storage the session lives in. It is
// a flat string-to-string map, the same shape as browser local storage.
package kv

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get for a key that was never set or was deleted.
var ErrNotFound = errors.New("kv: key not found")

type Storage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	// Delete removes the keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error
	Close() error
}
