// Package kv is the durable key-value surface the marketplace stores persist
// their collections to. Each key holds one JSON document.
package kv

import (
	"context"
	"errors"
	"sort"
	"time"
)

// ErrNotFound is returned by Get when a key holds no value
var ErrNotFound = errors.New("kv: key not found")

// Store is a key-value backend
type Store interface {
	// Get returns the value under key or ErrNotFound
	Get(ctx context.Context, key string) ([]byte, error)
	// Set writes value under key. A zero ttl keeps the value forever.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// SetMany writes all entries in one round trip without expiry
	SetMany(ctx context.Context, entries map[string][]byte) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}

func sortedKeys(entries map[string][]byte) []string {
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
