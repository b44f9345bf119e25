package kv

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by Get when the key does not exist.
var ErrKeyNotFound = errors.New("key not found")

// Store is the key-value storage contract.
//
// All implementations must guarantee per-key atomicity. Get returns
// ErrKeyNotFound for missing keys; ListRange on a missing key returns an
// empty slice, not an error.
type Store interface {
	// Set stores a value under a key, overwriting any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Get returns the value stored under key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// ListPush prepends a value to the list stored under key, creating the
	// list if absent.
	ListPush(ctx context.Context, key string, value string) error

	// ListRange returns list elements between start and stop inclusive,
	// with Redis LRANGE index semantics (negative indexes count from the
	// end).
	ListRange(ctx context.Context, key string, start, stop int64) ([]string, error)
}

// NormalizeRange converts LRANGE-style start/stop indexes into Go slice
// bounds for a list of length n. ok is false when the range selects nothing.
func NormalizeRange(n int64, start, stop int64) (lo, hi int64, ok bool) {
	if n == 0 {
		return 0, 0, false
	}
	if start < 0 {
		start += n
		if start < 0 {
			start = 0
		}
	}
	if stop < 0 {
		stop += n
	}
	if stop >= n {
		stop = n - 1
	}
	if start > stop || start >= n || stop < 0 {
		return 0, 0, false
	}
	return start, stop + 1, true
}
