// Package kv defines the key-value storage contract the memory subsystem is
// built on.
//
// The contract is deliberately small: single-key get/set/delete plus an
// append-only list per key (prepend push, range read). Per-key operations are
// atomic; there are no cross-key transactions.
//
// Implementations:
//   - kv/redis: Redis-backed store (go-redis), recommended for production
//   - kv/sqlite: SQLite-backed store, serverless file-based storage
//   - kv/memory: in-process store for tests and local development
//
// # List semantics
//
// ListPush prepends, so storage order is newest-first. ListRange uses
// inclusive start/stop indexes with Redis LRANGE semantics: negative indexes
// count from the end, and ListRange(key, 0, -1) returns the whole list.
package kv
