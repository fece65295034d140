// Package persistence stores timers, the stopwatch and its laps in a durable
// key-value store.
//
// A Store exposes typed reads that never fail: a missing or partially
// written record yields the caller's default. Writes are batched through an
// Editor and flushed with Commit, which only returns once the batch is
// durable. Three stores are provided: MemoryStore for tests, FileStore (a
// CBOR snapshot replaced atomically on every commit) and SQLiteStore.
//
// The DAO functions in this package (LoadTimers, AddTimer, UpdateTimer, ...)
// map the timer and stopwatch values onto store keys.
package persistence
