// Package store provides NegotiationStore implementations: a volatile
// in-memory store for tests and development, and a durable SQLite store.
// Both enforce the conditional-write contract: a write succeeds only if
// the stored version matches the caller's expected version, and the
// version is bumped atomically with the write.
package store
