// Package session provides Redis-backed session persistence and compact binary session
// encoding for the navigation hot path.
//
// # Binary encoding
//
// Sessions are stored in Redis as a compact binary format (schema version v1).
// The encoder is append-only: new versions add fields but never reinterpret
// old ones.
//
// # Architecture boundaries
//
// This package owns the [Registry] (Redis operations) and the [Session] model.
// It does NOT interpret CSRF tokens or make navigation decisions — those
// responsibilities belong to the Gate.
//
// # What this package must NOT do
//
//   - Import routegate, csrf, or middleware (no upward imports).
//   - Reveal whether a failed lookup was unknown, expired, or mismatched.
//   - Store plaintext fingerprints in [Session] fields.
package session
