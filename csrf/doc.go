// Package csrf provides the Redis-backed per-user CSRF token authority with
// atomic rotation-on-use.
//
// # Record format
//
// Tokens are stored hashed (SHA-256) in a fixed 41-byte binary record:
// version byte, big-endian issue timestamp, token hash. Plaintext tokens
// exist only in flight between the authority and the client.
//
// # Architecture boundaries
//
// This package owns token issuance, constant-time validation, and the Lua
// compare-and-swap rotation. It does NOT resolve sessions or decide the
// order of navigation checks — that belongs to the Gate.
//
// # What this package must NOT do
//
//   - Import routegate, session, or middleware (no upward imports).
//   - Persist or log plaintext tokens.
//   - Reveal whether a failed validation was absence or mismatch.
package csrf
