// Package routegate provides a route-entry security gate: fingerprint-bound
// Redis sessions, per-user rotating CSRF tokens, and the ordered navigation
// decision that composes them.
//
// The package is designed for concurrent server workloads: Gate methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// routegate is the public surface. It exposes [Gate], [Builder], [Config],
// and value types (Decision, Enrollment, MetricsSnapshot, etc.). All internal
// coordination — random generation, audit dispatch, metric storage — lives
// under internal/ and is never exported.
//
// # What this package must NOT do
//
//   - Expose Redis clients, store internals, or record encodings in its
//     public API.
//   - Perform I/O outside of Gate methods (construction via Builder is
//     allocation-only until Build).
//   - Import any sub-package that re-imports routegate (no import cycles).
//
// # Performance contract
//
// Authorize is the hot path. A granted navigation costs three Redis round
// trips (session GET, token GET, rotation EVALSHA); denials cost at most two.
package routegate
