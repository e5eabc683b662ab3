// Package middleware exposes HTTP adapters for the navigation gate: a
// cookie-backed [client.Store], a request-derived fingerprinter, and the
// [Guard] handler wrapper.
//
// # Guards
//
//   - [Guard] — runs Gate.Authorize per request, injects the decision into
//     the request context, and translates denials into HTTP responses.
//
// The guard reads the four credential cookies, delegates the ordered checks
// to the gate, and on grant forwards with the rotated CSRF token already
// written back as a Set-Cookie header.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Gate calls. It does NOT
// implement authorization logic itself — all decisions are delegated to
// Gate.Authorize.
//
// # What this package must NOT do
//
//   - Inspect or compare credential values (the gate owns all checks).
//   - Access Redis (the gate handles I/O).
//   - Distinguish denial causes beyond redirect vs. retry.
package middleware
