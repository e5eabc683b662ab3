// Package internal contains helper utilities that are intentionally private to routegate,
// including secure random generation and credential hashing helpers.
//
// # Sub-packages
//
//   - audit — async event dispatch (Dispatcher + Sink implementations)
//   - metrics — lock-free counters and latency histograms
//
// # What this package must NOT do
//
//   - Export types that appear in the public routegate API.
//   - Be imported by any package outside the routegate module.
package internal
