// Package client defines the capability interfaces between the gate and the
// client-held state: the [Store] holding the four navigation values and the
// [Fingerprinter] computing the device characteristic hash input.
//
// # Architecture boundaries
//
// Values read through a [Store] are a convenience cache under the client's
// control, never a source of truth. The gate treats every value as untrusted
// and re-derives authorization from the server-side registries on each
// navigation.
//
// # What this package must NOT do
//
//   - Talk to Redis or any server-side registry.
//   - Import routegate, session, or csrf (no upward imports).
package client
