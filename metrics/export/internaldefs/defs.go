package internaldefs

import (
	routegate "github.com/routegate/routegate"
)

// CounterDef defines a public type used by routegate APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   routegate.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by routegate APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   routegate.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the navigation gate.
var CounterDefs = []CounterDef{
	{ID: routegate.MetricGateGranted, Name: "routegate_gate_granted_total", Help: "Granted navigations."},
	{ID: routegate.MetricGateDenied, Name: "routegate_gate_denied_total", Help: "Denied navigations."},
	{ID: routegate.MetricDenyMissingCredentials, Name: "routegate_deny_missing_credentials_total", Help: "Denials for missing client-held values."},
	{ID: routegate.MetricDenyInvalidSession, Name: "routegate_deny_invalid_session_total", Help: "Denials for unknown, expired, or fingerprint-mismatched sessions."},
	{ID: routegate.MetricDenyInvalidCSRF, Name: "routegate_deny_invalid_csrf_total", Help: "Denials for absent, stale, or mismatched CSRF tokens."},
	{ID: routegate.MetricDenyBackendUnavailable, Name: "routegate_deny_backend_unavailable_total", Help: "Navigations failed on transient backend errors."},
	{ID: routegate.MetricTokenIssued, Name: "routegate_token_issued_total", Help: "First-issue CSRF tokens."},
	{ID: routegate.MetricTokenRotated, Name: "routegate_token_rotated_total", Help: "Successful rotation-on-use token swaps."},
	{ID: routegate.MetricTokenSuperseded, Name: "routegate_token_superseded_total", Help: "Rotations lost to a concurrent navigation."},
	{ID: routegate.MetricSessionEstablished, Name: "routegate_session_established_total", Help: "Established sessions."},
	{ID: routegate.MetricSessionRevoked, Name: "routegate_session_revoked_total", Help: "Revoked sessions."},
	{ID: routegate.MetricLogout, Name: "routegate_logout_total", Help: "Logout operations."},
	{ID: routegate.MetricCredentialsPurged, Name: "routegate_credentials_purged_total", Help: "Client credential purges on security denial."},
}

// HistogramDefs is an exported constant or variable used by the navigation gate.
var HistogramDefs = []HistogramDef{
	{ID: routegate.MetricAuthorizeLatency, Name: "routegate_authorize_latency_seconds", Help: "Authorize latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the navigation gate.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix is an exported constant or variable used by the navigation gate.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets describes the normalizebuckets operation and its observable behavior.
//
// NormalizeBuckets may return an error when input validation, dependency calls, or security checks fail.
// NormalizeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
//
// CumulativeBuckets may return an error when input validation, dependency calls, or security checks fail.
// CumulativeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
