package routegate

import (
	"io"
	"time"

	internalaudit "github.com/routegate/routegate/internal/audit"
	internalmetrics "github.com/routegate/routegate/internal/metrics"
)

// DenyReason classifies a denied navigation for programmatic callers and
// telemetry. The user-visible surface carries only the fact of denial.
type DenyReason string

const (
	// ReasonNone is an exported constant or variable used by the navigation gate.
	ReasonNone DenyReason = ""
	// ReasonMissingCredentials is an exported constant or variable used by the navigation gate.
	ReasonMissingCredentials DenyReason = "missing_credentials"
	// ReasonInvalidSession is an exported constant or variable used by the navigation gate.
	ReasonInvalidSession DenyReason = "invalid_session"
	// ReasonInvalidCSRF is an exported constant or variable used by the navigation gate.
	ReasonInvalidCSRF DenyReason = "invalid_csrf"
	// ReasonBackendUnavailable is an exported constant or variable used by the navigation gate.
	ReasonBackendUnavailable DenyReason = "backend_unavailable"
)

// Decision is returned by [Gate.Authorize]. Exactly one of Granted or a
// non-empty Reason holds; a granted decision carries the freshly rotated
// CSRF token that has already been written back to the client store.
type Decision struct {
	NavigationID string
	Granted      bool
	Reason       DenyReason

	UserID    string
	SessionID string
	CSRFToken string

	Location   string
	RedirectTo string
}

// Enrollment is returned by [Gate.Establish]. It mirrors the four values
// written to the client store plus the session expiry.
type Enrollment struct {
	SessionID   string
	UserID      string
	Fingerprint string
	CSRFToken   string
	ExpiresAt   time.Time
}

type credentials struct {
	SessionID   string
	UserID      string
	Fingerprint string
	CSRFToken   string
}

func (c credentials) complete() bool {
	return c.SessionID != "" && c.UserID != "" && c.Fingerprint != "" && c.CSRFToken != ""
}

// AuditEvent is a structured audit record emitted by the gate.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the gate's audit dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer].
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

// MetricID identifies a specific counter or histogram bucket in the
// in-process metrics system.
type MetricID = internalmetrics.MetricID

const (
	// MetricGateGranted is an exported constant or variable used by the navigation gate.
	MetricGateGranted = MetricID(internalmetrics.MetricGateGranted)
	// MetricGateDenied is an exported constant or variable used by the navigation gate.
	MetricGateDenied = MetricID(internalmetrics.MetricGateDenied)
	// MetricDenyMissingCredentials is an exported constant or variable used by the navigation gate.
	MetricDenyMissingCredentials = MetricID(internalmetrics.MetricDenyMissingCredentials)
	// MetricDenyInvalidSession is an exported constant or variable used by the navigation gate.
	MetricDenyInvalidSession = MetricID(internalmetrics.MetricDenyInvalidSession)
	// MetricDenyInvalidCSRF is an exported constant or variable used by the navigation gate.
	MetricDenyInvalidCSRF = MetricID(internalmetrics.MetricDenyInvalidCSRF)
	// MetricDenyBackendUnavailable is an exported constant or variable used by the navigation gate.
	MetricDenyBackendUnavailable = MetricID(internalmetrics.MetricDenyBackendUnavailable)
	// MetricTokenIssued is an exported constant or variable used by the navigation gate.
	MetricTokenIssued = MetricID(internalmetrics.MetricTokenIssued)
	// MetricTokenRotated is an exported constant or variable used by the navigation gate.
	MetricTokenRotated = MetricID(internalmetrics.MetricTokenRotated)
	// MetricTokenSuperseded is an exported constant or variable used by the navigation gate.
	MetricTokenSuperseded = MetricID(internalmetrics.MetricTokenSuperseded)
	// MetricSessionEstablished is an exported constant or variable used by the navigation gate.
	MetricSessionEstablished = MetricID(internalmetrics.MetricSessionEstablished)
	// MetricSessionRevoked is an exported constant or variable used by the navigation gate.
	MetricSessionRevoked = MetricID(internalmetrics.MetricSessionRevoked)
	// MetricLogout is an exported constant or variable used by the navigation gate.
	MetricLogout = MetricID(internalmetrics.MetricLogout)
	// MetricCredentialsPurged is an exported constant or variable used by the navigation gate.
	MetricCredentialsPurged = MetricID(internalmetrics.MetricCredentialsPurged)
	// MetricAuthorizeLatency is an exported constant or variable used by the navigation gate.
	MetricAuthorizeLatency = MetricID(internalmetrics.MetricAuthorizeLatency)

	metricIDCount = internalmetrics.MetricIDCount
)

// Metrics holds atomic counters and optional latency histograms.
type Metrics = internalmetrics.Metrics

// MetricsSnapshot is a point-in-time deep copy of all metrics.
type MetricsSnapshot = internalmetrics.Snapshot

// NewMetrics creates a new [Metrics] instance configured by the given
// [MetricsConfig]. When Enabled is false, all operations are no-ops.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return internalmetrics.New(internalmetrics.Config{
		Enabled:       cfg.Enabled,
		EnableLatency: cfg.EnableLatencyHistograms,
	})
}
