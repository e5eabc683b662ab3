package routegate

import (
	"context"
	"errors"
	"time"
)

const (
	auditEventGateGranted        = "gate_granted"
	auditEventGateDenied         = "gate_denied"
	auditEventSessionEstablished = "session_established"
	auditEventLogout             = "logout"
)

// AuditErrorCode defines a public type used by routegate APIs.
//
// AuditErrorCode instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditErrorCode string

const (
	auditErrMissingCredentials AuditErrorCode = "missing_credentials"
	auditErrInvalidSession     AuditErrorCode = "invalid_session"
	auditErrInvalidCSRF        AuditErrorCode = "invalid_csrf"
	auditErrEnrollmentInvalid  AuditErrorCode = "enrollment_invalid"
	auditErrClientStorage      AuditErrorCode = "client_storage"
	auditErrUnavailable        AuditErrorCode = "backend_unavailable"
	auditErrInternal           AuditErrorCode = "internal_error"
)

func (g *Gate) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	decision *Decision,
	err error,
	metadataBuilder func() map[string]string,
) {
	if g == nil || g.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}
	if ua := userAgentFromContext(ctx); ua != "" {
		if metadata == nil {
			metadata = make(map[string]string, 1)
		}
		metadata["user_agent"] = ua
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		IP:        clientIPFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if decision != nil {
		event.NavigationID = decision.NavigationID
		event.UserID = decision.UserID
		event.SessionID = decision.SessionID
		event.Location = decision.Location
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	g.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrMissingCredentials):
		return auditErrMissingCredentials
	case errors.Is(err, ErrSessionInvalid):
		return auditErrInvalidSession
	case errors.Is(err, ErrCSRFInvalid):
		return auditErrInvalidCSRF
	case errors.Is(err, ErrEnrollmentInvalid):
		return auditErrEnrollmentInvalid
	case errors.Is(err, ErrClientStorage):
		return auditErrClientStorage
	case errors.Is(err, ErrBackendUnavailable):
		return auditErrUnavailable
	default:
		return auditErrInternal
	}
}
