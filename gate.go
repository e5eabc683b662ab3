package routegate

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/routegate/routegate/client"
	"github.com/routegate/routegate/csrf"
	"github.com/routegate/routegate/internal"
	internalaudit "github.com/routegate/routegate/internal/audit"
	"github.com/routegate/routegate/redirect"
	"github.com/routegate/routegate/session"
)

// Gate is the route-entry security gate. It composes the session registry and
// the CSRF token authority into one ordered navigation decision.
//
// Construct a Gate through [Builder.Build]. All methods are safe for
// concurrent use after construction.
type Gate struct {
	config    Config
	sessions  *session.Registry
	tokens    *csrf.Authority
	redirects *redirect.Manager
	audit     *internalaudit.Dispatcher
	metrics   *Metrics
	logger    zerolog.Logger
}

// Authorize runs the navigation state machine for one route entry, in order:
// read the four client-held values, resolve the fingerprint-bound session,
// validate the CSRF token, rotate it, persist the new token client-side.
//
// Security denials (missing values, invalid session, invalid or superseded
// token) return a denied [Decision] with a nil error after purging all four
// client keys. Transient backend failures return a denied Decision together
// with a non-nil error wrapping [ErrBackendUnavailable] or [ErrClientStorage]
// and do NOT purge, so the user can simply retry.
func (g *Gate) Authorize(ctx context.Context, store client.Store, location string) (*Decision, error) {
	start := time.Now()

	if g == nil || g.sessions == nil || g.tokens == nil {
		return nil, ErrGateNotReady
	}
	if store == nil {
		return nil, errors.New("client store required")
	}

	decision := &Decision{
		NavigationID: uuid.NewString(),
		Location:     location,
	}

	creds, err := g.readCredentials(ctx, store)
	if err != nil {
		return g.denyTransient(ctx, decision, creds, fmt.Errorf("%w: %v", ErrClientStorage, err), start)
	}

	if !creds.complete() {
		return g.denySecurity(ctx, store, decision, creds, ReasonMissingCredentials, ErrMissingCredentials, start)
	}

	sess, err := g.sessions.Resolve(ctx, creds.SessionID, creds.Fingerprint)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return g.denySecurity(ctx, store, decision, creds, ReasonInvalidSession, ErrSessionInvalid, start)
		}
		return g.denyTransient(ctx, decision, creds, fmt.Errorf("%w: %v", ErrBackendUnavailable, err), start)
	}

	// The client-held userId must agree with the resolved session. A
	// disagreement is reported exactly like an unknown session.
	if sess.UserID != creds.UserID {
		return g.denySecurity(ctx, store, decision, creds, ReasonInvalidSession, ErrSessionInvalid, start)
	}

	// CSRF is checked strictly after session validity so that an invalid
	// session never becomes a token oracle.
	if err := g.tokens.Validate(ctx, creds.UserID, creds.CSRFToken); err != nil {
		if errors.Is(err, csrf.ErrTokenMismatch) {
			return g.denySecurity(ctx, store, decision, creds, ReasonInvalidCSRF, ErrCSRFInvalid, start)
		}
		return g.denyTransient(ctx, decision, creds, fmt.Errorf("%w: %v", ErrBackendUnavailable, err), start)
	}

	next, err := g.tokens.Rotate(ctx, creds.UserID, creds.CSRFToken)
	if err != nil {
		if errors.Is(err, csrf.ErrTokenMismatch) {
			// Lost the CAS to a concurrent navigation between Validate
			// and Rotate.
			g.metricInc(MetricTokenSuperseded)
			return g.denySecurity(ctx, store, decision, creds, ReasonInvalidCSRF, ErrCSRFInvalid, start)
		}
		return g.denyTransient(ctx, decision, creds, fmt.Errorf("%w: %v", ErrBackendUnavailable, err), start)
	}
	g.metricInc(MetricTokenRotated)

	if err := store.Set(ctx, g.config.Keys.CSRFToken, next); err != nil {
		// The rotation already happened server-side; the stale client
		// copy fails closed on the next navigation.
		return g.denyTransient(ctx, decision, creds, fmt.Errorf("%w: %v", ErrClientStorage, err), start)
	}

	decision.Granted = true
	decision.UserID = creds.UserID
	decision.SessionID = creds.SessionID
	decision.CSRFToken = next

	g.metricInc(MetricGateGranted)
	g.metricObserve(MetricAuthorizeLatency, time.Since(start))
	g.emitAudit(ctx, auditEventGateGranted, true, decision, nil, nil)

	g.logger.Debug().
		Str("navigation_id", decision.NavigationID).
		Str("location", location).
		Msg("navigation granted")

	return decision, nil
}

// Establish enrolls an already-authenticated principal: it creates the
// fingerprint-bound session, issues the first CSRF token, and writes the four
// navigation values to the client store. Credential verification is the
// caller's responsibility and happens before this call.
func (g *Gate) Establish(ctx context.Context, store client.Store, userID, fingerprint string) (*Enrollment, error) {
	if g == nil || g.sessions == nil || g.tokens == nil {
		return nil, ErrGateNotReady
	}
	if store == nil {
		return nil, errors.New("client store required")
	}
	if userID == "" || fingerprint == "" {
		return nil, ErrEnrollmentInvalid
	}

	sid, err := internal.NewSessionID()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	expiresAt := now.Add(g.config.Session.TTL)

	sess := &session.Session{
		SessionID:       sid.String(),
		UserID:          userID,
		FingerprintHash: internal.HashFingerprint(fingerprint),
		CreatedAt:       now.Unix(),
		ExpiresAt:       expiresAt.Unix(),
	}

	if err := g.sessions.Save(ctx, sess, g.config.Session.TTL); err != nil {
		wrapped := fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
		g.emitEstablishFailure(ctx, userID, wrapped)
		return nil, wrapped
	}
	g.metricInc(MetricSessionEstablished)

	token, err := g.tokens.Issue(ctx, userID)
	if err != nil {
		wrapped := fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
		g.emitEstablishFailure(ctx, userID, wrapped)
		return nil, wrapped
	}
	g.metricInc(MetricTokenIssued)

	keys := g.config.Keys
	writes := []struct{ key, value string }{
		{keys.SessionID, sess.SessionID},
		{keys.UserID, userID},
		{keys.Fingerprint, fingerprint},
		{keys.CSRFToken, token},
	}
	for _, w := range writes {
		if err := store.Set(ctx, w.key, w.value); err != nil {
			_ = store.Delete(ctx, keys.all()...)
			wrapped := fmt.Errorf("%w: %v", ErrClientStorage, err)
			g.emitEstablishFailure(ctx, userID, wrapped)
			return nil, wrapped
		}
	}

	g.emitAudit(ctx, auditEventSessionEstablished, true, &Decision{
		UserID:    userID,
		SessionID: sess.SessionID,
	}, nil, nil)

	return &Enrollment{
		SessionID:   sess.SessionID,
		UserID:      userID,
		Fingerprint: fingerprint,
		CSRFToken:   token,
		ExpiresAt:   expiresAt,
	}, nil
}

// Logout revokes the session and CSRF token named by the client store and
// purges all four client keys. Every step is attempted even when an earlier
// one fails; the first failure is reported.
func (g *Gate) Logout(ctx context.Context, store client.Store) error {
	if g == nil || g.sessions == nil || g.tokens == nil {
		return ErrGateNotReady
	}
	if store == nil {
		return errors.New("client store required")
	}

	creds, readErr := g.readCredentials(ctx, store)

	var errs []error
	if readErr != nil {
		errs = append(errs, fmt.Errorf("%w: %v", ErrClientStorage, readErr))
	}

	if creds.SessionID != "" {
		if err := g.sessions.Delete(ctx, creds.SessionID); err != nil {
			errs = append(errs, err)
		} else {
			g.metricInc(MetricSessionRevoked)
		}
	}
	if creds.UserID != "" {
		if err := g.tokens.Revoke(ctx, creds.UserID); err != nil {
			errs = append(errs, err)
		}
	}

	if err := store.Delete(ctx, g.config.Keys.all()...); err != nil {
		errs = append(errs, fmt.Errorf("%w: %v", ErrClientStorage, err))
	}

	g.metricInc(MetricLogout)
	g.emitAudit(ctx, auditEventLogout, len(errs) == 0, &Decision{
		UserID:    creds.UserID,
		SessionID: creds.SessionID,
	}, errors.Join(errs...), nil)

	return errors.Join(errs...)
}

// ResolveRedirectState recovers the original destination from a login
// redirect. With a configured state secret the value must be a valid signed
// token; without one the value is the plain escaped path and is returned
// as-is.
func (g *Gate) ResolveRedirectState(state string) (string, error) {
	if g == nil {
		return "", ErrGateNotReady
	}
	if g.redirects == nil {
		return state, nil
	}
	return g.redirects.Parse(state)
}

// Ping reports session registry availability and round-trip latency.
func (g *Gate) Ping(ctx context.Context) (time.Duration, error) {
	if g == nil || g.sessions == nil {
		return 0, ErrGateNotReady
	}
	return g.sessions.Ping(ctx)
}

// Close drains and stops the audit dispatcher. The Gate must not be used
// after Close.
func (g *Gate) Close() {
	if g == nil {
		return
	}
	g.audit.Close()
}

// MetricsSnapshot returns a point-in-time copy of all gate metrics.
func (g *Gate) MetricsSnapshot() MetricsSnapshot {
	if g == nil {
		return MetricsSnapshot{}
	}
	return g.metrics.Snapshot()
}

// AuditDropped reports how many audit events were dropped under backpressure.
func (g *Gate) AuditDropped() uint64 {
	if g == nil {
		return 0
	}
	return g.audit.Dropped()
}

func (g *Gate) readCredentials(ctx context.Context, store client.Store) (credentials, error) {
	var creds credentials
	var err error

	keys := g.config.Keys
	if creds.SessionID, err = store.Get(ctx, keys.SessionID); err != nil {
		return creds, err
	}
	if creds.UserID, err = store.Get(ctx, keys.UserID); err != nil {
		return creds, err
	}
	if creds.Fingerprint, err = store.Get(ctx, keys.Fingerprint); err != nil {
		return creds, err
	}
	if creds.CSRFToken, err = store.Get(ctx, keys.CSRFToken); err != nil {
		return creds, err
	}

	return creds, nil
}

func (g *Gate) denySecurity(
	ctx context.Context,
	store client.Store,
	decision *Decision,
	creds credentials,
	reason DenyReason,
	cause error,
	start time.Time,
) (*Decision, error) {
	decision.Granted = false
	decision.Reason = reason
	decision.RedirectTo = g.redirectTarget(decision.Location)

	if err := store.Delete(ctx, g.config.Keys.all()...); err != nil {
		g.logger.Error().
			Err(err).
			Str("navigation_id", decision.NavigationID).
			Msg("credential purge failed")
	} else {
		g.metricInc(MetricCredentialsPurged)
	}

	g.metricInc(MetricGateDenied)
	g.metricInc(denyReasonMetric(reason))
	g.metricObserve(MetricAuthorizeLatency, time.Since(start))
	g.emitAudit(ctx, auditEventGateDenied, false, decision, cause, func() map[string]string {
		return map[string]string{
			"user_id_presented": creds.UserID,
		}
	})

	g.logger.Debug().
		Str("navigation_id", decision.NavigationID).
		Str("reason", string(reason)).
		Str("location", decision.Location).
		Msg("navigation denied")

	return decision, nil
}

func (g *Gate) denyTransient(
	ctx context.Context,
	decision *Decision,
	creds credentials,
	cause error,
	start time.Time,
) (*Decision, error) {
	decision.Granted = false
	decision.Reason = ReasonBackendUnavailable

	g.metricInc(MetricGateDenied)
	g.metricInc(MetricDenyBackendUnavailable)
	g.metricObserve(MetricAuthorizeLatency, time.Since(start))
	g.emitAudit(ctx, auditEventGateDenied, false, decision, cause, func() map[string]string {
		return map[string]string{
			"user_id_presented": creds.UserID,
			"transient":         "1",
		}
	})

	g.logger.Error().
		Err(cause).
		Str("navigation_id", decision.NavigationID).
		Str("location", decision.Location).
		Msg("navigation failed on backend lookup")

	return decision, cause
}

func (g *Gate) redirectTarget(location string) string {
	loginPath := g.config.Redirect.LoginPath
	param := g.config.Redirect.StateParam

	if g.redirects != nil {
		state, err := g.redirects.Sign(location)
		if err == nil {
			return loginPath + "?" + param + "=" + url.QueryEscape(state)
		}
		g.logger.Error().Err(err).Msg("redirect state signing failed")
	}

	return loginPath + "?" + param + "=" + url.QueryEscape(location)
}

func denyReasonMetric(reason DenyReason) MetricID {
	switch reason {
	case ReasonMissingCredentials:
		return MetricDenyMissingCredentials
	case ReasonInvalidSession:
		return MetricDenyInvalidSession
	case ReasonInvalidCSRF:
		return MetricDenyInvalidCSRF
	default:
		return MetricDenyBackendUnavailable
	}
}

func (g *Gate) metricInc(id MetricID) {
	if g == nil || g.metrics == nil {
		return
	}
	g.metrics.Inc(id)
}

func (g *Gate) metricObserve(id MetricID, d time.Duration) {
	if g == nil || g.metrics == nil {
		return
	}
	g.metrics.Observe(id, d)
}

func (g *Gate) emitEstablishFailure(ctx context.Context, userID string, err error) {
	g.emitAudit(ctx, auditEventSessionEstablished, false, &Decision{UserID: userID}, err, nil)
}
