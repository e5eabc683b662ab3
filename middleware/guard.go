package middleware

import (
	"context"
	"net/http"

	routegate "github.com/routegate/routegate"
)

type decisionContextKey struct{}

// DecisionFromContext returns the navigation decision injected by [Guard],
// if the request passed through it.
func DecisionFromContext(ctx context.Context) (*routegate.Decision, bool) {
	d, ok := ctx.Value(decisionContextKey{}).(*routegate.Decision)
	return d, ok
}

// Options configures [Guard].
type Options struct {
	// Cookies is applied to every cookie the guard writes or purges.
	// Zero value uses Secure, HttpOnly, SameSite=Strict, Path=/.
	Cookies CookieOptions

	// OnTransient, when set, replaces the default 503 response for
	// backend-unavailable denials. The original request reaches the
	// handler untouched; no credentials were purged.
	OnTransient http.Handler
}

// Guard returns middleware that runs the full navigation gate for every
// request: read client cookies, resolve the session, validate and rotate the
// CSRF token, then either forward with the decision in context or redirect
// to the login path with the destination preserved.
//
// Security denials arrive at the client as a 303 redirect with all four
// credential cookies expired. Transient backend failures return 503 and
// leave the cookies alone so the client can retry.
func Guard(gate *routegate.Gate, opts Options) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if gate == nil {
				http.Error(w, "service unavailable", http.StatusServiceUnavailable)
				return
			}

			store := NewCookieStore(w, r, opts.Cookies)

			ctx := routegate.WithClientIP(r.Context(), clientIP(r))
			ctx = routegate.WithUserAgent(ctx, r.UserAgent())

			decision, err := gate.Authorize(ctx, store, r.URL.RequestURI())
			if err != nil {
				if opts.OnTransient != nil {
					opts.OnTransient.ServeHTTP(w, r.WithContext(ctx))
					return
				}
				http.Error(w, "temporarily unavailable, try again", http.StatusServiceUnavailable)
				return
			}

			if !decision.Granted {
				http.Redirect(w, r, decision.RedirectTo, http.StatusSeeOther)
				return
			}

			ctx = context.WithValue(ctx, decisionContextKey{}, decision)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
