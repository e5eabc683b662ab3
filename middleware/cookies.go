package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"net"
	"net/http"
	"sync"

	"github.com/routegate/routegate/client"
)

// CookieOptions controls the attributes stamped on every cookie the guard
// writes or purges.
type CookieOptions struct {
	Path     string
	Domain   string
	Secure   bool
	HTTPOnly bool
	SameSite http.SameSite
	MaxAge   int
}

func defaultCookieOptions() CookieOptions {
	return CookieOptions{
		Path:     "/",
		Secure:   true,
		HTTPOnly: true,
		SameSite: http.SameSiteStrictMode,
	}
}

// cookieStore adapts one request/response pair to [client.Store]. Reads see
// writes made earlier in the same request, not just what the client sent.
type cookieStore struct {
	w    http.ResponseWriter
	r    *http.Request
	opts CookieOptions

	mu      sync.Mutex
	overlay map[string]string
	deleted map[string]struct{}
}

// NewCookieStore returns a [client.Store] backed by the request's cookies.
// Sets and deletes are emitted as Set-Cookie headers on the response.
func NewCookieStore(w http.ResponseWriter, r *http.Request, opts CookieOptions) client.Store {
	if opts.Path == "" {
		opts = defaultCookieOptions()
	}
	return &cookieStore{
		w:       w,
		r:       r,
		opts:    opts,
		overlay: make(map[string]string),
		deleted: make(map[string]struct{}),
	}
}

func (s *cookieStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, gone := s.deleted[key]; gone {
		return "", nil
	}
	if v, ok := s.overlay[key]; ok {
		return v, nil
	}

	c, err := s.r.Cookie(key)
	if err != nil {
		// http.ErrNoCookie is the only error Cookie returns; absent means "".
		return "", nil
	}
	return c.Value, nil
}

func (s *cookieStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.overlay[key] = value
	delete(s.deleted, key)
	http.SetCookie(s.w, s.cookie(key, value, s.opts.MaxAge))
	return nil
}

func (s *cookieStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range keys {
		delete(s.overlay, key)
		s.deleted[key] = struct{}{}
		http.SetCookie(s.w, s.cookie(key, "", -1))
	}
	return nil
}

func (s *cookieStore) cookie(key, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     key,
		Value:    value,
		Path:     s.opts.Path,
		Domain:   s.opts.Domain,
		Secure:   s.opts.Secure,
		HttpOnly: s.opts.HTTPOnly,
		SameSite: s.opts.SameSite,
		MaxAge:   maxAge,
	}
}

// RequestFingerprinter derives a [client.Fingerprinter] from stable request
// attributes: client IP, User-Agent, and Accept-Language. The value is a
// base64url SHA-256 digest, never the raw attributes.
func RequestFingerprinter(r *http.Request) client.Fingerprinter {
	h := sha256.New()
	h.Write([]byte(clientIP(r)))
	h.Write([]byte{0})
	h.Write([]byte(r.UserAgent()))
	h.Write([]byte{0})
	h.Write([]byte(r.Header.Get("Accept-Language")))
	return client.Static(base64.RawURLEncoding.EncodeToString(h.Sum(nil)))
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
