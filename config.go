package routegate

import (
	"errors"
	"strings"
	"time"
)

// Config defines a public type used by routegate APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Session  SessionConfig
	CSRF     CSRFConfig
	Keys     KeyConfig
	Redirect RedirectConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig defines a public type used by routegate APIs.
//
// SessionConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SessionConfig struct {
	RedisPrefix string
	TTL         time.Duration
}

/*
====================================
CSRF CONFIG
====================================
*/

// CSRFConfig defines a public type used by routegate APIs.
//
// CSRFConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CSRFConfig struct {
	RedisPrefix string
	TTL         time.Duration
}

/*
====================================
CLIENT KEY CONFIG
====================================
*/

// KeyConfig names the four client-store keys the gate reads on every
// navigation and purges on every security denial.
//
// KeyConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type KeyConfig struct {
	SessionID   string
	UserID      string
	Fingerprint string
	CSRFToken   string
}

func (k KeyConfig) all() []string {
	return []string{k.SessionID, k.UserID, k.Fingerprint, k.CSRFToken}
}

/*
====================================
REDIRECT CONFIG
====================================
*/

// RedirectConfig defines a public type used by routegate APIs.
//
// RedirectConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RedirectConfig struct {
	LoginPath   string
	StateParam  string
	StateSecret []byte
	StateTTL    time.Duration
	StateLeeway time.Duration
}

// AuditConfig defines a public type used by routegate APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by routegate APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig describes the defaultconfig operation and its observable behavior.
//
// DefaultConfig may return an error when input validation, dependency calls, or security checks fail.
// DefaultConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Session: SessionConfig{
			RedisPrefix: "rgs",
			TTL:         12 * time.Hour,
		},
		CSRF: CSRFConfig{
			RedisPrefix: "rgt",
			TTL:         12 * time.Hour,
		},
		Keys: KeyConfig{
			SessionID:   "rg_session_id",
			UserID:      "rg_user_id",
			Fingerprint: "rg_device_fp",
			CSRFToken:   "rg_csrf_token",
		},
		Redirect: RedirectConfig{
			LoginPath:   "/login",
			StateParam:  "state",
			StateTTL:    10 * time.Minute,
			StateLeeway: 30 * time.Second,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Redirect.StateSecret = cloneBytes(cfg.Redirect.StateSecret)
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Config) Validate() error {
	// Session
	if c.Session.RedisPrefix == "" {
		return errors.New("Session RedisPrefix must not be empty")
	}
	if c.Session.TTL <= 0 {
		return errors.New("Session TTL must be > 0")
	}

	// CSRF
	if c.CSRF.RedisPrefix == "" {
		return errors.New("CSRF RedisPrefix must not be empty")
	}
	if c.CSRF.TTL <= 0 {
		return errors.New("CSRF TTL must be > 0")
	}
	if c.CSRF.RedisPrefix == c.Session.RedisPrefix {
		return errors.New("CSRF RedisPrefix must differ from Session RedisPrefix")
	}

	// Client keys
	seen := make(map[string]struct{}, 4)
	for _, key := range c.Keys.all() {
		if key == "" {
			return errors.New("Keys must name all four client-store keys")
		}
		if _, dup := seen[key]; dup {
			return errors.New("Keys must be pairwise distinct")
		}
		seen[key] = struct{}{}
	}

	// Redirect
	if !strings.HasPrefix(c.Redirect.LoginPath, "/") {
		return errors.New("Redirect LoginPath must be an absolute path")
	}
	if c.Redirect.StateParam == "" {
		return errors.New("Redirect StateParam must not be empty")
	}
	if len(c.Redirect.StateSecret) > 0 {
		if len(c.Redirect.StateSecret) < 32 {
			return errors.New("Redirect StateSecret must be >= 32 bytes when set")
		}
		if c.Redirect.StateTTL <= 0 {
			return errors.New("Redirect StateTTL must be > 0 when StateSecret is set")
		}
		if c.Redirect.StateLeeway < 0 {
			return errors.New("Redirect StateLeeway must be >= 0")
		}
	}

	// Audit
	if c.Audit.Enabled {
		if c.Audit.BufferSize <= 0 {
			return errors.New("Audit BufferSize must be > 0 when audit is enabled")
		}
	}

	return nil
}
