package routegate

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
}

func TestValidateRejectsBadConfigs(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty session prefix", func(c *Config) { c.Session.RedisPrefix = "" }},
		{"zero session ttl", func(c *Config) { c.Session.TTL = 0 }},
		{"empty csrf prefix", func(c *Config) { c.CSRF.RedisPrefix = "" }},
		{"zero csrf ttl", func(c *Config) { c.CSRF.TTL = 0 }},
		{"colliding prefixes", func(c *Config) { c.CSRF.RedisPrefix = c.Session.RedisPrefix }},
		{"empty client key", func(c *Config) { c.Keys.Fingerprint = "" }},
		{"duplicate client keys", func(c *Config) { c.Keys.UserID = c.Keys.SessionID }},
		{"relative login path", func(c *Config) { c.Redirect.LoginPath = "login" }},
		{"empty state param", func(c *Config) { c.Redirect.StateParam = "" }},
		{"short state secret", func(c *Config) { c.Redirect.StateSecret = []byte("too-short") }},
		{"zero state ttl with secret", func(c *Config) {
			c.Redirect.StateSecret = []byte("0123456789abcdef0123456789abcdef")
			c.Redirect.StateTTL = 0
		}},
		{"negative leeway with secret", func(c *Config) {
			c.Redirect.StateSecret = []byte("0123456789abcdef0123456789abcdef")
			c.Redirect.StateLeeway = -time.Second
		}},
		{"audit enabled without buffer", func(c *Config) {
			c.Audit.Enabled = true
			c.Audit.BufferSize = 0
		}},
	}

	for _, tc := range cases {
		cfg := defaultConfig()
		tc.mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}
}

func TestCloneConfigCopiesStateSecret(t *testing.T) {
	cfg := defaultConfig()
	cfg.Redirect.StateSecret = []byte("0123456789abcdef0123456789abcdef")

	cloned := cloneConfig(cfg)
	cloned.Redirect.StateSecret[0] = 'X'

	if cfg.Redirect.StateSecret[0] == 'X' {
		t.Fatal("expected clone to own its secret bytes")
	}
}

func TestLoadConfigFileOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routegate.yaml")
	data := []byte(`
session:
  redis_prefix: sess
  ttl_seconds: 3600
csrf:
  redis_prefix: tok
keys:
  csrf_token: my_csrf
redirect:
  login_path: /signin
  state_ttl_seconds: 120
audit:
  enabled: true
  buffer_size: 64
  drop_if_full: true
metrics:
  enabled: true
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	cfg, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("load config file: %v", err)
	}

	if cfg.Session.RedisPrefix != "sess" {
		t.Fatalf("expected session prefix override, got %q", cfg.Session.RedisPrefix)
	}
	if cfg.Session.TTL != time.Hour {
		t.Fatalf("expected 1h session ttl, got %v", cfg.Session.TTL)
	}
	if cfg.CSRF.RedisPrefix != "tok" {
		t.Fatalf("expected csrf prefix override, got %q", cfg.CSRF.RedisPrefix)
	}
	// Untouched fields keep their defaults.
	if cfg.CSRF.TTL != defaultConfig().CSRF.TTL {
		t.Fatalf("expected default csrf ttl, got %v", cfg.CSRF.TTL)
	}
	if cfg.Keys.CSRFToken != "my_csrf" {
		t.Fatalf("expected csrf key override, got %q", cfg.Keys.CSRFToken)
	}
	if cfg.Keys.SessionID != defaultConfig().Keys.SessionID {
		t.Fatalf("expected default session key, got %q", cfg.Keys.SessionID)
	}
	if cfg.Redirect.LoginPath != "/signin" {
		t.Fatalf("expected login path override, got %q", cfg.Redirect.LoginPath)
	}
	if cfg.Redirect.StateTTL != 2*time.Minute {
		t.Fatalf("expected 2m state ttl, got %v", cfg.Redirect.StateTTL)
	}
	if !cfg.Audit.Enabled || cfg.Audit.BufferSize != 64 {
		t.Fatalf("expected audit overrides, got %+v", cfg.Audit)
	}
	if !cfg.Metrics.Enabled {
		t.Fatal("expected metrics enabled")
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("loaded config must validate: %v", err)
	}
}

func TestLoadConfigFileEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routegate.yaml")
	if err := os.WriteFile(path, []byte("session:\n  redis_prefix: fromfile\n"), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	t.Setenv("ROUTEGATE_SESSION_PREFIX", "fromenv")
	t.Setenv("ROUTEGATE_LOGIN_PATH", "/auth/login")
	t.Setenv("ROUTEGATE_STATE_SECRET", "0123456789abcdef0123456789abcdef")

	cfg, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("load config file: %v", err)
	}

	if cfg.Session.RedisPrefix != "fromenv" {
		t.Fatalf("expected env to win over file, got %q", cfg.Session.RedisPrefix)
	}
	if cfg.Redirect.LoginPath != "/auth/login" {
		t.Fatalf("expected login path from env, got %q", cfg.Redirect.LoginPath)
	}
	if string(cfg.Redirect.StateSecret) != "0123456789abcdef0123456789abcdef" {
		t.Fatal("expected state secret from env")
	}
}

func TestLoadConfigFileMissingFile(t *testing.T) {
	if _, err := LoadConfigFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
