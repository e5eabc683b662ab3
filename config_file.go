package routegate

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type fileConfig struct {
	Session struct {
		RedisPrefix string `yaml:"redis_prefix"`
		TTLSeconds  int    `yaml:"ttl_seconds"`
	} `yaml:"session"`
	CSRF struct {
		RedisPrefix string `yaml:"redis_prefix"`
		TTLSeconds  int    `yaml:"ttl_seconds"`
	} `yaml:"csrf"`
	Keys struct {
		SessionID   string `yaml:"session_id"`
		UserID      string `yaml:"user_id"`
		Fingerprint string `yaml:"fingerprint"`
		CSRFToken   string `yaml:"csrf_token"`
	} `yaml:"keys"`
	Redirect struct {
		LoginPath         string `yaml:"login_path"`
		StateParam        string `yaml:"state_param"`
		StateTTLSeconds   int    `yaml:"state_ttl_seconds"`
		StateLeewaySecs   int    `yaml:"state_leeway_seconds"`
	} `yaml:"redirect"`
	Audit struct {
		Enabled    bool `yaml:"enabled"`
		BufferSize int  `yaml:"buffer_size"`
		DropIfFull bool `yaml:"drop_if_full"`
	} `yaml:"audit"`
	Metrics struct {
		Enabled                 bool `yaml:"enabled"`
		EnableLatencyHistograms bool `yaml:"enable_latency_histograms"`
	} `yaml:"metrics"`
}

// LoadConfigFile reads a YAML config file on top of the defaults and then
// applies environment overrides. The redirect state secret is never read
// from the file, only from ROUTEGATE_STATE_SECRET.
//
// Recognized environment variables:
//
//	ROUTEGATE_SESSION_PREFIX
//	ROUTEGATE_CSRF_PREFIX
//	ROUTEGATE_LOGIN_PATH
//	ROUTEGATE_STATE_SECRET
func LoadConfigFile(path string) (Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}

	if fc.Session.RedisPrefix != "" {
		cfg.Session.RedisPrefix = fc.Session.RedisPrefix
	}
	if fc.Session.TTLSeconds > 0 {
		cfg.Session.TTL = time.Duration(fc.Session.TTLSeconds) * time.Second
	}
	if fc.CSRF.RedisPrefix != "" {
		cfg.CSRF.RedisPrefix = fc.CSRF.RedisPrefix
	}
	if fc.CSRF.TTLSeconds > 0 {
		cfg.CSRF.TTL = time.Duration(fc.CSRF.TTLSeconds) * time.Second
	}
	if fc.Keys.SessionID != "" {
		cfg.Keys.SessionID = fc.Keys.SessionID
	}
	if fc.Keys.UserID != "" {
		cfg.Keys.UserID = fc.Keys.UserID
	}
	if fc.Keys.Fingerprint != "" {
		cfg.Keys.Fingerprint = fc.Keys.Fingerprint
	}
	if fc.Keys.CSRFToken != "" {
		cfg.Keys.CSRFToken = fc.Keys.CSRFToken
	}
	if fc.Redirect.LoginPath != "" {
		cfg.Redirect.LoginPath = fc.Redirect.LoginPath
	}
	if fc.Redirect.StateParam != "" {
		cfg.Redirect.StateParam = fc.Redirect.StateParam
	}
	if fc.Redirect.StateTTLSeconds > 0 {
		cfg.Redirect.StateTTL = time.Duration(fc.Redirect.StateTTLSeconds) * time.Second
	}
	if fc.Redirect.StateLeewaySecs > 0 {
		cfg.Redirect.StateLeeway = time.Duration(fc.Redirect.StateLeewaySecs) * time.Second
	}
	cfg.Audit = AuditConfig(fc.Audit)
	if cfg.Audit.BufferSize == 0 {
		cfg.Audit.BufferSize = defaultConfig().Audit.BufferSize
	}
	cfg.Metrics = MetricsConfig(fc.Metrics)

	applyEnvOverrides(&cfg)

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ROUTEGATE_SESSION_PREFIX"); v != "" {
		cfg.Session.RedisPrefix = v
	}
	if v := os.Getenv("ROUTEGATE_CSRF_PREFIX"); v != "" {
		cfg.CSRF.RedisPrefix = v
	}
	if v := os.Getenv("ROUTEGATE_LOGIN_PATH"); v != "" {
		cfg.Redirect.LoginPath = v
	}
	if v := os.Getenv("ROUTEGATE_STATE_SECRET"); v != "" {
		cfg.Redirect.StateSecret = []byte(v)
	}
}
