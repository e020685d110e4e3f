package goGate

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfigFile reads a YAML config from path over [DefaultConfig] and then
// applies environment overrides. An empty path yields the defaults plus the
// environment.
func LoadConfigFile(path string) (Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := decodeConfig(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.ApplyEnv(os.LookupEnv)
	return cfg, nil
}

// ParseConfig decodes YAML over [DefaultConfig] without touching the
// environment.
func ParseConfig(data []byte) (Config, error) {
	cfg := defaultConfig()
	if err := decodeConfig(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decodeConfig(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ApplyEnv overrides settings from the environment:
//
//	GOGATE_API_URL          Session.BaseURL (falls back to NEXT_PUBLIC_API_URL)
//	GOGATE_ME_PATH          Session.MePath
//	GOGATE_SESSION_TIMEOUT  Session.Timeout (Go duration)
//	GOGATE_JWT_SECRET       Session.JWT.Secret
//	GOGATE_REDIS_ADDR       RateLimit.RedisAddr, and enables the rate limit
//
// Malformed durations are ignored so that Validate reports the configured value.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if lookup == nil {
		return
	}
	if v, ok := lookup("GOGATE_API_URL"); ok && v != "" {
		c.Session.BaseURL = v
	} else if v, ok := lookup("NEXT_PUBLIC_API_URL"); ok && v != "" {
		c.Session.BaseURL = v
	}
	if v, ok := lookup("GOGATE_ME_PATH"); ok && v != "" {
		c.Session.MePath = v
	}
	if v, ok := lookup("GOGATE_SESSION_TIMEOUT"); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Session.Timeout = d
		}
	}
	if v, ok := lookup("GOGATE_JWT_SECRET"); ok && v != "" {
		c.Session.JWT.Secret = v
	}
	if v, ok := lookup("GOGATE_REDIS_ADDR"); ok && v != "" {
		c.RateLimit.RedisAddr = v
		c.RateLimit.Enabled = true
	}
}
