package goGate

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	require.NoError(t, cfg.ValidateRoutes(DefaultRoleTable()))

	assert.Equal(t, "/login", cfg.Redirect.LoginPath)
	assert.Equal(t, "callbackUrl", cfg.Redirect.CallbackParam)
	assert.Equal(t, 307, cfg.Redirect.StatusCode)
	assert.Equal(t, "/auth/me", cfg.Session.MePath)
	assert.Equal(t, 3*time.Second, cfg.Session.Timeout)
	assert.False(t, cfg.RateLimit.Enabled)
}

func TestDefaultConfigIsACopy(t *testing.T) {
	a := DefaultConfig()
	a.Routes.PublicPaths[0] = "/mutated"
	assert.Equal(t, "/", DefaultConfig().Routes.PublicPaths[0])
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(c *Config){
		"relative login":     func(c *Config) { c.Redirect.LoginPath = "login" },
		"login with query":   func(c *Config) { c.Redirect.LoginPath = "/login?x=1" },
		"empty callback":     func(c *Config) { c.Redirect.CallbackParam = " " },
		"permanent redirect": func(c *Config) { c.Redirect.StatusCode = 301 },
		"zero timeout":       func(c *Config) { c.Session.Timeout = 0 },
		"huge timeout":       func(c *Config) { c.Session.Timeout = time.Minute },
		"bad base url":       func(c *Config) { c.Session.BaseURL = "ftp://auth" },
		"relative me path":   func(c *Config) { c.Session.MePath = "auth/me" },
		"unknown mode":       func(c *Config) { c.Session.Mode = "ldap" },
		"jwt without secret": func(c *Config) { c.Session.Mode = ResolverJWT },
		"jwt bad method": func(c *Config) {
			c.Session.Mode = ResolverJWT
			c.Session.JWT.SigningMethod = "rs256"
		},
		"ed25519 without key": func(c *Config) {
			c.Session.Mode = ResolverJWT
			c.Session.JWT.SigningMethod = "ed25519"
		},
		"relative public": func(c *Config) { c.Routes.PublicPaths = []string{"about"} },
		"relative auth":   func(c *Config) { c.Routes.AuthPaths = []string{"login"} },
		"budget zero": func(c *Config) {
			c.RateLimit.Enabled = true
			c.RateLimit.MaxChecks = 0
		},
		"budget no window": func(c *Config) {
			c.RateLimit.Enabled = true
			c.RateLimit.Window = 0
		},
		"negative audit buffer": func(c *Config) { c.Audit.BufferSize = -1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestValidateRoutesRejects(t *testing.T) {
	table := DefaultRoleTable()
	cases := map[string]func(c *Config){
		"login is protected":      func(c *Config) { c.Redirect.LoginPath = "/intranet/login" },
		"dashboard shadowed":      func(c *Config) { c.Routes.PublicPaths = append(c.Routes.PublicPaths, "/intranet/company") },
		"dashboard bypassed":      func(c *Config) { c.Routes.BypassPrefixes = append(c.Routes.BypassPrefixes, "/intranet/") },
		"prefix outside intranet": func(c *Config) { c.Routes.IntranetRoot = "/portal" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(&cfg)
			assert.ErrorIs(t, cfg.ValidateRoutes(table), ErrInvalidConfig)
		})
	}
	cfg := DefaultConfig()
	assert.ErrorIs(t, cfg.ValidateRoutes(nil), ErrInvalidConfig)
}

func TestParseConfigOverlaysDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
routes:
  public_paths: ["/", "/about", "/jobs"]
session:
  base_url: https://api.agrinews.example
  timeout: 1500ms
redirect:
  status_code: 303
rate_limit:
  enabled: true
  max_checks: 10
  window: 30s
`))
	require.NoError(t, err)

	assert.Equal(t, []string{"/", "/about", "/jobs"}, cfg.Routes.PublicPaths)
	assert.Equal(t, []string{"/login", "/register", "/forgot-password"}, cfg.Routes.AuthPaths)
	assert.Equal(t, "https://api.agrinews.example", cfg.Session.BaseURL)
	assert.Equal(t, 1500*time.Millisecond, cfg.Session.Timeout)
	assert.Equal(t, "/auth/me", cfg.Session.MePath)
	assert.Equal(t, 303, cfg.Redirect.StatusCode)
	assert.Equal(t, 10, cfg.RateLimit.MaxChecks)
	assert.Equal(t, 30*time.Second, cfg.RateLimit.Window)
	assert.NoError(t, cfg.Validate())
}

func TestParseConfigRejectsUnknownKeys(t *testing.T) {
	_, err := ParseConfig([]byte("sesion:\n  timeout: 1s\n"))
	assert.Error(t, err)
}

func TestParseConfigEmpty(t *testing.T) {
	cfg, err := ParseConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigFileAppliesEnv(t *testing.T) {
	p := filepath.Join(t.TempDir(), "gogate.yaml")
	require.NoError(t, os.WriteFile(p, []byte("session:\n  base_url: http://from-file:4000\n"), 0o600))

	t.Setenv("GOGATE_API_URL", "https://from-env.example")
	t.Setenv("GOGATE_SESSION_TIMEOUT", "2s")

	cfg, err := LoadConfigFile(p)
	require.NoError(t, err)
	assert.Equal(t, "https://from-env.example", cfg.Session.BaseURL)
	assert.Equal(t, 2*time.Second, cfg.Session.Timeout)
}

func TestLoadConfigFileMissing(t *testing.T) {
	_, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"NEXT_PUBLIC_API_URL":    "https://next.example",
		"GOGATE_ME_PATH":         "/api/auth/me",
		"GOGATE_SESSION_TIMEOUT": "not-a-duration",
		"GOGATE_JWT_SECRET":      "s",
		"GOGATE_REDIS_ADDR":      "redis:6379",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := DefaultConfig()
	cfg.ApplyEnv(lookup)

	assert.Equal(t, "https://next.example", cfg.Session.BaseURL)
	assert.Equal(t, "/api/auth/me", cfg.Session.MePath)
	assert.Equal(t, 3*time.Second, cfg.Session.Timeout)
	assert.Equal(t, "s", cfg.Session.JWT.Secret)
	assert.Equal(t, "redis:6379", cfg.RateLimit.RedisAddr)
	assert.True(t, cfg.RateLimit.Enabled)

	env["GOGATE_API_URL"] = "https://gogate.example"
	cfg.ApplyEnv(lookup)
	assert.Equal(t, "https://gogate.example", cfg.Session.BaseURL)
}

func TestLint(t *testing.T) {
	cfg := DefaultConfig()
	codes := cfg.Lint().Codes()
	assert.Contains(t, codes, "session_budget_disabled")
	assert.Contains(t, codes, "audit_disabled")
	assert.NotContains(t, codes, "session_base_url_plaintext")

	cfg.Session.BaseURL = "http://auth.internal"
	cfg.Session.Timeout = 20 * time.Second
	cfg.Routes.InterceptPrefixes = []string{"/intranet"}
	cfg.RateLimit.Enabled = true
	cfg.Audit.Enabled = true
	result := cfg.Lint()
	assert.ElementsMatch(t, []string{"session_timeout_long", "session_base_url_plaintext", "intercept_scope_limited"}, result.Codes())

	for _, w := range result {
		if w.Code == "session_base_url_plaintext" {
			assert.Equal(t, LintHigh, w.Severity)
		}
	}

	cfg = DefaultConfig()
	cfg.Session.Mode = ResolverJWT
	cfg.Session.JWT.Secret = "short"
	assert.Contains(t, cfg.Lint().Codes(), "jwt_secret_short")
}
