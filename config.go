package goGate

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Config holds every engine setting. Load it with [DefaultConfig] or
// [LoadConfigFile], adjust, then pass it to [Builder.WithConfig]. It is
// treated as immutable once the engine is built.
type Config struct {
	Routes    RouteConfig     `yaml:"routes"`
	Session   SessionConfig   `yaml:"session"`
	Redirect  RedirectConfig  `yaml:"redirect"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Audit     AuditConfig     `yaml:"audit"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

/*
====================================
ROUTE CONFIG
====================================
*/

// RouteConfig lists the paths the [Classifier] recognizes. The enumerated
// sets are configuration; the matching rules are fixed.
type RouteConfig struct {
	// PublicPaths match exactly; entries other than "/" also match their subtree.
	PublicPaths []string `yaml:"public_paths"`
	// AuthPaths match by segment-aware prefix.
	AuthPaths []string `yaml:"auth_paths"`
	// IntranetRoot is the parent of every role prefix.
	IntranetRoot string `yaml:"intranet_root"`
	// BypassPrefixes are never intercepted. Matching is segment-aware and a
	// trailing slash is ignored: "/api/" covers "/api" and "/api/x" but not "/apix".
	BypassPrefixes []string `yaml:"bypass_prefixes"`
	// BypassExtensions are file extensions never intercepted outside the intranet.
	BypassExtensions []string `yaml:"bypass_extensions"`
	// InterceptPrefixes, when set, restricts interception to these subtrees.
	InterceptPrefixes []string `yaml:"intercept_prefixes"`
}

/*
====================================
SESSION CONFIG
====================================
*/

// ResolverMode selects how sessions are resolved.
type ResolverMode string

const (
	// ResolverRemote calls the backend "who am I" endpoint.
	ResolverRemote ResolverMode = "remote"
	// ResolverJWT verifies a signed session cookie locally.
	ResolverJWT ResolverMode = "jwt"
)

// SessionConfig configures session resolution.
type SessionConfig struct {
	Mode    ResolverMode  `yaml:"mode"`
	BaseURL string        `yaml:"base_url"`
	MePath  string        `yaml:"me_path"`
	Timeout time.Duration `yaml:"timeout"`
	JWT     JWTConfig     `yaml:"jwt"`
}

// JWTConfig configures [ResolverJWT].
type JWTConfig struct {
	CookieName    string        `yaml:"cookie_name"`
	SigningMethod string        `yaml:"signing_method"` // "hs256" or "ed25519"
	Secret        string        `yaml:"secret"`
	PublicKeyPEM  string        `yaml:"public_key_pem"`
	Issuer        string        `yaml:"issuer"`
	Audience      string        `yaml:"audience"`
	Leeway        time.Duration `yaml:"leeway"`
}

/*
====================================
REDIRECT CONFIG
====================================
*/

// RedirectConfig shapes redirect responses.
type RedirectConfig struct {
	LoginPath     string `yaml:"login_path"`
	CallbackParam string `yaml:"callback_param"`
	StatusCode    int    `yaml:"status_code"`
}

// RateLimitConfig bounds how many session checks a single client IP may
// trigger per window. Disabled unless a Redis client is supplied.
type RateLimitConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxChecks   int           `yaml:"max_checks"`
	Window      time.Duration `yaml:"window"`
	RedisPrefix string        `yaml:"redis_prefix"`
	RedisAddr   string        `yaml:"redis_addr"`
}

// AuditConfig controls the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool `yaml:"enabled"`
	BufferSize int  `yaml:"buffer_size"`
	DropIfFull bool `yaml:"drop_if_full"`
}

// MetricsConfig toggles in-process counters and the latency histogram.
type MetricsConfig struct {
	Enabled                 bool `yaml:"enabled"`
	EnableLatencyHistograms bool `yaml:"enable_latency_histograms"`
}

/*
====================================
DEFAULT CONFIG
====================================
*/

const (
	defaultAPIURL         = "http://127.0.0.1:4000"
	defaultSessionTimeout = 3 * time.Second
	maxSessionTimeout     = 30 * time.Second
)

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Routes: RouteConfig{
			PublicPaths:  []string{"/", "/about", "/contact", "/pricing", "/blog"},
			AuthPaths:    []string{"/login", "/register", "/forgot-password"},
			IntranetRoot: "/intranet",
			BypassPrefixes: []string{
				"/_next/",
				"/static/",
				"/api/",
				"/favicon.ico",
				"/robots.txt",
			},
			BypassExtensions: []string{
				".css", ".js", ".map", ".png", ".jpg", ".jpeg",
				".svg", ".ico", ".webp", ".woff", ".woff2",
			},
		},
		Session: SessionConfig{
			Mode:    ResolverRemote,
			BaseURL: defaultAPIURL,
			MePath:  "/auth/me",
			Timeout: defaultSessionTimeout,
			JWT: JWTConfig{
				CookieName:    "access_token",
				SigningMethod: "hs256",
				Leeway:        30 * time.Second,
			},
		},
		Redirect: RedirectConfig{
			LoginPath:     "/login",
			CallbackParam: "callbackUrl",
			StatusCode:    http.StatusTemporaryRedirect,
		},
		RateLimit: RateLimitConfig{
			Enabled:     false,
			MaxChecks:   120,
			Window:      time.Minute,
			RedisPrefix: "gg",
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Routes.PublicPaths = cloneStrings(cfg.Routes.PublicPaths)
	out.Routes.AuthPaths = cloneStrings(cfg.Routes.AuthPaths)
	out.Routes.BypassPrefixes = cloneStrings(cfg.Routes.BypassPrefixes)
	out.Routes.BypassExtensions = cloneStrings(cfg.Routes.BypassExtensions)
	out.Routes.InterceptPrefixes = cloneStrings(cfg.Routes.InterceptPrefixes)
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate checks the config on its own. Route checks that need the role
// table live in [Config.ValidateRoutes].
func (c *Config) Validate() error {
	// Redirect
	if err := checkAbsPath("Redirect LoginPath", c.Redirect.LoginPath); err != nil {
		return err
	}
	if strings.TrimSpace(c.Redirect.CallbackParam) == "" {
		return invalid("Redirect CallbackParam must not be empty")
	}
	switch c.Redirect.StatusCode {
	case http.StatusFound, http.StatusSeeOther, http.StatusTemporaryRedirect:
	default:
		return invalid("Redirect StatusCode must be 302, 303, or 307")
	}

	// Session
	if c.Session.Timeout <= 0 {
		return invalid("Session Timeout must be > 0")
	}
	if c.Session.Timeout > maxSessionTimeout {
		return invalid("Session Timeout must be <= 30s")
	}
	switch c.Session.Mode {
	case ResolverRemote:
		u, err := url.Parse(c.Session.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return invalid("Session BaseURL must be an absolute http(s) URL")
		}
		if err := checkAbsPath("Session MePath", c.Session.MePath); err != nil {
			return err
		}
	case ResolverJWT:
		if strings.TrimSpace(c.Session.JWT.CookieName) == "" {
			return invalid("Session JWT CookieName must not be empty")
		}
		switch c.Session.JWT.SigningMethod {
		case "hs256":
			if c.Session.JWT.Secret == "" {
				return invalid("hs256 requires Session JWT Secret")
			}
		case "ed25519":
			if c.Session.JWT.PublicKeyPEM == "" {
				return invalid("ed25519 requires Session JWT PublicKeyPEM")
			}
		default:
			return invalid("unsupported Session JWT SigningMethod")
		}
		if c.Session.JWT.Leeway < 0 || c.Session.JWT.Leeway > 2*time.Minute {
			return invalid("Session JWT Leeway must be within [0, 2m]")
		}
	default:
		return invalid("unsupported Session Mode")
	}

	// Routes
	if c.Routes.IntranetRoot != "" {
		if err := checkAbsPath("Routes IntranetRoot", c.Routes.IntranetRoot); err != nil {
			return err
		}
	}
	for _, p := range c.Routes.PublicPaths {
		if err := checkAbsPath("Routes PublicPaths", p); err != nil {
			return err
		}
	}
	for _, p := range c.Routes.AuthPaths {
		if err := checkAbsPath("Routes AuthPaths", p); err != nil {
			return err
		}
	}

	// Rate limit
	if c.RateLimit.Enabled {
		if c.RateLimit.MaxChecks <= 0 {
			return invalid("RateLimit MaxChecks must be > 0")
		}
		if c.RateLimit.Window <= 0 {
			return invalid("RateLimit Window must be > 0")
		}
		if strings.TrimSpace(c.RateLimit.RedisPrefix) == "" {
			return invalid("RateLimit RedisPrefix must not be empty")
		}
	}

	if c.Audit.BufferSize < 0 {
		return invalid("Audit BufferSize must be >= 0")
	}

	return nil
}

// ValidateRoutes checks the route lists against table so that no redirect
// target can itself be redirected.
func (c *Config) ValidateRoutes(table *RoleTable) error {
	if table == nil {
		return invalid("role table required")
	}

	classifier := NewClassifier(c.Routes, table)
	switch classifier.Classify(c.Redirect.LoginPath).Kind {
	case RouteAuthOnly, RoutePublic:
	default:
		return invalid("Redirect LoginPath must be an auth-only or public path")
	}

	for _, r := range AllRoles {
		prefix := table.Prefix(r)
		if c.Routes.IntranetRoot != "" && !hasPathPrefix(prefix, strings.TrimSuffix(c.Routes.IntranetRoot, "/")) {
			return invalid(fmt.Sprintf("%s prefix %q is outside Routes IntranetRoot", r, prefix))
		}
		got := classifier.Classify(table.Dashboard(r))
		if got.Kind != RouteIntranet || got.Owner != r {
			return invalid(fmt.Sprintf("%s dashboard %q is shadowed by a %s route", r, table.Dashboard(r), got.Kind))
		}
	}

	return nil
}

func checkAbsPath(field, p string) error {
	if !strings.HasPrefix(p, "/") {
		return invalid(field + " must be an absolute path")
	}
	if strings.ContainsAny(p, "?#") {
		return invalid(field + " must not contain a query or fragment")
	}
	return nil
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, msg)
}

/*
====================================
LINT
====================================
*/

// LintSeverity ranks a [LintWarning].
type LintSeverity uint8

const (
	LintInfo LintSeverity = iota
	LintWarn
	LintHigh
)

func (s LintSeverity) String() string {
	switch s {
	case LintInfo:
		return "INFO"
	case LintWarn:
		return "WARN"
	default:
		return "HIGH"
	}
}

// LintWarning is a valid-but-questionable setting.
type LintWarning struct {
	Code     string
	Severity LintSeverity
	Message  string
}

// LintResult is the ordered list of warnings returned by [Config.Lint].
type LintResult []LintWarning

// Codes returns the warning codes in order.
func (r LintResult) Codes() []string {
	out := make([]string, len(r))
	for i, w := range r {
		out[i] = w.Code
	}
	return out
}

// Lint reports settings that validate but are unlikely to be intended.
func (c *Config) Lint() LintResult {
	var out LintResult

	if c.Session.Timeout > 10*time.Second {
		out = append(out, LintWarning{
			Code:     "session_timeout_long",
			Severity: LintWarn,
			Message:  "session check timeout above 10s holds requests while the auth service is slow",
		})
	}
	if c.Session.Mode == ResolverRemote && strings.HasPrefix(c.Session.BaseURL, "http://") &&
		!isLoopbackURL(c.Session.BaseURL) {
		out = append(out, LintWarning{
			Code:     "session_base_url_plaintext",
			Severity: LintHigh,
			Message:  "session cookies are forwarded over plaintext http to a non-loopback host",
		})
	}
	if c.Session.Mode == ResolverJWT && c.Session.JWT.SigningMethod == "hs256" && len(c.Session.JWT.Secret) < 32 {
		out = append(out, LintWarning{
			Code:     "jwt_secret_short",
			Severity: LintHigh,
			Message:  "hs256 secret shorter than 32 bytes",
		})
	}
	if len(c.Routes.InterceptPrefixes) > 0 {
		out = append(out, LintWarning{
			Code:     "intercept_scope_limited",
			Severity: LintInfo,
			Message:  "only intercept_prefixes are guarded; other paths bypass the engine",
		})
	}
	if !c.RateLimit.Enabled {
		out = append(out, LintWarning{
			Code:     "session_budget_disabled",
			Severity: LintInfo,
			Message:  "session checks are not rate limited per client",
		})
	}
	if !c.Audit.Enabled {
		out = append(out, LintWarning{
			Code:     "audit_disabled",
			Severity: LintInfo,
			Message:  "access decisions are not audited",
		})
	}

	return out
}

func isLoopbackURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	switch u.Hostname() {
	case "localhost", "127.0.0.1", "::1":
		return true
	}
	return false
}
