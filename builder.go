package goGate

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	internalaudit "github.com/MrEthical07/goGate/internal/audit"
	"github.com/MrEthical07/goGate/internal/rate"
	"github.com/MrEthical07/goGate/jwt"
	"github.com/MrEthical07/goGate/session"
	"github.com/redis/go-redis/v9"
)

// Builder assembles an [Engine]. A Builder may be used once.
type Builder struct {
	config     Config
	roles      *RoleTable
	resolver   session.Resolver
	httpClient *http.Client
	redis      redis.UniversalClient
	auditSink  AuditSink
	logger     *slog.Logger

	built bool
}

// New returns a Builder seeded with [DefaultConfig] and [DefaultRoleTable].
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
		roles:  DefaultRoleTable(),
	}
}

// WithConfig replaces the configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRoleTable replaces the role -> prefix table.
func (b *Builder) WithRoleTable(t *RoleTable) *Builder {
	b.roles = t
	return b
}

// WithResolver overrides the resolver derived from Session.Mode.
func (b *Builder) WithResolver(r session.Resolver) *Builder {
	b.resolver = r
	return b
}

// WithHTTPClient sets the client used by the remote resolver.
func (b *Builder) WithHTTPClient(c *http.Client) *Builder {
	b.httpClient = c
	return b
}

// WithRedis supplies the client backing the session check budget.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithAuditSink sets the sink for audit events. It only takes effect when
// Audit.Enabled is true.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithLogger sets the structured logger. Default: slog.Default().
func (b *Builder) WithLogger(l *slog.Logger) *Builder {
	b.logger = l
	return b
}

// WithMetricsEnabled toggles in-process metrics.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates the configuration and returns a ready [Engine].
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if b.roles == nil {
		return nil, errors.New("role table required")
	}
	if err := cfg.ValidateRoutes(b.roles); err != nil {
		return nil, err
	}

	// -------- SESSION RESOLVER --------
	resolver := b.resolver
	if resolver == nil {
		var err error
		resolver, err = newResolver(cfg.Session, b.httpClient)
		if err != nil {
			return nil, err
		}
	}

	// -------- SESSION CHECK BUDGET --------
	var limiter *rate.Limiter
	if cfg.RateLimit.Enabled {
		if b.redis == nil {
			return nil, errors.New("RateLimit requires redis client")
		}
		limiter = rate.New(b.redis, rate.Config{
			Prefix:    cfg.RateLimit.RedisPrefix,
			MaxChecks: cfg.RateLimit.MaxChecks,
			Window:    cfg.RateLimit.Window,
		})
	}

	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}

	engine := &Engine{
		config:     cfg,
		roles:      b.roles,
		classifier: NewClassifier(cfg.Routes, b.roles),
		resolver:   resolver,
		limiter:    limiter,
		audit: internalaudit.NewDispatcher(internalaudit.Config{
			Enabled:    cfg.Audit.Enabled,
			BufferSize: cfg.Audit.BufferSize,
			DropIfFull: cfg.Audit.DropIfFull,
		}, b.auditSink),
		metrics: NewMetrics(cfg.Metrics),
		logger:  logger.With("component", "gogate"),
	}

	b.built = true

	return engine, nil
}

func newResolver(cfg SessionConfig, client *http.Client) (session.Resolver, error) {
	switch cfg.Mode {
	case ResolverJWT:
		jc := jwt.Config{
			SigningMethod: jwt.SigningMethod(cfg.JWT.SigningMethod),
			Issuer:        cfg.JWT.Issuer,
			Audience:      cfg.JWT.Audience,
			Leeway:        cfg.JWT.Leeway,
		}
		switch jc.SigningMethod {
		case jwt.MethodHS256:
			jc.PrivateKey = []byte(cfg.JWT.Secret)
		default:
			jc.PublicKey = []byte(cfg.JWT.PublicKeyPEM)
		}
		m, err := jwt.NewManager(jc)
		if err != nil {
			return nil, fmt.Errorf("session jwt: %w", err)
		}
		return session.NewJWTResolver(cfg.JWT.CookieName, m)
	default:
		return session.NewHTTPResolver(cfg.BaseURL, cfg.MePath, cfg.Timeout, client)
	}
}
