package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/netip"
	"net/url"
	"os"
	"strings"
	"time"

	goGate "github.com/MrEthical07/goGate"
	"github.com/MrEthical07/goGate/metrics/export/prometheus"
	gate "github.com/MrEthical07/goGate/middleware"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

type serveOptions struct {
	listen          string
	upstream        string
	devRedis        bool
	trustedProxies  []string
	otel            bool
	shutdownTimeout time.Duration
}

// routerOptions configures newRouter beyond the engine itself.
type routerOptions struct {
	// trustedProxies are peers whose X-Forwarded-For and X-Real-IP headers
	// are believed. Empty means the TCP peer address is always the client.
	trustedProxies []netip.Prefix
	// otel mounts the OpenTelemetry snapshot endpoint.
	otel bool
}

func newServeCommand(global *globalOptions) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the guarding reverse proxy in front of the web front end",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), global, opts, cmd.ErrOrStderr())
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.listen, "listen", ":3000", "listen address")
	f.StringVar(&opts.upstream, "upstream", "", "front end origin to proxy allowed requests to (required)")
	f.BoolVar(&opts.devRedis, "dev-redis", false, "back the session check budget with an in-process miniredis")
	f.StringSliceVar(&opts.trustedProxies, "trusted-proxy", nil, "CIDR or IP of a proxy allowed to set X-Forwarded-For/X-Real-IP (repeatable)")
	f.BoolVar(&opts.otel, "otel", false, "serve OpenTelemetry metrics as JSON on /metrics/otel")
	f.DurationVar(&opts.shutdownTimeout, "shutdown-timeout", 10*time.Second, "graceful shutdown deadline")
	_ = cmd.MarkFlagRequired("upstream")

	return cmd
}

func runServe(ctx context.Context, global *globalOptions, opts *serveOptions, stderr io.Writer) error {
	logger, err := global.logger(stderr)
	if err != nil {
		return err
	}
	cfg, err := global.loadConfig()
	if err != nil {
		return err
	}
	upstream, err := url.Parse(opts.upstream)
	if err != nil || upstream.Scheme == "" || upstream.Host == "" {
		return fmt.Errorf("invalid --upstream %q", opts.upstream)
	}
	proxies, err := parseTrustedProxies(opts.trustedProxies)
	if err != nil {
		return err
	}

	rdb, closeRedis, err := openRedis(cfg.RateLimit, opts.devRedis)
	if err != nil {
		return err
	}
	defer closeRedis()

	b := goGate.New().WithConfig(cfg).WithLogger(logger)
	if rdb != nil {
		b = b.WithRedis(rdb)
	}
	if cfg.Audit.Enabled {
		b = b.WithAuditSink(goGate.NewJSONWriterSink(stderr))
	}
	engine, err := b.Build()
	if err != nil {
		return err
	}
	defer engine.Close()

	for _, w := range cfg.Lint() {
		if w.Severity >= goGate.LintWarn {
			logger.Warn("config lint", "code", w.Code, "severity", w.Severity.String(), "message", w.Message)
		}
	}

	handler, closeRouter, err := newRouter(engine, upstream, logger, routerOptions{
		trustedProxies: proxies,
		otel:           opts.otel,
	})
	if err != nil {
		return err
	}
	defer closeRouter()

	server := &http.Server{
		Addr:              opts.listen,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("gogate listening", "addr", opts.listen, "upstream", upstream.String())
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), opts.shutdownTimeout)
	defer cancel()
	logger.Info("gogate shutting down")
	return server.Shutdown(shutdownCtx)
}

// newRouter mounts health and metrics endpoints ahead of the guarded proxy.
// The returned func releases exporter resources.
func newRouter(engine *goGate.Engine, upstream *url.URL, logger *slog.Logger, opts routerOptions) (http.Handler, func(), error) {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(trustedRealIP(opts.trustedProxies))
	r.Use(accessLog(logger))
	r.Use(chimw.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok","service":"gogate"}`))
	})

	closeFn := func() {}
	if engine.Config().Metrics.Enabled {
		r.Method(http.MethodGet, "/metrics", prometheus.NewPrometheusExporter(engine).Handler())
		if opts.otel {
			h, shutdown, err := newOTelHandler(engine)
			if err != nil {
				return nil, nil, err
			}
			r.Method(http.MethodGet, "/metrics/otel", h)
			closeFn = shutdown
		}
	}

	proxy := httputil.NewSingleHostReverseProxy(upstream)
	proxy.ErrorHandler = func(w http.ResponseWriter, req *http.Request, err error) {
		logger.ErrorContext(req.Context(), "upstream error", "path", req.URL.Path, "error", err)
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}

	r.Handle("/*", gate.Guard(engine)(proxy))
	return r, closeFn, nil
}

// trustedRealIP applies chi's RealIP only to requests whose TCP peer is a
// trusted proxy. Everyone else keeps their peer address, so forwarding
// headers cannot pick the session check budget key.
func trustedRealIP(trusted []netip.Prefix) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if len(trusted) == 0 {
			return next
		}
		realIP := chimw.RealIP(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if peerTrusted(r.RemoteAddr, trusted) {
				realIP.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func peerTrusted(remoteAddr string, trusted []netip.Prefix) bool {
	ap, err := netip.ParseAddrPort(remoteAddr)
	var addr netip.Addr
	if err == nil {
		addr = ap.Addr()
	} else if addr, err = netip.ParseAddr(remoteAddr); err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

func parseTrustedProxies(in []string) ([]netip.Prefix, error) {
	out := make([]netip.Prefix, 0, len(in))
	for _, raw := range in {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if strings.Contains(raw, "/") {
			p, err := netip.ParsePrefix(raw)
			if err != nil {
				return nil, fmt.Errorf("invalid --trusted-proxy %q: %w", raw, err)
			}
			out = append(out, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid --trusted-proxy %q: %w", raw, err)
		}
		addr = addr.Unmap()
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out, nil
}

func accessLog(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.LogAttrs(r.Context(), slog.LevelInfo, "request",
				slog.String("request_id", chimw.GetReqID(r.Context())),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Duration("duration", time.Since(start)),
				slog.String("remote", r.RemoteAddr),
			)
		})
	}
}

// openRedis returns the client backing the session check budget, or nil when
// the budget is disabled.
func openRedis(cfg goGate.RateLimitConfig, dev bool) (redis.UniversalClient, func(), error) {
	noop := func() {}
	if !cfg.Enabled {
		return nil, noop, nil
	}

	if dev {
		mr, err := miniredis.Run()
		if err != nil {
			return nil, noop, fmt.Errorf("start miniredis: %w", err)
		}
		client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{mr.Addr()}})
		return client, func() {
			_ = client.Close()
			mr.Close()
		}, nil
	}

	addr := cfg.RedisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}
	if addr == "" {
		return nil, noop, errors.New("rate_limit.enabled requires rate_limit.redis_addr or --dev-redis")
	}
	client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
	return client, func() { _ = client.Close() }, nil
}
