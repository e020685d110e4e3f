package middleware

import (
	"context"
	"net/http"

	goGate "github.com/MrEthical07/goGate"
)

// SessionFromContext returns the session the guard attached to ctx.
func SessionFromContext(ctx context.Context) (*goGate.Session, bool) {
	return goGate.SessionFromContext(ctx)
}

// Guard returns middleware that enforces engine's access decisions.
//
// Redirects carry Cache-Control: no-store so a per-session answer is never
// reused for another visitor. Allowed requests reach next with the resolved
// session, if any, attached to the request context.
func Guard(engine *goGate.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "service unavailable", http.StatusServiceUnavailable)
				return
			}

			ev := engine.Evaluate(r)

			if ev.Decision.Redirects() {
				w.Header().Set("Cache-Control", "no-store")
				http.Redirect(w, r, engine.RedirectURL(ev.Decision), engine.RedirectStatus())
				return
			}

			if ev.Session != nil {
				r = r.WithContext(goGate.WithSession(r.Context(), ev.Session))
			}
			next.ServeHTTP(w, r)
		})
	}
}
