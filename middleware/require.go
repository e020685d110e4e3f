package middleware

import (
	"errors"
	"net/http"

	goGate "github.com/MrEthical07/goGate"
)

// RequireSession returns middleware that answers 401 unless [Guard] attached
// a session to the request.
func RequireSession(engine *goGate.Engine) func(http.Handler) http.Handler {
	return RequireRole(engine)
}

// RequireRole returns middleware that admits only sessions holding one of
// roles. It must run behind [Guard].
//
//	401 when no session is attached
//	403 when the session holds another role
func RequireRole(engine *goGate.Engine, roles ...goGate.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			if _, err := engine.RequireRole(r.Context(), roles...); err != nil {
				if errors.Is(err, goGate.ErrForbidden) {
					http.Error(w, "forbidden", http.StatusForbidden)
					return
				}
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
