package session

import (
	"context"
	"fmt"
	"net/http"

	"github.com/MrEthical07/goGate/jwt"
)

// JWTResolver reads a signed session token from a named cookie and verifies
// it with a [jwt.Manager].
type JWTResolver struct {
	cookieName string
	manager    *jwt.Manager
}

// NewJWTResolver returns a resolver reading cookieName.
func NewJWTResolver(cookieName string, manager *jwt.Manager) (*JWTResolver, error) {
	if cookieName == "" {
		return nil, fmt.Errorf("cookie name required")
	}
	if manager == nil {
		return nil, fmt.Errorf("jwt manager required")
	}
	return &JWTResolver{cookieName: cookieName, manager: manager}, nil
}

// Resolve extracts and verifies the session cookie. ctx is unused; the
// check is CPU only.
func (r *JWTResolver) Resolve(_ context.Context, cookieHeader string) (*Session, error) {
	token := cookieValue(cookieHeader, r.cookieName)
	if token == "" {
		return nil, ErrNoCookie
	}

	claims, err := r.manager.Parse(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	s := &Session{
		ID:    claims.Subject,
		Email: claims.Email,
		Role:  claims.Role,
		Name:  claims.Name,
	}
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return s, nil
}

func cookieValue(header, name string) string {
	if header == "" {
		return ""
	}
	for _, c := range (&http.Request{Header: http.Header{"Cookie": {header}}}).Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}
