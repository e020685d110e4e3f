package session

import (
	"context"
	"errors"
	"fmt"
)

// Session is the identity record returned by the auth backend. Role is the
// raw wire value; the Engine maps it onto its closed role enumeration.
type Session struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
	Name  string `json:"name"`
}

// Resolver resolves the session for a request's raw Cookie header.
//
// Implementations return a non-nil Session or a non-nil error, never both.
type Resolver interface {
	Resolve(ctx context.Context, cookieHeader string) (*Session, error)
}

// ResolverFunc adapts a function to [Resolver].
type ResolverFunc func(ctx context.Context, cookieHeader string) (*Session, error)

// Resolve calls f.
func (f ResolverFunc) Resolve(ctx context.Context, cookieHeader string) (*Session, error) {
	return f(ctx, cookieHeader)
}

var (
	// ErrNoCookie is returned without any I/O when the request carries no credentials.
	ErrNoCookie = errors.New("no session cookie")
	// ErrUnavailable wraps transport failures talking to the auth backend.
	ErrUnavailable = errors.New("auth backend unavailable")
	// ErrTimeout is returned when the session check exceeds its deadline.
	ErrTimeout = errors.New("session check timed out")
	// ErrMalformedResponse is returned for unparseable or incomplete session bodies.
	ErrMalformedResponse = errors.New("malformed session response")
	// ErrInvalidToken is returned by [JWTResolver] for tokens that fail verification.
	ErrInvalidToken = errors.New("invalid session token")
)

// StatusError reports a non-2xx response from the auth backend. Message and
// Code carry the backend's JSON error body when present.
type StatusError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("auth backend status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("auth backend status %d", e.StatusCode)
}

// Anonymous reports whether the backend answered that the caller is simply
// not logged in, as opposed to failing.
func (e *StatusError) Anonymous() bool {
	return e.StatusCode == 401 || e.StatusCode == 403
}

func (s *Session) validate() error {
	if s == nil {
		return fmt.Errorf("%w: missing user", ErrMalformedResponse)
	}
	if s.ID == "" {
		return fmt.Errorf("%w: missing user id", ErrMalformedResponse)
	}
	if s.Role == "" {
		return fmt.Errorf("%w: missing user role", ErrMalformedResponse)
	}
	return nil
}
