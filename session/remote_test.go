package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newBackend(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func mustResolver(t *testing.T, base string, timeout time.Duration) *HTTPResolver {
	t.Helper()
	r, err := NewHTTPResolver(base, "/auth/me", timeout, nil)
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}
	return r
}

func TestResolveForwardsCookieVerbatim(t *testing.T) {
	const cookie = "sid=abc; theme=dark"
	var gotCookie, gotPath, gotMethod string
	srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		gotCookie = r.Header.Get("Cookie")
		gotPath = r.URL.Path
		gotMethod = r.Method
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"user":{"id":"u1","email":"c@example.com","role":"COMPANY","name":"Acme"}}`))
	})

	s, err := mustResolver(t, srv.URL, time.Second).Resolve(context.Background(), cookie)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if gotCookie != cookie {
		t.Fatalf("cookie not forwarded verbatim: %q", gotCookie)
	}
	if gotPath != "/auth/me" || gotMethod != http.MethodGet {
		t.Fatalf("unexpected request %s %s", gotMethod, gotPath)
	}
	want := Session{ID: "u1", Email: "c@example.com", Role: "COMPANY", Name: "Acme"}
	if *s != want {
		t.Fatalf("unexpected session: %+v", *s)
	}
}

func TestResolveNumericID(t *testing.T) {
	srv := newBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write([]byte(`{"user":{"id":42,"email":"s@example.com","role":"student","name":"S"}}`))
	})

	s, err := mustResolver(t, srv.URL, time.Second).Resolve(context.Background(), "sid=1")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if s.ID != "42" {
		t.Fatalf("expected id 42, got %q", s.ID)
	}
}

func TestResolveEmptyCookieSkipsNetwork(t *testing.T) {
	called := false
	srv := newBackend(t, func(http.ResponseWriter, *http.Request) { called = true })

	_, err := mustResolver(t, srv.URL, time.Second).Resolve(context.Background(), "")
	if !errors.Is(err, ErrNoCookie) {
		t.Fatalf("expected ErrNoCookie, got %v", err)
	}
	if called {
		t.Fatal("backend must not be called without a cookie")
	}
}

func TestResolveStatusErrors(t *testing.T) {
	cases := []struct {
		name      string
		status    int
		body      string
		ctype     string
		anonymous bool
		message   string
	}{
		{name: "unauthorized json", status: 401, body: `{"message":"No autorizado","error":"Unauthorized"}`, ctype: "application/json", anonymous: true, message: "No autorizado"},
		{name: "server error text", status: 500, body: "boom", ctype: "text/plain"},
		{name: "bad gateway", status: 502, ctype: "application/json", body: `{}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newBackend(t, func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", tc.ctype)
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})

			_, err := mustResolver(t, srv.URL, time.Second).Resolve(context.Background(), "sid=1")
			var se *StatusError
			if !errors.As(err, &se) {
				t.Fatalf("expected StatusError, got %v", err)
			}
			if se.StatusCode != tc.status || se.Anonymous() != tc.anonymous || se.Message != tc.message {
				t.Fatalf("unexpected status error: %+v", se)
			}
		})
	}
}

func TestResolveMalformedBodies(t *testing.T) {
	bodies := []string{
		`not json`,
		`{}`,
		`{"user":null}`,
		`{"user":{"email":"x@example.com","role":"student"}}`,
		`{"user":{"id":"u1","email":"x@example.com"}}`,
		`{"user":{"id":{"x":1},"role":"student"}}`,
	}
	for _, body := range bodies {
		srv := newBackend(t, func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(body))
		})

		_, err := mustResolver(t, srv.URL, time.Second).Resolve(context.Background(), "sid=1")
		if !errors.Is(err, ErrMalformedResponse) {
			t.Fatalf("body %q: expected ErrMalformedResponse, got %v", body, err)
		}
	}
}

func TestResolveRejectsNonJSONSuccess(t *testing.T) {
	srv := newBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html></html>`))
	})

	_, err := mustResolver(t, srv.URL, time.Second).Resolve(context.Background(), "sid=1")
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestResolveIgnoresContentTypeOnValidBody(t *testing.T) {
	const body = `{"user":{"id":"u1","email":"s@example.com","role":"STUDENT","name":"S"}}`
	for _, ct := range []string{"", "text/plain; charset=utf-8", "application/octet-stream"} {
		srv := newBackend(t, func(w http.ResponseWriter, _ *http.Request) {
			w.Header()["Content-Type"] = nil
			if ct != "" {
				w.Header().Set("Content-Type", ct)
			}
			_, _ = w.Write([]byte(body))
		})

		s, err := mustResolver(t, srv.URL, time.Second).Resolve(context.Background(), "sid=1")
		if err != nil {
			t.Fatalf("content type %q: %v", ct, err)
		}
		if s.ID != "u1" || s.Role != "STUDENT" {
			t.Fatalf("content type %q: got %+v", ct, s)
		}
	}
}

func TestResolveTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	start := time.Now()
	_, err := mustResolver(t, srv.URL, 50*time.Millisecond).Resolve(context.Background(), "sid=1")
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Fatal("timeout did not bound the session check")
	}
}

func TestResolveUnreachableBackend(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	_, err := mustResolver(t, base, time.Second).Resolve(context.Background(), "sid=1")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestNewHTTPResolverValidation(t *testing.T) {
	if _, err := NewHTTPResolver("ftp://x", "/auth/me", time.Second, nil); err == nil {
		t.Fatal("expected scheme error")
	}
	if _, err := NewHTTPResolver("http://x", "auth/me", time.Second, nil); err == nil {
		t.Fatal("expected path error")
	}
	if _, err := NewHTTPResolver("http://x", "/auth/me", 0, nil); err == nil {
		t.Fatal("expected timeout error")
	}
	r, err := NewHTTPResolver("http://api.local:4000/", "/api/auth/me", time.Second, nil)
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}
	if !strings.HasSuffix(r.Endpoint(), "api.local:4000/api/auth/me") {
		t.Fatalf("unexpected endpoint %q", r.Endpoint())
	}
}
