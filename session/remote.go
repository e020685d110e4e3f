package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	maxBodyBytes  = 64 << 10
	maxErrorBytes = 4 << 10
)

// HTTPResolver checks sessions against GET {base}{mePath}.
type HTTPResolver struct {
	client   *http.Client
	endpoint string
	timeout  time.Duration
}

// NewHTTPResolver returns a resolver for baseURL+mePath. A nil client uses a
// dedicated client without redirects. timeout bounds each check.
func NewHTTPResolver(baseURL, mePath string, timeout time.Duration, client *http.Client) (*HTTPResolver, error) {
	base, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil || base.Host == "" || (base.Scheme != "http" && base.Scheme != "https") {
		return nil, fmt.Errorf("invalid auth base url %q", baseURL)
	}
	if !strings.HasPrefix(mePath, "/") {
		return nil, fmt.Errorf("invalid me path %q", mePath)
	}
	if timeout <= 0 {
		return nil, errors.New("timeout must be > 0")
	}
	if client == nil {
		client = &http.Client{
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		}
	}
	return &HTTPResolver{
		client:   client,
		endpoint: base.String() + mePath,
		timeout:  timeout,
	}, nil
}

// Endpoint returns the full session-check URL.
func (r *HTTPResolver) Endpoint() string {
	return r.endpoint
}

// Resolve forwards cookieHeader unmodified and decodes
// {"user":{"id","email","role","name"}}. A 2xx body is decoded whatever its
// Content-Type; only a body that does not parse is malformed.
func (r *HTTPResolver) Resolve(ctx context.Context, cookieHeader string) (*Session, error) {
	if strings.TrimSpace(cookieHeader) == "" {
		return nil, ErrNoCookie
	}
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Cookie", cookieHeader)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-store")

	resp, err := r.client.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s", ErrTimeout, r.timeout)
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s", ErrTimeout, r.timeout)
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(body) > maxBodyBytes {
		return nil, fmt.Errorf("%w: body exceeds %d bytes", ErrMalformedResponse, maxBodyBytes)
	}

	return decodeMe(body)
}

type meResponse struct {
	User *wireUser `json:"user"`
}

type wireUser struct {
	ID    json.RawMessage `json:"id"`
	Email string          `json:"email"`
	Role  string          `json:"role"`
	Name  string          `json:"name"`
}

func decodeMe(body []byte) (*Session, error) {
	var me meResponse
	if err := json.Unmarshal(body, &me); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if me.User == nil {
		return nil, fmt.Errorf("%w: missing user", ErrMalformedResponse)
	}

	id, err := decodeID(me.User.ID)
	if err != nil {
		return nil, err
	}

	s := &Session{
		ID:    id,
		Email: me.User.Email,
		Role:  me.User.Role,
		Name:  me.User.Name,
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// decodeID accepts string or numeric ids.
func decodeID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), nil
	}
	return "", fmt.Errorf("%w: user id has unsupported type", ErrMalformedResponse)
}

func statusError(resp *http.Response) *StatusError {
	out := &StatusError{StatusCode: resp.StatusCode}
	if !isJSON(resp.Header.Get("Content-Type")) {
		return out
	}
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBytes))
	if err != nil {
		return out
	}
	if json.Unmarshal(data, &body) == nil {
		out.Message = body.Message
		out.Code = body.Error
	}
	return out
}

func isJSON(contentType string) bool {
	if contentType == "" {
		return false
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}
