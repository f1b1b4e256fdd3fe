// Package transport holds the HTTP plumbing shared by the query builder and
// the auth and storage shims: URL roots, request construction and the
// extraction of backend error messages.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/EdProwise/beawar-school-sub001/internal/common"
)

// Doer sends an HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// TokenSource yields the bearer token of the signed-in session, or "" when
// nobody is signed in.
type TokenSource interface {
	AccessToken(ctx context.Context) string
}

// RootURL strips a trailing "/api" (and any trailing slash) from base.
// Auth and storage routes hang off the root, table routes off base.
func RootURL(base string) string {
	base = strings.TrimRight(base, "/")
	return strings.TrimSuffix(base, "/api")
}

// JoinURL appends path segments to base with exactly one slash between them.
func JoinURL(base string, segments ...string) string {
	u := strings.TrimRight(base, "/")
	for _, s := range segments {
		u += "/" + strings.TrimLeft(s, "/")
	}
	return u
}

// NewJSONRequest builds a request whose body, if not nil, is body encoded as
// JSON. A non-empty token is sent as a bearer Authorization header.
func NewJSONRequest(ctx context.Context, method, url string, body any, token string) (*http.Request, error) {
	var rd io.Reader
	if body != nil {
		b, err := Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, rd)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	SetBearer(req, token)
	return req, nil
}

// SetBearer attaches token to req; an empty token leaves req untouched.
func SetBearer(req *http.Request, token string) {
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}
}

// Marshal encodes v the way a browser's JSON.stringify would: no HTML
// escaping and no trailing newline.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// ErrorMessage picks the message for a non-OK response: the body's "error"
// or "message" field when the body is a JSON object, the status text
// otherwise.
func ErrorMessage(status int, body []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err == nil {
		for _, key := range []string{"error", "message"} {
			switch v := payload[key].(type) {
			case string:
				if v != "" {
					return v
				}
			case map[string]any:
				if m, ok := v["message"].(string); ok && m != "" {
					return m
				}
			}
		}
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return fmt.Sprintf("HTTP %d", status)
}

// IsJSON reports whether the response declares a JSON content type.
func IsJSON(resp *http.Response) bool {
	return strings.Contains(resp.Header.Get("Content-Type"), "application/json")
}

// OK reports whether status is a 2xx code.
func OK(status int) bool {
	return status >= 200 && status < 300
}
