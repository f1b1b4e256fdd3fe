package query

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/EdProwise/beawar-school-sub001/internal/client/transport"
)

// Messages of the precondition failures.
const (
	MsgUpdateNeedsEq = "Update requires an eq() filter (usually id)"
	MsgDeleteNeedsEq = "Delete requires an eq() or in() filter"
	MsgNoRows        = "No rows found"
)

// Execute sends the accumulated request and returns its normalized result.
func (b *Builder) Execute(ctx context.Context) Result {
	if b.err != nil {
		return failure(b.err)
	}

	method, target, body, perr := b.request()
	if perr != nil {
		return failure(perr)
	}

	var token string
	if b.client.tokens != nil {
		token = b.client.tokens.AccessToken(ctx)
	}

	req, err := transport.NewJSONRequest(ctx, method, target, body, token)
	if err != nil {
		return failure(&Error{Message: err.Error()})
	}

	log := b.client.logger.With("method", method, "url", target)

	resp, err := b.client.http.Do(req)
	if err != nil {
		log.Debug(ctx, "request failed", "error", err)
		return failure(&Error{Message: err.Error()})
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return failure(newError("read response: %v", err))
	}
	log.Debug(ctx, "request served", "status", resp.StatusCode, "bytes", len(raw))

	if !transport.OK(resp.StatusCode) {
		return failure(&Error{Message: transport.ErrorMessage(resp.StatusCode, raw)})
	}

	var payload any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &payload); err != nil {
			return failure(newError("invalid JSON response: %v", err))
		}
	}

	return b.shape(payload)
}

// Then executes the builder and hands the result to fn.
func (b *Builder) Then(ctx context.Context, fn func(Result)) {
	fn(b.Execute(ctx))
}

// Single executes and unwraps to exactly one object. An empty or null
// result is an error.
func (b *Builder) Single(ctx context.Context) Result {
	res := b.Execute(ctx)
	if res.Error != nil {
		return res
	}
	row, ok := unwrapOne(res.Data)
	if !ok {
		return failure(&Error{Message: MsgNoRows})
	}
	res.Data = row
	return res
}

// MaybeSingle executes and unwraps to at most one object. An empty or null
// result yields nil data and no error.
func (b *Builder) MaybeSingle(ctx context.Context) Result {
	res := b.Execute(ctx)
	if res.Error != nil {
		return res
	}
	row, ok := unwrapOne(res.Data)
	if !ok {
		res.Data = nil
		return res
	}
	res.Data = row
	return res
}

func unwrapOne(data any) (any, bool) {
	switch v := data.(type) {
	case nil:
		return nil, false
	case []any:
		if len(v) == 0 {
			return nil, false
		}
		return v[0], true
	default:
		return v, true
	}
}

// request resolves the dispatch table into method, URL and body.
func (b *Builder) request() (string, string, any, *Error) {
	base := transport.JoinURL(b.client.baseURL, b.table)

	switch b.verb {
	case verbPost:
		return http.MethodPost, b.withQuery(base), b.body, nil

	case verbPatch:
		id, ok := b.params.rowID()
		if !ok {
			return "", "", nil, &Error{Message: MsgUpdateNeedsEq}
		}
		return http.MethodPatch, transport.JoinURL(base, url.PathEscape(id)), b.body, nil

	case verbDelete:
		if id, ok := b.params.rowID(); ok {
			return http.MethodDelete, transport.JoinURL(base, url.PathEscape(id)), nil, nil
		}
		if b.params.hasInFilter() {
			return http.MethodDelete, b.withQuery(base), nil, nil
		}
		return "", "", nil, &Error{Message: MsgDeleteNeedsEq}

	case verbUpsert:
		return http.MethodPost, transport.JoinURL(base, "upsert"), map[string]any{"data": b.body}, nil

	default:
		return http.MethodGet, b.withQuery(base), nil, nil
	}
}

func (b *Builder) withQuery(u string) string {
	if len(b.params) == 0 {
		return u
	}
	return u + "?" + b.params.encode()
}

// shape normalizes ids and builds the envelope for the requested mode.
// A head request always yields a count, with or without count=exact.
func (b *Builder) shape(payload any) Result {
	if !b.count && !b.head {
		return Result{Data: NormalizeIDs(payload)}
	}

	data, count := splitCount(payload)
	res := Result{Count: &count}
	if !b.head {
		res.Data = NormalizeIDs(data)
	}
	return res
}

// splitCount accepts {"data": [...], "count": n} or a bare array, whose
// length then serves as the count.
func splitCount(payload any) (any, int) {
	switch v := payload.(type) {
	case map[string]any:
		data := v["data"]
		if n, ok := v["count"].(float64); ok {
			return data, int(n)
		}
		if rows, ok := data.([]any); ok {
			return data, len(rows)
		}
		return data, 0
	case []any:
		return v, len(v)
	default:
		return v, 0
	}
}
