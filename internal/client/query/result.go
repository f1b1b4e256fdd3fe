package query

import (
	"encoding/json"
	"fmt"
)

// Error is the message-only error carried by a Result.
type Error struct {
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

func newError(format string, args ...any) *Error {
	return &Error{Message: fmt.Sprintf(format, args...)}
}

// Result is the envelope every execution resolves to. Error is non-nil iff
// the call failed; Count is set only when an exact count was requested.
type Result struct {
	Data  any    `json:"data"`
	Count *int   `json:"count,omitempty"`
	Error *Error `json:"error"`
}

func failure(err *Error) Result {
	return Result{Error: err}
}

// Err returns Error as a Go error, or nil.
func (r Result) Err() error {
	if r.Error == nil {
		return nil
	}
	return r.Error
}

// Decode re-encodes Data into v, typically a struct or a slice of structs.
func (r Result) Decode(v any) error {
	if r.Error != nil {
		return r.Error
	}
	b, err := json.Marshal(r.Data)
	if err != nil {
		return fmt.Errorf("encode result data: %w", err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode result data: %w", err)
	}
	return nil
}

// Rows returns Data as a slice of objects. A single object becomes a
// one-element slice and nil becomes an empty slice.
func (r Result) Rows() []map[string]any {
	switch v := r.Data.(type) {
	case []any:
		rows := make([]map[string]any, 0, len(v))
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				rows = append(rows, m)
			}
		}
		return rows
	case map[string]any:
		return []map[string]any{v}
	default:
		return []map[string]any{}
	}
}
