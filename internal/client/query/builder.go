package query

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"

	"github.com/EdProwise/beawar-school-sub001/internal/common"
)

type verb string

const (
	verbGet    verb = "GET"
	verbPost   verb = "POST"
	verbPatch  verb = "PATCH"
	verbDelete verb = "DELETE"
	verbUpsert verb = "UPSERT"
)

// CountExact asks the backend for the exact number of matching rows.
const CountExact = "exact"

// SelectOptions modifies Select.
type SelectOptions struct {
	// Count set to CountExact adds count=exact.
	Count string
	// Head adds head=true: only the count comes back.
	Head bool
}

// OrderOptions modifies Order.
type OrderOptions struct {
	Ascending bool
}

// Builder accumulates one table request. Every method returns the receiver
// so calls chain; nothing touches the network until Execute.
type Builder struct {
	client *Client
	table  string
	params params
	verb   verb
	body   any

	count bool
	head  bool

	// err is a construction failure reported by Execute.
	err *Error
}

func newBuilder(c *Client, table string) *Builder {
	return &Builder{client: c, table: table, verb: verbGet}
}

// Select records the requested columns; "*" and "" are not forwarded.
func (b *Builder) Select(columns string, opts ...SelectOptions) *Builder {
	if columns != "" && columns != "*" {
		b.params.set(paramSelect, columns)
	}
	for _, o := range opts {
		if o.Count == CountExact {
			b.params.set(paramCount, CountExact)
			b.count = true
		}
		if o.Head {
			b.params.set(paramHead, "true")
			b.head = true
		}
	}
	return b
}

// Eq filters on field equal to value.
func (b *Builder) Eq(field string, value any) *Builder {
	b.params.add(field, formatValue(value))
	return b
}

// Neq filters on field not equal to value.
func (b *Builder) Neq(field string, value any) *Builder {
	b.params.add(field+suffixNeq, formatValue(value))
	return b
}

// Gte filters on field greater than or equal to value.
func (b *Builder) Gte(field string, value any) *Builder {
	b.params.add(field+suffixGte, formatValue(value))
	return b
}

// Lte filters on field less than or equal to value.
func (b *Builder) Lte(field string, value any) *Builder {
	b.params.add(field+suffixLte, formatValue(value))
	return b
}

// In filters on field being one of values, a slice or array.
func (b *Builder) In(field string, values any) *Builder {
	encoded, err := jsonArray(values)
	if err != nil {
		b.fail(newError("encode %s filter: %v", field+suffixIn, err))
		return b
	}
	b.params.add(field+suffixIn, encoded)
	return b
}

// Order sorts by field. Without options the order is ascending.
func (b *Builder) Order(field string, opts ...OrderOptions) *Builder {
	ascending := true
	if len(opts) > 0 {
		ascending = opts[0].Ascending
	}
	b.params.set(paramSort, field)
	if ascending {
		b.params.set(paramOrder, "asc")
	} else {
		b.params.set(paramOrder, "desc")
	}
	return b
}

// Limit caps the number of rows returned.
func (b *Builder) Limit(n int) *Builder {
	b.params.set(paramLimit, strconv.Itoa(n))
	return b
}

// Insert creates a row. Only the first element of a slice is sent.
func (b *Builder) Insert(values any) *Builder {
	b.verb = verbPost
	b.body = firstElement(values)
	return b
}

// Update patches the row selected by the first Eq filter. The id and _id
// fields are removed from values before sending.
func (b *Builder) Update(values any) *Builder {
	b.verb = verbPatch
	body, err := withoutIDs(values)
	if err != nil {
		b.fail(newError("encode update payload: %v", err))
		return b
	}
	b.body = body
	return b
}

// Delete removes the row selected by the first Eq filter, or every row
// matched by an In filter.
func (b *Builder) Delete() *Builder {
	b.verb = verbDelete
	return b
}

// Upsert posts values, an object or a slice of objects, to the upsert route.
func (b *Builder) Upsert(values any) *Builder {
	b.verb = verbUpsert
	b.body = values
	return b
}

func (b *Builder) fail(err *Error) {
	if b.err == nil {
		b.err = err
	}
}

func firstElement(values any) any {
	if values == nil {
		return nil
	}
	rv := reflect.ValueOf(values)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return values
	}
	if rv.Kind() == reflect.Slice && rv.IsNil() {
		return nil
	}
	if rv.Len() == 0 {
		return nil
	}
	return rv.Index(0).Interface()
}

// withoutIDs returns values as a JSON object without id and _id. Values
// that do not encode to an object are returned unchanged.
func withoutIDs(values any) (any, error) {
	if values == nil {
		return nil, nil
	}
	if m, ok := values.(map[string]any); ok {
		out := make(map[string]any, len(m))
		for k, v := range m {
			out[k] = v
		}
		delete(out, common.IDField)
		delete(out, common.NativeIDField)
		return out, nil
	}

	raw, err := json.Marshal(values)
	if err != nil {
		return nil, err
	}
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		// not an object
		return values, nil
	}
	delete(obj, common.IDField)
	delete(obj, common.NativeIDField)
	return obj, nil
}

// String describes the request the builder would send, for logs.
func (b *Builder) String() string {
	return fmt.Sprintf("%s %s?%s", b.verb, b.table, b.params.encode())
}
