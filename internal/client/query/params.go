package query

import (
	"fmt"
	"math"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/EdProwise/beawar-school-sub001/internal/client/transport"
)

// Reserved parameter keys. They never identify a row.
const (
	paramSelect = "select"
	paramCount  = "count"
	paramSort   = "sort"
	paramOrder  = "order"
	paramLimit  = "limit"
	paramHead   = "head"
)

var reservedParams = map[string]struct{}{
	paramSelect: {},
	paramCount:  {},
	paramSort:   {},
	paramOrder:  {},
	paramLimit:  {},
	paramHead:   {},
}

// Filter key suffixes.
const (
	suffixNeq = "_neq"
	suffixGte = "_gte"
	suffixLte = "_lte"
	suffixIn  = "_in"
)

var filterSuffixes = []string{suffixNeq, suffixGte, suffixLte, suffixIn}

type param struct {
	key   string
	value string
}

// params is an insertion-ordered multimap, encoded like URLSearchParams.
type params []param

// add appends a pair, keeping earlier pairs with the same key.
func (p *params) add(key, value string) {
	*p = append(*p, param{key: key, value: value})
}

// set replaces the first pair with key in place and drops later ones,
// or appends when key is absent.
func (p *params) set(key, value string) {
	out := (*p)[:0]
	found := false
	for _, kv := range *p {
		if kv.key != key {
			out = append(out, kv)
			continue
		}
		if !found {
			out = append(out, param{key: key, value: value})
			found = true
		}
	}
	if !found {
		out = append(out, param{key: key, value: value})
	}
	*p = out
}

func (p params) get(key string) (string, bool) {
	for _, kv := range p {
		if kv.key == key {
			return kv.value, true
		}
	}
	return "", false
}

// encode renders the pairs in order as application/x-www-form-urlencoded.
func (p params) encode() string {
	var sb strings.Builder
	for i, kv := range p {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(kv.key))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(kv.value))
	}
	return sb.String()
}

// rowID returns the value of the first unsuffixed, non-reserved parameter,
// which is the first Eq filter.
func (p params) rowID() (string, bool) {
	for _, kv := range p {
		if _, reserved := reservedParams[kv.key]; reserved {
			continue
		}
		if hasFilterSuffix(kv.key) {
			continue
		}
		return kv.value, true
	}
	return "", false
}

func (p params) hasInFilter() bool {
	for _, kv := range p {
		if strings.HasSuffix(kv.key, suffixIn) {
			return true
		}
	}
	return false
}

func hasFilterSuffix(key string) bool {
	for _, s := range filterSuffixes {
		if strings.HasSuffix(key, s) {
			return true
		}
	}
	return false
}

// formatValue renders v the way JavaScript's String(v) would for the types
// a caller is likely to pass as a filter value.
func formatValue(v any) string {
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return "null"
		}
		elem := rv.Elem().Interface()
		if _, ok := elem.(fmt.Stringer); !ok {
			if s, ok := v.(fmt.Stringer); ok {
				return s.String()
			}
		}
		return formatValue(elem)
	}

	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int8, int16, int32, int64:
		return strconv.FormatInt(reflect.ValueOf(x).Int(), 10)
	case uint, uint8, uint16, uint32, uint64:
		return strconv.FormatUint(reflect.ValueOf(x).Uint(), 10)
	case float32:
		return formatFloat(float64(x))
	case float64:
		return formatFloat(x)
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano)
	case fmt.Stringer:
		return x.String()
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = formatValue(rv.Index(i).Interface())
		}
		return strings.Join(parts, ",")
	}
	return fmt.Sprint(v)
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// jsonArray encodes values the way JSON.stringify encodes an array.
func jsonArray(values any) (string, error) {
	if values == nil {
		return "[]", nil
	}
	b, err := transport.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
