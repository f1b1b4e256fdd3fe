package httpapi

import (
	"encoding/json"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/EdProwise/beawar-school-sub001/internal/common"
	"github.com/EdProwise/beawar-school-sub001/internal/server/repositories/documents"
	"github.com/EdProwise/beawar-school-sub001/internal/server/services"
)

// modifierKeys are query parameters that shape a read rather than filter it.
var modifierKeys = map[string]bool{
	"select": true,
	"count":  true,
	"head":   true,
	"sort":   true,
	"order":  true,
	"limit":  true,
}

var filterSuffixes = []struct {
	suffix string
	op     documents.Op
}{
	{"_neq", documents.OpNeq},
	{"_gte", documents.OpGte},
	{"_lte", documents.OpLte},
	{"_in", documents.OpIn},
}

// parseListParams turns a table read query string into a ListRequest.
// Keys are visited in sorted order so the filter list is deterministic.
func parseListParams(q url.Values) (services.ListRequest, error) {
	var req services.ListRequest

	if sel := q.Get("select"); sel != "" && sel != "*" {
		for _, f := range strings.Split(sel, ",") {
			if f = strings.TrimSpace(f); f != "" {
				req.Select = append(req.Select, f)
			}
		}
	}
	req.Count = q.Get("count") == "exact"
	req.Head = q.Get("head") == "true"
	req.Query.Sort = q.Get("sort")

	switch strings.ToLower(q.Get("order")) {
	case "", "asc":
	case "desc":
		req.Query.Descending = true
	default:
		return req, fmt.Errorf("%w: order must be asc or desc", common.ErrorValidation)
	}

	if l := q.Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 0 {
			return req, fmt.Errorf("%w: invalid limit %q", common.ErrorValidation, l)
		}
		req.Query.Limit = n
	}

	filters, err := parseFilters(q)
	if err != nil {
		return req, err
	}
	req.Query.Filters = filters
	return req, nil
}

// parseFilters reads every non-modifier key as a filter. A _neq, _gte,
// _lte or _in suffix picks the operator, anything else is equality.
func parseFilters(q url.Values) ([]documents.Filter, error) {
	keys := make([]string, 0, len(q))
	for k := range q {
		if !modifierKeys[k] {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)

	var filters []documents.Filter
	for _, key := range keys {
		field, op := splitSuffix(key)
		for _, v := range q[key] {
			f := documents.Filter{Field: field, Op: op, Value: v}
			if op == documents.OpIn {
				values, err := decodeInList(v)
				if err != nil {
					return nil, fmt.Errorf("%w: %s must be a JSON array", common.ErrorValidation, key)
				}
				f.Value, f.Values = "", values
			}
			filters = append(filters, f)
		}
	}
	return filters, nil
}

func splitSuffix(key string) (string, documents.Op) {
	for _, s := range filterSuffixes {
		if field, ok := strings.CutSuffix(key, s.suffix); ok && field != "" {
			return field, s.op
		}
	}
	return key, documents.OpEq
}

// decodeInList parses a JSON array and renders each element as the text
// the document store compares against.
func decodeInList(raw string) ([]string, error) {
	var items []any
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		switch v := it.(type) {
		case string:
			out = append(out, v)
		case nil:
			out = append(out, "null")
		default:
			b, err := json.Marshal(v)
			if err != nil {
				return nil, err
			}
			out = append(out, string(b))
		}
	}
	return out, nil
}
