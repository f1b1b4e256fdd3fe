package query

import (
	"github.com/EdProwise/beawar-school-sub001/internal/common"
)

// NormalizeIDs mirrors "_id" into "id" on every object that lacks "id".
// Arrays are mapped element-wise, preserving order and length; fields
// nested inside an object are left alone.
func NormalizeIDs(v any) any {
	switch x := v.(type) {
	case []any:
		for i := range x {
			x[i] = NormalizeIDs(x[i])
		}
		return x
	case map[string]any:
		if _, ok := x[common.IDField]; ok {
			return x
		}
		native, ok := x[common.NativeIDField]
		if !ok {
			return x
		}
		x[common.IDField] = stringifyID(native)
		return x
	default:
		return v
	}
}

// stringifyID renders a native identifier as a string. Extended JSON
// ObjectIDs ({"$oid": "..."}) collapse to their hex value.
func stringifyID(v any) string {
	if m, ok := v.(map[string]any); ok {
		if oid, ok := m["$oid"].(string); ok {
			return oid
		}
	}
	return formatValue(v)
}
