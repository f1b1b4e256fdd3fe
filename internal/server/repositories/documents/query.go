package documents

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// where accumulates a WHERE clause and its positional arguments.
type where struct {
	clauses []string
	args    []any
}

func newWhere(collection string) *where {
	w := &where{}
	w.clauses = append(w.clauses, "collection = "+w.arg(collection))
	return w
}

func (w *where) arg(v any) string {
	w.args = append(w.args, v)
	return "$" + strconv.Itoa(len(w.args))
}

func (w *where) String() string {
	return strings.Join(w.clauses, " AND ")
}

func isTimeColumn(field string) bool {
	return field == "created_at" || field == "updated_at"
}

func isIDField(field string) bool {
	return field == "_id" || field == "id"
}

// textExpr is the text form of field. Field names always travel as
// arguments.
func (w *where) textExpr(field string) string {
	switch {
	case isIDField(field):
		return "id::text"
	case isTimeColumn(field):
		return field + "::text"
	default:
		return "data->>" + w.arg(field)
	}
}

func (w *where) add(f Filter) error {
	switch f.Op {
	case OpEq:
		if isTimeColumn(f.Field) {
			w.clauses = append(w.clauses, f.Field+" = "+w.arg(f.Value)+"::timestamptz")
			return nil
		}
		w.clauses = append(w.clauses, w.textExpr(f.Field)+" = "+w.arg(f.Value))

	case OpNeq:
		if isTimeColumn(f.Field) {
			w.clauses = append(w.clauses, f.Field+" <> "+w.arg(f.Value)+"::timestamptz")
			return nil
		}
		w.clauses = append(w.clauses, w.textExpr(f.Field)+" IS DISTINCT FROM "+w.arg(f.Value))

	case OpGte, OpLte:
		cmp := ">="
		if f.Op == OpLte {
			cmp = "<="
		}
		w.clauses = append(w.clauses, w.compare(f.Field, cmp, f.Value))

	case OpIn:
		values := f.Values
		if values == nil {
			values = []string{}
		}
		encoded, err := json.Marshal(values)
		if err != nil {
			return err
		}
		w.clauses = append(w.clauses, w.textExpr(f.Field)+" IN (SELECT jsonb_array_elements_text("+w.arg(string(encoded))+"::jsonb))")

	default:
		return fmt.Errorf("unsupported filter operator %q", f.Op)
	}
	return nil
}

// compare orders numerically when value is a number and the stored field
// is a JSON number, otherwise as text. Time columns compare as timestamps.
func (w *where) compare(field, cmp, value string) string {
	if isTimeColumn(field) {
		return field + " " + cmp + " " + w.arg(value) + "::timestamptz"
	}
	if isIDField(field) {
		return "id::text " + cmp + " " + w.arg(value)
	}
	if n, err := strconv.ParseFloat(value, 64); err == nil {
		k := w.arg(field)
		return "CASE WHEN jsonb_typeof(data->" + k + ") = 'number' THEN (data->>" + k + ")::numeric END " + cmp + " " + w.arg(n)
	}
	return "data->>" + w.arg(field) + " " + cmp + " " + w.arg(value)
}

// orderBy renders the ORDER BY clause. Insertion order is the default.
func (w *where) orderBy(sort string, desc bool) string {
	dir := "ASC"
	if desc {
		dir = "DESC"
	}
	switch {
	case sort == "":
		return "created_at ASC, id ASC"
	case isIDField(sort):
		return "id " + dir
	case isTimeColumn(sort):
		return sort + " " + dir + ", id " + dir
	default:
		// Numeric values sort by magnitude, everything else falls back to text.
		k := w.arg(sort)
		return "CASE WHEN jsonb_typeof(data->" + k + ") = 'number' THEN (data->>" + k + ")::numeric END " + dir +
			", data->>" + k + " " + dir + ", created_at " + dir
	}
}
