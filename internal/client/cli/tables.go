package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/EdProwise/beawar-school-sub001/internal/client/query"
)

type filterOp string

const (
	opEq  filterOp = "="
	opNeq filterOp = "!="
	opGte filterOp = ">="
	opLte filterOp = "<="
	opIn  filterOp = "~="
)

type filter struct {
	field string
	op    filterOp
	value string
}

// selectArgs is the parsed tail of a select command.
type selectArgs struct {
	table      string
	filters    []filter
	orderBy    string
	descending bool
	limit      int
	count      bool
}

func parseSelectArgs(args []string) (selectArgs, error) {
	if len(args) == 0 {
		return selectArgs{}, errors.New("usage: select <table> [field=value]... [order=field[:desc]] [limit=N] [count]")
	}
	sa := selectArgs{table: args[0]}

	for _, arg := range args[1:] {
		if arg == "count" {
			sa.count = true
			continue
		}
		f, err := parseFilter(arg)
		if err != nil {
			return selectArgs{}, err
		}
		switch {
		case f.field == "order" && f.op == opEq:
			field, dir, _ := strings.Cut(f.value, ":")
			sa.orderBy = field
			sa.descending = dir == "desc"
		case f.field == "limit" && f.op == opEq:
			n, err := strconv.Atoi(f.value)
			if err != nil || n < 0 {
				return selectArgs{}, fmt.Errorf("invalid limit %q", f.value)
			}
			sa.limit = n
		default:
			sa.filters = append(sa.filters, f)
		}
	}
	return sa, nil
}

func parseFilter(arg string) (filter, error) {
	i := strings.IndexByte(arg, '=')
	if i <= 0 {
		return filter{}, fmt.Errorf("invalid filter %q", arg)
	}
	op := opEq
	field := arg[:i]
	switch arg[i-1] {
	case '!':
		op = opNeq
	case '>':
		op = opGte
	case '<':
		op = opLte
	case '~':
		op = opIn
	}
	if op != opEq {
		field = arg[:i-1]
	}
	if field == "" {
		return filter{}, fmt.Errorf("invalid filter %q", arg)
	}
	return filter{field: field, op: op, value: arg[i+1:]}, nil
}

func (sa selectArgs) apply(b *query.Builder) *query.Builder {
	if sa.count {
		b = b.Select("*", query.SelectOptions{Count: query.CountExact})
	} else {
		b = b.Select("*")
	}
	for _, f := range sa.filters {
		switch f.op {
		case opEq:
			b = b.Eq(f.field, f.value)
		case opNeq:
			b = b.Neq(f.field, f.value)
		case opGte:
			b = b.Gte(f.field, f.value)
		case opLte:
			b = b.Lte(f.field, f.value)
		case opIn:
			b = b.In(f.field, strings.Split(f.value, ","))
		}
	}
	if sa.orderBy != "" {
		b = b.Order(sa.orderBy, query.OrderOptions{Ascending: !sa.descending})
	}
	if sa.limit > 0 {
		b = b.Limit(sa.limit)
	}
	return b
}

// Select lists rows of a table.
func (a *App) Select(ctx context.Context, args []string) error {
	sa, err := parseSelectArgs(args)
	if err != nil {
		return err
	}
	res := sa.apply(a.client.From(sa.table)).Execute(ctx)
	if res.Error != nil {
		return res.Error
	}
	if res.Count != nil {
		fmt.Fprintf(a.out, "count: %d\n", *res.Count)
	}
	return printJSON(a.out, res.Data)
}

// Get prints the single row with the given id.
func (a *App) Get(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: get <table> <id>")
	}
	res := a.client.From(args[0]).Select("*").Eq("id", args[1]).Single(ctx)
	if res.Error != nil {
		return res.Error
	}
	return printJSON(a.out, res.Data)
}

// Insert creates a row. Without an inline JSON argument the body is read
// from the following lines.
func (a *App) Insert(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: insert <table> [json]")
	}
	values, err := a.jsonArg(args[1:])
	if err != nil {
		return err
	}
	return a.printResult(a.client.From(args[0]).Insert(values).Execute(ctx))
}

func (a *App) Update(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: update <table> <id> [json]")
	}
	values, err := a.jsonArg(args[2:])
	if err != nil {
		return err
	}
	return a.printResult(a.client.From(args[0]).Update(values).Eq("id", args[1]).Execute(ctx))
}

func (a *App) Upsert(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: upsert <table> [json]")
	}
	values, err := a.jsonArg(args[1:])
	if err != nil {
		return err
	}
	return a.printResult(a.client.From(args[0]).Upsert(values).Execute(ctx))
}

func (a *App) Delete(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: delete <table> <id>")
	}
	return a.printResult(a.client.From(args[0]).Delete().Eq("id", args[1]).Execute(ctx))
}

func (a *App) jsonArg(rest []string) (map[string]any, error) {
	text := strings.Join(rest, " ")
	if text == "" {
		var err error
		text, err = GetMultiline(a.reader, "Enter JSON object", a.out)
		if err != nil {
			return nil, err
		}
	}
	var values map[string]any
	if err := json.Unmarshal([]byte(text), &values); err != nil {
		return nil, fmt.Errorf("invalid JSON object: %w", err)
	}
	return values, nil
}

func (a *App) printResult(res query.Result) error {
	if res.Error != nil {
		return res.Error
	}
	return printJSON(a.out, res.Data)
}
