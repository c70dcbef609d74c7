package remote

import (
	"fmt"
	"net/url"
	"strings"
)

// Operator is a PostgREST comparison operator
type Operator string

const (
	Eq  Operator = "eq"
	Neq Operator = "neq"
	Gt  Operator = "gt"
	Lt  Operator = "lt"
	Gte Operator = "gte"
	Lte Operator = "lte"
	In  Operator = "in"
	FTS Operator = "fts"
)

var operators = map[Operator]bool{Eq: true, Neq: true, Gt: true, Lt: true, Gte: true, Lte: true, In: true, FTS: true}

// Filter restricts a count to the rows where Column compares to Value
type Filter struct {
	Column string
	Op     Operator
	Value  string
}

// String renders the filter as column=op.value
func (f Filter) String() string {
	return f.Column + "=" + f.param()
}

// param is the query string value, e.g. "eq.BTC" or "in.(a,b)"
func (f Filter) param() string {
	if f.Op == In && !strings.HasPrefix(f.Value, "(") {
		return fmt.Sprintf("in.(%s)", f.Value)
	}
	return string(f.Op) + "." + f.Value
}

func (f Filter) validate() error {
	if strings.TrimSpace(f.Column) == "" {
		return fmt.Errorf("filter %q: column is required", f.String())
	}
	if !operators[f.Op] {
		return fmt.Errorf("filter %q: unknown operator %q", f.String(), f.Op)
	}
	return nil
}

func (f Filter) apply(q url.Values) {
	q.Add(f.Column, f.param())
}

// ParseFilter parses "column=op.value", e.g. "price=gt.100" or
// "symbol=in.BTC,ETH".
func ParseFilter(s string) (Filter, error) {
	column, rest, ok := strings.Cut(s, "=")
	if !ok {
		return Filter{}, fmt.Errorf("invalid filter %q (want column=op.value)", s)
	}
	op, value, ok := strings.Cut(rest, ".")
	if !ok {
		return Filter{}, fmt.Errorf("invalid filter %q (want column=op.value)", s)
	}

	f := Filter{Column: strings.TrimSpace(column), Op: Operator(op), Value: value}
	if err := f.validate(); err != nil {
		return Filter{}, err
	}
	return f, nil
}
