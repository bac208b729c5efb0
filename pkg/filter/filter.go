// Package filter parses segment enrollment rules into a small predicate tree
// and compiles that tree into parameterized SQL.
package filter

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

type Op string

const (
	Eq    Op = "eq"
	Ne    Op = "ne"
	Gt    Op = "gt"
	Gte   Op = "gte"
	Lt    Op = "lt"
	Lte   Op = "lte"
	Like  Op = "like"
	ILike Op = "iLike"
	In    Op = "in"
)

var ErrInvalidFilter = errors.New("invalid filter")

// Expr is one of Cond, And or Or.
type Expr interface {
	expr()
}

type Cond struct {
	Field string
	Op    Op
	Value any
}

type And []Expr

type Or []Expr

func (Cond) expr() {}
func (And) expr()  {}
func (Or) expr()   {}

func validOp(op Op) bool {
	switch op {
	case Eq, Ne, Gt, Gte, Lt, Lte, Like, ILike, In:
		return true
	}
	return false
}

// Parse reads a rule shaped like {"field": [{"op": value}, ...]}. A field may
// also map to a single {"op": value} object. Conditions on one field are
// ANDed; fields are ANDed except those listed in orFields, which form one OR
// group. An empty rule matches everything.
func Parse(raw []byte, fields []string, orFields ...string) (Expr, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return And{}, nil
	}

	var spec map[string]json.RawMessage
	if err := json.Unmarshal(raw, &spec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
	}

	allowed := make(map[string]bool, len(fields))
	for _, f := range fields {
		allowed[f] = true
	}
	ored := make(map[string]bool, len(orFields))
	for _, f := range orFields {
		ored[f] = true
	}

	names := make([]string, 0, len(spec))
	for name := range spec {
		names = append(names, name)
	}
	sort.Strings(names)

	var and And
	var or Or
	for _, name := range names {
		if !allowed[name] {
			return nil, fmt.Errorf("%w: unknown field %q", ErrInvalidFilter, name)
		}
		conds, err := parseField(name, spec[name])
		if err != nil {
			return nil, err
		}
		if ored[name] {
			or = append(or, conds...)
			continue
		}
		and = append(and, conds...)
	}

	if len(or) > 0 {
		and = append(and, or)
	}
	return and, nil
}

func parseField(name string, raw json.RawMessage) ([]Expr, error) {
	var ops []map[string]any
	if err := json.Unmarshal(raw, &ops); err != nil {
		var single map[string]any
		if err := json.Unmarshal(raw, &single); err != nil {
			return nil, fmt.Errorf("%w: field %q must hold operator objects", ErrInvalidFilter, name)
		}
		ops = []map[string]any{single}
	}

	var conds []Expr
	for _, m := range ops {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			op := Op(k)
			if !validOp(op) {
				return nil, fmt.Errorf("%w: unknown operator %q on %q", ErrInvalidFilter, k, name)
			}
			v := m[k]
			if op == In {
				if _, ok := v.([]any); !ok {
					return nil, fmt.Errorf("%w: %q expects a list on %q", ErrInvalidFilter, k, name)
				}
			}
			conds = append(conds, Cond{Field: name, Op: op, Value: v})
		}
	}
	return conds, nil
}
