package filter

import (
	"fmt"
	"strings"
)

var sqlOps = map[Op]string{
	Eq:    "=",
	Ne:    "<>",
	Gt:    ">",
	Gte:   ">=",
	Lt:    "<",
	Lte:   "<=",
	Like:  "LIKE",
}

// Compile renders e as a SQL boolean expression with ? placeholders. Only
// fields present in columns may appear; the mapped text is emitted verbatim,
// values never are.
func Compile(e Expr, columns map[string]string) (string, []any, error) {
	switch x := e.(type) {
	case nil:
		return "1 = 1", nil, nil
	case Cond:
		return compileCond(x, columns)
	case And:
		return compileGroup([]Expr(x), " AND ", "1 = 1", columns)
	case Or:
		return compileGroup([]Expr(x), " OR ", "1 = 0", columns)
	default:
		return "", nil, fmt.Errorf("%w: unsupported expression %T", ErrInvalidFilter, e)
	}
}

func compileGroup(exprs []Expr, sep, empty string, columns map[string]string) (string, []any, error) {
	if len(exprs) == 0 {
		return empty, nil, nil
	}

	parts := make([]string, 0, len(exprs))
	var args []any
	for _, sub := range exprs {
		sql, subArgs, err := Compile(sub, columns)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, "("+sql+")")
		args = append(args, subArgs...)
	}
	return strings.Join(parts, sep), args, nil
}

func compileCond(c Cond, columns map[string]string) (string, []any, error) {
	col, ok := columns[c.Field]
	if !ok {
		return "", nil, fmt.Errorf("%w: field %q is not filterable", ErrInvalidFilter, c.Field)
	}

	switch c.Op {
	case In:
		list, _ := c.Value.([]any)
		if len(list) == 0 {
			return "1 = 0", nil, nil
		}
		return col + " IN ?", []any{list}, nil
	case Eq:
		if c.Value == nil {
			return col + " IS NULL", nil, nil
		}
	case Ne:
		if c.Value == nil {
			return col + " IS NOT NULL", nil, nil
		}
	case ILike:
		return fmt.Sprintf("LOWER(%s) LIKE LOWER(?)", col), []any{c.Value}, nil
	}

	op, ok := sqlOps[c.Op]
	if !ok {
		return "", nil, fmt.Errorf("%w: unknown operator %q", ErrInvalidFilter, c.Op)
	}
	return fmt.Sprintf("%s %s ?", col, op), []any{c.Value}, nil
}
