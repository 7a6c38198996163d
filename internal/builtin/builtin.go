// Package builtin assembles the one case-insensitive namespace every query
// expression resolves names against: scalar functions, infix operators
// exposed as callables, pattern-match predicates, aggregate factories, and
// a handful of constants. The reference implementation's BASE_CONTEXT/
// AGGR_FUNCTIONS split (lsql/expr.py) is unified here into a single
// ctx.Context, so callers never need to know which half of two merged
// contexts a name lives in.
package builtin

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexandershov/lsql/internal/agg"
	"github.com/alexandershov/lsql/internal/ctx"
	"github.com/alexandershov/lsql/internal/value"
	"github.com/spf13/cast"
)

// Func is a scalar or predicate builtin: it receives already-evaluated
// arguments and returns a single Value or an evaluation error (e.g. wrong
// arity). NULL-propagation is each Func's own responsibility -- unlike the
// reference implementation's blanket sql_function(...) decorator, not
// every builtin here propagates NULL the same way (concat doesn't).
type Func func(args []value.Value) (value.Value, error)

// Namespace builds the full builtin Context as of the given instant, used
// for CURRENT_TIME/CURRENT_DATE. Each CLI invocation builds one Namespace
// and reuses it for every row.
func Namespace(now time.Time) ctx.Context {
	m := ctx.NewMap(nil)
	for name, fn := range scalarFuncs {
		m.Set(name, fn)
	}
	m.Set("age", ageFunc(now))
	for name, fn := range operatorFuncs {
		m.Set(name, fn)
	}
	for name, fn := range patternFuncs {
		m.Set(name, fn)
	}
	for name, factory := range agg.Factories {
		m.Set(name, factory)
	}
	m.Set("null", value.NullValue)
	m.Set("current_time", value.Timestamp(now))
	y, mo, d := now.Date()
	m.Set("current_date", value.Timestamp(time.Date(y, mo, d, 0, 0, 0, 0, now.Location())))
	for name, fn := range tableFuncs {
		m.Set(name, fn)
	}
	return m
}

func arityError(name string, want int, got []value.Value) error {
	return fmt.Errorf("%s: expected %d argument(s), got %d", name, want, len(got))
}

var scalarFuncs = map[string]Func{
	"lower":   lowerFunc,
	"upper":   upperFunc,
	"length":  lengthFunc,
	"btrim":   btrimFunc,
	"concat":  concatFunc,
	"negate":  negateFunc,
	"not":     notFunc,
	"isnull":  isnullFunc,
	"notnull": notnullFunc,
}

func lowerFunc(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, arityError("lower", 1, args)
	}
	if value.IsNull(args[0]) {
		return value.NullValue, nil
	}
	s, err := cast.ToStringE(args[0])
	if err != nil {
		return nil, err
	}
	return value.NewStr(strings.ToLower(s)), nil
}

func upperFunc(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, arityError("upper", 1, args)
	}
	if value.IsNull(args[0]) {
		return value.NullValue, nil
	}
	s, err := cast.ToStringE(args[0])
	if err != nil {
		return nil, err
	}
	return value.NewStr(strings.ToUpper(s)), nil
}

// lengthFunc implements `length` over any "sized" value: a string's rune
// count, a byte blob's byte count, or a list's element count.
func lengthFunc(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, arityError("length", 1, args)
	}
	switch v := args[0].(type) {
	case value.Str:
		return value.Int(len([]rune(v.S))), nil
	case value.Bytes:
		return value.Int(len(v)), nil
	case value.List:
		return value.Int(len(v)), nil
	case nil:
		return value.NullValue, nil
	default:
		if value.IsNull(v) {
			return value.NullValue, nil
		}
		return nil, fmt.Errorf("length: %s has no length", v.String())
	}
}

// ageFunc returns the Interval between a Timestamp and CURRENT_TIME,
// filling in a feature the reference implementation left as a TODO
// (lsql/tree.py: `# 'age': sql_function(age),  TODO`).
func ageFunc(now time.Time) Func {
	return func(args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return nil, arityError("age", 1, args)
		}
		if value.IsNull(args[0]) {
			return value.NullValue, nil
		}
		ts, ok := args[0].(value.Timestamp)
		if !ok {
			return nil, fmt.Errorf("age: expected a timestamp, got %s", args[0].String())
		}
		return value.Interval(int64(now.Sub(time.Time(ts)).Seconds())), nil
	}
}

// btrimFunc strips leading/trailing characters from a string, defaulting
// to whitespace when no cutset is given -- also filled in from the
// reference implementation's TODO (lsql/tree.py: `# 'btrim': ... TODO`).
func btrimFunc(args []value.Value) (value.Value, error) {
	if len(args) != 1 && len(args) != 2 {
		return nil, fmt.Errorf("btrim: expected 1 or 2 arguments, got %d", len(args))
	}
	if value.IsNull(args[0]) {
		return value.NullValue, nil
	}
	s, err := cast.ToStringE(args[0])
	if err != nil {
		return nil, err
	}
	cutset := " \t\n\r"
	if len(args) == 2 {
		if value.IsNull(args[1]) {
			return value.NullValue, nil
		}
		cutset, err = cast.ToStringE(args[1])
		if err != nil {
			return nil, err
		}
	}
	return value.NewStr(strings.Trim(s, cutset)), nil
}

// concatFunc, unlike the arithmetic and comparison builtins, doesn't
// propagate NULL: it silently drops NULL arguments instead (SPEC_FULL.md §6.5).
func concatFunc(args []value.Value) (value.Value, error) {
	var b strings.Builder
	for _, a := range args {
		if value.IsNull(a) {
			continue
		}
		s, err := cast.ToStringE(a)
		if err != nil {
			return nil, err
		}
		b.WriteString(s)
	}
	return value.NewStr(b.String()), nil
}

func negateFunc(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, arityError("negate", 1, args)
	}
	switch v := args[0].(type) {
	case value.Int:
		return value.Int(-v), nil
	case value.Float:
		return value.Float(-v), nil
	default:
		if value.IsNull(v) {
			return value.NullValue, nil
		}
		return nil, fmt.Errorf("negate: %s is not a number", v.String())
	}
}

// notFunc backs unary NOT, including the NOT IN / NOT BETWEEN / NOT LIKE
// family, which the parser desugars into `not(...)` wrapping the positive
// form (parser/expr.go's notInfix).
func notFunc(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, arityError("not", 1, args)
	}
	return value.Not(args[0]), nil
}

// isnullFunc backs both `x ISNULL` and `x IS NULL`.
func isnullFunc(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, arityError("isnull", 1, args)
	}
	return value.Bool(value.IsNull(args[0])), nil
}

// notnullFunc backs both `x NOTNULL` and `x IS NOT NULL`.
func notnullFunc(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, arityError("notnull", 1, args)
	}
	return value.Bool(!value.IsNull(args[0])), nil
}
