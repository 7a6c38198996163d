package builtin

import (
	"fmt"
	"math"

	"github.com/alexandershov/lsql/internal/value"
	"github.com/spf13/cast"
)

// operatorFuncs exposes every infix operator the parser can produce as a
// plain two-or-more-argument callable, so the evaluator's single
// "look up a name, call it with evaluated args" path handles both
// `a + b` and `+(a, b)` uniformly -- there is no separate operator-dispatch
// code path.
var operatorFuncs = map[string]Func{
	"||": concatOp,
	"+":  arith("+", func(a, b int64) int64 { return a + b }, func(a, b float64) float64 { return a + b }),
	"-":  arith("-", func(a, b int64) int64 { return a - b }, func(a, b float64) float64 { return a - b }),
	"*":  arith("*", func(a, b int64) int64 { return a * b }, func(a, b float64) float64 { return a * b }),
	"/":  divOp,
	"%":  moduloOp,
	"^":  powerOp,
	"=":  comparisonOp("=", value.Eq),
	"<>": comparisonOp("<>", value.Ne),
	"<":  comparisonOp("<", value.Lt),
	"<=": comparisonOp("<=", value.Lte),
	">":  comparisonOp(">", value.Gt),
	">=": comparisonOp(">=", value.Gte),
	"in": inOp,
}

// concatOp implements `||`: unlike the builtin `concat` function, it
// propagates NULL rather than skipping it, matching standard SQL `||`.
func concatOp(args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return nil, arityError("||", 2, args)
	}
	if value.IsNull(args[0]) || value.IsNull(args[1]) {
		return value.NullValue, nil
	}
	a, err := cast.ToStringE(args[0])
	if err != nil {
		return nil, err
	}
	b, err := cast.ToStringE(args[1])
	if err != nil {
		return nil, err
	}
	return value.NewStr(a + b), nil
}

// numeric type-switches a Value into its underlying int64 (exact) or
// float64 representation. Promotion here is hand-written rather than
// routed through cast's generic numeric coercion: this union's arithmetic
// rule (Int stays Int unless either operand is Float) is specific to this
// package, not a generic "convert to float" rule cast already knows.
func numeric(v value.Value) (i int64, f float64, isInt bool, ok bool) {
	switch n := v.(type) {
	case value.Int:
		return int64(n), float64(n), true, true
	case value.Float:
		return 0, float64(n), false, true
	default:
		return 0, 0, false, false
	}
}

func arith(name string, intFn func(a, b int64) int64, floatFn func(a, b float64) float64) Func {
	return func(args []value.Value) (value.Value, error) {
		if len(args) != 2 {
			return nil, arityError(name, 2, args)
		}
		a, b := args[0], args[1]
		if value.IsNull(a) || value.IsNull(b) {
			return value.NullValue, nil
		}
		ai, af, aInt, aOK := numeric(a)
		bi, bf, bInt, bOK := numeric(b)
		if !aOK || !bOK {
			return nil, fmt.Errorf("%s: %s and %s are not both numbers", name, a.String(), b.String())
		}
		if aInt && bInt {
			return value.Int(intFn(ai, bi)), nil
		}
		return value.Float(floatFn(af, bf)), nil
	}
}

func divOp(args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return nil, arityError("/", 2, args)
	}
	a, b := args[0], args[1]
	if value.IsNull(a) || value.IsNull(b) {
		return value.NullValue, nil
	}
	_, af, _, aOK := numeric(a)
	_, bf, _, bOK := numeric(b)
	if !aOK || !bOK {
		return nil, fmt.Errorf("/: %s and %s are not both numbers", a.String(), b.String())
	}
	if bf == 0 {
		return nil, fmt.Errorf("/: division by zero")
	}
	return value.Float(af / bf), nil
}

func moduloOp(args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return nil, arityError("%", 2, args)
	}
	a, b := args[0], args[1]
	if value.IsNull(a) || value.IsNull(b) {
		return value.NullValue, nil
	}
	ai, _, aInt, aOK := numeric(a)
	bi, _, bInt, bOK := numeric(b)
	if !aOK || !bOK || !aInt || !bInt {
		return nil, fmt.Errorf("%%: %s and %s are not both integers", a.String(), b.String())
	}
	if bi == 0 {
		return nil, fmt.Errorf("%%: modulo by zero")
	}
	return value.Int(ai % bi), nil
}

func powerOp(args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return nil, arityError("^", 2, args)
	}
	a, b := args[0], args[1]
	if value.IsNull(a) || value.IsNull(b) {
		return value.NullValue, nil
	}
	_, af, _, aOK := numeric(a)
	_, bf, _, bOK := numeric(b)
	if !aOK || !bOK {
		return nil, fmt.Errorf("^: %s and %s are not both numbers", a.String(), b.String())
	}
	result := math.Pow(af, bf)
	_, _, aInt, _ := numeric(a)
	_, _, bInt, _ := numeric(b)
	if aInt && bInt && bf >= 0 {
		return value.Int(int64(result)), nil
	}
	return value.Float(result), nil
}

func comparisonOp(name string, op func(a, b value.Value) value.Value) Func {
	return func(args []value.Value) (value.Value, error) {
		if len(args) != 2 {
			return nil, arityError(name, 2, args)
		}
		return op(args[0], args[1]), nil
	}
}

// inOp implements `x IN (a, b, ...)`: NULL if x is NULL, TRUE if x equals
// any element, NULL if no element matched but at least one comparison was
// itself NULL (an unknown element could still have matched), else FALSE --
// matching standard SQL's three-valued IN.
func inOp(args []value.Value) (value.Value, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("in: expected a needle and at least one candidate")
	}
	needle := args[0]
	if value.IsNull(needle) {
		return value.NullValue, nil
	}
	sawNull := false
	for _, candidate := range args[1:] {
		r := value.Eq(needle, candidate)
		if b, ok := r.(value.Bool); ok && bool(b) {
			return value.Bool(true), nil
		}
		if value.IsNull(r) {
			sawNull = true
		}
	}
	if sawNull {
		return value.NullValue, nil
	}
	return value.Bool(false), nil
}
