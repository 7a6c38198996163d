package value

import "time"

// rawCompare orders two non-NULL values of compatible kinds. It returns
// ok=false for combinations that have no defined ordering (e.g. comparing a
// List to an Int), which callers turn into NULL per the scalar-operator
// contract.
func rawCompare(a, b Value) (cmp int, ok bool) {
	switch x := a.(type) {
	case Int:
		switch y := b.(type) {
		case Int:
			return cmpInt64(int64(x), int64(y)), true
		case Float:
			return cmpFloat64(float64(x), float64(y)), true
		}
	case Float:
		switch y := b.(type) {
		case Int:
			return cmpFloat64(float64(x), float64(y)), true
		case Float:
			return cmpFloat64(float64(x), float64(y)), true
		}
	case Str:
		if y, ok := b.(Str); ok {
			return cmpString(x.S, y.S), true
		}
	case Bytes:
		if y, ok := b.(Bytes); ok {
			return cmpString(string(x), string(y)), true
		}
	case Bool:
		if y, ok := b.(Bool); ok {
			return cmpBool(bool(x), bool(y)), true
		}
	case Timestamp:
		if y, ok := b.(Timestamp); ok {
			return cmpTime(time.Time(x), time.Time(y)), true
		}
	case Mode:
		if y, ok := b.(Mode); ok {
			return cmpInt64(int64(x), int64(y)), true
		}
	case Interval:
		if y, ok := b.(Interval); ok {
			return cmpInt64(int64(x), int64(y)), true
		}
	}
	return 0, false
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpFloat64(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpBool(a, b bool) int {
	if a == b {
		return 0
	}
	if !a && b {
		return -1
	}
	return 1
}

func cmpTime(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	default:
		return 0
	}
}

// rawEqual reports equality of two non-NULL values for the `=`/`<>`
// scalar operators.
func rawEqual(a, b Value) (equal bool, ok bool) {
	if la, lok := a.(List); lok {
		lb, ok2 := b.(List)
		if !ok2 || len(la) != len(lb) {
			return false, ok2
		}
		for i := range la {
			eq, ok3 := rawEqual(la[i], lb[i])
			if !ok3 || !eq {
				return false, true
			}
		}
		return true, true
	}
	cmp, ok := rawCompare(a, b)
	if !ok {
		return false, false
	}
	return cmp == 0, true
}

// Lt, Lte, Gt, Gte, Eq, Ne implement the three-valued scalar comparison
// operators: NULL propagates, otherwise the comparison resolves to Bool.
func Lt(a, b Value) Value  { return compareOp(a, b, func(c int) bool { return c < 0 }) }
func Lte(a, b Value) Value { return compareOp(a, b, func(c int) bool { return c <= 0 }) }
func Gt(a, b Value) Value  { return compareOp(a, b, func(c int) bool { return c > 0 }) }
func Gte(a, b Value) Value { return compareOp(a, b, func(c int) bool { return c >= 0 }) }

func compareOp(a, b Value, pred func(int) bool) Value {
	if IsNull(a) || IsNull(b) {
		return NullValue
	}
	cmp, ok := rawCompare(a, b)
	if !ok {
		return NullValue
	}
	return Bool(pred(cmp))
}

// Eq implements `=`.
func Eq(a, b Value) Value {
	if IsNull(a) || IsNull(b) {
		return NullValue
	}
	eq, ok := rawEqual(a, b)
	if !ok {
		return NullValue
	}
	return Bool(eq)
}

// Ne implements `<>`/`!=`.
func Ne(a, b Value) Value {
	eq := Eq(a, b)
	if IsNull(eq) {
		return NullValue
	}
	return Bool(!bool(eq.(Bool)))
}

// OrderLess is the ORDER BY comparator: unlike the scalar operators, NULL
// sorts strictly before any non-NULL value instead of propagating. Used
// only by the evaluator's multi-column sort key, never inside expression
// evaluation.
func OrderLess(a, b Value) bool {
	aNull, bNull := IsNull(a), IsNull(b)
	switch {
	case aNull && bNull:
		return false
	case aNull:
		return true
	case bNull:
		return false
	}
	cmp, ok := rawCompare(a, b)
	if !ok {
		return false
	}
	return cmp < 0
}

// OrderEqual reports whether a and b compare equal for ORDER BY purposes
// (used to decide whether a multi-column comparator must look at the next
// column).
func OrderEqual(a, b Value) bool {
	if IsNull(a) || IsNull(b) {
		return IsNull(a) && IsNull(b)
	}
	eq, ok := rawEqual(a, b)
	return ok && eq
}

// KeyEqual reports equality for GROUP BY key purposes, where NULL equals
// NULL (collapsing NULL-keyed rows into a single group), unlike the
// three-valued `=` operator.
func KeyEqual(a, b Value) bool {
	if IsNull(a) || IsNull(b) {
		return IsNull(a) && IsNull(b)
	}
	eq, ok := rawEqual(a, b)
	return ok && eq
}
