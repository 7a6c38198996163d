package value

// Three-valued boolean logic: NULL is neither true nor false, and is never
// conflated with "empty" or "zero" (see SPEC_FULL.md §9). This is a
// deliberate correction relative to the Python source this system is
// grounded on, whose AndExpr/OrExpr used `all()`/`any()` over evaluated
// branches and so did not implement full NULL propagation; see DESIGN.md.

func isTrue(v Value) bool  { return !IsNull(v) && v.Truthy() }
func isFalse(v Value) bool { return !IsNull(v) && !v.Truthy() }

// And implements three-valued AND: false dominates (FALSE AND NULL =
// FALSE), otherwise NULL dominates, otherwise both must be true.
func And(a, b Value) Value {
	if isFalse(a) || isFalse(b) {
		return Bool(false)
	}
	if IsNull(a) || IsNull(b) {
		return NullValue
	}
	return Bool(true)
}

// Or implements three-valued OR: true dominates (TRUE OR NULL = TRUE),
// otherwise NULL dominates, otherwise both must be false.
func Or(a, b Value) Value {
	if isTrue(a) || isTrue(b) {
		return Bool(true)
	}
	if IsNull(a) || IsNull(b) {
		return NullValue
	}
	return Bool(false)
}

// Not implements three-valued NOT: NOT NULL is NULL.
func Not(a Value) Value {
	if IsNull(a) {
		return NullValue
	}
	return Bool(!a.Truthy())
}
