package builtin

import (
	"testing"
	"time"

	"github.com/alexandershov/lsql/internal/ctx"
	"github.com/alexandershov/lsql/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustFunc(t *testing.T, ns ctx.Context, name string) Func {
	t.Helper()
	v, ok := ns.Get(name)
	require.True(t, ok, name)
	fn, ok := v.(Func)
	require.True(t, ok, "%s is not a Func", name)
	return fn
}

func TestLowerUpper(t *testing.T) {
	ns := Namespace(time.Now())
	lower := mustFunc(t, ns, "lower")
	v, err := lower([]value.Value{value.NewStr("ABC")})
	require.NoError(t, err)
	assert.Equal(t, "abc", v.String())

	upper := mustFunc(t, ns, "upper")
	v, err = upper([]value.Value{value.NewStr("abc")})
	require.NoError(t, err)
	assert.Equal(t, "ABC", v.String())
}

func TestLengthOverStringAndList(t *testing.T) {
	ns := Namespace(time.Now())
	length := mustFunc(t, ns, "length")

	v, err := length([]value.Value{value.NewStr("hello")})
	require.NoError(t, err)
	assert.Equal(t, value.Int(5), v)

	v, err = length([]value.Value{value.List{value.Int(1), value.Int(2)}})
	require.NoError(t, err)
	assert.Equal(t, value.Int(2), v)
}

func TestConcatSkipsNulls(t *testing.T) {
	ns := Namespace(time.Now())
	concat := mustFunc(t, ns, "concat")
	v, err := concat([]value.Value{value.NewStr("a"), value.NullValue, value.NewStr("b")})
	require.NoError(t, err)
	assert.Equal(t, "ab", v.String())
}

func TestConcatOperatorPropagatesNull(t *testing.T) {
	ns := Namespace(time.Now())
	op := mustFunc(t, ns, "||")
	v, err := op([]value.Value{value.NewStr("a"), value.NullValue})
	require.NoError(t, err)
	assert.True(t, value.IsNull(v))
}

func TestBtrimDefaultWhitespace(t *testing.T) {
	ns := Namespace(time.Now())
	btrim := mustFunc(t, ns, "btrim")
	v, err := btrim([]value.Value{value.NewStr("  hi  ")})
	require.NoError(t, err)
	assert.Equal(t, "hi", v.String())
}

func TestBtrimCustomCutset(t *testing.T) {
	ns := Namespace(time.Now())
	btrim := mustFunc(t, ns, "btrim")
	v, err := btrim([]value.Value{value.NewStr("xxhixx"), value.NewStr("x")})
	require.NoError(t, err)
	assert.Equal(t, "hi", v.String())
}

func TestNegate(t *testing.T) {
	ns := Namespace(time.Now())
	negate := mustFunc(t, ns, "negate")
	v, err := negate([]value.Value{value.Int(5)})
	require.NoError(t, err)
	assert.Equal(t, value.Int(-5), v)
}

func TestNot(t *testing.T) {
	ns := Namespace(time.Now())
	not := mustFunc(t, ns, "not")

	v, err := not([]value.Value{value.Bool(true)})
	require.NoError(t, err)
	assert.Equal(t, value.Bool(false), v)

	v, err = not([]value.Value{value.NullValue})
	require.NoError(t, err)
	assert.True(t, value.IsNull(v))
}

func TestIsnullNotnull(t *testing.T) {
	ns := Namespace(time.Now())
	isnull := mustFunc(t, ns, "isnull")
	notnull := mustFunc(t, ns, "notnull")

	v, err := isnull([]value.Value{value.NullValue})
	require.NoError(t, err)
	assert.Equal(t, value.Bool(true), v)

	v, err = isnull([]value.Value{value.Int(1)})
	require.NoError(t, err)
	assert.Equal(t, value.Bool(false), v)

	v, err = notnull([]value.Value{value.Int(1)})
	require.NoError(t, err)
	assert.Equal(t, value.Bool(true), v)
}

func TestAgeComputesIntervalFromCurrentTime(t *testing.T) {
	now := time.Now()
	ns := Namespace(now)
	age := mustFunc(t, ns, "age")
	v, err := age([]value.Value{value.Timestamp(now.Add(-2 * time.Hour))})
	require.NoError(t, err)
	iv, ok := v.(value.Interval)
	require.True(t, ok)
	assert.InDelta(t, 7200, int64(iv), 2)
}

func TestArithmeticIntStaysInt(t *testing.T) {
	ns := Namespace(time.Now())
	plus := mustFunc(t, ns, "+")
	v, err := plus([]value.Value{value.Int(2), value.Int(3)})
	require.NoError(t, err)
	assert.Equal(t, value.Int(5), v)
}

func TestArithmeticPromotesToFloat(t *testing.T) {
	ns := Namespace(time.Now())
	plus := mustFunc(t, ns, "+")
	v, err := plus([]value.Value{value.Int(2), value.Float(0.5)})
	require.NoError(t, err)
	assert.Equal(t, value.Float(2.5), v)
}

func TestArithmeticPropagatesNull(t *testing.T) {
	ns := Namespace(time.Now())
	plus := mustFunc(t, ns, "+")
	v, err := plus([]value.Value{value.Int(2), value.NullValue})
	require.NoError(t, err)
	assert.True(t, value.IsNull(v))
}

func TestDivisionByZeroErrors(t *testing.T) {
	ns := Namespace(time.Now())
	div := mustFunc(t, ns, "/")
	_, err := div([]value.Value{value.Int(1), value.Int(0)})
	assert.Error(t, err)
}

func TestComparisonOperators(t *testing.T) {
	ns := Namespace(time.Now())
	lt := mustFunc(t, ns, "<")
	v, err := lt([]value.Value{value.Int(1), value.Int(2)})
	require.NoError(t, err)
	assert.Equal(t, value.Bool(true), v)
}

func TestInOperator(t *testing.T) {
	ns := Namespace(time.Now())
	in := mustFunc(t, ns, "in")

	v, err := in([]value.Value{value.NewStr("go"), value.NewStr("go"), value.NewStr("py")})
	require.NoError(t, err)
	assert.Equal(t, value.Bool(true), v)

	v, err = in([]value.Value{value.NewStr("rb"), value.NewStr("go"), value.NewStr("py")})
	require.NoError(t, err)
	assert.Equal(t, value.Bool(false), v)
}

func TestLikeWildcards(t *testing.T) {
	ns := Namespace(time.Now())
	like := mustFunc(t, ns, "like")

	v, err := like([]value.Value{value.NewStr("main.go"), value.NewStr("%.go")})
	require.NoError(t, err)
	assert.Equal(t, value.Bool(true), v)

	v, err = like([]value.Value{value.NewStr("main.py"), value.NewStr("%.go")})
	require.NoError(t, err)
	assert.Equal(t, value.Bool(false), v)
}

func TestIlikeIsCaseInsensitive(t *testing.T) {
	ns := Namespace(time.Now())
	ilike := mustFunc(t, ns, "ilike")
	v, err := ilike([]value.Value{value.NewStr("MAIN.GO"), value.NewStr("%.go")})
	require.NoError(t, err)
	assert.Equal(t, value.Bool(true), v)
}

func TestLikeOverListMatchesAnyElement(t *testing.T) {
	ns := Namespace(time.Now())
	like := mustFunc(t, ns, "like")
	v, err := like([]value.Value{
		value.List{value.NewStr("package main"), value.NewStr("func main() {}")},
		value.NewStr("%main()%"),
	})
	require.NoError(t, err)
	assert.Equal(t, value.Bool(true), v)
}

func TestContainsSubstring(t *testing.T) {
	ns := Namespace(time.Now())
	contains := mustFunc(t, ns, "contains")
	v, err := contains([]value.Value{value.NewStr("hello world"), value.NewStr("wor")})
	require.NoError(t, err)
	assert.Equal(t, value.Bool(true), v)
}

func TestAggregateFactoriesAreRegistered(t *testing.T) {
	ns := Namespace(time.Now())
	_, ok := ns.Get("count")
	assert.True(t, ok)
	_, ok = ns.Get("sum")
	assert.True(t, ok)
}

func TestConstants(t *testing.T) {
	ns := Namespace(time.Now())
	n, ok := ns.Get("null")
	require.True(t, ok)
	assert.True(t, value.IsNull(n.(value.Value)))

	_, ok = ns.Get("current_time")
	assert.True(t, ok)
	_, ok = ns.Get("current_date")
	assert.True(t, ok)
}

func TestNameLookupIsCaseInsensitive(t *testing.T) {
	ns := Namespace(time.Now())
	_, ok := ns.Get("LOWER")
	assert.True(t, ok)
}
