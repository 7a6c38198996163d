package parser

import (
	"testing"

	"github.com/alexandershov/lsql/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string) *ast.Node {
	t.Helper()
	q, err := Parse(src)
	require.NoError(t, err, src)
	return q
}

func TestSelectStarFromWhere(t *testing.T) {
	q := parse(t, "select * from '.' where size > 10")
	assert.Equal(t, ast.SelectStar, q.SelectClause().Kind)
	require.NotNil(t, q.WhereClause())
	assert.Equal(t, ast.Function, q.WhereClause().Kind)
	assert.Equal(t, ">", q.WhereClause().Func)
}

func TestSelectListAndGroupHaving(t *testing.T) {
	q := parse(t, "select ext, count(*) from '.' group by ext having count(*) > 1")
	require.Equal(t, ast.Select, q.SelectClause().Kind)
	require.Len(t, q.SelectClause().Children, 2)
	assert.Equal(t, ast.Function, q.SelectClause().Children[1].Kind)
	assert.Equal(t, "count", q.SelectClause().Children[1].Func)
	require.Len(t, q.SelectClause().Children[1].Children, 1)
	assert.Equal(t, ast.ValueNode, q.SelectClause().Children[1].Children[0].Kind)

	require.NotNil(t, q.GroupClause())
	require.Len(t, q.GroupClause().Children, 1)

	require.NotNil(t, q.HavingClause())
	assert.Equal(t, ast.Function, q.HavingClause().Children[0].Kind)
}

func TestOrderByAscDesc(t *testing.T) {
	q := parse(t, "select * from '.' order by size desc, name asc")
	require.NotNil(t, q.OrderClauseN())
	require.Len(t, q.OrderClauseN().Children, 2)
	assert.Equal(t, ast.Desc, q.OrderClauseN().Children[0].Dir)
	assert.Equal(t, ast.Asc, q.OrderClauseN().Children[1].Dir)
}

func TestOrderByDefaultsToAsc(t *testing.T) {
	q := parse(t, "select * from '.' order by size")
	assert.Equal(t, ast.Asc, q.OrderClauseN().Children[0].Dir)
}

func TestLimitOffset(t *testing.T) {
	q := parse(t, "select * from '.' limit 10 offset 5")
	require.NotNil(t, q.LimitClause())
	require.NotNil(t, q.OffsetClause())
}

func TestOperatorPrecedence(t *testing.T) {
	// 1 + 2 * 3 should group as 1 + (2 * 3)
	q := parse(t, "select 1 + 2 * 3 from '.'")
	top := q.SelectClause().Children[0]
	assert.Equal(t, "+", top.Func)
	assert.Equal(t, "*", top.Children[1].Func)
}

func TestPowerIsRightAssociative(t *testing.T) {
	// 2 ^ 3 ^ 2 should group as 2 ^ (3 ^ 2)
	q := parse(t, "select 2 ^ 3 ^ 2 from '.'")
	top := q.SelectClause().Children[0]
	assert.Equal(t, "^", top.Func)
	assert.Equal(t, ast.ValueNode, top.Children[0].Kind)
	assert.Equal(t, "^", top.Children[1].Func)
}

func TestUnaryMinusBindsTighterThanPower(t *testing.T) {
	// -2 ^ 2 should group as (-2) ^ 2, not -(2 ^ 2)
	q := parse(t, "select -2 ^ 2 from '.'")
	top := q.SelectClause().Children[0]
	assert.Equal(t, "^", top.Func)
	assert.Equal(t, "negate", top.Children[0].Func)
}

func TestAndOrPrecedence(t *testing.T) {
	// a or b and c should group as a or (b and c)
	q := parse(t, "select * from '.' where a or b and c")
	where := q.WhereClause()
	assert.Equal(t, ast.Or, where.Kind)
	assert.Equal(t, ast.And, where.Children[1].Kind)
}

func TestBetween(t *testing.T) {
	q := parse(t, "select * from '.' where size between 10 and 100")
	where := q.WhereClause()
	require.Equal(t, ast.Between, where.Kind)
	require.Len(t, where.Children, 3)
}

func TestBetweenStopsAtAndNotSwallowingIt(t *testing.T) {
	q := parse(t, "select * from '.' where size between 10 and 100 and name = 'x'")
	where := q.WhereClause()
	require.Equal(t, ast.And, where.Kind)
	assert.Equal(t, ast.Between, where.Children[0].Kind)
}

func TestIn(t *testing.T) {
	q := parse(t, "select * from '.' where ext in ('go', 'py')")
	where := q.WhereClause()
	require.Equal(t, ast.Function, where.Kind)
	assert.Equal(t, "in", where.Func)
	require.Len(t, where.Children, 3)
}

func TestNotIn(t *testing.T) {
	q := parse(t, "select * from '.' where ext not in ('go')")
	where := q.WhereClause()
	require.Equal(t, ast.Function, where.Kind)
	assert.Equal(t, "not", where.Func)
	assert.Equal(t, "in", where.Children[0].Func)
}

func TestUnaryNot(t *testing.T) {
	q := parse(t, "select * from '.' where not is_exec")
	where := q.WhereClause()
	assert.Equal(t, "not", where.Func)
}

func TestIsNullAndNotnullKeyword(t *testing.T) {
	q := parse(t, "select * from '.' where mtime is null")
	assert.Equal(t, "isnull", q.WhereClause().Func)

	q2 := parse(t, "select * from '.' where mtime notnull")
	assert.Equal(t, "notnull", q2.WhereClause().Func)
}

func TestGroupedExpression(t *testing.T) {
	q := parse(t, "select (1 + 2) * 3 from '.'")
	top := q.SelectClause().Children[0]
	assert.Equal(t, "*", top.Func)
	assert.Equal(t, "+", top.Children[0].Func)
}

func TestFunctionCall(t *testing.T) {
	q := parse(t, "select lower(name) from '.'")
	top := q.SelectClause().Children[0]
	assert.Equal(t, ast.Function, top.Kind)
	assert.Equal(t, "lower", top.Func)
}

func TestEmptyParensIsError(t *testing.T) {
	_, err := Parse("select () from '.'")
	assert.Error(t, err)
}

func TestTrailingTokensIsError(t *testing.T) {
	_, err := Parse("select * from '.' where a = 1 b = 2")
	assert.Error(t, err)
}

func TestUnimplementedKeywordReportsReserved(t *testing.T) {
	_, err := Parse("delete from '.'")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reserved keyword")
}
