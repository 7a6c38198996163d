package agg

import (
	"testing"

	"github.com/alexandershov/lsql/internal/value"
	"github.com/stretchr/testify/assert"
)

func feed(acc Accumulator, vs ...value.Value) value.Value {
	for _, v := range vs {
		acc.Feed(v)
	}
	return acc.Value()
}

func TestCountCountsNulls(t *testing.T) {
	got := feed(Factories["count"](), value.Int(1), value.NullValue, value.Int(1))
	assert.Equal(t, value.Int(3), got)
}

func TestCountEmptyGroupIsZero(t *testing.T) {
	got := feed(Factories["count"]())
	assert.Equal(t, value.Int(0), got)
}

func TestSumSkipsNullsAndStaysInt(t *testing.T) {
	got := feed(Factories["sum"](), value.Int(2), value.NullValue, value.Int(3))
	assert.Equal(t, value.Int(5), got)
}

func TestSumPromotesToFloat(t *testing.T) {
	got := feed(Factories["sum"](), value.Int(2), value.Float(1.5))
	assert.Equal(t, value.Float(3.5), got)
}

func TestSumEmptyGroupIsZero(t *testing.T) {
	got := feed(Factories["sum"]())
	assert.Equal(t, value.Int(0), got)
}

func TestMinMaxSkipNulls(t *testing.T) {
	min := feed(Factories["min"](), value.Int(3), value.NullValue, value.Int(1), value.Int(2))
	max := feed(Factories["max"](), value.Int(3), value.NullValue, value.Int(1), value.Int(2))
	assert.Equal(t, value.Int(1), min)
	assert.Equal(t, value.Int(3), max)
}

func TestMinMaxEmptyGroupIsNull(t *testing.T) {
	assert.True(t, value.IsNull(feed(Factories["min"]())))
	assert.True(t, value.IsNull(feed(Factories["max"]())))
}

func TestAvgSkipsNulls(t *testing.T) {
	got := feed(Factories["avg"](), value.Int(1), value.NullValue, value.Int(3))
	assert.Equal(t, value.Float(2), got)
}

func TestAvgEmptyGroupIsNull(t *testing.T) {
	got := feed(Factories["avg"]())
	assert.True(t, value.IsNull(got))
}

func TestAvgAllNullGroupIsNull(t *testing.T) {
	got := feed(Factories["avg"](), value.NullValue, value.NullValue)
	assert.True(t, value.IsNull(got))
}
