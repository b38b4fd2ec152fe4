package dbtslx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSerializeComparison(t *testing.T) {
	out := SerializeFilter(Comparison{
		Field: DimensionField("order_status"),
		Op:    CompareOpEq,
		Value: StringValue("completed"),
	})
	assert.Equal(t, `{{ Dimension('order_status') }} = 'completed'`, out)
}

func TestSerializeTimeDimensionAndEntity(t *testing.T) {
	out := SerializeFilter(Comparison{
		Field: TimeDimensionField("metric_time", TimeGranularityMonth),
		Op:    CompareOpGte,
		Value: StringValue("2024-01-01"),
	})
	assert.Equal(t, `{{ TimeDimension('metric_time', 'month') }} >= '2024-01-01'`, out)

	out = SerializeFilter(Comparison{
		Field: EntityField("customer"),
		Op:    CompareOpNeq,
		Value: IntValue(42),
	})
	assert.Equal(t, `{{ Entity('customer') }} != 42`, out)
}

func TestSerializeAndWithSetMembership(t *testing.T) {
	// AND joined with IN needs no extra parentheses; the leaves bind
	// tighter than the conjunction.
	out := SerializeFilter(AndExpr{Exprs: []FilterExpr{
		Comparison{Field: DimensionField("order_status"), Op: CompareOpEq, Value: StringValue("completed")},
		SetMembership{Field: DimensionField("region"), Values: []FilterValue{StringValue("US"), StringValue("EU")}},
	}})
	assert.Equal(t,
		`{{ Dimension('order_status') }} = 'completed' AND {{ Dimension('region') }} IN ('US', 'EU')`,
		out)
}

func TestSerializeOrUnderAndParenthesized(t *testing.T) {
	out := SerializeFilter(AndExpr{Exprs: []FilterExpr{
		OrExpr{Exprs: []FilterExpr{
			Comparison{Field: DimensionField("region"), Op: CompareOpEq, Value: StringValue("US")},
			Comparison{Field: DimensionField("region"), Op: CompareOpEq, Value: StringValue("EU")},
		}},
		Comparison{Field: DimensionField("order_status"), Op: CompareOpEq, Value: StringValue("completed")},
	}})
	assert.Equal(t,
		`({{ Dimension('region') }} = 'US' OR {{ Dimension('region') }} = 'EU') AND {{ Dimension('order_status') }} = 'completed'`,
		out)
}

func TestSerializeAndUnderOrNotParenthesized(t *testing.T) {
	out := SerializeFilter(OrExpr{Exprs: []FilterExpr{
		AndExpr{Exprs: []FilterExpr{
			Comparison{Field: DimensionField("region"), Op: CompareOpEq, Value: StringValue("US")},
			Comparison{Field: DimensionField("order_status"), Op: CompareOpEq, Value: StringValue("completed")},
		}},
		Comparison{Field: DimensionField("order_status"), Op: CompareOpEq, Value: StringValue("returned")},
	}})
	assert.Equal(t,
		`{{ Dimension('region') }} = 'US' AND {{ Dimension('order_status') }} = 'completed' OR {{ Dimension('order_status') }} = 'returned'`,
		out)
}

func TestSerializeNotInAndLiterals(t *testing.T) {
	out := SerializeFilter(SetMembership{
		Field:  DimensionField("region"),
		Values: []FilterValue{StringValue("US")},
		Negate: true,
	})
	assert.Equal(t, `{{ Dimension('region') }} NOT IN ('US')`, out)

	assert.Equal(t, `'it''s'`, StringValue("it's").sqlLiteral())
	assert.Equal(t, `1.5`, NumberValue(1.5).sqlLiteral())
	assert.Equal(t, `TRUE`, BoolValue(true).sqlLiteral())
	assert.Equal(t, `FALSE`, BoolValue(false).sqlLiteral())
}
