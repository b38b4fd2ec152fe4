package dbtslx

import (
	"fmt"
	"strconv"
	"strings"
)

type FieldRefKind string

const (
	FieldRefDimension FieldRefKind = "dimension"
	FieldRefEntity    FieldRefKind = "entity"
	FieldRefMetric    FieldRefKind = "metric"
)

// FieldRef names a catalog object inside a filter or ordering clause. Grain
// is only meaningful on time dimensions.
type FieldRef struct {
	Kind  FieldRefKind
	Name  string
	Grain TimeGranularity
}

func DimensionField(name string) FieldRef {
	return FieldRef{Kind: FieldRefDimension, Name: name}
}

func TimeDimensionField(name string, grain TimeGranularity) FieldRef {
	return FieldRef{Kind: FieldRefDimension, Name: name, Grain: grain}
}

func EntityField(name string) FieldRef {
	return FieldRef{Kind: FieldRefEntity, Name: name}
}

// template renders the gateway's object-reference template for the field.
func (f FieldRef) template() string {
	switch f.Kind {
	case FieldRefEntity:
		return fmt.Sprintf("{{ Entity('%s') }}", f.Name)
	case FieldRefMetric:
		return fmt.Sprintf("{{ Metric('%s') }}", f.Name)
	default:
		if f.Grain != TimeGranularityUnset {
			return fmt.Sprintf("{{ TimeDimension('%s', '%s') }}",
				f.Name, strings.ToLower(string(f.Grain)))
		}
		return fmt.Sprintf("{{ Dimension('%s') }}", f.Name)
	}
}

type CompareOp string

const (
	CompareOpEq  CompareOp = "="
	CompareOpNeq CompareOp = "!="
	CompareOpGt  CompareOp = ">"
	CompareOpGte CompareOp = ">="
	CompareOpLt  CompareOp = "<"
	CompareOpLte CompareOp = "<="
)

// FilterValue is a literal usable on the right-hand side of a comparison.
type FilterValue interface {
	sqlLiteral() string
}

type StringValue string

func (v StringValue) sqlLiteral() string {
	return "'" + strings.ReplaceAll(string(v), "'", "''") + "'"
}

type NumberValue float64

func (v NumberValue) sqlLiteral() string {
	return strconv.FormatFloat(float64(v), 'g', -1, 64)
}

type IntValue int64

func (v IntValue) sqlLiteral() string {
	return strconv.FormatInt(int64(v), 10)
}

type BoolValue bool

func (v BoolValue) sqlLiteral() string {
	if v {
		return "TRUE"
	}
	return "FALSE"
}

// Filter expression precedence, used to decide which subexpressions need
// parenthesization when serialized. AND binds tighter than OR.
const (
	precOr = iota + 1
	precAnd
	precLeaf
)

// FilterExpr is a boolean expression over dimension/entity/metric values.
// It is compiled to the gateway's templated-SQL filter grammar and never
// evaluated locally.
type FilterExpr interface {
	precedence() int
	serializeTo(sb *strings.Builder)
	walkFields(visit func(FieldRef))
}

type Comparison struct {
	Field FieldRef
	Op    CompareOp
	Value FilterValue
}

func (e Comparison) precedence() int { return precLeaf }

func (e Comparison) serializeTo(sb *strings.Builder) {
	sb.WriteString(e.Field.template())
	sb.WriteString(" ")
	sb.WriteString(string(e.Op))
	sb.WriteString(" ")
	sb.WriteString(e.Value.sqlLiteral())
}

func (e Comparison) walkFields(visit func(FieldRef)) { visit(e.Field) }

type SetMembership struct {
	Field  FieldRef
	Values []FilterValue
	Negate bool
}

func (e SetMembership) precedence() int { return precLeaf }

func (e SetMembership) serializeTo(sb *strings.Builder) {
	sb.WriteString(e.Field.template())
	if e.Negate {
		sb.WriteString(" NOT IN (")
	} else {
		sb.WriteString(" IN (")
	}
	for i, val := range e.Values {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(val.sqlLiteral())
	}
	sb.WriteString(")")
}

func (e SetMembership) walkFields(visit func(FieldRef)) { visit(e.Field) }

type AndExpr struct {
	Exprs []FilterExpr
}

func (e AndExpr) precedence() int { return precAnd }

func (e AndExpr) serializeTo(sb *strings.Builder) {
	serializeJoined(sb, e.Exprs, " AND ", precAnd)
}

func (e AndExpr) walkFields(visit func(FieldRef)) {
	for _, sub := range e.Exprs {
		sub.walkFields(visit)
	}
}

type OrExpr struct {
	Exprs []FilterExpr
}

func (e OrExpr) precedence() int { return precOr }

func (e OrExpr) serializeTo(sb *strings.Builder) {
	serializeJoined(sb, e.Exprs, " OR ", precOr)
}

func (e OrExpr) walkFields(visit func(FieldRef)) {
	for _, sub := range e.Exprs {
		sub.walkFields(visit)
	}
}

func serializeJoined(sb *strings.Builder, exprs []FilterExpr, sep string, parentPrec int) {
	for i, sub := range exprs {
		if i > 0 {
			sb.WriteString(sep)
		}
		if sub.precedence() < parentPrec {
			sb.WriteString("(")
			sub.serializeTo(sb)
			sb.WriteString(")")
		} else {
			sub.serializeTo(sb)
		}
	}
}

// SerializeFilter emits the filter in the gateway grammar. The emitted text
// preserves the tree's AND/OR structure with explicit parentheses so the
// consumer never depends on its own default precedence.
func SerializeFilter(expr FilterExpr) string {
	var sb strings.Builder
	expr.serializeTo(&sb)
	return sb.String()
}
