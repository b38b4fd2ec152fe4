package dbtslx

import (
	"fmt"
)

type ColumnType string

const (
	ColumnTypeString    ColumnType = "string"
	ColumnTypeInteger   ColumnType = "integer"
	ColumnTypeFloat     ColumnType = "float"
	ColumnTypeBoolean   ColumnType = "boolean"
	ColumnTypeTimestamp ColumnType = "timestamp"
)

type Column struct {
	Name string
	Type ColumnType
}

// RawResultPage is one page of the gateway's result payload, still in its
// wire format.
type RawResultPage struct {
	Format  ResultFormat
	Payload []byte
}

// ResultSet is the uniform tabular result produced by decoding either wire
// format. Rows are fixed-arity and aligned to Columns; values are string,
// int64, float64, bool, time.Time or nil. Immutable once constructed.
type ResultSet struct {
	Columns []Column
	Rows    [][]interface{}
}

// AppendPage concatenates the rows of a subsequent page. Pages of one query
// always share a schema; a mismatch means the payloads were mixed up.
func (r *ResultSet) AppendPage(page *ResultSet) error {
	if len(page.Columns) != len(r.Columns) {
		return fmt.Errorf("result page has %d columns, expected %d",
			len(page.Columns), len(r.Columns))
	}
	for i, col := range page.Columns {
		if col != r.Columns[i] {
			return fmt.Errorf("result page column %d is %s %s, expected %s %s",
				i, col.Name, col.Type, r.Columns[i].Name, r.Columns[i].Type)
		}
	}

	r.Rows = append(r.Rows, page.Rows...)
	return nil
}

// DecodeResult converts a raw payload into a ResultSet. Consumers never see
// the wire format: both paths produce the identical shape.
func DecodeResult(page *RawResultPage) (*ResultSet, error) {
	switch page.Format {
	case ResultFormatArrow:
		return DecodeArrowResult(page.Payload)
	case ResultFormatJson:
		return DecodeJsonResult(page.Payload)
	default:
		return nil, fmt.Errorf("unsupported result format %q", page.Format)
	}
}
