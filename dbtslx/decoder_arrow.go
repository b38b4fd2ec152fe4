package dbtslx

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// DecodeArrowResult decodes a base64-encoded Arrow IPC stream into the same
// ResultSet shape the JSON path produces.
func DecodeArrowResult(payload []byte) (*ResultSet, error) {
	raw := make([]byte, base64.StdEncoding.DecodedLen(len(payload)))
	n, err := base64.StdEncoding.Decode(raw, bytes.TrimSpace(payload))
	if err != nil {
		return nil, fmt.Errorf("malformed arrow result payload: %w", err)
	}

	reader, err := ipc.NewReader(bytes.NewReader(raw[:n]),
		ipc.WithAllocator(memory.DefaultAllocator))
	if err != nil {
		return nil, fmt.Errorf("malformed arrow result stream: %w", err)
	}
	defer reader.Release()

	schema := reader.Schema()
	columns := make([]Column, schema.NumFields())
	for i := 0; i < schema.NumFields(); i++ {
		field := schema.Field(i)
		columns[i] = Column{
			Name: strings.ToLower(field.Name),
			Type: columnTypeFromArrow(field.Type),
		}
	}

	var rows [][]interface{}
	for reader.Next() {
		record := reader.Record()
		numRows := int(record.NumRows())
		for rowIdx := 0; rowIdx < numRows; rowIdx++ {
			row := make([]interface{}, len(columns))
			for colIdx := range columns {
				row[colIdx] = arrowValue(record.Column(colIdx), rowIdx)
			}
			rows = append(rows, row)
		}
	}
	if err := reader.Err(); err != nil {
		return nil, fmt.Errorf("reading arrow result stream: %w", err)
	}

	if rows == nil {
		rows = [][]interface{}{}
	}

	return &ResultSet{
		Columns: columns,
		Rows:    rows,
	}, nil
}

func columnTypeFromArrow(dt arrow.DataType) ColumnType {
	switch dt.ID() {
	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64,
		arrow.UINT8, arrow.UINT16, arrow.UINT32, arrow.UINT64:
		return ColumnTypeInteger
	case arrow.FLOAT32, arrow.FLOAT64, arrow.DECIMAL128, arrow.DECIMAL256:
		return ColumnTypeFloat
	case arrow.BOOL:
		return ColumnTypeBoolean
	case arrow.TIMESTAMP, arrow.DATE32, arrow.DATE64:
		return ColumnTypeTimestamp
	default:
		return ColumnTypeString
	}
}

func arrowValue(col arrow.Array, i int) interface{} {
	if col.IsNull(i) {
		return nil
	}

	switch arr := col.(type) {
	case *array.String:
		return arr.Value(i)
	case *array.LargeString:
		return arr.Value(i)
	case *array.Int8:
		return int64(arr.Value(i))
	case *array.Int16:
		return int64(arr.Value(i))
	case *array.Int32:
		return int64(arr.Value(i))
	case *array.Int64:
		return arr.Value(i)
	case *array.Uint8:
		return int64(arr.Value(i))
	case *array.Uint16:
		return int64(arr.Value(i))
	case *array.Uint32:
		return int64(arr.Value(i))
	case *array.Uint64:
		return int64(arr.Value(i))
	case *array.Float32:
		return float64(arr.Value(i))
	case *array.Float64:
		return arr.Value(i)
	case *array.Decimal128:
		return arr.Value(i).ToFloat64(arr.DataType().(*arrow.Decimal128Type).Scale)
	case *array.Boolean:
		return arr.Value(i)
	case *array.Timestamp:
		return arr.Value(i).ToTime(arr.DataType().(*arrow.TimestampType).Unit).UTC()
	case *array.Date32:
		return arr.Value(i).ToTime().UTC()
	case *array.Date64:
		return arr.Value(i).ToTime().UTC()
	default:
		return col.ValueStr(i)
	}
}
