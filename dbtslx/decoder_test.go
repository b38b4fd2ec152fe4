package dbtslx

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func monthStart(month int) time.Time {
	return time.Date(2024, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
}

func scenarioJsonPayload(numRows int) []byte {
	var data bytes.Buffer
	data.WriteString(`{"schema":{"fields":[` +
		`{"name":"index","type":"integer"},` +
		`{"name":"ORDER_DATE__MONTH","type":"datetime"},` +
		`{"name":"REVENUE","type":"number"}],` +
		`"primaryKey":["index"]},"data":[`)
	for i := 0; i < numRows; i++ {
		if i > 0 {
			data.WriteString(",")
		}
		fmt.Fprintf(&data, `{"index":%d,"ORDER_DATE__MONTH":"%s","REVENUE":%0.1f}`,
			i, monthStart(i+1).Format("2006-01-02T15:04:05.000"), float64(i)*10.5)
	}
	data.WriteString(`]}`)
	return data.Bytes()
}

func scenarioArrowPayload(t *testing.T, numRows int) []byte {
	alloc := memory.NewGoAllocator()
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "ORDER_DATE__MONTH", Type: &arrow.TimestampType{Unit: arrow.Microsecond, TimeZone: "UTC"}},
		{Name: "REVENUE", Type: arrow.PrimitiveTypes.Float64},
	}, nil)

	builder := array.NewRecordBuilder(alloc, schema)
	defer builder.Release()

	for i := 0; i < numRows; i++ {
		builder.Field(0).(*array.TimestampBuilder).Append(arrow.Timestamp(monthStart(i + 1).UnixMicro()))
		builder.Field(1).(*array.Float64Builder).Append(float64(i) * 10.5)
	}

	record := builder.NewRecord()
	defer record.Release()

	var buf bytes.Buffer
	writer := ipc.NewWriter(&buf, ipc.WithSchema(schema), ipc.WithAllocator(alloc))
	require.NoError(t, writer.Write(record))
	require.NoError(t, writer.Close())

	return []byte(base64.StdEncoding.EncodeToString(buf.Bytes()))
}

func TestDecodeJsonResult(t *testing.T) {
	rs, err := DecodeJsonResult(scenarioJsonPayload(10))
	require.NoError(t, err)

	require.Equal(t, []Column{
		{Name: "order_date__month", Type: ColumnTypeTimestamp},
		{Name: "revenue", Type: ColumnTypeFloat},
	}, rs.Columns)
	require.Len(t, rs.Rows, 10)

	assert.Equal(t, monthStart(1), rs.Rows[0][0])
	assert.Equal(t, 0.0, rs.Rows[0][1])
	assert.Equal(t, monthStart(10), rs.Rows[9][0])
	assert.Equal(t, 94.5, rs.Rows[9][1])
}

func TestDecodeJsonResultEmpty(t *testing.T) {
	// Zero rows is a valid, successful result.
	rs, err := DecodeJsonResult(scenarioJsonPayload(0))
	require.NoError(t, err)
	require.Len(t, rs.Columns, 2)
	assert.Empty(t, rs.Rows)
}

func TestDecodeJsonResultTypedValues(t *testing.T) {
	payload := []byte(`{
		"schema":{"fields":[
			{"name":"LABEL","type":"string"},
			{"name":"TOTAL","type":"integer"},
			{"name":"ACTIVE","type":"boolean"}
		],"primaryKey":[]},
		"data":[{"LABEL":"a","TOTAL":12,"ACTIVE":true},{"LABEL":null,"TOTAL":null,"ACTIVE":false}]
	}`)

	rs, err := DecodeJsonResult(payload)
	require.NoError(t, err)

	assert.Equal(t, []interface{}{"a", int64(12), true}, rs.Rows[0])
	assert.Equal(t, []interface{}{nil, nil, false}, rs.Rows[1])
}

func TestDecodeJsonResultMalformed(t *testing.T) {
	_, err := DecodeJsonResult([]byte(`not json`))
	require.Error(t, err)

	_, err = DecodeJsonResult([]byte(`{"data":[]}`))
	require.Error(t, err)
}

func TestDecodeArrowResult(t *testing.T) {
	rs, err := DecodeArrowResult(scenarioArrowPayload(t, 10))
	require.NoError(t, err)

	require.Equal(t, []Column{
		{Name: "order_date__month", Type: ColumnTypeTimestamp},
		{Name: "revenue", Type: ColumnTypeFloat},
	}, rs.Columns)
	require.Len(t, rs.Rows, 10)
}

func TestDecodeFormatTransparency(t *testing.T) {
	// Decoding the columnar payload and the JSON payload of the same
	// logical rows must produce equal ResultSets.
	fromJson, err := DecodeJsonResult(scenarioJsonPayload(10))
	require.NoError(t, err)

	fromArrow, err := DecodeArrowResult(scenarioArrowPayload(t, 10))
	require.NoError(t, err)

	require.Equal(t, fromJson.Columns, fromArrow.Columns)
	require.Len(t, fromArrow.Rows, len(fromJson.Rows))
	for i := range fromJson.Rows {
		jsonTs := fromJson.Rows[i][0].(time.Time)
		arrowTs := fromArrow.Rows[i][0].(time.Time)
		assert.True(t, jsonTs.Equal(arrowTs), "row %d timestamps differ", i)
		assert.Equal(t, fromJson.Rows[i][1], fromArrow.Rows[i][1])
	}
}

func TestDecodeArrowResultMalformed(t *testing.T) {
	_, err := DecodeArrowResult([]byte("!!not-base64!!"))
	require.Error(t, err)

	_, err = DecodeArrowResult([]byte(base64.StdEncoding.EncodeToString([]byte("not arrow"))))
	require.Error(t, err)
}

func TestResultSetAppendPage(t *testing.T) {
	first, err := DecodeJsonResult(scenarioJsonPayload(3))
	require.NoError(t, err)
	second, err := DecodeJsonResult(scenarioJsonPayload(2))
	require.NoError(t, err)

	require.NoError(t, first.AppendPage(second))
	assert.Len(t, first.Rows, 5)

	mismatched := &ResultSet{Columns: []Column{{Name: "other", Type: ColumnTypeString}}}
	require.Error(t, first.AppendPage(mismatched))
}
