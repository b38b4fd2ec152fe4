package dbtslx

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"golang.org/x/exp/slices"
)

type jsonTableFieldJson struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type jsonTableSchemaJson struct {
	Fields     []jsonTableFieldJson `json:"fields"`
	PrimaryKey []string             `json:"primaryKey"`
}

type jsonTablePayloadJson struct {
	Schema jsonTableSchemaJson          `json:"schema"`
	Data   []map[string]json.RawMessage `json:"data"`
}

// DecodeJsonResult decodes the gateway's table-oriented JSON payload.
// Column types come from the embedded schema, never from value sniffing.
// Synthetic index columns listed in the schema's primary key are dropped.
func DecodeJsonResult(payload []byte) (*ResultSet, error) {
	var tableJson jsonTablePayloadJson
	decoder := json.NewDecoder(bytes.NewReader(payload))
	decoder.UseNumber()
	if err := decoder.Decode(&tableJson); err != nil {
		return nil, fmt.Errorf("malformed json result payload: %w", err)
	}

	if len(tableJson.Schema.Fields) == 0 {
		return nil, fmt.Errorf("json result payload has no schema")
	}

	var columns []Column
	var fieldNames []string
	for _, field := range tableJson.Schema.Fields {
		if slices.Contains(tableJson.Schema.PrimaryKey, field.Name) {
			continue
		}
		columns = append(columns, Column{
			Name: strings.ToLower(field.Name),
			Type: columnTypeFromJsonSchema(field.Type),
		})
		fieldNames = append(fieldNames, field.Name)
	}

	rows := make([][]interface{}, 0, len(tableJson.Data))
	for _, rowJson := range tableJson.Data {
		row := make([]interface{}, len(columns))
		for i, fieldName := range fieldNames {
			value, err := decodeJsonValue(rowJson[fieldName], columns[i].Type)
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", columns[i].Name, err)
			}
			row[i] = value
		}
		rows = append(rows, row)
	}

	return &ResultSet{
		Columns: columns,
		Rows:    rows,
	}, nil
}

func columnTypeFromJsonSchema(fieldType string) ColumnType {
	switch fieldType {
	case "integer":
		return ColumnTypeInteger
	case "number":
		return ColumnTypeFloat
	case "boolean":
		return ColumnTypeBoolean
	case "datetime":
		return ColumnTypeTimestamp
	default:
		return ColumnTypeString
	}
}

// jsonTimeLayouts covers the timestamp spellings the gateway emits for
// datetime fields.
var jsonTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func decodeJsonValue(raw json.RawMessage, colType ColumnType) (interface{}, error) {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	switch colType {
	case ColumnTypeInteger:
		var num json.Number
		if err := json.Unmarshal(raw, &num); err != nil {
			return nil, err
		}
		return num.Int64()

	case ColumnTypeFloat:
		var num json.Number
		if err := json.Unmarshal(raw, &num); err != nil {
			return nil, err
		}
		return num.Float64()

	case ColumnTypeBoolean:
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, err
		}
		return b, nil

	case ColumnTypeTimestamp:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		for _, layout := range jsonTimeLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts.UTC(), nil
			}
		}
		return nil, fmt.Errorf("unparseable timestamp %q", s)

	default:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return s, nil
	}
}
