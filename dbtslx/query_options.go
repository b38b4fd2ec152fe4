package dbtslx

import (
	"encoding/json"
)

// ResultFormat selects the wire encoding of fetched result pages.
type ResultFormat string

const (
	ResultFormatJson  ResultFormat = "JSON"
	ResultFormatArrow ResultFormat = "ARROW"
)

type MetricInput struct {
	Name string `json:"name"`
}

type GroupByInput struct {
	Name  string          `json:"name"`
	Grain TimeGranularity `json:"grain,omitempty"`
}

type OrderByInput struct {
	Metric     *MetricInput  `json:"metric,omitempty"`
	GroupBy    *GroupByInput `json:"groupBy,omitempty"`
	Descending bool          `json:"descending,omitempty"`
}

type WhereInput struct {
	Sql string `json:"sql"`
}

// queryParamsJson is the variable payload of the createQuery mutation,
// minus the environment id which is bound at submission time.
type queryParamsJson struct {
	Metrics    []MetricInput  `json:"metrics,omitempty"`
	GroupBy    []GroupByInput `json:"groupBy,omitempty"`
	Where      []WhereInput   `json:"where,omitempty"`
	OrderBy    []OrderByInput `json:"orderBy,omitempty"`
	Limit      *int64         `json:"limit,omitempty"`
	SavedQuery string         `json:"savedQuery,omitempty"`
}

func (p queryParamsJson) encodeToJson() (json.RawMessage, error) {
	return json.Marshal(p)
}

type createQueryVariablesJson struct {
	EnvironmentId int64 `json:"environmentId"`
	queryParamsJson
}
