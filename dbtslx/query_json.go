package dbtslx

type metricJson struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

type listMetricsRespJson struct {
	Metrics []metricJson `json:"metrics"`
}

type dimensionJson struct {
	Name                       string   `json:"name"`
	Type                       string   `json:"type"`
	Label                      string   `json:"label"`
	Description                string   `json:"description"`
	QueryableGranularities     []string `json:"queryableGranularities"`
	QueryableTimeGranularities []string `json:"queryableTimeGranularities"`
}

type listDimensionsRespJson struct {
	Dimensions []dimensionJson `json:"dimensions"`
}

type entityJson struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

type listEntitiesRespJson struct {
	Entities []entityJson `json:"entities"`
}

type savedQueryParamJson struct {
	Name  string `json:"name"`
	Grain string `json:"grain,omitempty"`
}

type savedQueryJson struct {
	Name        string `json:"name"`
	Label       string `json:"label"`
	Description string `json:"description"`
	QueryParams struct {
		Metrics []savedQueryParamJson `json:"metrics"`
		GroupBy []savedQueryParamJson `json:"groupBy"`
	} `json:"queryParams"`
}

type listSavedQueriesRespJson struct {
	SavedQueries []savedQueryJson `json:"savedQueries"`
}

type createQueryRespJson struct {
	CreateQuery struct {
		QueryId string `json:"queryId"`
	} `json:"createQuery"`
}

type queryStateJson struct {
	Status      string `json:"status"`
	Error       string `json:"error"`
	TotalPages  int64  `json:"totalPages"`
	JsonResult  string `json:"jsonResult"`
	ArrowResult string `json:"arrowResult"`
}

type queryRespJson struct {
	Query queryStateJson `json:"query"`
}

type listMetricsVariablesJson struct {
	EnvironmentId int64 `json:"environmentId"`
}

type metricScopedVariablesJson struct {
	EnvironmentId int64         `json:"environmentId"`
	Metrics       []MetricInput `json:"metrics"`
}

type queryStatusVariablesJson struct {
	EnvironmentId int64  `json:"environmentId"`
	QueryId       string `json:"queryId"`
}

type fetchResultVariablesJson struct {
	EnvironmentId int64  `json:"environmentId"`
	QueryId       string `json:"queryId"`
	PageNum       int64  `json:"pageNum"`
}
