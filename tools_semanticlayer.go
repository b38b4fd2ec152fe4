package godbtx

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/pkg/errors"

	"github.com/dbtkit/godbtx/dbtslx"
)

type metricSummary struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Label       string `json:"label,omitempty"`
	Description string `json:"description,omitempty"`
}

type dimensionSummary struct {
	Name          string   `json:"name"`
	Type          string   `json:"type"`
	Description   string   `json:"description,omitempty"`
	Granularities []string `json:"granularities,omitempty"`
}

type entitySummary struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

type savedQuerySummary struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Metrics     []string `json:"metrics,omitempty"`
}

type columnSummary struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type listMetricsInput struct{}

type listMetricsOutput struct {
	Metrics []metricSummary `json:"metrics"`
}

type metricScopedInput struct {
	Metrics []string `json:"metrics" jsonschema:"names of the metrics to scope the listing to"`
}

type getDimensionsOutput struct {
	Dimensions []dimensionSummary `json:"dimensions"`
}

type getEntitiesOutput struct {
	Entities []entitySummary `json:"entities"`
}

type listSavedQueriesInput struct{}

type listSavedQueriesOutput struct {
	SavedQueries []savedQuerySummary `json:"saved_queries"`
}

type groupByArg struct {
	Name  string `json:"name"`
	Grain string `json:"grain,omitempty" jsonschema:"time grain such as DAY, WEEK, MONTH, QUARTER or YEAR"`
}

type whereArg struct {
	Field     string   `json:"field"`
	FieldType string   `json:"field_type,omitempty" jsonschema:"dimension (default), time_dimension or entity"`
	Grain     string   `json:"grain,omitempty" jsonschema:"time grain, only for time_dimension fields"`
	Operator  string   `json:"operator" jsonschema:"one of =, !=, >, >=, <, <=, in, not_in"`
	Value     string   `json:"value,omitempty"`
	Values    []string `json:"values,omitempty" jsonschema:"values for the in and not_in operators"`
}

type orderByArg struct {
	Field      string `json:"field"`
	Descending bool   `json:"descending,omitempty"`
}

type queryMetricsInput struct {
	Metrics []string     `json:"metrics"`
	GroupBy []groupByArg `json:"group_by,omitempty"`
	Where   []whereArg   `json:"where,omitempty" jsonschema:"filters, combined with AND"`
	OrderBy []orderByArg `json:"order_by,omitempty"`
	Limit   int64        `json:"limit,omitempty"`
}

type queryResultOutput struct {
	Columns  []columnSummary `json:"columns"`
	RowsJson string          `json:"rows_json" jsonschema:"result rows as a json array of arrays, in column order"`
	RowCount int             `json:"row_count"`
}

type runSavedQueryInput struct {
	Name  string `json:"name"`
	Limit int64  `json:"limit,omitempty"`
}

func (t *Toolset) registerSemanticLayerTools(server *mcp.Server) error {
	if err := addToolsetTool(server, "list_metrics",
		"List the metrics defined in the dbt semantic layer, with their types and descriptions. Use this first to discover what can be queried.",
		t.handleListMetrics); err != nil {
		return err
	}

	if err := addToolsetTool(server, "get_dimensions",
		"List the dimensions that can be grouped or filtered on when querying the given set of metrics together.",
		t.handleGetDimensions); err != nil {
		return err
	}

	if err := addToolsetTool(server, "get_entities",
		"List the entities available when querying the given set of metrics together.",
		t.handleGetEntities); err != nil {
		return err
	}

	if err := addToolsetTool(server, "query_metrics",
		"Run a metric query against the dbt semantic layer. Metrics must come from list_metrics and group-by fields from get_dimensions.",
		t.handleQueryMetrics); err != nil {
		return err
	}

	if err := addToolsetTool(server, "list_saved_queries",
		"List the saved queries defined in the dbt project.",
		t.handleListSavedQueries); err != nil {
		return err
	}

	if err := addToolsetTool(server, "run_saved_query",
		"Run a saved query by name, optionally limiting the number of rows.",
		t.handleRunSavedQuery); err != nil {
		return err
	}

	return nil
}

func (t *Toolset) handleListMetrics(
	ctx context.Context, _ *mcp.CallToolRequest, _ listMetricsInput,
) (*mcp.CallToolResult, listMetricsOutput, error) {
	metrics, err := t.semanticLayer.ListMetrics(ctx)
	if err != nil {
		return nil, listMetricsOutput{}, err
	}

	out := listMetricsOutput{Metrics: []metricSummary{}}
	for _, metric := range metrics {
		out.Metrics = append(out.Metrics, metricSummary{
			Name:        metric.Name,
			Type:        string(metric.Type),
			Label:       metric.Label,
			Description: metric.Description,
		})
	}
	return nil, out, nil
}

func (t *Toolset) handleGetDimensions(
	ctx context.Context, _ *mcp.CallToolRequest, in metricScopedInput,
) (*mcp.CallToolResult, getDimensionsOutput, error) {
	dimensions, err := t.semanticLayer.GetDimensions(ctx, in.Metrics)
	if err != nil {
		return nil, getDimensionsOutput{}, err
	}

	out := getDimensionsOutput{Dimensions: []dimensionSummary{}}
	for _, dim := range dimensions {
		var grains []string
		for _, grain := range dim.QueryableGranularities {
			grains = append(grains, string(grain))
		}
		out.Dimensions = append(out.Dimensions, dimensionSummary{
			Name:          dim.Name,
			Type:          string(dim.Type),
			Description:   dim.Description,
			Granularities: grains,
		})
	}
	return nil, out, nil
}

func (t *Toolset) handleGetEntities(
	ctx context.Context, _ *mcp.CallToolRequest, in metricScopedInput,
) (*mcp.CallToolResult, getEntitiesOutput, error) {
	entities, err := t.semanticLayer.GetEntities(ctx, in.Metrics)
	if err != nil {
		return nil, getEntitiesOutput{}, err
	}

	out := getEntitiesOutput{Entities: []entitySummary{}}
	for _, entity := range entities {
		out.Entities = append(out.Entities, entitySummary{
			Name:        entity.Name,
			Type:        entity.Type,
			Description: entity.Description,
		})
	}
	return nil, out, nil
}

func (t *Toolset) handleListSavedQueries(
	ctx context.Context, _ *mcp.CallToolRequest, _ listSavedQueriesInput,
) (*mcp.CallToolResult, listSavedQueriesOutput, error) {
	savedQueries, err := t.semanticLayer.ListSavedQueries(ctx)
	if err != nil {
		return nil, listSavedQueriesOutput{}, err
	}

	out := listSavedQueriesOutput{SavedQueries: []savedQuerySummary{}}
	for _, savedQuery := range savedQueries {
		out.SavedQueries = append(out.SavedQueries, savedQuerySummary{
			Name:        savedQuery.Name,
			Description: savedQuery.Description,
			Metrics:     savedQuery.MetricNames,
		})
	}
	return nil, out, nil
}

func (t *Toolset) handleQueryMetrics(
	ctx context.Context, _ *mcp.CallToolRequest, in queryMetricsInput,
) (*mcp.CallToolResult, queryResultOutput, error) {
	req, err := buildQueryRequest(in)
	if err != nil {
		return nil, queryResultOutput{}, err
	}

	rs, err := t.semanticLayer.QueryMetrics(ctx, req)
	if err != nil {
		return nil, queryResultOutput{}, err
	}

	out, err := renderResultSet(rs)
	return nil, out, err
}

func (t *Toolset) handleRunSavedQuery(
	ctx context.Context, _ *mcp.CallToolRequest, in runSavedQueryInput,
) (*mcp.CallToolResult, queryResultOutput, error) {
	var limit int64
	if in.Limit > 0 {
		limit = in.Limit
	}

	rs, err := t.semanticLayer.RunSavedQuery(ctx, in.Name, limit)
	if err != nil {
		return nil, queryResultOutput{}, err
	}

	out, err := renderResultSet(rs)
	return nil, out, err
}

func buildQueryRequest(in queryMetricsInput) (*dbtslx.QueryRequest, error) {
	req := &dbtslx.QueryRequest{}

	for _, name := range in.Metrics {
		req.Metrics = append(req.Metrics, dbtslx.MetricRef{Name: name})
	}

	for _, groupBy := range in.GroupBy {
		dim := dbtslx.DimensionRef{Name: groupBy.Name}
		if groupBy.Grain != "" {
			grain, ok := dbtslx.ParseTimeGranularity(groupBy.Grain)
			if !ok {
				return nil, errors.Wrapf(dbtslx.ErrInvalidGrain, "%q", groupBy.Grain)
			}
			dim.Grain = grain
		}
		req.Dimensions = append(req.Dimensions, dim)
	}

	if len(in.Where) > 0 {
		filter, err := buildFilter(in.Where)
		if err != nil {
			return nil, err
		}
		req.Filter = filter
	}

	for _, orderBy := range in.OrderBy {
		req.OrderBy = append(req.OrderBy, dbtslx.OrderSpec{
			Field:      orderBy.Field,
			Descending: orderBy.Descending,
		})
	}

	if in.Limit > 0 {
		limit := in.Limit
		req.Limit = &limit
	}

	return req, nil
}

func buildFilter(args []whereArg) (dbtslx.FilterExpr, error) {
	var exprs []dbtslx.FilterExpr
	for _, arg := range args {
		expr, err := buildFilterExpr(arg)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, expr)
	}

	if len(exprs) == 1 {
		return exprs[0], nil
	}
	return dbtslx.AndExpr{Exprs: exprs}, nil
}

func buildFilterExpr(arg whereArg) (dbtslx.FilterExpr, error) {
	var field dbtslx.FieldRef
	switch arg.FieldType {
	case "", "dimension":
		field = dbtslx.DimensionField(arg.Field)
	case "time_dimension":
		grain, ok := dbtslx.ParseTimeGranularity(arg.Grain)
		if !ok {
			return nil, errors.Wrapf(dbtslx.ErrInvalidGrain, "%q", arg.Grain)
		}
		field = dbtslx.TimeDimensionField(arg.Field, grain)
	case "entity":
		field = dbtslx.EntityField(arg.Field)
	default:
		return nil, errors.Errorf("unknown field_type %q", arg.FieldType)
	}

	switch arg.Operator {
	case "in", "not_in":
		if len(arg.Values) == 0 {
			return nil, errors.Errorf("operator %q requires values", arg.Operator)
		}
		var values []dbtslx.FilterValue
		for _, value := range arg.Values {
			values = append(values, filterValue(value))
		}
		return dbtslx.SetMembership{
			Field:  field,
			Values: values,
			Negate: arg.Operator == "not_in",
		}, nil
	}

	var op dbtslx.CompareOp
	switch arg.Operator {
	case "=":
		op = dbtslx.CompareOpEq
	case "!=":
		op = dbtslx.CompareOpNeq
	case ">":
		op = dbtslx.CompareOpGt
	case ">=":
		op = dbtslx.CompareOpGte
	case "<":
		op = dbtslx.CompareOpLt
	case "<=":
		op = dbtslx.CompareOpLte
	default:
		return nil, errors.Errorf("unknown operator %q", arg.Operator)
	}

	return dbtslx.Comparison{
		Field: field,
		Op:    op,
		Value: filterValue(arg.Value),
	}, nil
}

// filterValue keeps numeric and boolean literals unquoted so comparisons
// against numeric columns stay valid sql.
func filterValue(raw string) dbtslx.FilterValue {
	if intVal, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return dbtslx.IntValue(intVal)
	}
	if floatVal, err := strconv.ParseFloat(raw, 64); err == nil {
		return dbtslx.NumberValue(floatVal)
	}
	if raw == "true" || raw == "false" {
		return dbtslx.BoolValue(raw == "true")
	}
	return dbtslx.StringValue(raw)
}

func renderResultSet(rs *dbtslx.ResultSet) (queryResultOutput, error) {
	out := queryResultOutput{
		Columns:  []columnSummary{},
		RowCount: len(rs.Rows),
	}
	for _, col := range rs.Columns {
		out.Columns = append(out.Columns, columnSummary{
			Name: col.Name,
			Type: string(col.Type),
		})
	}

	rows := rs.Rows
	if rows == nil {
		rows = [][]interface{}{}
	}
	rowsBytes, err := json.Marshal(rows)
	if err != nil {
		return queryResultOutput{}, err
	}
	out.RowsJson = string(rowsBytes)

	return out, nil
}
