package dbtslx

import (
	"encoding/json"
	"fmt"
	"strings"
)

type MetricRef struct {
	Name string
}

type DimensionRef struct {
	Name  string
	Grain TimeGranularity
}

// OrderSpec orders results by a requested metric or dimension. Ordering
// among ties is gateway-defined and not guaranteed here.
type OrderSpec struct {
	Field      string
	Descending bool
}

type QueryRequest struct {
	Metrics    []MetricRef
	Dimensions []DimensionRef
	Filter     FilterExpr
	OrderBy    []OrderSpec
	Limit      *int64
}

// CompiledQuery is an immutable GraphQL document plus its variable
// bindings. Compiling the same request against the same catalog snapshot
// twice yields byte-identical Variables.
type CompiledQuery struct {
	Document  string
	Variables json.RawMessage

	params queryParamsJson
}

// Compile validates a QueryRequest against the catalog snapshot and lowers
// it to the gateway's createQuery form. No network access happens here.
func Compile(req *QueryRequest, snap *CatalogSnapshot) (*CompiledQuery, error) {
	if len(req.Metrics) == 0 {
		return nil, &ValidationError{
			Cause:   ErrInvalidQuery,
			Message: "at least one metric must be requested",
		}
	}

	var params queryParamsJson

	for _, metric := range req.Metrics {
		if _, ok := snap.LookupMetric(metric.Name); !ok {
			return nil, unknownFieldError(ErrUnknownMetric, "metric", metric.Name, snap.MetricNames())
		}
		params.Metrics = append(params.Metrics, MetricInput{Name: metric.Name})
	}

	for _, dim := range req.Dimensions {
		if err := validateDimensionRef(dim, snap); err != nil {
			return nil, err
		}
		params.GroupBy = append(params.GroupBy, GroupByInput{
			Name:  dim.Name,
			Grain: dim.Grain,
		})
	}

	if req.Filter != nil {
		var walkErr error
		req.Filter.walkFields(func(field FieldRef) {
			if walkErr != nil {
				return
			}
			walkErr = validateFieldRef(field, snap)
		})
		if walkErr != nil {
			return nil, walkErr
		}
		params.Where = append(params.Where, WhereInput{Sql: SerializeFilter(req.Filter)})
	}

	for _, order := range req.OrderBy {
		orderInput, err := resolveOrderField(order, req, snap)
		if err != nil {
			return nil, err
		}
		params.OrderBy = append(params.OrderBy, orderInput)
	}

	if req.Limit != nil {
		if *req.Limit <= 0 {
			return nil, &ValidationError{
				Cause:   ErrInvalidQuery,
				Field:   "limit",
				Message: fmt.Sprintf("limit must be positive, got %d", *req.Limit),
			}
		}
		limit := *req.Limit
		params.Limit = &limit
	}

	variables, err := params.encodeToJson()
	if err != nil {
		return nil, err
	}

	return &CompiledQuery{
		Document:  createQueryDocument,
		Variables: variables,
		params:    params,
	}, nil
}

// CompileSavedQuery lowers a saved-query invocation. The saved query's own
// shape lives in the gateway; only the name and an optional row limit are
// bound here.
func CompileSavedQuery(name string, limit *int64) (*CompiledQuery, error) {
	if name == "" {
		return nil, &ValidationError{
			Cause:   ErrInvalidQuery,
			Field:   "saved_query",
			Message: "saved query name must be specified",
		}
	}

	params := queryParamsJson{SavedQuery: name}
	if limit != nil {
		if *limit <= 0 {
			return nil, &ValidationError{
				Cause:   ErrInvalidQuery,
				Field:   "limit",
				Message: fmt.Sprintf("limit must be positive, got %d", *limit),
			}
		}
		limitCopy := *limit
		params.Limit = &limitCopy
	}

	variables, err := params.encodeToJson()
	if err != nil {
		return nil, err
	}

	return &CompiledQuery{
		Document:  createQueryDocument,
		Variables: variables,
		params:    params,
	}, nil
}

func validateDimensionRef(dim DimensionRef, snap *CatalogSnapshot) error {
	desc, ok := snap.LookupDimension(dim.Name)
	if !ok {
		return unknownFieldError(ErrUnknownDimension, "dimension", dim.Name, snap.DimensionNames())
	}

	if dim.Grain == TimeGranularityUnset {
		return nil
	}

	if desc.Type != DimensionTypeTime {
		return &ValidationError{
			Cause: ErrInvalidGrain,
			Field: dim.Name,
			Message: fmt.Sprintf("dimension '%s' is not a time dimension and cannot take grain '%s'",
				dim.Name, dim.Grain),
		}
	}

	if !desc.SupportsGrain(dim.Grain) {
		return &ValidationError{
			Cause: ErrInvalidGrain,
			Field: dim.Name,
			Message: fmt.Sprintf("dimension '%s' does not support grain '%s'",
				dim.Name, dim.Grain),
		}
	}

	return nil
}

func validateFieldRef(field FieldRef, snap *CatalogSnapshot) error {
	switch field.Kind {
	case FieldRefEntity:
		if _, ok := snap.LookupEntity(field.Name); !ok {
			return unknownFieldError(ErrUnknownEntity, "entity", field.Name, nil)
		}
		return nil
	case FieldRefMetric:
		if _, ok := snap.LookupMetric(field.Name); !ok {
			return unknownFieldError(ErrUnknownMetric, "metric", field.Name, snap.MetricNames())
		}
		return nil
	default:
		return validateDimensionRef(DimensionRef{Name: field.Name, Grain: field.Grain}, snap)
	}
}

// resolveOrderField decides whether an order-by field refers to a requested
// metric or a requested dimension; anything else is rejected so the gateway
// never sees an unresolvable ordering.
func resolveOrderField(order OrderSpec, req *QueryRequest, snap *CatalogSnapshot) (OrderByInput, error) {
	for _, metric := range req.Metrics {
		if metric.Name == order.Field {
			return OrderByInput{
				Metric:     &MetricInput{Name: metric.Name},
				Descending: order.Descending,
			}, nil
		}
	}

	for _, dim := range req.Dimensions {
		if dim.Name == order.Field {
			return OrderByInput{
				GroupBy:    &GroupByInput{Name: dim.Name, Grain: dim.Grain},
				Descending: order.Descending,
			}, nil
		}
	}

	return OrderByInput{}, &ValidationError{
		Cause: ErrInvalidQuery,
		Field: order.Field,
		Message: fmt.Sprintf("order_by field '%s' is not among the requested metrics or dimensions",
			order.Field),
	}
}

func unknownFieldError(cause error, kind, name string, known []string) error {
	msg := fmt.Sprintf("%s '%s' not found", kind, name)
	if suggestions := suggestNames(name, known, 3); len(suggestions) > 0 {
		msg += ". Did you mean: " + strings.Join(suggestions, ", ") + "?"
	}
	return &ValidationError{
		Cause:   cause,
		Field:   name,
		Message: msg,
	}
}
