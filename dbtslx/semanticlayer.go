package dbtslx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dbtkit/godbtx/dbthttpx"
)

const partnerSource = "godbtx"

// SemanticLayer talks the gateway's GraphQL protocol: catalog listings plus
// the asynchronous createQuery/status/result exchange. It holds no mutable
// state; orchestration (caching, poll loops) lives with the caller.
type SemanticLayer struct {
	Logger        *zap.Logger
	Transport     http.RoundTripper
	UserAgent     string
	Endpoint      string
	EnvironmentId int64
	Token         string
}

func (h SemanticLayer) execute(
	ctx context.Context,
	operation, document string,
	variables interface{},
) (json.RawMessage, error) {
	varsBytes, err := json.Marshal(variables)
	if err != nil {
		return nil, err
	}

	data, err := dbthttpx.GraphQLExecutor{
		UserAgent:     h.UserAgent,
		Transport:     h.Transport,
		Endpoint:      h.Endpoint,
		Path:          "/api/graphql",
		BearerToken:   h.Token,
		PartnerSource: partnerSource,
		RequestId:     uuid.NewString(),
	}.Execute(ctx, &dbthttpx.GraphQLRequest{
		Query:     document,
		Variables: varsBytes,
	})
	if err != nil {
		return nil, &Error{
			Cause:     err,
			Operation: operation,
			Endpoint:  h.Endpoint,
		}
	}

	return data, nil
}

func (h SemanticLayer) ListMetrics(ctx context.Context) ([]MetricDescriptor, error) {
	data, err := h.execute(ctx, "listMetrics", listMetricsDocument, listMetricsVariablesJson{
		EnvironmentId: h.EnvironmentId,
	})
	if err != nil {
		return nil, err
	}

	var respJson listMetricsRespJson
	if err := json.Unmarshal(data, &respJson); err != nil {
		return nil, err
	}

	metrics := make([]MetricDescriptor, 0, len(respJson.Metrics))
	for _, metricJson := range respJson.Metrics {
		metrics = append(metrics, MetricDescriptor{
			Name:        metricJson.Name,
			Type:        MetricType(metricJson.Type),
			Label:       metricJson.Label,
			Description: metricJson.Description,
		})
	}
	return metrics, nil
}

func (h SemanticLayer) ListDimensions(ctx context.Context, metricNames []string) ([]DimensionDescriptor, error) {
	data, err := h.execute(ctx, "listDimensions", listDimensionsDocument,
		metricScopedVariablesJson{
			EnvironmentId: h.EnvironmentId,
			Metrics:       metricInputs(metricNames),
		})
	if err != nil {
		return nil, err
	}

	var respJson listDimensionsRespJson
	if err := json.Unmarshal(data, &respJson); err != nil {
		return nil, err
	}

	dimensions := make([]DimensionDescriptor, 0, len(respJson.Dimensions))
	for _, dimJson := range respJson.Dimensions {
		// The gateway splits granularities across two fields depending on
		// dimension flavour; queries accept either list.
		var grains []TimeGranularity
		for _, grainName := range append(dimJson.QueryableGranularities, dimJson.QueryableTimeGranularities...) {
			if grain, ok := ParseTimeGranularity(grainName); ok {
				grains = append(grains, grain)
			}
		}

		dimensions = append(dimensions, DimensionDescriptor{
			Name:                   dimJson.Name,
			Type:                   DimensionType(dimJson.Type),
			Label:                  dimJson.Label,
			Description:            dimJson.Description,
			QueryableGranularities: grains,
		})
	}
	return dimensions, nil
}

func (h SemanticLayer) ListEntities(ctx context.Context, metricNames []string) ([]EntityDescriptor, error) {
	data, err := h.execute(ctx, "listEntities", listEntitiesDocument,
		metricScopedVariablesJson{
			EnvironmentId: h.EnvironmentId,
			Metrics:       metricInputs(metricNames),
		})
	if err != nil {
		return nil, err
	}

	var respJson listEntitiesRespJson
	if err := json.Unmarshal(data, &respJson); err != nil {
		return nil, err
	}

	entities := make([]EntityDescriptor, 0, len(respJson.Entities))
	for _, entityJson := range respJson.Entities {
		entities = append(entities, EntityDescriptor{
			Name:        entityJson.Name,
			Type:        entityJson.Type,
			Description: entityJson.Description,
		})
	}
	return entities, nil
}

func (h SemanticLayer) ListSavedQueries(ctx context.Context) ([]SavedQueryDescriptor, error) {
	data, err := h.execute(ctx, "listSavedQueries", listSavedQueriesDocument,
		listMetricsVariablesJson{
			EnvironmentId: h.EnvironmentId,
		})
	if err != nil {
		return nil, err
	}

	var respJson listSavedQueriesRespJson
	if err := json.Unmarshal(data, &respJson); err != nil {
		return nil, err
	}

	savedQueries := make([]SavedQueryDescriptor, 0, len(respJson.SavedQueries))
	for _, sqJson := range respJson.SavedQueries {
		desc := SavedQueryDescriptor{
			Name:        sqJson.Name,
			Label:       sqJson.Label,
			Description: sqJson.Description,
		}
		for _, metric := range sqJson.QueryParams.Metrics {
			desc.MetricNames = append(desc.MetricNames, metric.Name)
		}
		for _, groupBy := range sqJson.QueryParams.GroupBy {
			desc.GroupByNames = append(desc.GroupByNames, groupBy.Name)
		}
		savedQueries = append(savedQueries, desc)
	}
	return savedQueries, nil
}

// CreateQuery submits a compiled query and returns the job handle. The
// gateway executes asynchronously; the result is never inline.
func (h SemanticLayer) CreateQuery(ctx context.Context, compiled *CompiledQuery) (*QueryJob, error) {
	data, err := h.execute(ctx, "createQuery", compiled.Document, createQueryVariablesJson{
		EnvironmentId:   h.EnvironmentId,
		queryParamsJson: compiled.params,
	})
	if err != nil {
		return nil, err
	}

	var respJson createQueryRespJson
	if err := json.Unmarshal(data, &respJson); err != nil {
		return nil, err
	}

	if respJson.CreateQuery.QueryId == "" {
		return nil, &Error{
			Cause:     ErrQueryFailure,
			Operation: "createQuery",
			Endpoint:  h.Endpoint,
		}
	}

	h.logger().Debug("submitted semantic layer query",
		zap.String("queryId", respJson.CreateQuery.QueryId))

	return &QueryJob{
		QueryId: respJson.CreateQuery.QueryId,
		State:   JobStateSubmitted,
	}, nil
}

// PollQuery fetches the job status once and returns a new job value.
// Polling a terminal job is a programming error and is rejected.
func (h SemanticLayer) PollQuery(ctx context.Context, job *QueryJob) (*QueryJob, error) {
	if job.IsTerminal() {
		return nil, &Error{
			Cause:     ErrAlreadyPolling,
			Operation: "pollQuery",
			QueryId:   job.QueryId,
		}
	}

	data, err := h.execute(ctx, "pollQuery", queryStatusDocument, queryStatusVariablesJson{
		EnvironmentId: h.EnvironmentId,
		QueryId:       job.QueryId,
	})
	if err != nil {
		return nil, h.withQueryId(err, job.QueryId)
	}

	var respJson queryRespJson
	if err := json.Unmarshal(data, &respJson); err != nil {
		return nil, err
	}

	newJob := job.withPollResponse(
		QueryStatus(respJson.Query.Status),
		respJson.Query.Error,
		respJson.Query.TotalPages)

	h.logger().Debug("polled semantic layer query",
		zap.String("queryId", job.QueryId),
		zap.String("state", string(newJob.State)))

	return &newJob, nil
}

// FetchResultPage retrieves one page of a complete job's result payload in
// the requested wire format.
func (h SemanticLayer) FetchResultPage(
	ctx context.Context,
	job *QueryJob,
	format ResultFormat,
	pageNum int64,
) (*RawResultPage, error) {
	if job.State != JobStateComplete {
		return nil, &Error{
			Cause:     ErrQueryFailure,
			Operation: "fetchResult",
			QueryId:   job.QueryId,
		}
	}

	document := fetchJsonResultDocument
	if format == ResultFormatArrow {
		document = fetchArrowResultDocument
	}

	data, err := h.execute(ctx, "fetchResult", document, fetchResultVariablesJson{
		EnvironmentId: h.EnvironmentId,
		QueryId:       job.QueryId,
		PageNum:       pageNum,
	})
	if err != nil {
		return nil, h.withQueryId(err, job.QueryId)
	}

	var respJson queryRespJson
	if err := json.Unmarshal(data, &respJson); err != nil {
		return nil, err
	}

	payload := respJson.Query.JsonResult
	if format == ResultFormatArrow {
		payload = respJson.Query.ArrowResult
	}

	return &RawResultPage{
		Format:  format,
		Payload: []byte(payload),
	}, nil
}

func (h SemanticLayer) withQueryId(err error, queryId string) error {
	var slErr *Error
	if errors.As(err, &slErr) {
		annotated := *slErr
		annotated.QueryId = queryId
		return &annotated
	}
	return err
}

func (h SemanticLayer) logger() *zap.Logger {
	if h.Logger == nil {
		return zap.NewNop()
	}
	return h.Logger
}

func metricInputs(metricNames []string) []MetricInput {
	inputs := make([]MetricInput, len(metricNames))
	for i, name := range metricNames {
		inputs[i] = MetricInput{Name: name}
	}
	return inputs
}
