package godbtx

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbtkit/godbtx/dbthttpx"
	"github.com/dbtkit/godbtx/dbtslx"
)

type fakeSemanticLayerClient struct {
	metrics    []dbtslx.MetricDescriptor
	dimensions []dbtslx.DimensionDescriptor
	entities   []dbtslx.EntityDescriptor

	listMetricsCalls    int
	listDimensionsCalls int

	createErrs []error
	pollStates []dbtslx.JobState
	pollErrs   []error
	pollCalls  int
	pollError  string
	totalPages int64
	pageJson   string
	fetchCalls int
}

func (c *fakeSemanticLayerClient) ListMetrics(ctx context.Context) ([]dbtslx.MetricDescriptor, error) {
	c.listMetricsCalls++
	return c.metrics, nil
}

func (c *fakeSemanticLayerClient) ListDimensions(ctx context.Context, metricNames []string) ([]dbtslx.DimensionDescriptor, error) {
	c.listDimensionsCalls++
	return c.dimensions, nil
}

func (c *fakeSemanticLayerClient) ListEntities(ctx context.Context, metricNames []string) ([]dbtslx.EntityDescriptor, error) {
	return c.entities, nil
}

func (c *fakeSemanticLayerClient) ListSavedQueries(ctx context.Context) ([]dbtslx.SavedQueryDescriptor, error) {
	return nil, nil
}

func (c *fakeSemanticLayerClient) CreateQuery(ctx context.Context, compiled *dbtslx.CompiledQuery) (*dbtslx.QueryJob, error) {
	if len(c.createErrs) > 0 {
		err := c.createErrs[0]
		c.createErrs = c.createErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	return &dbtslx.QueryJob{QueryId: "q-1", State: dbtslx.JobStateSubmitted}, nil
}

func (c *fakeSemanticLayerClient) PollQuery(ctx context.Context, job *dbtslx.QueryJob) (*dbtslx.QueryJob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	idx := c.pollCalls
	c.pollCalls++

	if idx < len(c.pollErrs) && c.pollErrs[idx] != nil {
		return nil, c.pollErrs[idx]
	}

	state := c.pollStates[min(idx, len(c.pollStates)-1)]
	next := &dbtslx.QueryJob{QueryId: job.QueryId, State: state}
	if state == dbtslx.JobStateComplete {
		next.TotalPages = c.totalPages
	}
	if state == dbtslx.JobStateFailed {
		next.Error = c.pollError
	}
	return next, nil
}

func (c *fakeSemanticLayerClient) FetchResultPage(ctx context.Context, job *dbtslx.QueryJob, format dbtslx.ResultFormat, pageNum int64) (*dbtslx.RawResultPage, error) {
	c.fetchCalls++
	return &dbtslx.RawResultPage{
		Format:  dbtslx.ResultFormatJson,
		Payload: []byte(c.pageJson),
	}, nil
}

func testComponent(client SemanticLayerClient) *SemanticLayerComponent {
	return NewSemanticLayerComponent(&SemanticLayerComponentConfig{
		Client: client,
	}, &SemanticLayerComponentOptions{
		QueryTimeout: 2 * time.Second,
		PollBackoff:  ExponentialBackoff(time.Millisecond, 5*time.Millisecond, 2),
	})
}

func revenueClient() *fakeSemanticLayerClient {
	return &fakeSemanticLayerClient{
		metrics: []dbtslx.MetricDescriptor{{Name: "revenue", Type: dbtslx.MetricTypeSimple}},
		dimensions: []dbtslx.DimensionDescriptor{{
			Name: "order_date",
			Type: dbtslx.DimensionTypeTime,
			QueryableGranularities: []dbtslx.TimeGranularity{
				dbtslx.TimeGranularityDay, dbtslx.TimeGranularityMonth,
			},
		}},
		pollStates: []dbtslx.JobState{dbtslx.JobStateRunning, dbtslx.JobStateComplete},
		totalPages: 1,
		pageJson:   `{"schema":{"fields":[{"name":"revenue","type":"number"}],"primaryKey":[]},"data":[{"revenue":10.5}]}`,
	}
}

func TestComponentQueryMetrics(t *testing.T) {
	client := revenueClient()
	component := testComponent(client)

	rs, err := component.QueryMetrics(context.Background(), &QueryRequest{
		Metrics:    []dbtslx.MetricRef{{Name: "revenue"}},
		Dimensions: []dbtslx.DimensionRef{{Name: "order_date", Grain: dbtslx.TimeGranularityMonth}},
	})
	require.NoError(t, err)

	require.Len(t, rs.Rows, 1)
	assert.Equal(t, 10.5, rs.Rows[0][0])
	assert.Equal(t, 2, client.pollCalls)
}

func TestComponentQueryMetricsValidationShortCircuits(t *testing.T) {
	client := revenueClient()
	component := testComponent(client)

	_, err := component.QueryMetrics(context.Background(), &QueryRequest{
		Metrics: []dbtslx.MetricRef{{Name: "revenu"}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, dbtslx.ErrUnknownMetric)
	assert.Contains(t, err.Error(), "revenue")
	assert.Equal(t, 0, client.pollCalls)
}

func TestComponentQueryMetricsPagination(t *testing.T) {
	client := revenueClient()
	client.totalPages = 3
	component := testComponent(client)

	rs, err := component.QueryMetrics(context.Background(), &QueryRequest{
		Metrics: []dbtslx.MetricRef{{Name: "revenue"}},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, client.fetchCalls)
	assert.Len(t, rs.Rows, 3)
}

func TestComponentQueryMetricsTransientPollRetried(t *testing.T) {
	client := revenueClient()
	client.pollErrs = []error{&dbthttpx.ServiceError{StatusCode: 502}}
	client.pollStates = []dbtslx.JobState{
		dbtslx.JobStateRunning, dbtslx.JobStateRunning, dbtslx.JobStateComplete,
	}
	component := testComponent(client)

	_, err := component.QueryMetrics(context.Background(), &QueryRequest{
		Metrics: []dbtslx.MetricRef{{Name: "revenue"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, client.pollCalls)
}

func TestComponentQueryMetricsFailureKeepsMessage(t *testing.T) {
	client := revenueClient()
	client.pollStates = []dbtslx.JobState{dbtslx.JobStateFailed}
	client.pollError = "Unknown dimension: foo"
	component := testComponent(client)

	_, err := component.QueryMetrics(context.Background(), &QueryRequest{
		Metrics: []dbtslx.MetricRef{{Name: "revenue"}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, dbtslx.ErrQueryFailure)

	var failure *dbtslx.QueryFailureError
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, "Unknown dimension: foo", failure.Message)
}

func TestComponentQueryMetricsTimesOut(t *testing.T) {
	client := revenueClient()
	client.pollStates = []dbtslx.JobState{dbtslx.JobStateRunning}
	component := NewSemanticLayerComponent(&SemanticLayerComponentConfig{
		Client: client,
	}, &SemanticLayerComponentOptions{
		QueryTimeout: 50 * time.Millisecond,
		PollBackoff:  ExponentialBackoff(5*time.Millisecond, 10*time.Millisecond, 2),
	})

	_, err := component.QueryMetrics(context.Background(), &QueryRequest{
		Metrics: []dbtslx.MetricRef{{Name: "revenue"}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, dbtslx.ErrQueryTimedOut)

	// A timed out query stops polling entirely.
	pollCallsAfter := client.pollCalls
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, pollCallsAfter, client.pollCalls)
}

func TestComponentPollTimeoutMarksJobTimedOut(t *testing.T) {
	client := revenueClient()
	client.pollStates = []dbtslx.JobState{dbtslx.JobStateRunning}
	component := testComponent(client)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	job, err := component.pollToCompletion(ctx, &dbtslx.QueryJob{
		QueryId: "q-1",
		State:   dbtslx.JobStateSubmitted,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, dbtslx.ErrQueryTimedOut)

	require.NotNil(t, job)
	assert.Equal(t, dbtslx.JobStateTimedOut, job.State)
	assert.True(t, job.IsTerminal())
}

func TestComponentCancellationIsNotTimeout(t *testing.T) {
	client := revenueClient()
	client.pollStates = []dbtslx.JobState{dbtslx.JobStateRunning}
	component := testComponent(client)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := component.QueryMetrics(ctx, &QueryRequest{
		Metrics: []dbtslx.MetricRef{{Name: "revenue"}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, dbtslx.ErrQueryTimedOut)
}

func TestComponentSubmitRetriesTransientErrors(t *testing.T) {
	client := revenueClient()
	client.createErrs = []error{&dbthttpx.ServiceError{StatusCode: 503}, nil}
	component := testComponent(client)

	_, err := component.QueryMetrics(context.Background(), &QueryRequest{
		Metrics: []dbtslx.MetricRef{{Name: "revenue"}},
	})
	require.NoError(t, err)
}

func TestComponentCatalogCaching(t *testing.T) {
	client := revenueClient()
	component := testComponent(client)
	ctx := context.Background()

	_, err := component.ListMetrics(ctx)
	require.NoError(t, err)
	_, err = component.ListMetrics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, client.listMetricsCalls)

	_, err = component.GetDimensions(ctx, []string{"revenue"})
	require.NoError(t, err)
	_, err = component.GetDimensions(ctx, []string{"revenue"})
	require.NoError(t, err)
	assert.Equal(t, 1, client.listDimensionsCalls)

	// A different metric set misses the cache.
	_, err = component.GetDimensions(ctx, []string{"revenue", "orders"})
	require.NoError(t, err)
	assert.Equal(t, 2, client.listDimensionsCalls)

	component.RefreshCatalog()
	_, err = component.ListMetrics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, client.listMetricsCalls)
}

func TestComponentRunSavedQuery(t *testing.T) {
	client := revenueClient()
	component := testComponent(client)

	rs, err := component.RunSavedQuery(context.Background(), "weekly_revenue", 5)
	require.NoError(t, err)
	require.Len(t, rs.Rows, 1)

	// The compiled saved query carries only the name and limit.
	compiled, err := dbtslx.CompileSavedQuery("weekly_revenue", int64Ptr(5))
	require.NoError(t, err)

	var vars map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(compiled.Variables, &vars))
	assert.JSONEq(t, `"weekly_revenue"`, string(vars["savedQuery"]))
}

func int64Ptr(v int64) *int64 {
	return &v
}
