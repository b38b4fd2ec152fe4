package godbtx

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/dbtkit/godbtx/dbthttpx"
	"github.com/dbtkit/godbtx/dbtslx"
	"github.com/dbtkit/godbtx/zaputils"
)

type QueryRequest = dbtslx.QueryRequest
type ResultSet = dbtslx.ResultSet

type SemanticLayerComponentConfig struct {
	Client SemanticLayerClient
}

type SemanticLayerComponentOptions struct {
	Logger       *zap.Logger
	QueryTimeout time.Duration
	PollBackoff  BackoffCalculator
	CatalogTtl   time.Duration
	ResultFormat dbtslx.ResultFormat
}

// SemanticLayerComponent sits between the tool layer and the gateway
// client. It caches the metric catalog, compiles requests against it and
// drives submitted queries to completion.
type SemanticLayerComponent struct {
	logger       *zap.Logger
	client       SemanticLayerClient
	queryTimeout time.Duration
	pollBackoff  BackoffCalculator
	catalogTtl   time.Duration
	resultFormat dbtslx.ResultFormat

	queriesInFlight atomic.Int64

	lock          sync.Mutex
	metrics       []dbtslx.MetricDescriptor
	metricsStamp  time.Time
	dimensionSets map[string]scopedDescriptors
}

type scopedDescriptors struct {
	dimensions []dbtslx.DimensionDescriptor
	entities   []dbtslx.EntityDescriptor
	stamp      time.Time
}

func NewSemanticLayerComponent(
	config *SemanticLayerComponentConfig,
	opts *SemanticLayerComponentOptions,
) *SemanticLayerComponent {
	if opts == nil {
		opts = &SemanticLayerComponentOptions{}
	}

	logger := loggerOrNop(opts.Logger)

	queryTimeout := opts.QueryTimeout
	if queryTimeout == 0 {
		queryTimeout = 60 * time.Second
	}

	pollBackoff := opts.PollBackoff
	if pollBackoff == nil {
		pollBackoff = ExponentialBackoff(250*time.Millisecond, 5*time.Second, 2)
	}

	catalogTtl := opts.CatalogTtl
	if catalogTtl == 0 {
		catalogTtl = 5 * time.Minute
	}

	resultFormat := opts.ResultFormat
	if resultFormat == "" {
		resultFormat = dbtslx.ResultFormatJson
	}

	return &SemanticLayerComponent{
		logger:        logger,
		client:        config.Client,
		queryTimeout:  queryTimeout,
		pollBackoff:   pollBackoff,
		catalogTtl:    catalogTtl,
		resultFormat:  resultFormat,
		dimensionSets: make(map[string]scopedDescriptors),
	}
}

// ListMetrics returns the metric catalog, refreshed when the cached copy
// is older than the catalog ttl.
func (c *SemanticLayerComponent) ListMetrics(ctx context.Context) ([]dbtslx.MetricDescriptor, error) {
	c.lock.Lock()
	if c.metrics != nil && time.Since(c.metricsStamp) < c.catalogTtl {
		metrics := c.metrics
		c.lock.Unlock()
		return metrics, nil
	}
	c.lock.Unlock()

	metrics, err := c.client.ListMetrics(ctx)
	if err != nil {
		return nil, err
	}

	c.lock.Lock()
	c.metrics = metrics
	c.metricsStamp = time.Now()
	c.lock.Unlock()

	return metrics, nil
}

// RefreshCatalog drops every cached catalog listing so the next access
// refetches from the gateway.
func (c *SemanticLayerComponent) RefreshCatalog() {
	c.lock.Lock()
	c.metrics = nil
	c.metricsStamp = time.Time{}
	c.dimensionSets = make(map[string]scopedDescriptors)
	c.lock.Unlock()
}

func metricSetKey(metricNames []string) string {
	names := append([]string(nil), metricNames...)
	sort.Strings(names)
	return strings.Join(names, ",")
}

func (c *SemanticLayerComponent) scopedCatalog(ctx context.Context, metricNames []string) (scopedDescriptors, error) {
	key := metricSetKey(metricNames)

	c.lock.Lock()
	cached, ok := c.dimensionSets[key]
	c.lock.Unlock()
	if ok && time.Since(cached.stamp) < c.catalogTtl {
		return cached, nil
	}

	dimensions, err := c.client.ListDimensions(ctx, metricNames)
	if err != nil {
		return scopedDescriptors{}, err
	}

	entities, err := c.client.ListEntities(ctx, metricNames)
	if err != nil {
		return scopedDescriptors{}, err
	}

	scoped := scopedDescriptors{
		dimensions: dimensions,
		entities:   entities,
		stamp:      time.Now(),
	}

	c.lock.Lock()
	c.dimensionSets[key] = scoped
	c.lock.Unlock()

	return scoped, nil
}

// GetDimensions lists the dimensions queryable with the given metric set.
func (c *SemanticLayerComponent) GetDimensions(ctx context.Context, metricNames []string) ([]dbtslx.DimensionDescriptor, error) {
	scoped, err := c.scopedCatalog(ctx, metricNames)
	if err != nil {
		return nil, err
	}
	return scoped.dimensions, nil
}

// GetEntities lists the entities queryable with the given metric set.
func (c *SemanticLayerComponent) GetEntities(ctx context.Context, metricNames []string) ([]dbtslx.EntityDescriptor, error) {
	scoped, err := c.scopedCatalog(ctx, metricNames)
	if err != nil {
		return nil, err
	}
	return scoped.entities, nil
}

func (c *SemanticLayerComponent) ListSavedQueries(ctx context.Context) ([]dbtslx.SavedQueryDescriptor, error) {
	return c.client.ListSavedQueries(ctx)
}

func (c *SemanticLayerComponent) snapshotForMetrics(ctx context.Context, metricNames []string) (*dbtslx.CatalogSnapshot, error) {
	metrics, err := c.ListMetrics(ctx)
	if err != nil {
		return nil, err
	}

	scoped, err := c.scopedCatalog(ctx, metricNames)
	if err != nil {
		return nil, err
	}

	return dbtslx.NewCatalogSnapshot(metrics, scoped.dimensions, scoped.entities), nil
}

// QueryMetrics compiles and runs a metric query, blocking until the result
// is decoded or the query timeout passes.
func (c *SemanticLayerComponent) QueryMetrics(ctx context.Context, req *QueryRequest) (*ResultSet, error) {
	ctx, span := tracer.Start(ctx, "semanticlayer/QueryMetrics",
		trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	metricNames := make([]string, 0, len(req.Metrics))
	for _, metric := range req.Metrics {
		metricNames = append(metricNames, metric.Name)
	}

	snapshot, err := c.snapshotForMetrics(ctx, metricNames)
	if err != nil {
		return nil, err
	}

	compiled, err := dbtslx.Compile(req, snapshot)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("compiled metric query",
		zaputils.MetricNames("metrics", metricNames))

	return c.runCompiledQuery(ctx, compiled)
}

// RunSavedQuery runs a saved query by name. Limit of zero or less leaves
// the row count to the saved query definition.
func (c *SemanticLayerComponent) RunSavedQuery(ctx context.Context, name string, limit int64) (*ResultSet, error) {
	ctx, span := tracer.Start(ctx, "semanticlayer/RunSavedQuery",
		trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	var limitPtr *int64
	if limit > 0 {
		limitPtr = &limit
	}

	compiled, err := dbtslx.CompileSavedQuery(name, limitPtr)
	if err != nil {
		return nil, err
	}

	return c.runCompiledQuery(ctx, compiled)
}

func (c *SemanticLayerComponent) runCompiledQuery(ctx context.Context, compiled *dbtslx.CompiledQuery) (*ResultSet, error) {
	c.queriesInFlight.Inc()
	defer c.queriesInFlight.Dec()

	ctx, cancel := context.WithTimeout(ctx, c.queryTimeout)
	defer cancel()

	job, err := c.submitQuery(ctx, compiled)
	if err != nil {
		return nil, err
	}

	queriesSubmitted.Add(ctx, 1)
	c.logger.Debug("submitted metric query", zaputils.QueryId("queryId", job.QueryId))

	job, err = c.pollToCompletion(ctx, job)
	if err != nil {
		return nil, err
	}

	switch job.State {
	case dbtslx.JobStateComplete:
	case dbtslx.JobStateFailed:
		queriesFailed.Add(ctx, 1)
		return nil, &dbtslx.QueryFailureError{
			QueryId: job.QueryId,
			Message: job.Error,
		}
	default:
		return nil, &dbtslx.Error{
			Cause:     dbtslx.ErrQueryFailure,
			Operation: "pollQuery",
			QueryId:   job.QueryId,
		}
	}

	return c.fetchAllPages(ctx, job)
}

func (c *SemanticLayerComponent) submitQuery(ctx context.Context, compiled *dbtslx.CompiledQuery) (*dbtslx.QueryJob, error) {
	var attempt uint32
	for {
		job, err := c.client.CreateQuery(ctx, compiled)
		if err != nil {
			if dbthttpx.IsTransient(err) {
				if sleepErr := contextSleep(ctx, c.pollBackoff(attempt)); sleepErr != nil {
					if errors.Is(sleepErr, context.DeadlineExceeded) {
						return nil, c.timedOutError(err)
					}
					return nil, sleepErr
				}
				attempt++
				continue
			}
			return nil, err
		}
		return job, nil
	}
}

func (c *SemanticLayerComponent) pollToCompletion(ctx context.Context, job *dbtslx.QueryJob) (*dbtslx.QueryJob, error) {
	var attempt uint32
	for !job.IsTerminal() {
		if err := contextSleep(ctx, c.pollBackoff(attempt)); err != nil {
			// Caller cancellation is not a timeout and propagates as-is.
			if !errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}

			queriesTimedOut.Add(ctx, 1)
			c.logger.Warn("metric query timed out",
				zaputils.QueryId("queryId", job.QueryId),
				zap.Int64("queriesInFlight", c.queriesInFlight.Load()))
			timedOut := job.WithTimedOut()
			return &timedOut, c.timedOutError(nil)
		}
		attempt++

		newJob, err := c.client.PollQuery(ctx, job)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				queriesTimedOut.Add(ctx, 1)
				timedOut := job.WithTimedOut()
				return &timedOut, c.timedOutError(err)
			}
			if dbthttpx.IsTransient(err) {
				continue
			}
			return nil, err
		}
		job = newJob
	}

	return job, nil
}

func (c *SemanticLayerComponent) timedOutError(cause error) error {
	if cause == nil {
		cause = dbtslx.ErrQueryTimedOut
	} else {
		cause = errors.Join(dbtslx.ErrQueryTimedOut, cause)
	}
	return &dbtslx.Error{
		Cause:     cause,
		Operation: "pollQuery",
	}
}

func (c *SemanticLayerComponent) fetchAllPages(ctx context.Context, job *dbtslx.QueryJob) (*ResultSet, error) {
	if job.TotalPages <= 0 {
		return &dbtslx.ResultSet{}, nil
	}

	var rs *dbtslx.ResultSet
	for pageNum := int64(1); pageNum <= job.TotalPages; pageNum++ {
		page, err := c.client.FetchResultPage(ctx, job, c.resultFormat, pageNum)
		if err != nil {
			return nil, err
		}

		pageSet, err := dbtslx.DecodeResult(page)
		if err != nil {
			return nil, err
		}

		resultPagesFetched.Add(ctx, 1)

		if rs == nil {
			rs = pageSet
		} else if err := rs.AppendPage(pageSet); err != nil {
			return nil, err
		}
	}

	return rs, nil
}
