package godbtx

import (
	"context"

	"github.com/dbtkit/godbtx/dbtslx"
)

// SemanticLayerClient is the gateway surface the component layer depends
// on. dbtslx.SemanticLayer implements it against a real gateway.
type SemanticLayerClient interface {
	ListMetrics(ctx context.Context) ([]dbtslx.MetricDescriptor, error)
	ListDimensions(ctx context.Context, metricNames []string) ([]dbtslx.DimensionDescriptor, error)
	ListEntities(ctx context.Context, metricNames []string) ([]dbtslx.EntityDescriptor, error)
	ListSavedQueries(ctx context.Context) ([]dbtslx.SavedQueryDescriptor, error)
	CreateQuery(ctx context.Context, compiled *dbtslx.CompiledQuery) (*dbtslx.QueryJob, error)
	PollQuery(ctx context.Context, job *dbtslx.QueryJob) (*dbtslx.QueryJob, error)
	FetchResultPage(ctx context.Context, job *dbtslx.QueryJob, format dbtslx.ResultFormat, pageNum int64) (*dbtslx.RawResultPage, error)
}

var _ SemanticLayerClient = (*dbtslx.SemanticLayer)(nil)

// DiscoveryClient is the metadata API surface the component layer depends
// on. dbtdiscx.Metadata implements it.
type DiscoveryClient interface {
	GetModels(ctx context.Context, filter *ModelFilter) ([]ModelDescriptor, error)
	GetModelDetails(ctx context.Context, modelName string) (*ModelDescriptor, error)
	GetModelParents(ctx context.Context, modelName string) ([]ModelDescriptor, error)
	GetModelChildren(ctx context.Context, modelName string) ([]ModelDescriptor, error)
}
