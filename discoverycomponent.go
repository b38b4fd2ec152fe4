package godbtx

import (
	"context"

	"go.uber.org/zap"

	"github.com/dbtkit/godbtx/dbtdiscx"
)

type ModelFilter = dbtdiscx.ModelFilter
type ModelDescriptor = dbtdiscx.ModelDescriptor

var _ DiscoveryClient = dbtdiscx.Metadata{}

// timeSpineModelName is dbt's synthetic calendar model. It backs time
// dimensions but is never a mart anyone should query directly.
const timeSpineModelName = "metricflow_time_spine"

type DiscoveryComponentConfig struct {
	Client DiscoveryClient
}

type DiscoveryComponentOptions struct {
	Logger *zap.Logger
}

// DiscoveryComponent exposes the project's applied model graph.
type DiscoveryComponent struct {
	logger *zap.Logger
	client DiscoveryClient
}

func NewDiscoveryComponent(
	config *DiscoveryComponentConfig,
	opts *DiscoveryComponentOptions,
) *DiscoveryComponent {
	if opts == nil {
		opts = &DiscoveryComponentOptions{}
	}

	logger := loggerOrNop(opts.Logger)

	return &DiscoveryComponent{
		logger: logger,
		client: config.Client,
	}
}

func (c *DiscoveryComponent) GetAllModels(ctx context.Context) ([]ModelDescriptor, error) {
	return c.client.GetModels(ctx, nil)
}

// GetMartModels lists the mart-layer models, dropping the time spine.
func (c *DiscoveryComponent) GetMartModels(ctx context.Context) ([]ModelDescriptor, error) {
	models, err := c.client.GetModels(ctx, &ModelFilter{ModelingLayer: "marts"})
	if err != nil {
		return nil, err
	}

	marts := models[:0]
	for _, model := range models {
		if model.Name == timeSpineModelName {
			continue
		}
		marts = append(marts, model)
	}
	return marts, nil
}

func (c *DiscoveryComponent) GetModelDetails(ctx context.Context, modelName string) (*ModelDescriptor, error) {
	return c.client.GetModelDetails(ctx, modelName)
}

func (c *DiscoveryComponent) GetModelParents(ctx context.Context, modelName string) ([]ModelDescriptor, error) {
	return c.client.GetModelParents(ctx, modelName)
}

func (c *DiscoveryComponent) GetModelChildren(ctx context.Context, modelName string) ([]ModelDescriptor, error) {
	return c.client.GetModelChildren(ctx, modelName)
}
