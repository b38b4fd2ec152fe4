package godbtx

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type modelSummary struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type modelColumnSummary struct {
	Name        string `json:"name"`
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
}

type listModelsInput struct{}

type listModelsOutput struct {
	Models []modelSummary `json:"models"`
}

type modelNameInput struct {
	ModelName string `json:"model_name"`
}

type modelDetailsOutput struct {
	Name         string               `json:"name"`
	Description  string               `json:"description,omitempty"`
	CompiledCode string               `json:"compiled_code,omitempty"`
	Columns      []modelColumnSummary `json:"columns,omitempty"`
}

func (t *Toolset) registerDiscoveryTools(server *mcp.Server) error {
	if err := addToolsetTool(server, "get_all_models",
		"List every model in the dbt project's production environment with a short description.",
		t.handleGetAllModels); err != nil {
		return err
	}

	if err := addToolsetTool(server, "get_mart_models",
		"List the mart models, the cleaned up presentation-layer models meant for consumption.",
		t.handleGetMartModels); err != nil {
		return err
	}

	if err := addToolsetTool(server, "get_model_details",
		"Get a model's description, compiled sql and catalog columns.",
		t.handleGetModelDetails); err != nil {
		return err
	}

	if err := addToolsetTool(server, "get_model_parents",
		"List the direct upstream dependencies of a model.",
		t.handleGetModelParents); err != nil {
		return err
	}

	if err := addToolsetTool(server, "get_model_children",
		"List the models that depend directly on a model.",
		t.handleGetModelChildren); err != nil {
		return err
	}

	return nil
}

func modelSummaries(models []ModelDescriptor) []modelSummary {
	summaries := []modelSummary{}
	for _, model := range models {
		summaries = append(summaries, modelSummary{
			Name:        model.Name,
			Description: model.Description,
		})
	}
	return summaries
}

func (t *Toolset) handleGetAllModels(
	ctx context.Context, _ *mcp.CallToolRequest, _ listModelsInput,
) (*mcp.CallToolResult, listModelsOutput, error) {
	models, err := t.discovery.GetAllModels(ctx)
	if err != nil {
		return nil, listModelsOutput{}, err
	}
	return nil, listModelsOutput{Models: modelSummaries(models)}, nil
}

func (t *Toolset) handleGetMartModels(
	ctx context.Context, _ *mcp.CallToolRequest, _ listModelsInput,
) (*mcp.CallToolResult, listModelsOutput, error) {
	models, err := t.discovery.GetMartModels(ctx)
	if err != nil {
		return nil, listModelsOutput{}, err
	}
	return nil, listModelsOutput{Models: modelSummaries(models)}, nil
}

func (t *Toolset) handleGetModelDetails(
	ctx context.Context, _ *mcp.CallToolRequest, in modelNameInput,
) (*mcp.CallToolResult, modelDetailsOutput, error) {
	model, err := t.discovery.GetModelDetails(ctx, in.ModelName)
	if err != nil {
		return nil, modelDetailsOutput{}, err
	}

	out := modelDetailsOutput{
		Name:         model.Name,
		Description:  model.Description,
		CompiledCode: model.CompiledCode,
	}
	for _, col := range model.Columns {
		out.Columns = append(out.Columns, modelColumnSummary{
			Name:        col.Name,
			Type:        col.Type,
			Description: col.Description,
		})
	}
	return nil, out, nil
}

func (t *Toolset) handleGetModelParents(
	ctx context.Context, _ *mcp.CallToolRequest, in modelNameInput,
) (*mcp.CallToolResult, listModelsOutput, error) {
	models, err := t.discovery.GetModelParents(ctx, in.ModelName)
	if err != nil {
		return nil, listModelsOutput{}, err
	}
	return nil, listModelsOutput{Models: modelSummaries(models)}, nil
}

func (t *Toolset) handleGetModelChildren(
	ctx context.Context, _ *mcp.CallToolRequest, in modelNameInput,
) (*mcp.CallToolResult, listModelsOutput, error) {
	models, err := t.discovery.GetModelChildren(ctx, in.ModelName)
	if err != nil {
		return nil, listModelsOutput{}, err
	}
	return nil, listModelsOutput{Models: modelSummaries(models)}, nil
}
