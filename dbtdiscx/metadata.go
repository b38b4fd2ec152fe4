package dbtdiscx

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dbtkit/godbtx/dbthttpx"
)

const (
	partnerSource = "godbtx"
	pageSize      = 100
)

// Metadata is the discovery API client. The query shapes are fixed; only
// the model filter varies. It shares the transport and connection
// resolution with the semantic layer client, nothing else.
type Metadata struct {
	Logger        *zap.Logger
	Transport     http.RoundTripper
	UserAgent     string
	Endpoint      string
	EnvironmentId int64
	Token         string
}

// ModelFilter narrows GetModels. Zero value means no filtering.
type ModelFilter struct {
	ModelingLayer string
	Access        string
	Group         string
	Identifier    string
}

type ColumnDescriptor struct {
	Name        string
	Type        string
	Description string
}

type ModelDescriptor struct {
	Name         string
	UniqueId     string
	Description  string
	CompiledCode string
	Columns      []ColumnDescriptor
}

func (h Metadata) execute(ctx context.Context, operation, document string, variables interface{}) (json.RawMessage, error) {
	varsBytes, err := json.Marshal(variables)
	if err != nil {
		return nil, err
	}

	data, err := dbthttpx.GraphQLExecutor{
		UserAgent:     h.UserAgent,
		Transport:     h.Transport,
		Endpoint:      h.Endpoint,
		Path:          "/graphql",
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

// GetModels lists models in the environment, walking the cursor pagination
// until the gateway stops advancing it.
func (h Metadata) GetModels(ctx context.Context, filter *ModelFilter) ([]ModelDescriptor, error) {
	var models []ModelDescriptor
	afterCursor := ""

	for {
		data, err := h.execute(ctx, "getModels", getModelsDocument, modelsVariablesJson{
			EnvironmentId: h.EnvironmentId,
			ModelsFilter:  encodeModelFilter(filter),
			After:         afterCursor,
			First:         pageSize,
		})
		if err != nil {
			return nil, err
		}

		var respJson environmentRespJson
		if err := json.Unmarshal(data, &respJson); err != nil {
			return nil, err
		}

		page := respJson.Environment.Applied.Models
		for _, edge := range page.Edges {
			models = append(models, edge.Node.toDescriptor())
		}

		if page.PageInfo.EndCursor == "" || page.PageInfo.EndCursor == afterCursor {
			break
		}
		afterCursor = page.PageInfo.EndCursor
	}

	return models, nil
}

// GetModelDetails returns the compiled sql, description and catalog columns
// of a single model.
func (h Metadata) GetModelDetails(ctx context.Context, modelName string) (*ModelDescriptor, error) {
	if modelName == "" {
		return nil, &Error{
			Cause:     ErrModelNotFound,
			Operation: "getModelDetails",
			Endpoint:  h.Endpoint,
		}
	}

	models, err := h.GetModels(ctx, &ModelFilter{Identifier: modelName})
	if err != nil {
		return nil, err
	}

	for _, model := range models {
		if model.Name == modelName {
			return &model, nil
		}
	}

	return nil, &Error{
		Cause:     ErrModelNotFound,
		Operation: "getModelDetails",
		Endpoint:  h.Endpoint,
		ModelName: modelName,
	}
}

// GetModelParents returns the direct upstream nodes of a model.
func (h Metadata) GetModelParents(ctx context.Context, modelName string) ([]ModelDescriptor, error) {
	return h.lineage(ctx, "getModelParents", getModelParentsDocument, modelName)
}

// GetModelChildren returns the direct downstream nodes of a model.
func (h Metadata) GetModelChildren(ctx context.Context, modelName string) ([]ModelDescriptor, error) {
	return h.lineage(ctx, "getModelChildren", getModelChildrenDocument, modelName)
}

func (h Metadata) lineage(ctx context.Context, operation, document, modelName string) ([]ModelDescriptor, error) {
	data, err := h.execute(ctx, operation, document, modelsVariablesJson{
		EnvironmentId: h.EnvironmentId,
		ModelsFilter:  encodeModelFilter(&ModelFilter{Identifier: modelName}),
		First:         pageSize,
	})
	if err != nil {
		return nil, err
	}

	var respJson environmentRespJson
	if err := json.Unmarshal(data, &respJson); err != nil {
		return nil, err
	}

	edges := respJson.Environment.Applied.Models.Edges
	if len(edges) == 0 {
		return nil, &Error{
			Cause:     ErrModelNotFound,
			Operation: operation,
			Endpoint:  h.Endpoint,
			ModelName: modelName,
		}
	}

	var related []ModelDescriptor
	for _, node := range append(edges[0].Node.Parents, edges[0].Node.Children...) {
		related = append(related, node.toDescriptor())
	}
	return related, nil
}
