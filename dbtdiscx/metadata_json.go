package dbtdiscx

type modelsFilterJson struct {
	ModelingLayer string   `json:"modelingLayer,omitempty"`
	Access        string   `json:"access,omitempty"`
	Group         string   `json:"group,omitempty"`
	Identifiers   []string `json:"identifiers,omitempty"`
}

type modelsVariablesJson struct {
	EnvironmentId int64             `json:"environmentId"`
	After         string            `json:"after,omitempty"`
	First         int               `json:"first"`
	ModelsFilter  *modelsFilterJson `json:"modelsFilter,omitempty"`
}

func encodeModelFilter(filter *ModelFilter) *modelsFilterJson {
	if filter == nil {
		return nil
	}
	if filter.ModelingLayer == "" && filter.Access == "" &&
		filter.Group == "" && filter.Identifier == "" {
		return nil
	}

	filterJson := &modelsFilterJson{
		ModelingLayer: filter.ModelingLayer,
		Access:        filter.Access,
		Group:         filter.Group,
	}
	if filter.Identifier != "" {
		filterJson.Identifiers = []string{filter.Identifier}
	}
	return filterJson
}

type columnJson struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

type relatedNodeJson struct {
	Name        string `json:"name"`
	UniqueId    string `json:"uniqueId"`
	Description string `json:"description"`
}

type modelNodeJson struct {
	Name         string `json:"name"`
	UniqueId     string `json:"uniqueId"`
	Description  string `json:"description"`
	CompiledCode string `json:"compiledCode"`
	Catalog      *struct {
		Columns []columnJson `json:"columns"`
	} `json:"catalog"`
	Parents  []relatedNodeJson `json:"parents"`
	Children []relatedNodeJson `json:"children"`
}

func (n modelNodeJson) toDescriptor() ModelDescriptor {
	model := ModelDescriptor{
		Name:         n.Name,
		UniqueId:     n.UniqueId,
		Description:  n.Description,
		CompiledCode: n.CompiledCode,
	}
	if n.Catalog != nil {
		for _, col := range n.Catalog.Columns {
			model.Columns = append(model.Columns, ColumnDescriptor{
				Name:        col.Name,
				Type:        col.Type,
				Description: col.Description,
			})
		}
	}
	return model
}

func (n relatedNodeJson) toDescriptor() ModelDescriptor {
	return ModelDescriptor{
		Name:        n.Name,
		UniqueId:    n.UniqueId,
		Description: n.Description,
	}
}

type modelsPageJson struct {
	PageInfo struct {
		EndCursor string `json:"endCursor"`
	} `json:"pageInfo"`
	Edges []struct {
		Node modelNodeJson `json:"node"`
	} `json:"edges"`
}

type environmentRespJson struct {
	Environment struct {
		Applied struct {
			Models modelsPageJson `json:"models"`
		} `json:"applied"`
	} `json:"environment"`
}
