package godbtx

import (
	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/pkg/errors"
)

func addToolsetTool[In, Out any](
	server *mcp.Server,
	name string,
	description string,
	handler mcp.ToolHandlerFor[In, Out],
) error {
	inSchema, err := jsonschema.For[In](nil)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s input schema", name)
	}

	outSchema, err := jsonschema.For[Out](nil)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s output schema", name)
	}

	mcp.AddTool(server, &mcp.Tool{
		Name:         name,
		Description:  description,
		InputSchema:  inSchema,
		OutputSchema: outSchema,
	}, handler)

	return nil
}
