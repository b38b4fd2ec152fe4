package godbtx

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type cliSelectorInput struct {
	Selector string `json:"selector,omitempty" jsonschema:"dbt node selector passed as --select"`
}

type cliOutput struct {
	Output string `json:"output"`
}

type cliShowInput struct {
	SqlQuery string `json:"sql_query"`
	Limit    int64  `json:"limit,omitempty"`
}

func (t *Toolset) registerCliTools(server *mcp.Server) error {
	type cliTool struct {
		name        string
		command     string
		description string
	}

	tools := []cliTool{
		{"build", "build", "Run dbt build, which runs and tests the selected models in dependency order."},
		{"compile", "compile", "Run dbt compile to render jinja into executable sql without touching the warehouse."},
		{"docs", "docs", "Run dbt docs generate to build the project documentation artifacts."},
		{"list", "list", "Run dbt list to enumerate the resources in the project."},
		{"parse", "parse", "Run dbt parse to validate the project's files and build the manifest."},
		{"run", "run", "Run dbt run, executing the selected models against the warehouse."},
		{"test", "test", "Run dbt test on the selected resources."},
	}

	for _, tool := range tools {
		command := tool.command
		handler := func(
			ctx context.Context, _ *mcp.CallToolRequest, in cliSelectorInput,
		) (*mcp.CallToolResult, cliOutput, error) {
			var args []string
			if in.Selector != "" {
				args = append(args, "--select", in.Selector)
			}
			output, err := t.cli.Run(ctx, command, args...)
			if err != nil {
				return nil, cliOutput{}, err
			}
			return nil, cliOutput{Output: output}, nil
		}

		if err := addToolsetTool(server, tool.name, tool.description, handler); err != nil {
			return err
		}
	}

	return addToolsetTool(server, "show",
		"Run an inline sql query through dbt show and return the rows as json. The query may use jinja refs like {{ ref('model') }}.",
		t.handleCliShow)
}

func (t *Toolset) handleCliShow(
	ctx context.Context, _ *mcp.CallToolRequest, in cliShowInput,
) (*mcp.CallToolResult, cliOutput, error) {
	output, err := t.cli.ShowInline(ctx, in.SqlQuery, int(in.Limit))
	if err != nil {
		return nil, cliOutput{}, err
	}
	return nil, cliOutput{Output: output}, nil
}
