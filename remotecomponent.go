package godbtx

import (
	"context"
	"net/http"
	"strconv"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

// remoteSession is the subset of the mcp client session the component
// uses, so tests can stand in a fake endpoint.
type remoteSession interface {
	ListTools(ctx context.Context, params *mcp.ListToolsParams) (*mcp.ListToolsResult, error)
	CallTool(ctx context.Context, params *mcp.CallToolParams) (*mcp.CallToolResult, error)
	Close() error
}

type remoteDialFunc func(ctx context.Context) (remoteSession, error)

type RemoteComponentConfig struct {
	Endpoint      string
	EnvironmentId int64
	UserId        int64
	Token         string
	HttpTransport http.RoundTripper
}

type RemoteComponentOptions struct {
	Logger    *zap.Logger
	UserAgent string
}

// RemoteComponent proxies the tools served by the platform's hosted MCP
// endpoint, registering a forwarding handler per remote tool. Each call
// opens a fresh session so no connection outlives its invocation.
type RemoteComponent struct {
	logger   *zap.Logger
	endpoint string
	dial     remoteDialFunc
}

func NewRemoteComponent(
	config *RemoteComponentConfig,
	opts *RemoteComponentOptions,
) *RemoteComponent {
	if opts == nil {
		opts = &RemoteComponentOptions{}
	}

	logger := loggerOrNop(opts.Logger)

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = "godbtx/" + buildVersion
	}

	baseTransport := config.HttpTransport
	if baseTransport == nil {
		baseTransport = http.DefaultTransport
	}

	headers := make(http.Header)
	headers.Set("Authorization", "Bearer "+config.Token)
	headers.Set("User-Agent", userAgent)
	headers.Set("environmentId", strconv.FormatInt(config.EnvironmentId, 10))
	if config.UserId > 0 {
		headers.Set("userId", strconv.FormatInt(config.UserId, 10))
	}

	httpClient := &http.Client{
		Transport: &headerInjectTransport{
			base:    baseTransport,
			headers: headers,
		},
	}

	endpoint := config.Endpoint
	return &RemoteComponent{
		logger:   logger,
		endpoint: endpoint,
		dial: func(ctx context.Context) (remoteSession, error) {
			client := mcp.NewClient(&mcp.Implementation{
				Name:    "godbtx",
				Version: buildVersion,
			}, nil)

			session, err := client.Connect(ctx, &mcp.SSEClientTransport{
				Endpoint:   endpoint,
				HTTPClient: httpClient,
			}, nil)
			if err != nil {
				return nil, err
			}
			return session, nil
		},
	}
}

// RegisterProxiedTools fetches the remote tool listing and registers a
// forwarding handler for each tool, reusing the remote schema as-is. An
// unreachable endpoint is logged and skipped so the local tools still
// come up.
func (c *RemoteComponent) RegisterProxiedTools(ctx context.Context, server *mcp.Server) error {
	session, err := c.dial(ctx)
	if err != nil {
		c.logger.Warn("remote tool endpoint unreachable, serving local tools only",
			zap.String("endpoint", c.endpoint),
			zap.Error(err))
		return nil
	}
	defer func() { _ = session.Close() }()

	listed, err := session.ListTools(ctx, &mcp.ListToolsParams{})
	if err != nil {
		c.logger.Warn("remote tool listing failed, serving local tools only",
			zap.String("endpoint", c.endpoint),
			zap.Error(err))
		return nil
	}

	for _, tool := range listed.Tools {
		server.AddTool(tool, c.proxyHandler(tool.Name))
	}

	c.logger.Debug("registered remote tools", zap.Int("numTools", len(listed.Tools)))
	return nil
}

func (c *RemoteComponent) proxyHandler(toolName string) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return c.callRemote(ctx, toolName, req.Params.Arguments)
	}
}

// callRemote runs one tool call over a session of its own, so a slow
// remote call never holds a connection across invocations.
func (c *RemoteComponent) callRemote(ctx context.Context, toolName string, args any) (*mcp.CallToolResult, error) {
	session, err := c.dial(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = session.Close() }()

	return session.CallTool(ctx, &mcp.CallToolParams{
		Name:      toolName,
		Arguments: args,
	})
}

// headerInjectTransport stamps the auth headers onto every request of the
// sse session, which the mcp client gives us no other hook for.
type headerInjectTransport struct {
	base    http.RoundTripper
	headers http.Header
}

func (t *headerInjectTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for key, vals := range t.headers {
		for _, val := range vals {
			req.Header.Set(key, val)
		}
	}
	return t.base.RoundTrip(req)
}
