package godbtx

import (
	"context"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/dbtkit/godbtx/dbtclix"
	"github.com/dbtkit/godbtx/dbtdiscx"
	"github.com/dbtkit/godbtx/dbthttpx"
	"github.com/dbtkit/godbtx/dbtslx"
	"github.com/dbtkit/godbtx/zaputils"
)

type ToolsetConfig struct {
	Connection    dbthttpx.Connection
	HttpTransport http.RoundTripper
	UserId        int64

	DbtPath       string
	ProjectDir    string
	DbtGlobalArgs []string

	DisableSemanticLayer bool
	DisableDiscovery     bool
	DisableCli           bool
	DisableRemote        bool
}

type ToolsetOptions struct {
	Logger       *zap.Logger
	UserAgent    string
	QueryTimeout time.Duration
	ResultFormat dbtslx.ResultFormat
}

// Toolset bundles the agent-facing tools over one platform connection.
type Toolset struct {
	logger *zap.Logger

	semanticLayer *SemanticLayerComponent
	discovery     *DiscoveryComponent
	cli           *dbtclix.Runner
	remote        *RemoteComponent
}

func CreateToolset(config *ToolsetConfig, opts *ToolsetOptions) *Toolset {
	if opts == nil {
		opts = &ToolsetOptions{}
	}

	logger := loggerOrNop(opts.Logger)

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = "godbtx/" + buildVersion
	}

	transport := config.HttpTransport
	if transport == nil {
		transport = http.DefaultTransport
	}

	logger.Debug("creating toolset",
		zap.String("host", config.Connection.Host),
		zap.Int64("environmentId", config.Connection.EnvironmentId),
		zaputils.Token("token", config.Connection.Token))

	toolset := &Toolset{
		logger: logger,
	}

	if !config.DisableSemanticLayer {
		toolset.semanticLayer = NewSemanticLayerComponent(&SemanticLayerComponentConfig{
			Client: &dbtslx.SemanticLayer{
				Logger:        logger.Named("semanticlayer"),
				Transport:     transport,
				UserAgent:     userAgent,
				Endpoint:      config.Connection.SemanticLayerEndpoint,
				EnvironmentId: config.Connection.EnvironmentId,
				Token:         config.Connection.Token,
			},
		}, &SemanticLayerComponentOptions{
			Logger:       logger.Named("semanticlayer"),
			QueryTimeout: opts.QueryTimeout,
			ResultFormat: opts.ResultFormat,
		})
	}

	if !config.DisableDiscovery {
		toolset.discovery = NewDiscoveryComponent(&DiscoveryComponentConfig{
			Client: dbtdiscx.Metadata{
				Logger:        logger.Named("discovery"),
				Transport:     transport,
				UserAgent:     userAgent,
				Endpoint:      config.Connection.MetadataEndpoint,
				EnvironmentId: config.Connection.EnvironmentId,
				Token:         config.Connection.Token,
			},
		}, &DiscoveryComponentOptions{
			Logger: logger.Named("discovery"),
		})
	}

	if !config.DisableCli {
		toolset.cli = &dbtclix.Runner{
			Logger:     logger.Named("cli"),
			DbtPath:    config.DbtPath,
			ProjectDir: config.ProjectDir,
			GlobalArgs: config.DbtGlobalArgs,
		}
	}

	if !config.DisableRemote && config.Connection.RemoteMcpEndpoint != "" {
		toolset.remote = NewRemoteComponent(&RemoteComponentConfig{
			Endpoint:      config.Connection.RemoteMcpEndpoint,
			EnvironmentId: config.Connection.EnvironmentId,
			UserId:        config.UserId,
			Token:         config.Connection.Token,
			HttpTransport: transport,
		}, &RemoteComponentOptions{
			Logger:    logger.Named("remote"),
			UserAgent: userAgent,
		})
	}

	return toolset
}

// RegisterTools adds every enabled tool to the server. Remote tools are
// registered last so a slow or unreachable remote endpoint never delays
// the local ones.
func (t *Toolset) RegisterTools(ctx context.Context, server *mcp.Server) error {
	if t.semanticLayer != nil {
		if err := t.registerSemanticLayerTools(server); err != nil {
			return err
		}
	}
	if t.discovery != nil {
		if err := t.registerDiscoveryTools(server); err != nil {
			return err
		}
	}
	if t.cli != nil {
		if err := t.registerCliTools(server); err != nil {
			return err
		}
	}
	if t.remote != nil {
		if err := t.remote.RegisterProxiedTools(ctx, server); err != nil {
			return err
		}
	}
	return nil
}
