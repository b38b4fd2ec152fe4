package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/dbtkit/godbtx"
	"github.com/dbtkit/godbtx/dbthttpx"
)

var logLevel = pflag.String("log-level", "info", "log level (debug, info, warn, error)")
var showVersion = pflag.Bool("version", false, "print the version and exit")

func main() {
	pflag.Parse()

	if *showVersion {
		fmt.Printf("dbt-agent %s\n", godbtx.BuildVersion())
		return
	}

	logCfg := zap.NewProductionConfig()
	if err := logCfg.Level.UnmarshalText([]byte(*logLevel)); err != nil {
		fmt.Fprintf(os.Stderr, "invalid log level %q\n", *logLevel)
		os.Exit(1)
	}

	logger, err := logCfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logging: %s\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(logger); err != nil {
		logger.Error("dbt-agent exited with error", zap.Error(err))
		os.Exit(1)
	}
}

func run(logger *zap.Logger) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var conn dbthttpx.Connection
	if !cfg.DisableSemanticLayer || !cfg.DisableDiscovery {
		resolved, err := dbthttpx.ResolveConnection(
			cfg.Host, cfg.MulticellAccountPrefix, cfg.EnvironmentId, cfg.Token)
		if err != nil {
			return err
		}
		conn = *resolved

		logger.Info("resolved platform connection",
			zap.String("host", conn.Host),
			zap.String("semanticLayerEndpoint", conn.SemanticLayerEndpoint),
			zap.String("metadataEndpoint", conn.MetadataEndpoint))
	}

	toolset := godbtx.CreateToolset(&godbtx.ToolsetConfig{
		Connection:           conn,
		UserId:               cfg.UserId,
		DbtPath:              cfg.DbtPath,
		ProjectDir:           cfg.ProjectDir,
		DbtGlobalArgs:        cfg.DbtGlobalArgs,
		DisableSemanticLayer: cfg.DisableSemanticLayer,
		DisableDiscovery:     cfg.DisableDiscovery,
		DisableCli:           cfg.DisableCli,
		DisableRemote:        cfg.DisableRemote,
	}, &godbtx.ToolsetOptions{
		Logger: logger,
	})

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "dbt-agent",
		Version: godbtx.BuildVersion(),
	}, nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := toolset.RegisterTools(ctx, server); err != nil {
		return err
	}

	logger.Info("serving tools over stdio")
	return server.Run(ctx, &mcp.StdioTransport{})
}
