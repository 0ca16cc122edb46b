package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mcpcontext/docsearch/internal/archive"
	"github.com/mcpcontext/docsearch/internal/config"
	"github.com/mcpcontext/docsearch/internal/docsearch"
	"github.com/mcpcontext/docsearch/internal/log"
	"github.com/mcpcontext/docsearch/tools"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
)

const (
	serverName  = "docsearch-mcp"
	description = "MCP server for searching markdown documentation shipped in zip archives"
)

// version is set via ldflags during build.
var version = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		envFile    string
		archiveDir string
		engine     string
		fieldsFile string
		helpEnv    bool
	)

	cmd := &cobra.Command{
		Use:     serverName,
		Short:   description,
		Version: version,
		Long: `Start the MCP (Model Context Protocol) server on stdio.

The server indexes every .md and .mdx file found in the zip archives of the
archive directory on the first search and keeps the index in memory.
Configuration is loaded from DOCSEARCH_* environment variables and a .env file.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if helpEnv {
				return config.Usage(cmd.OutOrStdout())
			}
			cfg, err := config.Load(envFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if cmd.Flags().Changed("archive-dir") {
				cfg.ArchiveDir = archiveDir
			}
			if cmd.Flags().Changed("engine") {
				cfg.Engine = engine
			}
			if cmd.Flags().Changed("fields") {
				cfg.FieldsFile = fieldsFile
			}
			return run(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file")
	cmd.Flags().StringVar(&archiveDir, "archive-dir", ".", "Directory containing the zip archives")
	cmd.Flags().StringVar(&engine, "engine", docsearch.EngineTFIDF, "Index engine (tfidf or bleve)")
	cmd.Flags().StringVar(&fieldsFile, "fields", "", "YAML file declaring text and keyword fields")
	cmd.Flags().BoolVar(&helpEnv, "help-env", false, "List the DOCSEARCH_* environment variables and exit")

	return cmd
}

func run(parent context.Context, cfg config.EnvConfig) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Set up logging to stderr (MCP uses stdout for protocol)
	logger := log.Setup(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	logger.Info("starting MCP server",
		slog.String("name", serverName),
		slog.String("version", version),
		slog.String("archive_dir", cfg.ArchiveDir),
		slog.String("engine", cfg.Engine))

	schema, err := config.LoadSchema(cfg.FieldsFile)
	if err != nil {
		return err
	}

	reader := archive.NewReader(archive.NewDirSource(), logger)
	provider := docsearch.NewProvider(docsearch.DirLoader(reader, cfg.ArchiveDir, docsearch.BuildOptions{
		Engine: cfg.Engine,
		Schema: schema,
		Logger: logger,
	}), logger)
	defer func() {
		if err := provider.Close(); err != nil {
			logger.Error("error closing doc search", "error", err)
		}
	}()

	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    serverName,
			Version: version,
		},
		nil, // Default options
	)

	tools.RegisterDocSearchTools(server, tools.NewDocSearch(provider, cfg.SearchLimit, logger))
	tools.RegisterFetchTools(server, tools.NewPageFetcher(cfg.ReaderBaseURL, cfg.FetchTimeout, logger))
	tools.RegisterUtilityTools(server)
	logger.Info("server ready and waiting for connections", "tools", 4)

	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
