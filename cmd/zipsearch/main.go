// Command zipsearch indexes the markdown files inside a directory of zip
// archives and prints the documents most relevant to a query.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/mcpcontext/docsearch/internal/archive"
	"github.com/mcpcontext/docsearch/internal/config"
	"github.com/mcpcontext/docsearch/internal/docsearch"
	"github.com/mcpcontext/docsearch/internal/indexing"
	"github.com/mcpcontext/docsearch/internal/log"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type options struct {
	k          int
	zipDir     string
	engine     string
	fieldsFile string
	envFile    string
	verbose    bool
}

func rootCmd(stdout, stderr io.Writer) *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "zipsearch QUERY",
		Short: "Search markdown docs inside zip archives",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.envFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if !cmd.Flags().Changed("k") {
				opts.k = cfg.SearchLimit
			}
			if !cmd.Flags().Changed("zip-dir") {
				opts.zipDir = cfg.ArchiveDir
			}
			if !cmd.Flags().Changed("engine") {
				opts.engine = cfg.Engine
			}
			if !cmd.Flags().Changed("fields") {
				opts.fieldsFile = cfg.FieldsFile
			}

			// Progress logs only with -v; stdout carries the results.
			level := "WARN"
			if opts.verbose {
				level = cfg.LogLevel
			}
			logger := log.New(level, cfg.LogFormat, stderr)

			return run(cmd.Context(), args[0], opts, logger, stdout)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	cmd.Flags().IntVar(&opts.k, "k", indexing.DefaultLimit, "Number of results to return")
	cmd.Flags().StringVar(&opts.zipDir, "zip-dir", ".", "Directory containing zip files to index")
	cmd.Flags().StringVar(&opts.engine, "engine", docsearch.EngineTFIDF, "Index engine (tfidf or bleve)")
	cmd.Flags().StringVar(&opts.fieldsFile, "fields", "", "YAML file declaring text and keyword fields")
	cmd.Flags().StringVar(&opts.envFile, "env-file", "", "Path to .env file")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log indexing progress to stderr")

	return cmd
}

func run(ctx context.Context, query string, opts options, logger *slog.Logger, stdout io.Writer) error {
	schema, err := config.LoadSchema(opts.fieldsFile)
	if err != nil {
		return err
	}

	reader := archive.NewReader(archive.NewDirSource(), logger)
	paths, err := reader.Discover(opts.zipDir)
	if err != nil {
		return err
	}

	engine, err := docsearch.BuildIndex(ctx, reader, paths, docsearch.BuildOptions{
		Engine: opts.engine,
		Schema: schema,
		Logger: logger,
	})
	if err != nil {
		return err
	}
	defer engine.Close()

	hits, err := engine.Search(ctx, indexing.Query{Text: query, Limit: opts.k})
	if err != nil {
		return err
	}

	if len(hits) == 0 {
		fmt.Fprintln(stdout, "No results found.")
		return nil
	}

	for i, hit := range hits {
		fmt.Fprintf(stdout, "%d. %s  (score: %.4f)\n", i+1, hit.Document.ID, hit.Score)
		fmt.Fprintf(stdout, "   %s\n", indexing.Preview(hit.Document.Content()))
	}
	return nil
}
