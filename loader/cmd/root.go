package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"pdfbot/config"
	"pdfbot/loader/pipeline"

	"github.com/spf13/cobra"
)

type options struct {
	configPath   string
	apiKey       string
	topK         int
	chunkSize    int
	chunkOverlap int
	verbose      bool
}

// pipelineFactory is replaced in tests.
var pipelineFactory = func(ctx context.Context, cfg *config.Config) (*pipeline.Pipeline, func() error, error) {
	return cfg.NewPipeline(ctx)
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "pdfbot",
		Short: "Ask questions about PDF documents",
		Long: `Builds an in-memory index over the given PDF files and answers
questions using only their content.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.verbose {
				slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug})))
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", os.Getenv("PDFBOT_CONFIG"), "path to YAML config")
	flags.StringVar(&opts.apiKey, "api-key", "", "OpenAI API key (overrides OPENAI_API_KEY)")
	flags.IntVarP(&opts.topK, "top-k", "k", 0, "number of chunks to retrieve")
	flags.IntVar(&opts.chunkSize, "chunk-size", 0, "chunk size in characters")
	flags.IntVar(&opts.chunkOverlap, "chunk-overlap", 0, "chunk overlap in characters")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "print page diagnostics and debug logs")

	root.AddCommand(newAskCmd(opts), newChatCmd(opts))
	return root
}

// loadConfig reads the config file and env, then applies the flags that were set.
func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("top-k") {
		cfg.Retrieval.TopK = opts.topK
	}
	if flags.Changed("chunk-size") {
		cfg.Chunk.Size = opts.chunkSize
	}
	if flags.Changed("chunk-overlap") {
		cfg.Chunk.Overlap = opts.chunkOverlap
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	key, err := resolveAPIKey(cfg, opts.apiKey, cmd.InOrStdin(), cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	cfg.APIKey = key
	return cfg, nil
}

func printStats(cmd *cobra.Command, sess *pipeline.Session) {
	st := sess.Stats()
	cmd.PrintErrf("indexed %d document(s), %d page(s), %d chunk(s) with %s in %s\n",
		st.Documents, st.Pages, st.Chunks, st.Model, st.Took.Round(time.Millisecond))
}

func wrapBuild(err error) error {
	return fmt.Errorf("build index: %w", err)
}
