package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Yates-Labs/anar/internal/ingest"
	"github.com/Yates-Labs/anar/internal/orchestrator"
)

var (
	batchWorkers   int
	batchSize      int
	batchMaxFiles  int
	batchMaxBytes  int64
	batchNarrator  string
	batchExport    string
	batchFormat    string
	batchSave      bool
	batchExtension []string
)

var batchCmd = &cobra.Command{
	Use:   "batch [source]",
	Short: "Analyze every text in a corpus",
	Long: `Analyze a corpus of texts in parallel and report one result per document,
in corpus order. A failing document does not stop the batch.

The source may be a local file or directory, a Git repository URL, or a
GitHub repository URL (optionally pointing into a tree).

Examples:
  anar batch ./nights
  anar batch https://github.com/user/nights/tree/main/bulaq --workers 8
  anar batch ./nights --save --export corpus.jsonl --format jsonl`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)
	batchCmd.Flags().IntVar(&batchWorkers, "workers", 0, "Documents analyzed concurrently (default from config)")
	batchCmd.Flags().IntVar(&batchSize, "batch-size", 0, "Documents scheduled per batch (default from config)")
	batchCmd.Flags().IntVar(&batchMaxFiles, "max-files", 0, "Maximum number of files to read (0 = unlimited)")
	batchCmd.Flags().Int64Var(&batchMaxBytes, "max-bytes", 0, "Skip files larger than this many bytes (0 = unlimited)")
	batchCmd.Flags().StringVar(&batchNarrator, "narrator", "", "Root narrator for documents that declare none")
	batchCmd.Flags().StringVar(&batchExport, "export", "", "Export structures to a file")
	batchCmd.Flags().StringVar(&batchFormat, "format", "json", "Export format: json or jsonl")
	batchCmd.Flags().BoolVar(&batchSave, "save", false, "Save structures to the document store")
	batchCmd.Flags().StringSliceVar(&batchExtension, "ext", ingest.DefaultExtensions, "File extensions to read")
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	src := orchestrator.DetectSource(args[0])

	texts, err := orchestrator.LoadCorpus(ctx, src, app.cfg.GitHub.Token, ingest.Options{
		Extensions: batchExtension,
		MaxFiles:   batchMaxFiles,
		MaxBytes:   batchMaxBytes,
	})
	if err != nil {
		return fmt.Errorf("load corpus: %w", err)
	}
	app.logger.Info("corpus loaded",
		zap.String("source", src.Location),
		zap.String("kind", string(src.Kind)),
		zap.Int("documents", len(texts)),
	)
	if len(texts) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No texts found in source")
		return nil
	}

	opts := orchestrator.BatchOptions{Workers: app.cfg.Batch.Workers, BatchSize: app.cfg.Batch.BatchSize}
	if batchWorkers > 0 {
		opts.Workers = batchWorkers
	}
	if batchSize > 0 {
		opts.BatchSize = batchSize
	}

	saved := 0
	if batchSave {
		store, err := openStore("")
		if err != nil {
			return err
		}
		defer store.Close()

		// saved per batch so an interrupt keeps finished documents
		opts.OnBatch = func(ctx context.Context, chunk []orchestrator.DocumentResult) error {
			structures := orchestrator.Structures(chunk)
			if len(structures) == 0 {
				return nil
			}
			if err := store.SaveAll(ctx, structures); err != nil {
				return err
			}
			saved += len(structures)
			return nil
		}
	}

	results, batchErr := newPipeline(batchNarrator).AnalyzeBatch(ctx, texts, opts)
	structures := orchestrator.Structures(results)
	if batchSave {
		app.logger.Info("saved structures", zap.Int("documents", saved))
	}

	if batchExport != "" {
		if err := handleExport(cmd.OutOrStdout(), structures, batchExport, batchFormat); err != nil {
			return err
		}
	}

	renderResults(cmd.OutOrStdout(), results)
	return batchErr
}
