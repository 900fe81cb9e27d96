package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Yates-Labs/anar/internal/engine"
	"github.com/Yates-Labs/anar/internal/rag"
	"github.com/Yates-Labs/anar/internal/store/sqlite"
)

var (
	indexForce     bool
	indexBatchSize int
	indexSource    string
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Index stored cultural elements in the vector store",
	Long: `Embed the cultural elements of every stored document and insert them
into Milvus for semantic search. Already indexed documents are skipped
unless --force is given.

Requires OPENAI_API_KEY and a reachable Milvus server.`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.Flags().BoolVar(&indexForce, "force", false, "Re-index documents that are already indexed")
	indexCmd.Flags().IntVar(&indexBatchSize, "batch-size", 0, "Elements embedded per API call")
	indexCmd.Flags().StringVar(&indexSource, "source", "", "Only index documents from this source")
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	store, err := openStore("")
	if err != nil {
		return err
	}
	defer store.Close()

	summaries, err := store.List(ctx, sqlite.ListOptions{Source: indexSource})
	if err != nil {
		return err
	}
	structures := make([]*engine.NarrativeStructure, 0, len(summaries))
	for _, s := range summaries {
		structure, ok, err := store.Get(ctx, s.DocumentID)
		if err != nil {
			return err
		}
		if ok {
			structures = append(structures, structure)
		}
	}

	embedder, vectorStore, err := openVectorStack(ctx)
	if err != nil {
		return err
	}
	defer vectorStore.Close()

	opts := rag.DefaultIndexOptions()
	opts.ForceReindex = indexForce
	if indexBatchSize > 0 {
		opts.BatchSize = indexBatchSize
	}

	n, err := rag.IndexStructures(ctx, structures, embedder, vectorStore, opts)
	if err != nil {
		return fmt.Errorf("index failed: %w", err)
	}

	app.logger.Info("indexed cultural elements",
		zap.Int("documents", len(structures)),
		zap.Int("elements", n),
	)
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Indexed %d cultural elements from %d documents\n", n, len(structures))
	return nil
}

func openVectorStack(ctx context.Context) (*rag.OpenAIEmbedder, *rag.MilvusStore, error) {
	embedder, err := rag.NewOpenAIEmbedder(app.cfg.Embedding.Model, app.cfg.Embedding.Dimension)
	if err != nil {
		return nil, nil, err
	}

	milvusConfig := rag.DefaultMilvusConfig()
	milvusConfig.Address = app.cfg.Milvus.Address
	milvusConfig.CollectionName = app.cfg.Milvus.Collection
	milvusConfig.Dimension = app.cfg.Embedding.Dimension

	vectorStore, err := rag.NewMilvusStore(ctx, milvusConfig)
	if err != nil {
		return nil, nil, err
	}
	return embedder, vectorStore, nil
}
