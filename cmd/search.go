package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Yates-Labs/anar/internal/engine"
	"github.com/Yates-Labs/anar/internal/rag"
)

var (
	searchTopK         int
	searchTypes        []string
	searchContexts     []string
	searchSignificance string
	searchDocumentIDs  []string
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed cultural elements by meaning",
	Long: `Search the vector index for cultural elements similar to a free-text query.

Examples:
  anar search "يا مولاي"
  anar search "دعاء للملك" --type formal_prayer --top-k 10`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().IntVarP(&searchTopK, "top-k", "k", 5, "Number of results")
	searchCmd.Flags().StringSliceVar(&searchTypes, "type", nil, "Filter by element type")
	searchCmd.Flags().StringSliceVar(&searchContexts, "context", nil, "Filter by context")
	searchCmd.Flags().StringVar(&searchSignificance, "min-significance", "", "Minimum significance: low, medium or high")
	searchCmd.Flags().StringSliceVar(&searchDocumentIDs, "document", nil, "Filter by document ID")
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchSignificance != "" && engine.Significance(searchSignificance).Rank() == 0 {
		return fmt.Errorf("unknown significance: %s", searchSignificance)
	}

	opts := &rag.SearchOptions{
		DocumentIDs:     searchDocumentIDs,
		MinSignificance: engine.Significance(searchSignificance),
	}
	for _, t := range searchTypes {
		typ := engine.ElementType(t)
		if !typ.Valid() {
			return fmt.Errorf("unknown element type: %s", t)
		}
		opts.ElementTypes = append(opts.ElementTypes, typ)
	}
	for _, c := range searchContexts {
		opts.Contexts = append(opts.Contexts, engine.Context(c))
	}

	embedder, vectorStore, err := openVectorStack(cmd.Context())
	if err != nil {
		return err
	}
	defer vectorStore.Close()

	retriever, err := rag.NewRetriever(embedder, vectorStore)
	if err != nil {
		return err
	}

	hits, err := retriever.Search(cmd.Context(), strings.Join(args, " "), searchTopK, opts)
	if err != nil {
		return err
	}
	if len(hits) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No matching cultural elements")
		return nil
	}

	renderHits(cmd.OutOrStdout(), hits)
	return nil
}
