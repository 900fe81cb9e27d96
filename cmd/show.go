package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Yates-Labs/anar/internal/store/sqlite"
)

var (
	showStore  string
	showSource string
	showLimit  int
)

var showCmd = &cobra.Command{
	Use:   "show [document-id]",
	Short: "Show stored documents",
	Long: `Show a stored narrative structure, or list all stored documents when no
document ID is given.

Examples:
  anar show
  anar show --source github.com/owner/tales --limit 20
  anar show 5f0c1e9a-3c1b-5d8e-9a51-0c6f2d4b7e11`,
	Args: cobra.MaximumNArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().StringVar(&showStore, "store", "", "Document store path (default from config)")
	showCmd.Flags().StringVar(&showSource, "source", "", "Only list documents from this source")
	showCmd.Flags().IntVar(&showLimit, "limit", 0, "Maximum number of documents to list (0 for all)")
}

func runShow(cmd *cobra.Command, args []string) error {
	store, err := openStore(showStore)
	if err != nil {
		return err
	}
	defer store.Close()

	if len(args) == 0 {
		summaries, err := store.List(cmd.Context(), sqlite.ListOptions{Source: showSource, Limit: showLimit})
		if err != nil {
			return err
		}
		renderSummaries(cmd.OutOrStdout(), summaries)
		return nil
	}

	structure, ok, err := store.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("document %s not found", args[0])
	}
	renderStructure(cmd.OutOrStdout(), structure)
	return nil
}
