package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Yates-Labs/anar/internal/engine"
	"github.com/Yates-Labs/anar/internal/ingest"
	"github.com/Yates-Labs/anar/internal/narrative"
)

var (
	analyzeText     string
	analyzeTitle    string
	analyzeNarrator string
	exportFile      string
	exportFormat    string
	saveResult      bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Analyze one text and display its frames and cultural elements",
	Long: `Analyze a single Arabic text and display its narrative frames and
cultural annotations.

The text is read from a file, from stdin when the file is "-", or from --text.

Examples:
  anar analyze night-001.txt
  anar analyze --text "فقال الملك: حدثني الوزير قائلاً: سمعت من التاجر"
  anar analyze night-001.txt --narrator شهرزاد --export night.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVar(&analyzeText, "text", "", "Analyze this text instead of a file")
	analyzeCmd.Flags().StringVar(&analyzeTitle, "title", "", "Document title")
	analyzeCmd.Flags().StringVar(&analyzeNarrator, "narrator", "", "Declared root narrator")
	analyzeCmd.Flags().StringVar(&exportFile, "export", "", "Export the structure to a file: --export <filename>")
	analyzeCmd.Flags().StringVar(&exportFormat, "format", string(narrative.FormatJSON), "Export format: json or jsonl")
	analyzeCmd.Flags().BoolVar(&saveResult, "save", false, "Save the structure to the document store")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	text, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	structure, err := newPipeline(analyzeNarrator).AnalyzeText(cmd.Context(), text)
	if err != nil && !errors.Is(err, engine.ErrFrameOverflow) {
		return fmt.Errorf("analysis failed: %w", err)
	}
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
	}

	if saveResult {
		store, err := openStore("")
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.Save(cmd.Context(), structure); err != nil {
			return err
		}
	}

	if exportFile != "" {
		return handleExport(cmd.OutOrStdout(), []*engine.NarrativeStructure{structure}, exportFile, exportFormat)
	}

	renderStructure(cmd.OutOrStdout(), structure)
	return nil
}

func readInput(cmd *cobra.Command, args []string) (ingest.Text, error) {
	switch {
	case analyzeText != "":
		return ingest.Text{Title: analyzeTitle, Content: analyzeText}, nil
	case len(args) == 0:
		return ingest.Text{}, fmt.Errorf("a file argument or --text is required")
	case args[0] == "-":
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return ingest.Text{}, fmt.Errorf("read stdin: %w", err)
		}
		return ingest.Text{Title: analyzeTitle, Content: string(data), Source: "stdin"}, nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return ingest.Text{}, fmt.Errorf("read %s: %w", args[0], err)
	}
	title := analyzeTitle
	if title == "" {
		title = ingest.TitleFromPath(args[0])
	}
	return ingest.Text{Path: args[0], Title: title, Content: string(data), Source: args[0]}, nil
}

func handleExport(w io.Writer, structures []*engine.NarrativeStructure, filename, format string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer file.Close()

	if err := narrative.Export(structures, format, file); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	fmt.Fprintf(w, "✓ Exported %d structures to %s\n", len(structures), filename)
	return nil
}
