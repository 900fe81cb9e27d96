package narrative

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/Yates-Labs/anar/internal/engine"
)

// ExportFormat represents supported export formats
type ExportFormat string

const (
	FormatJSON  ExportFormat = "json"
	FormatJSONL ExportFormat = "jsonl"
)

// Export writes structures in the requested format
func Export(structures []*engine.NarrativeStructure, format string, writer io.Writer) error {
	switch ExportFormat(strings.ToLower(format)) {
	case FormatJSON:
		encoder := json.NewEncoder(writer)
		encoder.SetIndent("", "  ")
		return encoder.Encode(structures)
	case FormatJSONL:
		encoder := json.NewEncoder(writer)
		for _, s := range structures {
			if err := encoder.Encode(s); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("unsupported export format: %s (supported: json, jsonl)", format)
}
