package rag

import (
	"context"
	"fmt"

	"github.com/Yates-Labs/anar/internal/arabic"
	"github.com/Yates-Labs/anar/internal/engine"
)

// DefaultIndexOptions returns sensible defaults for indexing
func DefaultIndexOptions() IndexOptions {
	return IndexOptions{
		BatchSize:    32,
		ForceReindex: false,
		SkipExisting: true,
	}
}

// ElementID identifies the i-th cultural element of a document.
func ElementID(documentID string, i int) string {
	return fmt.Sprintf("%s#%d", documentID, i)
}

// RecordsFromStructures flattens the cultural elements of structures into
// index records, in document then element order.
func RecordsFromStructures(structures []*engine.NarrativeStructure) []ElementRecord {
	var records []ElementRecord
	for _, s := range structures {
		if s == nil {
			continue
		}
		for i, el := range s.CulturalElements {
			records = append(records, ElementRecord{
				ElementID:    ElementID(s.ID, i),
				DocumentID:   s.ID,
				Title:        s.Title,
				ElementType:  el.Type,
				Context:      el.Context,
				Significance: el.Significance,
				Text:         el.Text,
				Confidence:   float32(el.Confidence),
				Start:        el.Span.Start,
				End:          el.Span.End,
			})
		}
	}
	return records
}

// EmbeddingText is the text embedded for a record: the normalized element
// text followed by its context label.
func EmbeddingText(r ElementRecord) string {
	return arabic.Normalize(r.Text) + " " + string(r.Context)
}

// IndexStructures embeds the cultural elements of structures in batches and
// inserts them into the vector store. It returns the number of records
// indexed.
func IndexStructures(
	ctx context.Context,
	structures []*engine.NarrativeStructure,
	embedder Embedder,
	vectorStore VectorStore,
	opts IndexOptions,
) (int, error) {
	if embedder == nil {
		return 0, fmt.Errorf("embedder cannot be nil")
	}
	if vectorStore == nil {
		return 0, fmt.Errorf("vector store cannot be nil")
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultIndexOptions().BatchSize
	}

	records := RecordsFromStructures(structures)
	if len(records) == 0 {
		return 0, nil
	}

	documentIDs := uniqueDocumentIDs(records)

	if opts.ForceReindex {
		if err := vectorStore.Delete(ctx, documentIDs); err != nil {
			return 0, fmt.Errorf("failed to delete existing documents: %w", err)
		}
	} else if opts.SkipExisting {
		existing, err := vectorStore.Query(ctx, documentIDs)
		if err != nil {
			return 0, fmt.Errorf("failed to check existing documents: %w", err)
		}
		records = filterNewRecords(records, existing)
	}

	for batchStart := 0; batchStart < len(records); batchStart += opts.BatchSize {
		batch := records[batchStart:min(batchStart+opts.BatchSize, len(records))]

		texts := make([]string, len(batch))
		for i, r := range batch {
			texts[i] = EmbeddingText(r)
		}

		embeddingRecords, err := embedder.Embed(ctx, texts)
		if err != nil {
			return batchStart, fmt.Errorf("failed to generate embeddings for batch starting at %d: %w", batchStart, err)
		}
		if len(embeddingRecords) != len(batch) {
			return batchStart, fmt.Errorf("expected %d embeddings for batch starting at %d, got %d", len(batch), batchStart, len(embeddingRecords))
		}

		for i := range batch {
			batch[i].Embedding = embeddingRecords[i].Embedding
		}

		if err := vectorStore.Insert(ctx, batch); err != nil {
			return batchStart, fmt.Errorf("failed to insert batch starting at %d: %w", batchStart, err)
		}
	}

	if err := vectorStore.Flush(ctx); err != nil {
		return len(records), fmt.Errorf("failed to flush: %w", err)
	}

	return len(records), nil
}

func uniqueDocumentIDs(records []ElementRecord) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, r := range records {
		if !seen[r.DocumentID] {
			seen[r.DocumentID] = true
			ids = append(ids, r.DocumentID)
		}
	}
	return ids
}

// filterNewRecords removes records of documents that are already indexed
func filterNewRecords(records []ElementRecord, existing map[string]bool) []ElementRecord {
	out := make([]ElementRecord, 0, len(records))
	for _, r := range records {
		if !existing[r.DocumentID] {
			out = append(out, r)
		}
	}
	return out
}
