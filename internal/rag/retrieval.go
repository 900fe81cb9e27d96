package rag

import (
	"context"
	"fmt"

	"github.com/Yates-Labs/anar/internal/arabic"
	"github.com/Yates-Labs/anar/internal/engine"
)

// SearchOptions narrows a vector search. Empty fields do not filter.
type SearchOptions struct {
	DocumentIDs     []string             `json:"document_ids,omitempty"`
	ElementTypes    []engine.ElementType `json:"element_types,omitempty"`
	Contexts        []engine.Context     `json:"contexts,omitempty"`
	MinSignificance engine.Significance  `json:"min_significance,omitempty"`
}

// ElementHit is a retrieved element with its cosine similarity score.
type ElementHit struct {
	ElementRecord
	Score float32 `json:"score"`
}

// Retriever provides free-text semantic retrieval over indexed elements.
type Retriever struct {
	embedder    Embedder
	vectorStore VectorStore
}

// NewRetriever creates a new Retriever instance.
func NewRetriever(embedder Embedder, vectorStore VectorStore) (*Retriever, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedder cannot be nil")
	}
	if vectorStore == nil {
		return nil, fmt.Errorf("vector store cannot be nil")
	}

	return &Retriever{
		embedder:    embedder,
		vectorStore: vectorStore,
	}, nil
}

// Search embeds the normalized query and returns the topK closest elements.
func (r *Retriever) Search(ctx context.Context, query string, topK int, opts *SearchOptions) ([]ElementHit, error) {
	query = arabic.NormalizeText(query)
	if query == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}
	if topK <= 0 {
		return nil, fmt.Errorf("topK must be positive, got %d", topK)
	}

	embeddingRecords, err := r.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(embeddingRecords) == 0 {
		return nil, fmt.Errorf("no embedding generated for query")
	}

	hits, err := r.vectorStore.Search(ctx, embeddingRecords[0].Embedding, topK, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to search for query: %w", err)
	}

	return hits, nil
}

// SimilarTo returns elements resembling record, excluding elements of the
// record's own document.
func (r *Retriever) SimilarTo(ctx context.Context, record ElementRecord, topK int) ([]ElementHit, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("topK must be positive, got %d", topK)
	}

	embeddingRecords, err := r.embedder.Embed(ctx, []string{EmbeddingText(record)})
	if err != nil {
		return nil, fmt.Errorf("failed to embed element: %w", err)
	}
	if len(embeddingRecords) == 0 {
		return nil, fmt.Errorf("no embedding generated for element")
	}

	// over-fetch so same-document hits can be dropped
	hits, err := r.vectorStore.Search(ctx, embeddingRecords[0].Embedding, topK*2, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to search similar elements: %w", err)
	}

	filtered := make([]ElementHit, 0, topK)
	for _, hit := range hits {
		if hit.DocumentID == record.DocumentID {
			continue
		}
		filtered = append(filtered, hit)
		if len(filtered) >= topK {
			break
		}
	}
	return filtered, nil
}
