// Package rag indexes cultural elements in a vector store and retrieves
// them by free-text similarity.
package rag

import (
	"context"

	"github.com/Yates-Labs/anar/internal/engine"
)

// ElementRecord is one cultural element prepared for the vector index.
type ElementRecord struct {
	ElementID    string              `json:"element_id"`
	DocumentID   string              `json:"document_id"`
	Title        string              `json:"title,omitempty"`
	ElementType  engine.ElementType  `json:"element_type"`
	Context      engine.Context      `json:"context"`
	Significance engine.Significance `json:"significance"`
	Text         string              `json:"text"`
	Confidence   float32             `json:"confidence"`
	Start        int                 `json:"start"`
	End          int                 `json:"end"`
	Embedding    []float32           `json:"-"`
}

// VectorStore defines the interface for vector storage and similarity search
// of cultural element embeddings.
type VectorStore interface {
	// Insert adds element records in a single operation
	Insert(ctx context.Context, records []ElementRecord) error

	// Flush ensures all pending data is persisted
	Flush(ctx context.Context) error

	// Search performs top-K similarity search with optional filtering
	Search(ctx context.Context, queryVector []float32, topK int, opts *SearchOptions) ([]ElementHit, error)

	// Query reports which document IDs have indexed elements
	Query(ctx context.Context, documentIDs []string) (map[string]bool, error)

	// Delete removes every element of the given documents
	Delete(ctx context.Context, documentIDs []string) error

	GetStats(ctx context.Context) (map[string]interface{}, error)

	Close() error
}

// IndexOptions provides configuration for element indexing
type IndexOptions struct {
	// BatchSize determines how many elements to embed at once
	BatchSize int

	// ForceReindex deletes and re-inserts documents that are already indexed
	ForceReindex bool

	// SkipExisting skips documents that already have indexed elements
	SkipExisting bool
}
