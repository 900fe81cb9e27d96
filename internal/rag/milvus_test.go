package rag

import (
	"context"
	"errors"
	"testing"

	"github.com/Yates-Labs/anar/internal/engine"
)

func TestDefaultMilvusConfig(t *testing.T) {
	config := DefaultMilvusConfig()

	if config.Address != "localhost:19530" {
		t.Errorf("Expected address localhost:19530, got %s", config.Address)
	}
	if config.CollectionName != "anar_cultural_elements" {
		t.Errorf("Expected collection anar_cultural_elements, got %s", config.CollectionName)
	}
	if config.Dimension != 1536 {
		t.Errorf("Expected dimension 1536, got %d", config.Dimension)
	}
	if config.M != 16 {
		t.Errorf("Expected M 16, got %d", config.M)
	}
}

func TestMilvusStore_Schema(t *testing.T) {
	store := &MilvusStore{config: DefaultMilvusConfig()}
	schema := store.schema()

	names := make([]string, len(schema.Fields))
	for i, f := range schema.Fields {
		names[i] = f.Name
	}
	want := append(append([]string{}, outputFields...), fieldEmbedding)
	if len(names) != len(want) {
		t.Fatalf("Expected fields %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Field %d: expected %s, got %s", i, want[i], names[i])
		}
	}
	if !schema.Fields[0].PrimaryKey {
		t.Error("Expected element_id to be the primary key")
	}
	if dim := schema.Fields[len(schema.Fields)-1].TypeParams["dim"]; dim != "1536" {
		t.Errorf("Expected vector dim 1536, got %s", dim)
	}
}

func TestMilvusStore_InsertValidation(t *testing.T) {
	store := &MilvusStore{config: MilvusConfig{Dimension: 4}}

	// empty records are a no-op
	if err := store.Insert(context.Background(), nil); err != nil {
		t.Errorf("Expected no-op for empty insert, got %v", err)
	}

	err := store.Insert(context.Background(), []ElementRecord{{ElementID: "doc#0", Embedding: []float32{1, 2}}})
	if !errors.Is(err, ErrInvalidDimension) {
		t.Errorf("Expected ErrInvalidDimension, got %v", err)
	}
}

func TestMilvusStore_SearchValidation(t *testing.T) {
	store := &MilvusStore{config: MilvusConfig{Dimension: 4}}

	_, err := store.Search(context.Background(), []float32{1}, 3, nil)
	if !errors.Is(err, ErrInvalidDimension) {
		t.Errorf("Expected ErrInvalidDimension, got %v", err)
	}
}

func TestFilterExpr(t *testing.T) {
	tests := []struct {
		name string
		opts *SearchOptions
		want string
	}{
		{name: "nil", opts: nil, want: ""},
		{name: "empty", opts: &SearchOptions{}, want: ""},
		{
			name: "documents",
			opts: &SearchOptions{DocumentIDs: []string{"a", "b"}},
			want: `document_id in ["a", "b"]`,
		},
		{
			name: "combined",
			opts: &SearchOptions{
				ElementTypes:    []engine.ElementType{engine.ElementHonorific},
				Contexts:        []engine.Context{engine.ContextRoyalAddress},
				MinSignificance: engine.SignificanceMedium,
			},
			want: `element_type in ["honorific"] and context in ["royal_address"] and significance in ["medium", "high"]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := filterExpr(tt.opts); got != tt.want {
				t.Errorf("filterExpr() = %q, want %q", got, tt.want)
			}
		})
	}
}

// Integration test: requires a running Milvus and an OpenAI key
func TestMilvusStore_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	ctx := context.Background()
	config := DefaultMilvusConfig()
	config.CollectionName = "anar_test_integration"

	store, err := NewMilvusStore(ctx, config)
	if err != nil {
		t.Skipf("Milvus not available: %v", err)
	}
	defer store.Close()

	embedder, err := NewOpenAIEmbedder("text-embedding-3-small", config.Dimension)
	if err != nil {
		t.Skipf("embedder not available: %v", err)
	}

	_ = store.Delete(ctx, []string{"doc-1", "doc-3"})

	n, err := IndexStructures(ctx, sampleStructures(), embedder, store, IndexOptions{ForceReindex: true})
	if err != nil {
		t.Fatalf("Failed to index: %v", err)
	}
	if n != 3 {
		t.Errorf("Expected 3 indexed records, got %d", n)
	}

	existing, err := store.Query(ctx, []string{"doc-1", "doc-2"})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if !existing["doc-1"] || existing["doc-2"] {
		t.Errorf("Unexpected existing documents: %v", existing)
	}

	r, err := NewRetriever(embedder, store)
	if err != nil {
		t.Fatalf("Failed to create retriever: %v", err)
	}
	hits, err := r.Search(ctx, "يا مولاي", 2, &SearchOptions{ElementTypes: []engine.ElementType{engine.ElementHonorific}})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(hits) == 0 {
		t.Fatal("Expected at least one hit")
	}
	if hits[0].DocumentID != "doc-1" {
		t.Errorf("Expected top hit from doc-1, got %s", hits[0].DocumentID)
	}

	if err := store.Delete(ctx, []string{"doc-1", "doc-3"}); err != nil {
		t.Errorf("Delete failed: %v", err)
	}
}
