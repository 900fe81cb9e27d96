package rag

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/Yates-Labs/anar/internal/engine"
)

var (
	ErrInvalidDimension = errors.New("invalid vector dimension")
	ErrConnectionFailed = errors.New("failed to connect to Milvus")
	ErrInsertFailed     = errors.New("failed to insert records")
	ErrSearchFailed     = errors.New("failed to search vectors")
)

const (
	fieldElementID    = "element_id"
	fieldDocumentID   = "document_id"
	fieldTitle        = "title"
	fieldElementType  = "element_type"
	fieldContext      = "context"
	fieldSignificance = "significance"
	fieldText         = "text"
	fieldConfidence   = "confidence"
	fieldStart        = "span_start"
	fieldEnd          = "span_end"
	fieldEmbedding    = "embedding"
)

var outputFields = []string{
	fieldElementID, fieldDocumentID, fieldTitle, fieldElementType, fieldContext,
	fieldSignificance, fieldText, fieldConfidence, fieldStart, fieldEnd,
}

// MilvusConfig holds configuration for Milvus connection and collection
type MilvusConfig struct {
	Address        string // e.g. "localhost:19530"
	CollectionName string
	Dimension      int // must match the embedder

	// HNSW index parameters
	M              int
	EfConstruction int
	Ef             int
}

// DefaultMilvusConfig returns a local configuration sized for
// text-embedding-3-small.
func DefaultMilvusConfig() MilvusConfig {
	return MilvusConfig{
		Address:        "localhost:19530",
		CollectionName: "anar_cultural_elements",
		Dimension:      1536,
		M:              16,
		EfConstruction: 256,
		Ef:             64,
	}
}

// MilvusStore implements VectorStore using Milvus
type MilvusStore struct {
	client client.Client
	config MilvusConfig
}

// NewMilvusStore connects to Milvus and ensures the collection exists with
// the element schema.
func NewMilvusStore(ctx context.Context, config MilvusConfig) (*MilvusStore, error) {
	if config.Dimension <= 0 {
		return nil, ErrInvalidDimension
	}

	c, err := client.NewGrpcClient(ctx, config.Address)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	store := &MilvusStore{
		client: c,
		config: config,
	}

	if err := store.ensureCollection(ctx); err != nil {
		c.Close()
		return nil, err
	}

	return store, nil
}

func varchar(name string, maxLength int) *entity.Field {
	return &entity.Field{
		Name:       name,
		DataType:   entity.FieldTypeVarChar,
		TypeParams: map[string]string{"max_length": strconv.Itoa(maxLength)},
	}
}

func (m *MilvusStore) schema() *entity.Schema {
	elementID := varchar(fieldElementID, 128)
	elementID.PrimaryKey = true

	return &entity.Schema{
		CollectionName: m.config.CollectionName,
		Description:    "cultural elements of analyzed narratives",
		Fields: []*entity.Field{
			elementID,
			varchar(fieldDocumentID, 64),
			varchar(fieldTitle, 1024),
			varchar(fieldElementType, 64),
			varchar(fieldContext, 64),
			varchar(fieldSignificance, 16),
			varchar(fieldText, 4096),
			{Name: fieldConfidence, DataType: entity.FieldTypeFloat},
			{Name: fieldStart, DataType: entity.FieldTypeInt64},
			{Name: fieldEnd, DataType: entity.FieldTypeInt64},
			{
				Name:       fieldEmbedding,
				DataType:   entity.FieldTypeFloatVector,
				TypeParams: map[string]string{"dim": strconv.Itoa(m.config.Dimension)},
			},
		},
	}
}

func (m *MilvusStore) ensureCollection(ctx context.Context) error {
	has, err := m.client.HasCollection(ctx, m.config.CollectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}

	if !has {
		if err := m.client.CreateCollection(ctx, m.schema(), entity.DefaultShardNumber); err != nil {
			return fmt.Errorf("failed to create collection: %w", err)
		}

		idx, err := entity.NewIndexHNSW(entity.COSINE, m.config.M, m.config.EfConstruction)
		if err != nil {
			return fmt.Errorf("failed to create index config: %w", err)
		}
		if err := m.client.CreateIndex(ctx, m.config.CollectionName, fieldEmbedding, idx, false); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	if err := m.client.LoadCollection(ctx, m.config.CollectionName, false); err != nil {
		return fmt.Errorf("failed to load collection: %w", err)
	}
	return nil
}

// Insert adds element records. Every record must carry an embedding of the
// configured dimension. An empty slice is a no-op.
func (m *MilvusStore) Insert(ctx context.Context, records []ElementRecord) error {
	if len(records) == 0 {
		return nil
	}

	n := len(records)
	elementIDs := make([]string, n)
	documentIDs := make([]string, n)
	titles := make([]string, n)
	types := make([]string, n)
	contexts := make([]string, n)
	significances := make([]string, n)
	texts := make([]string, n)
	confidences := make([]float32, n)
	starts := make([]int64, n)
	ends := make([]int64, n)
	embeddings := make([][]float32, n)

	for i, r := range records {
		if len(r.Embedding) != m.config.Dimension {
			return fmt.Errorf("%w: element %s has %d, expected %d", ErrInvalidDimension, r.ElementID, len(r.Embedding), m.config.Dimension)
		}
		elementIDs[i] = r.ElementID
		documentIDs[i] = r.DocumentID
		titles[i] = r.Title
		types[i] = string(r.ElementType)
		contexts[i] = string(r.Context)
		significances[i] = string(r.Significance)
		texts[i] = r.Text
		confidences[i] = r.Confidence
		starts[i] = int64(r.Start)
		ends[i] = int64(r.End)
		embeddings[i] = r.Embedding
	}

	columns := []entity.Column{
		entity.NewColumnVarChar(fieldElementID, elementIDs),
		entity.NewColumnVarChar(fieldDocumentID, documentIDs),
		entity.NewColumnVarChar(fieldTitle, titles),
		entity.NewColumnVarChar(fieldElementType, types),
		entity.NewColumnVarChar(fieldContext, contexts),
		entity.NewColumnVarChar(fieldSignificance, significances),
		entity.NewColumnVarChar(fieldText, texts),
		entity.NewColumnFloat(fieldConfidence, confidences),
		entity.NewColumnInt64(fieldStart, starts),
		entity.NewColumnInt64(fieldEnd, ends),
		entity.NewColumnFloatVector(fieldEmbedding, m.config.Dimension, embeddings),
	}

	if _, err := m.client.Insert(ctx, m.config.CollectionName, "", columns...); err != nil {
		return fmt.Errorf("%w: %v", ErrInsertFailed, err)
	}
	return nil
}

// Flush persists pending inserts.
func (m *MilvusStore) Flush(ctx context.Context) error {
	if err := m.client.Flush(ctx, m.config.CollectionName, false); err != nil {
		return fmt.Errorf("failed to flush data: %w", err)
	}
	return nil
}

// Search performs top-K similarity search with optional filtering
func (m *MilvusStore) Search(ctx context.Context, queryVector []float32, topK int, opts *SearchOptions) ([]ElementHit, error) {
	if len(queryVector) != m.config.Dimension {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrInvalidDimension, m.config.Dimension, len(queryVector))
	}

	sp, err := entity.NewIndexHNSWSearchParam(max(m.config.Ef, topK))
	if err != nil {
		return nil, fmt.Errorf("failed to create search params: %w", err)
	}

	results, err := m.client.Search(
		ctx,
		m.config.CollectionName,
		nil, // partition names
		filterExpr(opts),
		outputFields,
		[]entity.Vector{entity.FloatVector(queryVector)},
		fieldEmbedding,
		entity.COSINE,
		topK,
		sp,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}

	if len(results) == 0 {
		return []ElementHit{}, nil
	}

	hits := make([]ElementHit, results[0].ResultCount)
	for i := range hits {
		hits[i].Score = results[0].Scores[i]
	}
	for _, field := range results[0].Fields {
		for i := range hits {
			assignField(&hits[i].ElementRecord, field, i)
		}
	}

	return hits, nil
}

func assignField(r *ElementRecord, column entity.Column, i int) {
	switch col := column.(type) {
	case *entity.ColumnVarChar:
		v := col.Data()[i]
		switch col.Name() {
		case fieldElementID:
			r.ElementID = v
		case fieldDocumentID:
			r.DocumentID = v
		case fieldTitle:
			r.Title = v
		case fieldElementType:
			r.ElementType = engine.ElementType(v)
		case fieldContext:
			r.Context = engine.Context(v)
		case fieldSignificance:
			r.Significance = engine.Significance(v)
		case fieldText:
			r.Text = v
		}
	case *entity.ColumnFloat:
		if col.Name() == fieldConfidence {
			r.Confidence = col.Data()[i]
		}
	case *entity.ColumnInt64:
		switch col.Name() {
		case fieldStart:
			r.Start = int(col.Data()[i])
		case fieldEnd:
			r.End = int(col.Data()[i])
		}
	}
}

// Query reports which document IDs have indexed elements
func (m *MilvusStore) Query(ctx context.Context, documentIDs []string) (map[string]bool, error) {
	if len(documentIDs) == 0 {
		return map[string]bool{}, nil
	}

	results, err := m.client.Query(
		ctx,
		m.config.CollectionName,
		nil, // partition names
		inExpr(fieldDocumentID, documentIDs),
		[]string{fieldDocumentID},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}

	existence := make(map[string]bool, len(documentIDs))
	for _, id := range documentIDs {
		existence[id] = false
	}

	for _, column := range results {
		if column.Name() != fieldDocumentID {
			continue
		}
		if varcharCol, ok := column.(*entity.ColumnVarChar); ok {
			for _, id := range varcharCol.Data() {
				existence[id] = true
			}
		}
	}

	return existence, nil
}

// Delete removes every element of the given documents
func (m *MilvusStore) Delete(ctx context.Context, documentIDs []string) error {
	if len(documentIDs) == 0 {
		return nil
	}

	if err := m.client.Delete(ctx, m.config.CollectionName, "", inExpr(fieldDocumentID, documentIDs)); err != nil {
		return fmt.Errorf("failed to delete records: %w", err)
	}

	return nil
}

// GetStats returns collection statistics
func (m *MilvusStore) GetStats(ctx context.Context) (map[string]interface{}, error) {
	stats, err := m.client.GetCollectionStatistics(ctx, m.config.CollectionName)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}

	return map[string]interface{}{
		"row_count":  stats["row_count"],
		"collection": m.config.CollectionName,
		"dimension":  m.config.Dimension,
	}, nil
}

// Close releases the Milvus connection
func (m *MilvusStore) Close() error {
	if m.client != nil {
		return m.client.Close()
	}
	return nil
}

// inExpr builds a Milvus boolean expression matching any of values.
func inExpr(field string, values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = strconv.Quote(v)
	}
	return fmt.Sprintf("%s in [%s]", field, strings.Join(quoted, ", "))
}

// filterExpr joins the non-empty filters of opts with "and".
func filterExpr(opts *SearchOptions) string {
	if opts == nil {
		return ""
	}

	var clauses []string
	if len(opts.DocumentIDs) > 0 {
		clauses = append(clauses, inExpr(fieldDocumentID, opts.DocumentIDs))
	}
	if len(opts.ElementTypes) > 0 {
		types := make([]string, len(opts.ElementTypes))
		for i, t := range opts.ElementTypes {
			types[i] = string(t)
		}
		clauses = append(clauses, inExpr(fieldElementType, types))
	}
	if len(opts.Contexts) > 0 {
		contexts := make([]string, len(opts.Contexts))
		for i, c := range opts.Contexts {
			contexts[i] = string(c)
		}
		clauses = append(clauses, inExpr(fieldContext, contexts))
	}
	if opts.MinSignificance != "" {
		var allowed []string
		for _, s := range []engine.Significance{engine.SignificanceLow, engine.SignificanceMedium, engine.SignificanceHigh} {
			if s.Rank() >= opts.MinSignificance.Rank() {
				allowed = append(allowed, string(s))
			}
		}
		clauses = append(clauses, inExpr(fieldSignificance, allowed))
	}

	return strings.Join(clauses, " and ")
}
