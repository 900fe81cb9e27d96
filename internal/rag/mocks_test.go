package rag

import (
	"context"
	"math"
	"sort"
	"strings"
)

// hashEmbedder maps each text to a deterministic vector built from its runes.
type hashEmbedder struct {
	dimension int
	calls     [][]string
	err       error
}

func (h *hashEmbedder) Embed(_ context.Context, texts []string) ([]EmbeddingRecord, error) {
	if h.err != nil {
		return nil, h.err
	}
	h.calls = append(h.calls, texts)
	records := make([]EmbeddingRecord, len(texts))
	for i, text := range texts {
		vec := make([]float32, h.dimension)
		for _, r := range text {
			vec[int(r)%h.dimension]++
		}
		records[i] = EmbeddingRecord{Text: text, Embedding: vec, Index: i, Model: "hash"}
	}
	return records, nil
}

func (h *hashEmbedder) GetModel() string  { return "hash" }
func (h *hashEmbedder) GetDimension() int { return h.dimension }

// memoryStore is an in-memory VectorStore using cosine similarity.
type memoryStore struct {
	records []ElementRecord
	flushes int
}

func (m *memoryStore) Insert(_ context.Context, records []ElementRecord) error {
	m.records = append(m.records, records...)
	return nil
}

func (m *memoryStore) Flush(context.Context) error {
	m.flushes++
	return nil
}

func (m *memoryStore) Search(_ context.Context, query []float32, topK int, opts *SearchOptions) ([]ElementHit, error) {
	var hits []ElementHit
	for _, r := range m.records {
		if !matches(r, opts) {
			continue
		}
		hits = append(hits, ElementHit{ElementRecord: r, Score: cosine(query, r.Embedding)})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

func (m *memoryStore) Query(_ context.Context, documentIDs []string) (map[string]bool, error) {
	out := make(map[string]bool, len(documentIDs))
	for _, id := range documentIDs {
		out[id] = false
	}
	for _, r := range m.records {
		if _, ok := out[r.DocumentID]; ok {
			out[r.DocumentID] = true
		}
	}
	return out, nil
}

func (m *memoryStore) Delete(_ context.Context, documentIDs []string) error {
	kept := m.records[:0]
	for _, r := range m.records {
		if !contains(documentIDs, r.DocumentID) {
			kept = append(kept, r)
		}
	}
	m.records = kept
	return nil
}

func (m *memoryStore) GetStats(context.Context) (map[string]interface{}, error) {
	return map[string]interface{}{"row_count": len(m.records)}, nil
}

func (m *memoryStore) Close() error { return nil }

func matches(r ElementRecord, opts *SearchOptions) bool {
	if opts == nil {
		return true
	}
	if len(opts.DocumentIDs) > 0 && !contains(opts.DocumentIDs, r.DocumentID) {
		return false
	}
	if len(opts.ElementTypes) > 0 {
		found := false
		for _, t := range opts.ElementTypes {
			found = found || t == r.ElementType
		}
		if !found {
			return false
		}
	}
	return true
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if strings.EqualFold(x, v) {
			return true
		}
	}
	return false
}

func cosine(a, b []float32) float32 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}
