// Package orchestrator runs the analysis pipeline over corpora: it loads
// texts from a source and analyzes them in bounded parallel batches.
package orchestrator

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Yates-Labs/anar/internal/arabic"
	"github.com/Yates-Labs/anar/internal/engine"
	"github.com/Yates-Labs/anar/internal/ingest"
	"github.com/Yates-Labs/anar/internal/narrative"
)

const (
	DefaultWorkers   = 4
	DefaultBatchSize = 16
)

// BatchOptions bounds batch parallelism. Workers is the number of documents
// analyzed concurrently; BatchSize is how many documents are scheduled before
// waiting for the batch to drain.
//
// OnBatch, when set, is called with the results of each drained batch before
// the next one starts. Its context outlives cancellation of the batch context
// so completed work can still be checkpointed. An OnBatch error stops the
// batch.
type BatchOptions struct {
	Workers   int
	BatchSize int
	OnBatch   func(ctx context.Context, results []DocumentResult) error
}

// DefaultBatchOptions returns the default worker and batch sizes.
func DefaultBatchOptions() BatchOptions {
	return BatchOptions{Workers: DefaultWorkers, BatchSize: DefaultBatchSize}
}

// DocumentResult is the outcome for one input text. Err is a
// *engine.DocumentError when analysis failed. Structure may be set together
// with Err for a frame overflow.
type DocumentResult struct {
	Index     int
	Title     string
	Source    string
	Structure *engine.NarrativeStructure
	Err       error
}

// Pipeline couples the text processor with the narrative analyzer.
type Pipeline struct {
	processor *arabic.Processor
	analyzer  *narrative.Analyzer
	logger    *zap.Logger
}

// NewPipeline creates a pipeline. A nil logger disables logging.
func NewPipeline(processor *arabic.Processor, analyzer *narrative.Analyzer, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{processor: processor, analyzer: analyzer, logger: logger}
}

// AnalyzeText processes and analyzes a single text.
func (p *Pipeline) AnalyzeText(ctx context.Context, text ingest.Text) (*engine.NarrativeStructure, error) {
	if err := ctx.Err(); err != nil {
		return nil, engine.NewDocumentError("", err)
	}

	doc, err := p.processor.Process(text.Content, engine.DocumentMetadata{
		Title:  text.Title,
		Source: text.Source,
		Path:   text.Path,
	})
	if err != nil {
		return nil, engine.NewDocumentError("", err)
	}

	return p.analyzer.Analyze(ctx, doc)
}

// AnalyzeBatch analyzes texts with at most opts.Workers documents in flight
// and returns one result per text in input order. A failing document never
// stops the batch. The returned error is non-nil only when ctx ends before
// every document was analyzed or when OnBatch fails; unstarted documents then
// carry a DocumentError with that cause.
func (p *Pipeline) AnalyzeBatch(ctx context.Context, texts []ingest.Text, opts BatchOptions) ([]DocumentResult, error) {
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}

	results := make([]DocumentResult, len(texts))
	for start := 0; start < len(texts); start += opts.BatchSize {
		if err := ctx.Err(); err != nil {
			p.cancelRemaining(results, texts, start, err)
			return results, fmt.Errorf("batch canceled at document %d: %w", start, err)
		}

		end := min(start+opts.BatchSize, len(texts))

		var g errgroup.Group
		g.SetLimit(opts.Workers)
		for i := start; i < end; i++ {
			g.Go(func() error {
				results[i] = p.analyzeOne(ctx, i, texts[i])
				return nil
			})
		}
		_ = g.Wait()

		p.logger.Debug("batch complete",
			zap.Int("start", start),
			zap.Int("end", end),
			zap.Int("total", len(texts)),
		)

		if opts.OnBatch != nil {
			if err := opts.OnBatch(context.WithoutCancel(ctx), results[start:end]); err != nil {
				p.cancelRemaining(results, texts, end, err)
				return results, fmt.Errorf("batch checkpoint after document %d: %w", end, err)
			}
		}
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	p.logger.Info("analyzed corpus",
		zap.Int("documents", len(texts)),
		zap.Int("failed", failed),
		zap.Int("workers", opts.Workers),
		zap.Int("batch_size", opts.BatchSize),
	)

	if err := ctx.Err(); err != nil {
		return results, fmt.Errorf("batch canceled: %w", err)
	}
	return results, nil
}

func (p *Pipeline) analyzeOne(ctx context.Context, index int, text ingest.Text) DocumentResult {
	result := DocumentResult{Index: index, Title: text.Title, Source: text.Source}

	structure, err := p.AnalyzeText(ctx, text)
	result.Structure = structure
	if structure != nil && result.Title == "" {
		result.Title = structure.Title
	}
	if err != nil {
		result.Err = err
		p.logger.Warn("document analysis failed",
			zap.Int("index", index),
			zap.String("path", text.Path),
			zap.String("code", string(engine.Classify(err))),
			zap.Error(err),
		)
	}
	return result
}

func (p *Pipeline) cancelRemaining(results []DocumentResult, texts []ingest.Text, from int, err error) {
	for i := from; i < len(texts); i++ {
		results[i] = DocumentResult{
			Index:  i,
			Title:  texts[i].Title,
			Source: texts[i].Source,
			Err:    engine.NewDocumentError("", err),
		}
	}
}

// Structures returns the structures of the results in order, skipping
// documents that produced none.
func Structures(results []DocumentResult) []*engine.NarrativeStructure {
	out := make([]*engine.NarrativeStructure, 0, len(results))
	for _, r := range results {
		if r.Structure != nil {
			out = append(out, r.Structure)
		}
	}
	return out
}
