// Package narrative detects nested narrative frames and annotates culturally
// significant expressions in processed Arabic text.
//
// A document flows through the marker scanner, the structural validator and
// then, independently, the frame stack builder and the cultural annotator.
// Every stage is deterministic: the same text and rules always produce the
// same NarrativeStructure.
package narrative

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Yates-Labs/anar/internal/engine"
	"github.com/Yates-Labs/anar/internal/rules"
)

var documentNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/Yates-Labs/anar/documents"))

const titleWords = 6

// Analyzer runs the full per-document pipeline. It holds only immutable
// state and is safe for concurrent use.
type Analyzer struct {
	catalog   *Catalog
	validator *Validator
	frames    *FrameBuilder
	annotator *Annotator
	logger    *zap.Logger
	narrator  string
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLogger sets the logger used for debug output.
func WithLogger(logger *zap.Logger) Option {
	return func(a *Analyzer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithMaxDepth sets the frame depth ceiling.
func WithMaxDepth(depth int) Option {
	return func(a *Analyzer) {
		a.frames = NewFrameBuilder(depth)
	}
}

// WithDefaultNarrator sets the root narrator used when a document declares none.
func WithDefaultNarrator(name string) Option {
	return func(a *Analyzer) {
		a.narrator = name
	}
}

// NewAnalyzer builds an analyzer from a rule set.
func NewAnalyzer(set *rules.Set, opts ...Option) *Analyzer {
	catalog := NewCatalog(set)
	a := &Analyzer{
		catalog:   catalog,
		validator: NewValidator(catalog),
		frames:    NewFrameBuilder(DefaultMaxDepth),
		annotator: NewAnnotator(catalog),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Catalog returns the analyzer's marker catalog.
func (a *Analyzer) Catalog() *Catalog {
	return a.catalog
}

// DocumentID derives a stable identifier from where the document came from
// and its text. Documents with neither source nor path are identified by
// their text alone.
func DocumentID(doc *engine.ProcessedText) string {
	name := doc.Original
	if meta := doc.Metadata; meta.Source != "" || meta.Path != "" {
		name = meta.Source + "\x00" + meta.Path + "\x00" + doc.Original
	}
	return uuid.NewSHA1(documentNamespace, []byte(name)).String()
}

// Analyze produces the narrative structure for one document.
//
// Invalid input and malformed structure return a nil structure. A frame
// overflow returns the structure with its cultural elements and no frames
// together with an error matching engine.ErrFrameOverflow.
func (a *Analyzer) Analyze(ctx context.Context, doc *engine.ProcessedText) (*engine.NarrativeStructure, error) {
	if doc == nil || len(doc.Morphemes) == 0 {
		return nil, engine.NewDocumentError("", engine.ErrNoTokens)
	}
	id := DocumentID(doc)

	if doc.Metadata.Narrator == "" && a.narrator != "" {
		declared := *doc
		declared.Metadata.Narrator = a.narrator
		doc = &declared
	}

	markers, stats, err := a.validator.Validate(ctx, doc, a.catalog.Scan(doc))
	if err != nil {
		return nil, engine.NewDocumentError(id, err)
	}

	vw := newView(doc, a.catalog).withDialogue(markers)

	structure := &engine.NarrativeStructure{
		ID:     id,
		Title:  title(doc),
		Frames: []engine.Frame{},
		Metadata: engine.StructureMetadata{
			DocumentID:            id,
			SchemaVersion:         engine.SchemaVersion,
			Source:                doc.Metadata.Source,
			TokenCount:            len(doc.Morphemes),
			MarkerCount:           len(markers),
			DroppedLowConfidence:  stats.LowConfidence,
			DroppedMissingContext: stats.MissingContext,
			DroppedOverlap:        stats.Overlap,
			MergedHonorifics:      stats.Merged,
		},
	}

	root, frames, frameErr := a.frames.Build(ctx, vw, markers)
	if frameErr != nil && !errors.Is(frameErr, engine.ErrFrameOverflow) {
		return nil, engine.NewDocumentError(id, frameErr)
	}
	structure.Root = root

	elements, dropped, err := a.annotator.Annotate(ctx, vw, markers)
	if err != nil {
		return nil, engine.NewDocumentError(id, err)
	}
	structure.CulturalElements = elements
	structure.Metadata.DroppedMissingAttributes = dropped

	a.logger.Debug("analyzed document",
		zap.String("document", id),
		zap.Int("candidates", stats.Candidates),
		zap.Int("markers", len(markers)),
		zap.Int("frames", len(frames)),
		zap.Int("elements", len(elements)),
		zap.Int("dropped_low_confidence", stats.LowConfidence),
		zap.Int("dropped_missing_context", stats.MissingContext),
		zap.Int("dropped_missing_attributes", dropped),
	)

	if frameErr != nil {
		structure.Metadata.FrameError = engine.CodeFrameOverflow
		return structure, engine.NewDocumentError(id, frameErr)
	}

	structure.Frames = frames
	for _, f := range frames {
		structure.FrameLevel = max(structure.FrameLevel, f.Level)
	}
	return structure, nil
}

func title(doc *engine.ProcessedText) string {
	if doc.Metadata.Title != "" {
		return doc.Metadata.Title
	}
	var words []string
	for _, m := range doc.Morphemes {
		if m.POS == engine.POSPunct {
			continue
		}
		words = append(words, m.Token)
		if len(words) == titleWords {
			break
		}
	}
	return strings.Join(words, " ")
}
