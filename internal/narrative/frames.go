package narrative

import (
	"context"
	"fmt"

	"github.com/Yates-Labs/anar/internal/engine"
)

// DefaultMaxDepth is the deepest frame level accepted by default.
const DefaultMaxDepth = 6

// FrameBuilder reconstructs the frame hierarchy from validated markers with
// an explicit stack.
type FrameBuilder struct {
	maxDepth int
}

// NewFrameBuilder creates a builder. A non-positive depth selects DefaultMaxDepth.
func NewFrameBuilder(maxDepth int) *FrameBuilder {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &FrameBuilder{maxDepth: maxDepth}
}

type openFrame struct {
	index int // into frames, -1 for the root
	level int
}

// Build returns the root frame and the nested frames in document order.
// Each dialogue-introduction marker opens a frame one level below the frame
// on top of the stack. A later marker in the same clause opens another frame
// only when it names a speaker of its own other than the open frame's. Close
// boundaries pop the innermost frame and every frame still open is closed at
// the end of the document. Exceeding the depth ceiling returns
// ErrFrameOverflow and no frames.
func (b *FrameBuilder) Build(ctx context.Context, vw *view, markers []Marker) (engine.Frame, []engine.Frame, error) {
	doc := vw.doc
	end := doc.Length()

	narrator := doc.Metadata.Narrator
	if narrator == "" {
		narrator = engine.UnknownNarrator
	}
	root := engine.Frame{
		ID:       "F0",
		Level:    0,
		Narrator: narrator,
		Span:     engine.Span{Start: 0, End: end},
		Parent:   -1,
	}

	frames := []engine.Frame{}
	stack := []openFrame{{index: -1, level: 0}}

	closeTop := func(at int) {
		top := stack[len(stack)-1]
		frames[top.index].Span.End = at
		stack = stack[:len(stack)-1]
	}

	// close boundaries are consumed in order as markers are reached
	var closers []int
	for i, m := range doc.Morphemes {
		if m.Boundary == engine.BoundaryClose {
			closers = append(closers, i)
		}
	}
	next := 0
	popUntil := func(tokenIndex int) {
		for next < len(closers) && closers[next] < tokenIndex {
			if len(stack) > 1 {
				closeTop(doc.Morphemes[closers[next]].Start)
			}
			next++
		}
	}

	lastClause := -2
	for _, m := range markers {
		if err := ctx.Err(); err != nil {
			return root, nil, err
		}
		if m.Type != engine.MarkerDialogueIntro {
			continue
		}
		popUntil(m.First)

		top := stack[len(stack)-1]
		clause := vw.clauseOf(m)
		if clause == lastClause && top.index >= 0 && !vw.namesNewSpeaker(m, frames[top.index].Narrator) {
			continue
		}
		lastClause = clause

		level := top.level + 1
		if level > b.maxDepth {
			return root, nil, fmt.Errorf("%w: level %d exceeds maximum depth %d at offset %d",
				engine.ErrFrameOverflow, level, b.maxDepth, m.Span.Start)
		}

		parentLevel := top.level
		frames = append(frames, engine.Frame{
			ID:          fmt.Sprintf("F%d", len(frames)+1),
			Level:       level,
			Narrator:    vw.narrator(m),
			Span:        engine.Span{Start: m.Span.End, End: end},
			Parent:      top.index,
			ParentLevel: &parentLevel,
		})
		stack = append(stack, openFrame{index: len(frames) - 1, level: level})
	}

	popUntil(len(doc.Morphemes))
	for len(stack) > 1 {
		closeTop(end)
	}
	return root, frames, nil
}
