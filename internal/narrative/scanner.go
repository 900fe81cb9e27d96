package narrative

import (
	"iter"
	"math"

	"github.com/Yates-Labs/anar/internal/engine"
)

// Marker is a candidate or validated catalog match. Markers are values and
// are never modified once emitted; merging produces a new Marker.
type Marker struct {
	Type       engine.MarkerType
	Span       engine.Span
	First      int // first token index
	Last       int // one past the last token index
	Text       string
	Context    engine.Context
	Confidence float64
	Variant    bool

	entries []*Entry
	parts   []Marker
}

// Entries returns the catalog entries the marker was built from.
func (m Marker) Entries() []*Entry {
	return m.entries
}

// Scan yields candidate markers in document order. Each position yields at
// most its longest match; overlapping candidates from different positions are
// left for the validator. The sequence is lazy and may be ranged over again.
func (c *Catalog) Scan(doc *engine.ProcessedText) iter.Seq[Marker] {
	return func(yield func(Marker) bool) {
		text := []rune(doc.Original)
		ms := doc.Morphemes
		for i := range ms {
			end := min(len(ms), i+c.maxLen)
			e, ok := c.Lookup(ms[i:end])
			if !ok {
				continue
			}
			last := i + len(e.Tokens)
			m := Marker{
				Type:       e.Type,
				Span:       engine.Span{Start: ms[i].Start, End: ms[last-1].End},
				First:      i,
				Last:       last,
				Context:    e.Context,
				Confidence: c.score(e, ms, i, last),
				Variant:    e.Variant,
				entries:    []*Entry{e},
			}
			m.Text = surface(text, m.Span)
			if !yield(m) {
				return
			}
		}
	}
}

// score boosts the entry's base confidence when a nominal token sits directly
// next to the match.
func (c *Catalog) score(e *Entry, ms []engine.Morpheme, first, last int) float64 {
	s := e.Confidence
	if (last < len(ms) && ms[last].POS.IsNominal()) || (first > 0 && ms[first-1].POS.IsNominal()) {
		s += c.scoring.ContextBoost
	}
	return clamp(math.Round(s*100) / 100)
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func surface(text []rune, s engine.Span) string {
	if s.Start < 0 || s.End > len(text) || s.Start >= s.End {
		return ""
	}
	return string(text[s.Start:s.End])
}
