package narrative

import (
	"context"
	"fmt"
	"iter"
	"sort"

	"github.com/Yates-Labs/anar/internal/engine"
)

// ValidationStats counts what the validator removed or merged.
type ValidationStats struct {
	Candidates     int
	LowConfidence  int
	MissingContext int
	Overlap        int
	Merged         int
}

// Validator turns raw candidates into a clean, ordered marker sequence.
type Validator struct {
	catalog *Catalog
}

// NewValidator creates a validator bound to a catalog.
func NewValidator(catalog *Catalog) *Validator {
	return &Validator{catalog: catalog}
}

// Validate applies, in order: the confidence floor, required context,
// overlap resolution, the bare repetition check and honorific merging.
// A repetition failure rejects the whole document with ErrMalformedStructure.
func (v *Validator) Validate(ctx context.Context, doc *engine.ProcessedText, candidates iter.Seq[Marker]) ([]Marker, ValidationStats, error) {
	var stats ValidationStats
	base := newView(doc, v.catalog)

	var kept []Marker
	for m := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}
		stats.Candidates++
		if m.Confidence < v.catalog.Floor(m.Type) {
			stats.LowConfidence++
			continue
		}
		kept = append(kept, m)
	}

	withSpeech := base.withDialogue(kept)
	contextual := kept[:0:0]
	for _, m := range kept {
		if !v.hasRequiredContext(withSpeech, m) {
			stats.MissingContext++
			continue
		}
		contextual = append(contextual, m)
	}

	resolved := resolveOverlaps(contextual)
	stats.Overlap = len(contextual) - len(resolved)

	if err := v.checkRepetition(doc, resolved); err != nil {
		return nil, stats, err
	}

	merged := mergeHonorifics(doc, resolved)
	stats.Merged = len(resolved) - len(merged)
	return merged, stats, nil
}

func (v *Validator) hasRequiredContext(vw *view, m Marker) bool {
	rule := v.catalog.validation[m.Type]
	if !rule.RequireContext {
		return true
	}
	if rule.RequireBidirectional && vw.parties(m) < 2 {
		return false
	}
	fields := v.catalog.context[m.Type].RequiredContext
	if len(fields) == 0 {
		return true
	}
	for _, f := range fields {
		if _, ok := vw.field(m, f); ok {
			return true
		}
	}
	return false
}

// resolveOverlaps keeps the longest of any overlapping candidates, then the
// most confident, then the earliest, and returns the survivors in document order.
func resolveOverlaps(markers []Marker) []Marker {
	ranked := append([]Marker(nil), markers...)
	sort.SliceStable(ranked, func(i, j int) bool {
		li, lj := ranked[i].Last-ranked[i].First, ranked[j].Last-ranked[j].First
		if li != lj {
			return li > lj
		}
		if ranked[i].Confidence != ranked[j].Confidence {
			return ranked[i].Confidence > ranked[j].Confidence
		}
		return ranked[i].First < ranked[j].First
	})

	taken := make(map[int]bool)
	var out []Marker
	for _, m := range ranked {
		free := true
		for i := m.First; i < m.Last; i++ {
			if taken[i] {
				free = false
				break
			}
		}
		if !free {
			continue
		}
		for i := m.First; i < m.Last; i++ {
			taken[i] = true
		}
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].First < out[j].First })
	return out
}

// checkRepetition rejects runs of dialogue markers with nothing but
// punctuation between them once the run exceeds the configured limit.
func (v *Validator) checkRepetition(doc *engine.ProcessedText, markers []Marker) error {
	run := 0
	var prev *Marker
	for i := range markers {
		m := &markers[i]
		if m.Type != engine.MarkerDialogueIntro {
			continue
		}
		if prev != nil && !hasContent(doc, prev.Last, m.First) {
			run++
		} else {
			run = 1
		}
		if run > v.catalog.maxRepeats {
			return fmt.Errorf("%w: %d consecutive %q markers without narrated content at offset %d",
				engine.ErrMalformedStructure, run, m.Type, m.Span.Start)
		}
		prev = m
	}
	return nil
}

func hasContent(doc *engine.ProcessedText, from, to int) bool {
	for i := from; i < to; i++ {
		if doc.Morphemes[i].POS != engine.POSPunct {
			return true
		}
	}
	return false
}

// mergeHonorifics coalesces honorifics that touch with no token between them.
func mergeHonorifics(doc *engine.ProcessedText, markers []Marker) []Marker {
	text := []rune(doc.Original)
	var out []Marker
	for _, m := range markers {
		n := len(out)
		if n > 0 && m.Type == engine.MarkerHonorific && out[n-1].Type == engine.MarkerHonorific && out[n-1].Last == m.First {
			out[n-1] = merge(text, out[n-1], m)
			continue
		}
		out = append(out, m)
	}
	return out
}

func merge(text []rune, a, b Marker) Marker {
	parts := append(append([]Marker(nil), constituents(a)...), constituents(b)...)

	// the constituent whose context wins: higher significance, then higher
	// confidence, then earlier
	win := 0
	for i := 1; i < len(parts); i++ {
		si, sw := SignificanceOf(parts[i].Context).Rank(), SignificanceOf(parts[win].Context).Rank()
		if si > sw || (si == sw && parts[i].Confidence > parts[win].Confidence) {
			win = i
		}
	}

	entries := append([]*Entry(nil), parts[win].entries...)
	for i, p := range parts {
		if i != win {
			entries = append(entries, p.entries...)
		}
	}

	m := Marker{
		Type:       engine.MarkerHonorific,
		Span:       engine.Span{Start: a.Span.Start, End: b.Span.End},
		First:      a.First,
		Last:       b.Last,
		Context:    parts[win].Context,
		Confidence: max(a.Confidence, b.Confidence),
		Variant:    a.Variant || b.Variant,
		entries:    entries,
		parts:      parts,
	}
	m.Text = surface(text, m.Span)
	return m
}

func constituents(m Marker) []Marker {
	if len(m.parts) > 0 {
		return m.parts
	}
	return []Marker{m}
}
