package narrative

import (
	"strings"

	"github.com/Yates-Labs/anar/internal/arabic"
	"github.com/Yates-Labs/anar/internal/engine"
)

var vocative = arabic.Normalize("يا")

// view is a read-only index over one document used to resolve clause-local
// context. Clause ids change after any boundary token; sentence ids change
// only after sentence boundaries.
type view struct {
	doc      *engine.ProcessedText
	catalog  *Catalog
	clause   []int
	sentence []int
	dialogue []Marker
}

func newView(doc *engine.ProcessedText, catalog *Catalog) *view {
	v := &view{
		doc:      doc,
		catalog:  catalog,
		clause:   make([]int, len(doc.Morphemes)),
		sentence: make([]int, len(doc.Morphemes)),
	}
	clause, sentence := 0, 0
	for i, m := range doc.Morphemes {
		if m.Boundary != engine.BoundaryNone {
			// boundary tokens belong to no clause
			clause++
			v.clause[i] = -1
			v.sentence[i] = sentence
			if m.Boundary == engine.BoundarySentence {
				sentence++
			}
			continue
		}
		v.clause[i] = clause
		v.sentence[i] = sentence
	}
	return v
}

// withDialogue returns a copy of v that resolves speakers against markers.
func (v *view) withDialogue(markers []Marker) *view {
	out := *v
	out.dialogue = nil
	for _, m := range markers {
		if m.Type == engine.MarkerDialogueIntro {
			out.dialogue = append(out.dialogue, m)
		}
	}
	return &out
}

func (v *view) clauseOf(m Marker) int {
	for i := m.First; i < m.Last; i++ {
		if v.clause[i] >= 0 {
			return v.clause[i]
		}
	}
	return -1
}

// subject returns the first nominal token after m inside its clause.
func (v *view) subject(m Marker) (engine.Morpheme, bool) {
	clause := v.clauseOf(m)
	ms := v.doc.Morphemes
	for i := m.Last; i < len(ms) && v.clause[i] == clause; i++ {
		if ms[i].POS.IsNominal() {
			return ms[i], true
		}
	}
	return engine.Morpheme{}, false
}

// namesNewSpeaker reports whether m has a subject of its own that differs
// from narrator.
func (v *view) namesNewSpeaker(m Marker, narrator string) bool {
	s, ok := v.subject(m)
	return ok && s.Token != narrator
}

// precedingProper returns the nearest proper noun before token index i.
func (v *view) precedingProper(i int) (engine.Morpheme, bool) {
	for j := i - 1; j >= 0; j-- {
		if v.doc.Morphemes[j].POS == engine.POSProper {
			return v.doc.Morphemes[j], true
		}
	}
	return engine.Morpheme{}, false
}

// narrator resolves who speaks after a dialogue marker.
func (v *view) narrator(m Marker) string {
	if s, ok := v.subject(m); ok {
		return s.Token
	}
	if p, ok := v.precedingProper(m.First); ok {
		return p.Token
	}
	return engine.UnknownNarrator
}

// speaker is the narrator of the nearest dialogue marker before m, or the
// declared document narrator.
func (v *view) speaker(m Marker) (string, bool) {
	for i := len(v.dialogue) - 1; i >= 0; i-- {
		d := v.dialogue[i]
		if d.First < m.First {
			if n := v.narrator(d); n != engine.UnknownNarrator {
				return n, true
			}
			break
		}
	}
	if n := v.doc.Metadata.Narrator; n != "" && n != engine.UnknownNarrator {
		return n, true
	}
	return "", false
}

// addresseeNoun returns the first nominal token after m in its clause.
func (v *view) addresseeNoun(m Marker) (engine.Morpheme, bool) {
	return v.subject(m)
}

func (v *view) addressee(m Marker) (string, bool) {
	if n, ok := v.addresseeNoun(m); ok {
		return n.Token, true
	}
	if first := v.doc.Morphemes[m.First]; first.Normalized == vocative {
		return m.Text, true
	}
	return "", false
}

func (v *view) sentenceTokens(m Marker) []int {
	s := v.sentence[m.First]
	var out []int
	for i := range v.doc.Morphemes {
		if v.sentence[i] == s && (i < m.First || i >= m.Last) {
			out = append(out, i)
		}
	}
	return out
}

func (v *view) findInSentence(m Marker, set map[string]struct{}) (string, bool) {
	for _, i := range v.sentenceTokens(m) {
		if tok := v.doc.Morphemes[i]; inSet(set, tok) {
			return tok.Token, true
		}
	}
	return "", false
}

func (v *view) setting(m Marker) (string, bool) {
	return v.findInSentence(m, v.catalog.lex.settings)
}

func (v *view) occasion(m Marker) (string, bool) {
	return v.findInSentence(m, v.catalog.lex.occasions)
}

// participants lists distinct nominal tokens in the marker's sentence.
func (v *view) participants(m Marker) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, i := range v.sentenceTokens(m) {
		tok := v.doc.Morphemes[i]
		if !tok.POS.IsNominal() {
			continue
		}
		if _, ok := seen[tok.Normalized]; ok {
			continue
		}
		seen[tok.Normalized] = struct{}{}
		out = append(out, tok.Token)
	}
	return out
}

// field resolves a named context field.
func (v *view) field(m Marker, name string) (string, bool) {
	switch name {
	case "speaker":
		return v.speaker(m)
	case "addressee":
		return v.addressee(m)
	case "setting":
		return v.setting(m)
	case "occasion":
		return v.occasion(m)
	case "participants":
		p := v.participants(m)
		return strings.Join(p, "، "), len(p) > 0
	}
	return "", false
}

// parties counts the distinct people a relationship marker connects.
func (v *view) parties(m Marker) int {
	seen := make(map[string]struct{})
	if s, ok := v.speaker(m); ok {
		seen[arabic.Normalize(s)] = struct{}{}
	}
	if n, ok := v.addresseeNoun(m); ok {
		seen[n.Normalized] = struct{}{}
	}
	for _, p := range v.participants(m) {
		seen[arabic.Normalize(p)] = struct{}{}
	}
	return len(seen)
}
