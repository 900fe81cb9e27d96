package narrative

import (
	"sort"
	"strings"

	"github.com/Yates-Labs/anar/internal/arabic"
	"github.com/Yates-Labs/anar/internal/engine"
	"github.com/Yates-Labs/anar/internal/rules"
)

// Entry is one matchable phrase in the catalog.
type Entry struct {
	Phrase     string
	Tokens     []string
	Type       engine.MarkerType
	Context    engine.Context
	Element    engine.ElementType
	Confidence float64
	Variant    bool
	Attributes map[string]string
	order      int
}

type lexicon struct {
	roles      map[string]string
	roleStatus map[string]string
	settings   map[string]struct{}
	occasions  map[string]struct{}
}

// Catalog is the immutable lookup table built from a rule set. It is safe to
// share across goroutines.
type Catalog struct {
	byFirst    map[string][]*Entry
	maxLen     int
	validation map[engine.MarkerType]rules.CategoryValidation
	context    map[engine.MarkerType]rules.CategoryContext
	elements   map[engine.ElementType]rules.ElementRule
	scoring    rules.Scoring
	maxRepeats int
	lex        lexicon
}

// NewCatalog binds every category to its rules once and indexes the phrases.
func NewCatalog(set *rules.Set) *Catalog {
	c := &Catalog{
		byFirst:    make(map[string][]*Entry),
		validation: set.Validation.Categories,
		context:    set.Context.Categories,
		elements:   set.Context.Elements,
		scoring:    set.Validation.Scoring,
		maxRepeats: set.Validation.MaxBareRepeats,
		lex: lexicon{
			roles:      make(map[string]string, len(set.Context.Lexicon.Roles)),
			roleStatus: set.Context.Lexicon.RoleStatus,
			settings:   normalizedSet(set.Context.Lexicon.Settings),
			occasions:  normalizedSet(set.Context.Lexicon.Occasions),
		},
	}
	for word, role := range set.Context.Lexicon.Roles {
		c.lex.roles[arabic.Normalize(word)] = role
	}

	order := 0
	for _, m := range set.Context.Markers {
		base := m.Confidence
		if base == 0 {
			base = set.Validation.Scoring.Exact
		}
		c.add(&Entry{
			Phrase:     m.Phrase,
			Tokens:     phraseTokens(m.Phrase),
			Type:       m.Type,
			Context:    m.Context,
			Element:    set.ElementFor(m),
			Confidence: base,
			Attributes: m.Attributes,
			order:      order,
		})
		order++

		if !c.validation[m.Type].AllowVariants {
			continue
		}
		for _, v := range m.Variants {
			c.add(&Entry{
				Phrase:     v,
				Tokens:     phraseTokens(v),
				Type:       m.Type,
				Context:    m.Context,
				Element:    set.ElementFor(m),
				Confidence: base - set.Validation.Scoring.VariantPenalty,
				Variant:    true,
				Attributes: m.Attributes,
				order:      order,
			})
			order++
		}
	}

	for _, list := range c.byFirst {
		sort.SliceStable(list, func(i, j int) bool {
			if len(list[i].Tokens) != len(list[j].Tokens) {
				return len(list[i].Tokens) > len(list[j].Tokens)
			}
			return list[i].order < list[j].order
		})
	}
	return c
}

func (c *Catalog) add(e *Entry) {
	if len(e.Tokens) == 0 {
		return
	}
	c.byFirst[e.Tokens[0]] = append(c.byFirst[e.Tokens[0]], e)
	if len(e.Tokens) > c.maxLen {
		c.maxLen = len(e.Tokens)
	}
}

func phraseTokens(phrase string) []string {
	return strings.Fields(arabic.Normalize(phrase))
}

func normalizedSet(words []string) map[string]struct{} {
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		out[arabic.Normalize(w)] = struct{}{}
	}
	return out
}

func tokenMatches(m engine.Morpheme, want string) bool {
	return m.POS != engine.POSPunct && (m.Normalized == want || m.Lemma == want)
}

// Lookup returns the longest entry matching at the start of window.
func (c *Catalog) Lookup(window []engine.Morpheme) (*Entry, bool) {
	if len(window) == 0 || window[0].POS == engine.POSPunct {
		return nil, false
	}
	candidates := c.byFirst[window[0].Normalized]
	if window[0].Lemma != window[0].Normalized {
		candidates = append(append([]*Entry(nil), candidates...), c.byFirst[window[0].Lemma]...)
	}

	var best *Entry
	for _, e := range candidates {
		if len(e.Tokens) > len(window) {
			continue
		}
		ok := true
		for i, tok := range e.Tokens {
			if !tokenMatches(window[i], tok) {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		if best == nil || len(e.Tokens) > len(best.Tokens) ||
			(len(e.Tokens) == len(best.Tokens) && e.order < best.order) {
			best = e
		}
	}
	return best, best != nil
}

// Floor returns the minimum confidence for a category.
func (c *Catalog) Floor(t engine.MarkerType) float64 {
	return c.validation[t].MinConfidence
}

func (c *Catalog) roleOf(m engine.Morpheme) (string, bool) {
	if r, ok := c.lex.roles[m.Normalized]; ok {
		return r, true
	}
	r, ok := c.lex.roles[m.Lemma]
	return r, ok
}

func inSet(set map[string]struct{}, m engine.Morpheme) bool {
	if _, ok := set[m.Normalized]; ok {
		return true
	}
	_, ok := set[m.Lemma]
	return ok
}
