package arabic

import (
	"unicode"

	"github.com/Yates-Labs/anar/internal/engine"
)

var defaultParticles = []string{
	"يا", "من", "في", "على", "الى", "عن", "ثم", "و", "ف", "ان", "لا", "ما", "قد",
	"لم", "لن", "هل", "بل", "او", "ام", "حتى", "له", "لها", "لهم", "به", "بها",
	"انه", "انها", "هذا", "هذه", "ذلك", "تلك", "الذي", "التي", "اني", "انا",
	"انت", "هو", "هي", "نحن", "مع", "عند", "بعد", "قبل", "كان", "كانت", "لما",
}

var defaultProperNouns = []string{
	"شهرزاد", "شهريار", "دنيازاد", "هارون", "الرشيد", "جعفر", "مسرور",
	"سندباد", "السندباد", "بغداد", "البصرة", "دمشق", "القاهرة", "مصر",
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsMark(r) || unicode.IsDigit(r)
}

func boundaryOf(r rune, quoteOpen *bool) engine.BoundaryKind {
	switch r {
	case ':', '،', '؛', ',', ';':
		return engine.BoundaryClause
	case '.', '؟', '?', '!', '۔':
		return engine.BoundarySentence
	case '«', '“':
		return engine.BoundaryOpen
	case '»', '”':
		return engine.BoundaryClose
	case '"':
		*quoteOpen = !*quoteOpen
		if *quoteOpen {
			return engine.BoundaryOpen
		}
		return engine.BoundaryClose
	}
	return engine.BoundaryNone
}

// stripProclitic removes a leading conjunction و or ف when enough of the word
// remains to be a stem.
func stripProclitic(word string) string {
	rs := []rune(word)
	if len(rs) >= 4 && (rs[0] == 'و' || rs[0] == 'ف') {
		return string(rs[1:])
	}
	return word
}

// Tokenize splits text into word and punctuation morphemes with rune offsets.
func (p *Processor) Tokenize(text string) []engine.Morpheme {
	rs := []rune(text)
	var out []engine.Morpheme
	quoteOpen := false

	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case isWordRune(r):
			start := i
			for i < len(rs) && isWordRune(rs[i]) {
				i++
			}
			out = append(out, p.word(string(rs[start:i]), start, i))
		default:
			tok := string(r)
			out = append(out, engine.Morpheme{
				Token:      tok,
				Normalized: tok,
				Lemma:      tok,
				POS:        engine.POSPunct,
				Start:      i,
				End:        i + 1,
				Boundary:   boundaryOf(r, &quoteOpen),
			})
			i++
		}
	}
	return out
}

func (p *Processor) word(surface string, start, end int) engine.Morpheme {
	normalized := Normalize(surface)
	lemma := normalized
	if _, ok := p.particles[normalized]; !ok {
		if _, ok := p.properNouns[normalized]; !ok {
			lemma = stripProclitic(normalized)
		}
	}
	return engine.Morpheme{
		Token:      surface,
		Normalized: normalized,
		Lemma:      lemma,
		POS:        p.tag(normalized, lemma),
		Start:      start,
		End:        end,
	}
}

func (p *Processor) tag(normalized, lemma string) engine.POS {
	if _, ok := p.particles[normalized]; ok {
		return engine.POSParticle
	}
	if _, ok := p.properNouns[normalized]; ok {
		return engine.POSProper
	}
	if _, ok := p.properNouns[lemma]; ok {
		return engine.POSProper
	}
	if rs := []rune(lemma); len(rs) > 3 && rs[0] == 'ا' && rs[1] == 'ل' {
		return engine.POSNoun
	}
	return engine.POSOther
}
