// Package arabic prepares raw Arabic text for narrative analysis: input
// validation, orthographic normalization and tokenization into morphemes.
package arabic

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const tatweel = '\u0640'

// isDiacritic matches harakat, tanwin, shadda, sukun, the combining hamza and
// madda marks produced by decomposition, superscript alef and tatweel.
func isDiacritic(r rune) bool {
	return (r >= '\u064B' && r <= '\u065F') || r == '\u0670' || r == tatweel
}

func unifyLetters(r rune) rune {
	switch r {
	case 'ٱ', 'أ', 'إ', 'آ':
		return 'ا'
	case 'ى':
		return 'ي'
	}
	return r
}

func newNormalizer() transform.Transformer {
	return transform.Chain(
		norm.NFD,
		runes.Remove(runes.Predicate(isDiacritic)),
		runes.Map(unifyLetters),
		norm.NFC,
	)
}

// Normalize folds a single word or phrase to its matching form: diacritics and
// tatweel are removed, hamza-carrying alef forms become bare alef and alef
// maqsura becomes yaa. Taa marbuta is kept.
func Normalize(s string) string {
	out, _, err := transform.String(newNormalizer(), s)
	if err != nil {
		return s
	}
	return out
}

// NormalizeText normalizes a whole document and collapses runs of whitespace.
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(Normalize(s)), " ")
}

// HasDiacritics reports whether s carries any short-vowel marks.
func HasDiacritics(s string) bool {
	for _, r := range s {
		if r != tatweel && isDiacritic(r) {
			return true
		}
	}
	return false
}

// IsArabicLetter reports whether r is a letter of the Arabic script.
func IsArabicLetter(r rune) bool {
	return unicode.Is(unicode.Arabic, r) && unicode.IsLetter(r)
}
