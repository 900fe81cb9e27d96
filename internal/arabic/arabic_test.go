package arabic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yates-Labs/anar/internal/engine"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"strips tanwin and folds hamza seat", "قائلاً", "قايلا"},
		{"folds hamza on alef", "أَمِير", "امير"},
		{"folds alef below", "إبراهيم", "ابراهيم"},
		{"folds madda", "آمين", "امين"},
		{"alef maqsura", "موسى", "موسي"},
		{"removes tatweel", "الـــملك", "الملك"},
		{"keeps taa marbuta", "الخليفة", "الخليفة"},
		{"full diacritics", "بِسْمِ اللَّهِ", "بسم الله"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestNormalizeTextCollapsesWhitespace(t *testing.T) {
	assert.Equal(t, "قال الملك", NormalizeText("  قَالَ \n\t الملك "))
}

func TestValidate(t *testing.T) {
	assert.ErrorIs(t, Validate(""), engine.ErrEmptyText)
	assert.ErrorIs(t, Validate("   \n"), engine.ErrEmptyText)
	assert.ErrorIs(t, Validate("Once upon a time"), engine.ErrNonArabicText)
	assert.ErrorIs(t, Validate("12345 !?"), engine.ErrNonArabicText)
	assert.NoError(t, Validate("Chapter 1: قال الملك"))

	for _, text := range []string{"", "hello"} {
		assert.ErrorIs(t, Validate(text), engine.ErrInvalidInput)
	}
}

func TestTokenize(t *testing.T) {
	p := NewProcessor()
	got := p.Tokenize("فقال الملك: «حدثني»")

	require.Len(t, got, 6)

	assert.Equal(t, "فقال", got[0].Token)
	assert.Equal(t, "قال", got[0].Lemma)
	assert.Equal(t, engine.Span{Start: 0, End: 4}, engine.Span{Start: got[0].Start, End: got[0].End})

	assert.Equal(t, "الملك", got[1].Token)
	assert.Equal(t, engine.POSNoun, got[1].POS)
	assert.Equal(t, 5, got[1].Start)
	assert.Equal(t, 10, got[1].End)

	assert.Equal(t, engine.POSPunct, got[2].POS)
	assert.Equal(t, engine.BoundaryClause, got[2].Boundary)
	assert.Equal(t, engine.BoundaryOpen, got[3].Boundary)
	assert.Equal(t, "حدثني", got[4].Token)
	assert.Equal(t, engine.BoundaryClose, got[5].Boundary)
	assert.Equal(t, 18, got[5].Start)
}

func TestTokenizeStraightQuotesAlternate(t *testing.T) {
	got := NewProcessor().Tokenize(`قال "نعم" ثم "لا"`)

	var kinds []engine.BoundaryKind
	for _, m := range got {
		if m.POS == engine.POSPunct {
			kinds = append(kinds, m.Boundary)
		}
	}
	assert.Equal(t, []engine.BoundaryKind{
		engine.BoundaryOpen, engine.BoundaryClose, engine.BoundaryOpen, engine.BoundaryClose,
	}, kinds)
}

func TestTagging(t *testing.T) {
	p := NewProcessor(WithProperNouns("قمر الزمان", "نور"))
	got := p.Tokenize("يا شهرزاد حدثنا عن نور والوزير")

	require.Len(t, got, 6)
	assert.Equal(t, engine.POSParticle, got[0].POS)
	assert.Equal(t, engine.POSProper, got[1].POS)
	assert.Equal(t, engine.POSOther, got[2].POS)
	assert.Equal(t, engine.POSParticle, got[3].POS)
	assert.Equal(t, engine.POSProper, got[4].POS)
	assert.Equal(t, "الوزير", got[5].Lemma)
	assert.Equal(t, engine.POSNoun, got[5].POS)
}

func TestProcess(t *testing.T) {
	p := NewProcessor()

	doc, err := p.Process("قَالَتْ شهرزاد: بلغني", engine.DocumentMetadata{Title: "ليلة"})
	require.NoError(t, err)
	assert.Equal(t, "قالت شهرزاد: بلغني", doc.Normalized)
	assert.Equal(t, "true", doc.Features["diacritized"])
	assert.Equal(t, "ليلة", doc.Metadata.Title)
	assert.Len(t, doc.Morphemes, 4)

	_, err = p.Process("", engine.DocumentMetadata{})
	assert.ErrorIs(t, err, engine.ErrEmptyText)

	_, err = p.Process("plain latin text", engine.DocumentMetadata{})
	assert.ErrorIs(t, err, engine.ErrNonArabicText)
}
