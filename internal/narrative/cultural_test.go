package narrative

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yates-Labs/anar/internal/engine"
)

func TestAnnotator_HonorificAndPrayer(t *testing.T) {
	s, err := analyze(t, "يا مولاي السلطان أعز الله مقامك")
	require.NoError(t, err)
	require.Len(t, s.CulturalElements, 2)

	h := s.CulturalElements[0]
	assert.Equal(t, engine.ElementHonorific, h.Type)
	assert.Equal(t, "يا مولاي", h.Text)
	assert.Equal(t, map[string]string{"gender": "male", "status": "royal", "role": "sultan"}, h.RequiredAttributes)
	assert.Equal(t, 0.97, h.Confidence)

	p := s.CulturalElements[1]
	assert.Equal(t, engine.ElementFormalPrayer, p.Type)
	assert.Equal(t, engine.ContextBlessing, p.Context)
	assert.Equal(t, "formal", p.RequiredAttributes["register"])
}

func TestAnnotator_MissingAttributeDropsElement(t *testing.T) {
	s, err := analyze(t, "يا شيخ")
	require.NoError(t, err)

	assert.Empty(t, s.CulturalElements)
	assert.Equal(t, 1, s.Metadata.DroppedMissingAttributes)

	s, err = analyze(t, "يا شيخ التاجر")
	require.NoError(t, err)
	require.Len(t, s.CulturalElements, 1)
	assert.Equal(t, "merchant", s.CulturalElements[0].RequiredAttributes["role"])
	assert.Equal(t, "commoner", s.CulturalElements[0].RequiredAttributes["status"])
}

func TestAnnotator_Relationship(t *testing.T) {
	s, err := analyze(t, "قال الوزير: يا مولاي السلطان")
	require.NoError(t, err)

	honorifics := elementsOfType(s, engine.ElementHonorific)
	require.Len(t, honorifics, 1)
	assert.Equal(t, "minister_to_sultan", honorifics[0].Attributes["relationship"])
}

func TestAnnotator_ContextsFromCatalog(t *testing.T) {
	tests := []struct {
		text    string
		typ     engine.ElementType
		context engine.Context
	}{
		{"يا أمير المؤمنين", engine.ElementHonorific, engine.ContextRoyalAddress},
		{"السلام عليكم ورحمة الله", engine.ElementGreeting, engine.ContextFormalGreeting},
		{"بسم الله الرحمن الرحيم", engine.ElementReligiousReference, engine.ContextOpeningPhrase},
		{"في مجلس السلطان قبل الأرض بين يديه الوزير", engine.ElementSocialCustom, engine.ContextRoyalCourt},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			s, err := analyze(t, tt.text)
			require.NoError(t, err)
			require.NotEmpty(t, s.CulturalElements)

			el := s.CulturalElements[0]
			assert.Equal(t, tt.typ, el.Type)
			assert.Equal(t, tt.context, el.Context)
			assert.Equal(t, SignificanceOf(tt.context), el.Significance)
		})
	}
}

func TestAnnotator_TextPreservation(t *testing.T) {
	s, err := analyze(t, "السَّلامُ عليكم يَا مَوْلَايَ")
	require.NoError(t, err)

	greeting := elementsOfType(s, engine.ElementGreeting)
	require.Len(t, greeting, 1)
	assert.Equal(t, "السلام عليكم", greeting[0].Text)

	honorific := elementsOfType(s, engine.ElementHonorific)
	require.Len(t, honorific, 1)
	assert.Equal(t, "يَا مَوْلَايَ", honorific[0].Text)
}

func TestSignificanceOf(t *testing.T) {
	assert.Equal(t, engine.SignificanceHigh, SignificanceOf(engine.ContextRoyalAddress))
	assert.Equal(t, engine.SignificanceHigh, SignificanceOf(engine.ContextFormalGreeting))
	assert.Equal(t, engine.SignificanceMedium, SignificanceOf(engine.ContextCasualGreeting))
	assert.Equal(t, engine.SignificanceLow, SignificanceOf(engine.ContextNarration))
	assert.Equal(t, engine.SignificanceLow, SignificanceOf("unlisted"))
}
