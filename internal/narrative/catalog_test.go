package narrative

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yates-Labs/anar/internal/engine"
)

func TestCatalog_LookupPrefersLongestPhrase(t *testing.T) {
	c := NewCatalog(defaultRules(t))
	doc := process(t, "السلام عليكم ورحمة الله وبركاته")

	e, ok := c.Lookup(doc.Morphemes)
	require.True(t, ok)
	assert.Len(t, e.Tokens, 5)
	assert.Equal(t, engine.MarkerGreeting, e.Type)

	e, ok = c.Lookup(doc.Morphemes[:2])
	require.True(t, ok)
	assert.Equal(t, "السلام عليكم", e.Phrase)
}

func TestCatalog_LookupMatchesLemma(t *testing.T) {
	c := NewCatalog(defaultRules(t))

	e, ok := c.Lookup(process(t, "وقال").Morphemes)
	require.True(t, ok)
	assert.Equal(t, engine.MarkerDialogueIntro, e.Type)

	_, ok = c.Lookup(process(t, "السوق").Morphemes)
	assert.False(t, ok)
}

func TestCatalog_VariantsOnlyWhenAllowed(t *testing.T) {
	set := defaultRules(t)
	c := NewCatalog(set)

	e, ok := c.Lookup(process(t, "أمير المؤمنين").Morphemes)
	require.True(t, ok)
	assert.True(t, e.Variant)
	assert.InDelta(t, 0.85, e.Confidence, 1e-9)

	cv := set.Validation.Categories[engine.MarkerHonorific]
	cv.AllowVariants = false
	set.Validation.Categories[engine.MarkerHonorific] = cv

	_, ok = NewCatalog(set).Lookup(process(t, "أمير المؤمنين").Morphemes)
	assert.False(t, ok)
}

func TestScan_YieldsInDocumentOrder(t *testing.T) {
	c := NewCatalog(defaultRules(t))
	doc := process(t, nestedTale)

	var got []string
	for m := range c.Scan(doc) {
		got = append(got, m.Text)
	}
	assert.Equal(t, []string{"فقال", "حدثني", "قائلاً", "سمعت من"}, got)
}

func TestScan_IsRestartableAndLazy(t *testing.T) {
	c := NewCatalog(defaultRules(t))
	seq := c.Scan(process(t, nestedTale))

	var first, second []Marker
	for m := range seq {
		first = append(first, m)
	}
	for m := range seq {
		second = append(second, m)
	}
	assert.Equal(t, first, second)

	n := 0
	for range seq {
		n++
		break
	}
	assert.Equal(t, 1, n)
}

func TestScan_ConfidenceBoost(t *testing.T) {
	c := NewCatalog(defaultRules(t))

	var bare, boosted Marker
	for m := range c.Scan(process(t, "قال: نعم")) {
		bare = m
	}
	for m := range c.Scan(process(t, "قال الملك")) {
		boosted = m
	}
	assert.Equal(t, 0.90, bare.Confidence)
	assert.Equal(t, 0.95, boosted.Confidence)
}
