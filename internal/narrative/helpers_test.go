package narrative

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Yates-Labs/anar/internal/arabic"
	"github.com/Yates-Labs/anar/internal/engine"
	"github.com/Yates-Labs/anar/internal/rules"
)

func defaultRules(t *testing.T) *rules.Set {
	t.Helper()
	set, err := rules.Default()
	require.NoError(t, err)
	return set
}

func process(t *testing.T, text string) *engine.ProcessedText {
	t.Helper()
	doc, err := arabic.NewProcessor().Process(text, engine.DocumentMetadata{})
	require.NoError(t, err)
	return doc
}

func analyze(t *testing.T, text string, opts ...Option) (*engine.NarrativeStructure, error) {
	t.Helper()
	return NewAnalyzer(defaultRules(t), opts...).Analyze(context.Background(), process(t, text))
}

func elementsOfType(s *engine.NarrativeStructure, typ engine.ElementType) []engine.CulturalElement {
	var out []engine.CulturalElement
	for _, el := range s.CulturalElements {
		if el.Type == typ {
			out = append(out, el)
		}
	}
	return out
}

func levels(frames []engine.Frame) []int {
	out := make([]int, len(frames))
	for i, f := range frames {
		out[i] = f.Level
	}
	return out
}
