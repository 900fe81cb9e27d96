package narrative

import (
	"context"
	"strings"

	"github.com/Yates-Labs/anar/internal/arabic"
	"github.com/Yates-Labs/anar/internal/engine"
)

// Annotator converts validated non-dialogue markers into cultural elements.
type Annotator struct {
	catalog *Catalog
}

// NewAnnotator creates an annotator bound to a catalog.
func NewAnnotator(catalog *Catalog) *Annotator {
	return &Annotator{catalog: catalog}
}

// Annotate returns one element per marker whose required attributes all
// resolve, in marker order, and the number of markers dropped for a missing
// attribute.
func (a *Annotator) Annotate(ctx context.Context, vw *view, markers []Marker) ([]engine.CulturalElement, int, error) {
	elements := []engine.CulturalElement{}
	dropped := 0
	for _, m := range markers {
		if err := ctx.Err(); err != nil {
			return nil, dropped, err
		}
		if m.Type == engine.MarkerDialogueIntro {
			continue
		}
		el, ok := a.annotate(vw, m)
		if !ok {
			dropped++
			continue
		}
		elements = append(elements, el)
	}
	return elements, dropped, nil
}

func (a *Annotator) annotate(vw *view, m Marker) (engine.CulturalElement, bool) {
	elementType := m.entries[0].Element
	rule := a.catalog.elements[elementType]
	significance := SignificanceOf(m.Context)

	required := make(map[string]string, len(rule.RequiredAttributes))
	for _, name := range rule.RequiredAttributes {
		value, ok := a.attribute(vw, m, name, significance)
		if !ok {
			return engine.CulturalElement{}, false
		}
		required[name] = value
	}

	text := m.Text
	if !rule.PreserveReverence && !rule.PreserveHistoricalName {
		text = arabic.Normalize(text)
	}

	el := engine.CulturalElement{
		Type:               elementType,
		Text:               text,
		Context:            m.Context,
		Significance:       significance,
		RequiredAttributes: required,
		Confidence:         m.Confidence,
		Span:               m.Span,
	}
	if rel, ok := a.relationship(vw, m, required["role"]); ok {
		el.Attributes = map[string]string{"relationship": rel}
	}
	return el, true
}

// attribute resolves one attribute. Values read from the addressee noun in
// the clause take precedence over values declared on the catalog entries.
func (a *Annotator) attribute(vw *view, m Marker, name string, significance engine.Significance) (string, bool) {
	noun, hasNoun := vw.addresseeNoun(m)
	var role string
	if hasNoun {
		role, hasNoun = a.catalog.roleOf(noun)
	}

	switch name {
	case "role":
		if hasNoun {
			return role, true
		}
	case "status":
		if hasNoun {
			if s, ok := a.catalog.lex.roleStatus[role]; ok {
				return s, true
			}
		}
	case "gender":
		if hasNoun {
			return genderOf(noun), true
		}
	}

	if v, ok := declared(m, name); ok {
		return v, true
	}

	switch name {
	case "status":
		if r, ok := declared(m, "role"); ok {
			if s, ok := a.catalog.lex.roleStatus[r]; ok {
				return s, true
			}
		}
	case "register":
		switch significance {
		case engine.SignificanceHigh:
			return "formal", true
		case engine.SignificanceMedium:
			return "polite", true
		}
	case "significance":
		return string(significance), true
	case "speaker", "addressee", "setting", "occasion", "participants":
		return vw.field(m, name)
	}
	return "", false
}

func declared(m Marker, name string) (string, bool) {
	for _, e := range m.entries {
		if v, ok := e.Attributes[name]; ok && v != "" {
			return v, true
		}
	}
	return "", false
}

func genderOf(m engine.Morpheme) string {
	if strings.HasSuffix(m.Normalized, "ة") || strings.HasSuffix(m.Normalized, "تي") {
		return "female"
	}
	return "male"
}

// relationship describes who addresses whom when both roles are known.
func (a *Annotator) relationship(vw *view, m Marker, addresseeRole string) (string, bool) {
	if m.Type != engine.MarkerHonorific || addresseeRole == "" {
		return "", false
	}
	for i := len(vw.dialogue) - 1; i >= 0; i-- {
		d := vw.dialogue[i]
		if d.First >= m.First {
			continue
		}
		s, ok := vw.subject(d)
		if !ok {
			return "", false
		}
		speakerRole, ok := a.catalog.roleOf(s)
		if !ok {
			return "", false
		}
		return speakerRole + "_to_" + addresseeRole, true
	}
	return "", false
}
