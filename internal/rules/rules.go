// Package rules defines the typed rule documents that drive marker matching,
// structural validation and cultural annotation.
package rules

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Yates-Labs/anar/internal/engine"
)

//go:embed defaults/*.json
var defaults embed.FS

const (
	// MinConfidenceFloor is the lowest floor any category may configure.
	MinConfidenceFloor = 0.85
	// BidirectionalFloor is the lowest floor for relationship markers.
	BidirectionalFloor = 0.90
)

// Context field names recognised in required_context lists.
const (
	FieldSpeaker      = "speaker"
	FieldAddressee    = "addressee"
	FieldSetting      = "setting"
	FieldOccasion     = "occasion"
	FieldParticipants = "participants"
)

var ErrInvalidRules = errors.New("invalid rules")

// Set bundles both rule documents.
type Set struct {
	Context    ContextRules
	Validation ValidationRules
}

// ContextRules maps categories to required context, element types to their
// transformation rules, and lists the marker phrases themselves.
type ContextRules struct {
	Categories map[engine.MarkerType]CategoryContext `yaml:"categories"`
	Elements   map[engine.ElementType]ElementRule    `yaml:"elements"`
	Lexicon    Lexicon                               `yaml:"lexicon"`
	Markers    []MarkerEntry                         `yaml:"markers"`
}

// CategoryContext lists the context fields a category may need.
type CategoryContext struct {
	RequiredContext []string           `yaml:"required_context"`
	Element         engine.ElementType `yaml:"element"`
}

// ElementRule is the transformation rule for one cultural element type.
type ElementRule struct {
	RequiredAttributes     []string `yaml:"required_attributes"`
	PreserveReverence      bool     `yaml:"preserve_reverence"`
	PreserveHistoricalName bool     `yaml:"preserve_historical_name"`
}

// Lexicon holds word lists used to resolve context and attributes.
type Lexicon struct {
	Roles      map[string]string `yaml:"roles"`
	RoleStatus map[string]string `yaml:"role_status"`
	Settings   []string          `yaml:"settings"`
	Occasions  []string          `yaml:"occasions"`
}

// MarkerEntry is one catalog phrase.
type MarkerEntry struct {
	Phrase     string             `yaml:"phrase"`
	Type       engine.MarkerType  `yaml:"type"`
	Context    engine.Context     `yaml:"context"`
	Element    engine.ElementType `yaml:"element"`
	Confidence float64            `yaml:"confidence"`
	Variants   []string           `yaml:"variants"`
	Attributes map[string]string  `yaml:"attributes"`
}

// ValidationRules configures confidence scoring and structural checks.
type ValidationRules struct {
	Scoring        Scoring                                  `yaml:"scoring"`
	MaxBareRepeats int                                      `yaml:"max_bare_repeats"`
	Categories     map[engine.MarkerType]CategoryValidation `yaml:"categories"`
}

// Scoring controls how match quality becomes a raw confidence.
type Scoring struct {
	Exact          float64 `yaml:"exact"`
	VariantPenalty float64 `yaml:"variant_penalty"`
	ContextBoost   float64 `yaml:"context_boost"`
}

// CategoryValidation is the per-category validation rule.
type CategoryValidation struct {
	MinConfidence        float64 `yaml:"min_confidence"`
	RequireContext       bool    `yaml:"require_context"`
	AllowVariants        bool    `yaml:"allow_variants"`
	RequireBidirectional bool    `yaml:"require_bidirectional"`
}

// Default returns the embedded rule set.
func Default() (*Set, error) {
	return Load("", "")
}

// Load reads both rule documents. An empty path selects the embedded default
// for that document. JSON and YAML are both accepted.
func Load(contextPath, validationPath string) (*Set, error) {
	contextData, err := read(contextPath, "defaults/context_rules.json")
	if err != nil {
		return nil, err
	}
	validationData, err := read(validationPath, "defaults/validation_rules.json")
	if err != nil {
		return nil, err
	}
	return Parse(contextData, validationData)
}

func read(path, fallback string) ([]byte, error) {
	if path == "" {
		return defaults.ReadFile(fallback)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules %s: %w", path, err)
	}
	return data, nil
}

// Parse decodes and validates both rule documents.
func Parse(contextData, validationData []byte) (*Set, error) {
	var set Set
	if err := decode(contextData, &set.Context); err != nil {
		return nil, fmt.Errorf("%w: context rules: %v", ErrInvalidRules, err)
	}
	if err := decode(validationData, &set.Validation); err != nil {
		return nil, fmt.Errorf("%w: validation rules: %v", ErrInvalidRules, err)
	}
	set.Validation.applyDefaults()
	if err := set.Validate(); err != nil {
		return nil, err
	}
	return &set, nil
}

func decode(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(out)
}

func (v *ValidationRules) applyDefaults() {
	if v.Scoring.Exact == 0 {
		v.Scoring.Exact = 0.90
	}
	if v.Scoring.VariantPenalty == 0 {
		v.Scoring.VariantPenalty = 0.10
	}
	if v.Scoring.ContextBoost == 0 {
		v.Scoring.ContextBoost = 0.05
	}
	if v.MaxBareRepeats == 0 {
		v.MaxBareRepeats = 2
	}
}

// Validate checks the rule set for internal consistency.
func (s *Set) Validate() error {
	for _, t := range engine.MarkerTypes() {
		cv, ok := s.Validation.Categories[t]
		if !ok {
			return fmt.Errorf("%w: no validation rule for category %q", ErrInvalidRules, t)
		}
		if cv.MinConfidence < MinConfidenceFloor || cv.MinConfidence > 1 {
			return fmt.Errorf("%w: %s min_confidence %.2f outside [%.2f, 1]", ErrInvalidRules, t, cv.MinConfidence, MinConfidenceFloor)
		}
		if cv.RequireBidirectional && cv.MinConfidence < BidirectionalFloor {
			return fmt.Errorf("%w: %s is bidirectional and needs min_confidence >= %.2f", ErrInvalidRules, t, BidirectionalFloor)
		}
	}
	for t := range s.Validation.Categories {
		if !t.Valid() {
			return fmt.Errorf("%w: unknown category %q", ErrInvalidRules, t)
		}
	}

	for t, cc := range s.Context.Categories {
		if !t.Valid() {
			return fmt.Errorf("%w: unknown category %q", ErrInvalidRules, t)
		}
		if cc.Element != "" && !cc.Element.Valid() {
			return fmt.Errorf("%w: category %s has unknown element %q", ErrInvalidRules, t, cc.Element)
		}
		for _, f := range cc.RequiredContext {
			switch f {
			case FieldSpeaker, FieldAddressee, FieldSetting, FieldOccasion, FieldParticipants:
			default:
				return fmt.Errorf("%w: category %s has unknown context field %q", ErrInvalidRules, t, f)
			}
		}
	}
	for e := range s.Context.Elements {
		if !e.Valid() {
			return fmt.Errorf("%w: unknown element type %q", ErrInvalidRules, e)
		}
	}

	sc := s.Validation.Scoring
	if sc.Exact <= 0 || sc.Exact > 1 || sc.VariantPenalty < 0 || sc.ContextBoost < 0 {
		return fmt.Errorf("%w: scoring values out of range", ErrInvalidRules)
	}
	if s.Validation.MaxBareRepeats < 1 {
		return fmt.Errorf("%w: max_bare_repeats must be positive", ErrInvalidRules)
	}

	for i, m := range s.Context.Markers {
		switch {
		case m.Phrase == "":
			return fmt.Errorf("%w: marker %d has no phrase", ErrInvalidRules, i)
		case !m.Type.Valid():
			return fmt.Errorf("%w: marker %q has unknown type %q", ErrInvalidRules, m.Phrase, m.Type)
		case m.Context == "":
			return fmt.Errorf("%w: marker %q has no context", ErrInvalidRules, m.Phrase)
		case m.Element != "" && !m.Element.Valid():
			return fmt.Errorf("%w: marker %q has unknown element %q", ErrInvalidRules, m.Phrase, m.Element)
		case m.Confidence < 0 || m.Confidence > 1:
			return fmt.Errorf("%w: marker %q confidence out of range", ErrInvalidRules, m.Phrase)
		}
	}
	return nil
}

// ElementFor returns the element type a marker produces: the entry's own
// element if set, otherwise the category default.
func (s *Set) ElementFor(m MarkerEntry) engine.ElementType {
	if m.Element != "" {
		return m.Element
	}
	if e := s.Context.Categories[m.Type].Element; e != "" {
		return e
	}
	switch m.Type {
	case engine.MarkerHonorific:
		return engine.ElementHonorific
	case engine.MarkerGreeting:
		return engine.ElementGreeting
	case engine.MarkerSocialCustom:
		return engine.ElementSocialCustom
	}
	return engine.ElementReligiousReference
}
