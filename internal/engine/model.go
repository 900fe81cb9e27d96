package engine

// SchemaVersion is the current version of the narrative structure data model.
const SchemaVersion = "v1"

// UnknownNarrator is used when no narrator is declared or resolvable.
const UnknownNarrator = "unknown"

// POS is a coarse part-of-speech tag supplied by the upstream text processor.
type POS string

const (
	POSNoun     POS = "NOUN"
	POSProper   POS = "PROPN"
	POSParticle POS = "PART"
	POSPunct    POS = "PUNCT"
	POSOther    POS = "X"
)

// IsNominal reports whether the tag can name a narrator or addressee.
func (p POS) IsNominal() bool {
	return p == POSNoun || p == POSProper
}

// BoundaryKind marks punctuation that delimits clauses, sentences or quoted speech.
type BoundaryKind string

const (
	BoundaryNone     BoundaryKind = ""
	BoundaryClause   BoundaryKind = "clause"
	BoundarySentence BoundaryKind = "sentence"
	BoundaryOpen     BoundaryKind = "open"
	BoundaryClose    BoundaryKind = "close"
)

// Morpheme is one token of processed text. Start and End are rune offsets
// into ProcessedText.Original.
type Morpheme struct {
	Token      string       `json:"token"`
	Normalized string       `json:"normalized"`
	Lemma      string       `json:"lemma,omitempty"`
	Root       string       `json:"root,omitempty"`
	Pattern    string       `json:"pattern,omitempty"`
	POS        POS          `json:"pos"`
	Start      int          `json:"start"`
	End        int          `json:"end"`
	Boundary   BoundaryKind `json:"boundary,omitempty"`
}

// DocumentMetadata carries caller-declared facts about a document.
type DocumentMetadata struct {
	Title    string `json:"title,omitempty"`
	Narrator string `json:"narrator,omitempty"`
	Source   string `json:"source,omitempty"`
	Path     string `json:"path,omitempty"`
}

// ProcessedText is the input contract for narrative analysis. It is produced
// by the text processor and treated as immutable afterwards.
type ProcessedText struct {
	Original   string            `json:"original"`
	Normalized string            `json:"normalized"`
	Morphemes  []Morpheme        `json:"morphemes"`
	Features   map[string]string `json:"features,omitempty"`
	Metadata   DocumentMetadata  `json:"metadata"`
}

// Length returns the document length in runes.
func (p *ProcessedText) Length() int {
	n := len([]rune(p.Original))
	if n == 0 && len(p.Morphemes) > 0 {
		n = p.Morphemes[len(p.Morphemes)-1].End
	}
	return n
}

// Span is a half-open rune range [Start, End).
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Contains reports whether o lies entirely within s.
func (s Span) Contains(o Span) bool {
	return s.Start <= o.Start && o.End <= s.End
}

// Frame is one narrative layer. The root frame has level 0 and Parent -1;
// nested frames reference their parent by index into NarrativeStructure.Frames,
// with -1 meaning the root.
type Frame struct {
	ID          string `json:"id"`
	Level       int    `json:"level"`
	Narrator    string `json:"narrator"`
	Span        Span   `json:"span"`
	Parent      int    `json:"parent"`
	ParentLevel *int   `json:"parent_level"`
}

// ElementType classifies a cultural element.
type ElementType string

const (
	ElementHonorific          ElementType = "honorific"
	ElementFormalPrayer       ElementType = "formal_prayer"
	ElementGreeting           ElementType = "greeting"
	ElementSocialCustom       ElementType = "social_custom"
	ElementReligiousReference ElementType = "religious_reference"
)

// Valid reports whether t is a known element type.
func (t ElementType) Valid() bool {
	switch t {
	case ElementHonorific, ElementFormalPrayer, ElementGreeting, ElementSocialCustom, ElementReligiousReference:
		return true
	}
	return false
}

// Significance ranks how culturally weighty an element is.
type Significance string

const (
	SignificanceLow    Significance = "low"
	SignificanceMedium Significance = "medium"
	SignificanceHigh   Significance = "high"
)

// Rank orders significance levels so they can be compared.
func (s Significance) Rank() int {
	switch s {
	case SignificanceHigh:
		return 3
	case SignificanceMedium:
		return 2
	case SignificanceLow:
		return 1
	}
	return 0
}

// MarkerType is the category of a catalog marker.
type MarkerType string

const (
	MarkerDialogueIntro MarkerType = "dialogue_intro"
	MarkerHonorific     MarkerType = "honorific"
	MarkerReligious     MarkerType = "religious"
	MarkerGreeting      MarkerType = "greeting"
	MarkerSocialCustom  MarkerType = "social_custom"
)

// MarkerTypes lists every marker category in a fixed order.
func MarkerTypes() []MarkerType {
	return []MarkerType{MarkerDialogueIntro, MarkerHonorific, MarkerReligious, MarkerGreeting, MarkerSocialCustom}
}

// Valid reports whether t is a known marker category.
func (t MarkerType) Valid() bool {
	for _, k := range MarkerTypes() {
		if t == k {
			return true
		}
	}
	return false
}

// Context is the social or narrative setting a marker or element belongs to.
type Context string

const (
	ContextNarration         Context = "narration"
	ContextRoyalAddress      Context = "royal_address"
	ContextReligiousAddress  Context = "religious_address"
	ContextRespectfulAddress Context = "respectful_address"
	ContextRoyalCourt        Context = "royal_court"
	ContextOpeningPhrase     Context = "opening_phrase"
	ContextBlessing          Context = "blessing"
	ContextOath              Context = "oath"
	ContextFormalGreeting    Context = "formal_greeting"
	ContextCasualGreeting    Context = "casual_greeting"
	ContextHospitality       Context = "hospitality"
	ContextFarewell          Context = "farewell"
)

// CulturalElement is an annotated culturally meaningful expression.
type CulturalElement struct {
	Type               ElementType       `json:"type"`
	Text               string            `json:"text"`
	Context            Context           `json:"context"`
	Significance       Significance      `json:"significance"`
	RequiredAttributes map[string]string `json:"required_attributes"`
	Attributes         map[string]string `json:"attributes,omitempty"`
	Confidence         float64           `json:"confidence"`
	Span               Span              `json:"span"`
}

// StructureMetadata records identifiers and per-document drop counters.
type StructureMetadata struct {
	DocumentID               string `json:"document_id"`
	SchemaVersion            string `json:"schema_version"`
	Source                   string `json:"source,omitempty"`
	TokenCount               int    `json:"token_count"`
	MarkerCount              int    `json:"marker_count"`
	DroppedLowConfidence     int    `json:"dropped_low_confidence"`
	DroppedMissingContext    int    `json:"dropped_missing_context"`
	DroppedOverlap           int    `json:"dropped_overlap"`
	MergedHonorifics         int    `json:"merged_honorifics"`
	DroppedMissingAttributes int    `json:"dropped_missing_attributes"`
	FrameError               Code   `json:"frame_error,omitempty"`
}

// NarrativeStructure is the analysis result for one document. Frames holds
// the nested frames in document order; the root frame is kept separately.
type NarrativeStructure struct {
	ID               string            `json:"id"`
	Title            string            `json:"title"`
	FrameLevel       int               `json:"frame_level"`
	Root             Frame             `json:"root"`
	Frames           []Frame           `json:"frames"`
	CulturalElements []CulturalElement `json:"cultural_elements"`
	Metadata         StructureMetadata `json:"metadata"`
}

// Narrators returns the narrator of each nested frame in document order.
func (n *NarrativeStructure) Narrators() []string {
	out := make([]string, len(n.Frames))
	for i, f := range n.Frames {
		out[i] = f.Narrator
	}
	return out
}

// ParentOf returns the parent frame of the frame at index i.
func (n *NarrativeStructure) ParentOf(i int) Frame {
	p := n.Frames[i].Parent
	if p < 0 {
		return n.Root
	}
	return n.Frames[p]
}
