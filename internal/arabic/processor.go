package arabic

import (
	"strconv"

	"github.com/Yates-Labs/anar/internal/engine"
)

// Processor turns raw text into engine.ProcessedText. It is safe for
// concurrent use once constructed.
type Processor struct {
	particles   map[string]struct{}
	properNouns map[string]struct{}
}

// Option configures a Processor.
type Option func(*Processor)

// WithProperNouns adds names to the proper-noun gazetteer used for POS tagging.
func WithProperNouns(names ...string) Option {
	return func(p *Processor) {
		for _, n := range names {
			p.properNouns[Normalize(n)] = struct{}{}
		}
	}
}

// NewProcessor creates a processor with the built-in particle list and gazetteer.
func NewProcessor(opts ...Option) *Processor {
	p := &Processor{
		particles:   make(map[string]struct{}, len(defaultParticles)),
		properNouns: make(map[string]struct{}, len(defaultProperNouns)),
	}
	for _, w := range defaultParticles {
		p.particles[Normalize(w)] = struct{}{}
	}
	for _, w := range defaultProperNouns {
		p.properNouns[Normalize(w)] = struct{}{}
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process validates, normalizes and tokenizes text.
func (p *Processor) Process(text string, meta engine.DocumentMetadata) (*engine.ProcessedText, error) {
	if err := Validate(text); err != nil {
		return nil, err
	}

	morphemes := p.Tokenize(text)
	if len(morphemes) == 0 {
		return nil, engine.ErrNoTokens
	}

	return &engine.ProcessedText{
		Original:   text,
		Normalized: NormalizeText(text),
		Morphemes:  morphemes,
		Features: map[string]string{
			"diacritized": strconv.FormatBool(HasDiacritics(text)),
			"token_count": strconv.Itoa(len(morphemes)),
		},
		Metadata: meta,
	}, nil
}
