package narrative

import "github.com/Yates-Labs/anar/internal/engine"

var significanceByContext = map[engine.Context]engine.Significance{
	engine.ContextRoyalAddress:      engine.SignificanceHigh,
	engine.ContextReligiousAddress:  engine.SignificanceHigh,
	engine.ContextRoyalCourt:        engine.SignificanceHigh,
	engine.ContextOpeningPhrase:     engine.SignificanceHigh,
	engine.ContextBlessing:          engine.SignificanceHigh,
	engine.ContextOath:              engine.SignificanceHigh,
	engine.ContextFormalGreeting:    engine.SignificanceHigh,
	engine.ContextRespectfulAddress: engine.SignificanceMedium,
	engine.ContextCasualGreeting:    engine.SignificanceMedium,
	engine.ContextHospitality:       engine.SignificanceMedium,
	engine.ContextFarewell:          engine.SignificanceMedium,
}

// SignificanceOf returns the fixed significance of a context. Unlisted
// contexts are low.
func SignificanceOf(c engine.Context) engine.Significance {
	if s, ok := significanceByContext[c]; ok {
		return s
	}
	return engine.SignificanceLow
}
