package arabic

import (
	"strings"

	"github.com/Yates-Labs/anar/internal/engine"
)

// Validate rejects text that cannot be analyzed. Empty and non-Arabic input
// return distinct errors that both wrap engine.ErrInvalidInput.
func Validate(text string) error {
	if strings.TrimSpace(text) == "" {
		return engine.ErrEmptyText
	}
	for _, r := range text {
		if IsArabicLetter(r) {
			return nil
		}
	}
	return engine.ErrNonArabicText
}
