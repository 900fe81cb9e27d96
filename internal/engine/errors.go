package engine

import (
	"context"
	"errors"
	"fmt"
)

// Code is a stable machine-readable failure classification.
type Code string

const (
	CodeInvalidInput             Code = "invalid_input"
	CodeMalformedStructure       Code = "malformed_structure"
	CodeFrameOverflow            Code = "frame_overflow"
	CodeMissingRequiredAttribute Code = "missing_required_attribute"
	CodeLowConfidence            Code = "low_confidence"
	CodeCanceled                 Code = "canceled"
	CodeUnknown                  Code = "unknown"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrEmptyText    = fmt.Errorf("%w: empty text", ErrInvalidInput)
	// ErrNonArabicText is returned for text with no Arabic-script letters.
	ErrNonArabicText = fmt.Errorf("%w: no Arabic script found", ErrInvalidInput)
	ErrNoTokens      = fmt.Errorf("%w: no tokens", ErrInvalidInput)

	ErrMalformedStructure       = errors.New("malformed structure")
	ErrFrameOverflow            = errors.New("frame overflow")
	ErrMissingRequiredAttribute = errors.New("missing required attribute")
	ErrLowConfidence            = errors.New("low confidence")
)

// Classify maps an error to its Code.
func Classify(err error) Code {
	var docErr *DocumentError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &docErr) && docErr.Code != "":
		return docErr.Code
	case errors.Is(err, ErrInvalidInput):
		return CodeInvalidInput
	case errors.Is(err, ErrMalformedStructure):
		return CodeMalformedStructure
	case errors.Is(err, ErrFrameOverflow):
		return CodeFrameOverflow
	case errors.Is(err, ErrMissingRequiredAttribute):
		return CodeMissingRequiredAttribute
	case errors.Is(err, ErrLowConfidence):
		return CodeLowConfidence
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return CodeCanceled
	}
	return CodeUnknown
}

// DocumentError is a failure scoped to a single document.
type DocumentError struct {
	DocumentID string
	Code       Code
	Err        error
}

// NewDocumentError wraps err for the given document and classifies it.
func NewDocumentError(documentID string, err error) *DocumentError {
	return &DocumentError{DocumentID: documentID, Code: Classify(err), Err: err}
}

func (e *DocumentError) Error() string {
	if e.DocumentID == "" {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return fmt.Sprintf("document %s: %s: %v", e.DocumentID, e.Code, e.Err)
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}
