package apperror

import (
	"errors"
	"fmt"
)

// Kind is the top-level error class surfaced to the HTTP boundary.
type Kind string

const (
	KindInvalidInput         Kind = "INVALID_INPUT"
	KindNotFound             Kind = "NOT_FOUND"
	KindExtractionFailure    Kind = "EXTRACTION_FAILURE"
	KindInferenceUnavailable Kind = "INFERENCE_UNAVAILABLE"
	KindPersistenceFailure   Kind = "PERSISTENCE_FAILURE"
	KindAnalysisFailed       Kind = "ANALYSIS_FAILED"
)

// Reason refines KindExtractionFailure. Each reason maps to its own
// user-facing instruction.
type Reason string

const (
	ReasonNone                Reason = ""
	ReasonInsufficientText    Reason = "INSUFFICIENT_TEXT"
	ReasonScannedPdfSuspected Reason = "SCANNED_PDF_SUSPECTED"
	ReasonOcrEngineFailure    Reason = "OCR_ENGINE_FAILURE"
	ReasonPdfParseTimeout     Reason = "PDF_PARSE_TIMEOUT"
	ReasonPdfParseError       Reason = "PDF_PARSE_ERROR"
)

type Error struct {
	Kind    Kind
	Reason  Reason
	Message string
	Cause   error
}

func (e *Error) Error() string {
	code := string(e.Kind)
	if e.Reason != ReasonNone {
		code += "/" + string(e.Reason)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func New(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

func Extraction(reason Reason, message string, cause error) *Error {
	return &Error{Kind: KindExtractionFailure, Reason: reason, Message: message, Cause: cause}
}

func InvalidInput(message string) *Error {
	return &Error{Kind: KindInvalidInput, Message: message}
}

// KindOf returns the kind of the outermost *Error in err's chain, or "" if
// there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// ReasonOf returns the reason of the first extraction error in err's chain.
func ReasonOf(err error) Reason {
	var e *Error
	if errors.As(err, &e) {
		return e.Reason
	}
	return ReasonNone
}

// Is reports whether err carries the given kind anywhere in its chain.
func Is(err error, kind Kind) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Kind == kind {
			return true
		}
		err = e.Cause
	}
	return false
}
