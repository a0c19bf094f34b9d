package types

import "errors"

// Sentinel errors for the session pipeline. Every failure surfaced to the
// user wraps exactly one of these, so handlers can classify with errors.Is
// while keeping the underlying message intact.
var (
	// ErrPermissionDenied indicates the microphone device could not be
	// opened. Recording stays disabled until the device is available again.
	ErrPermissionDenied = errors.New("microphone access denied")

	// ErrDecode indicates the captured container was malformed or the codec
	// unsupported. The current recording is aborted.
	ErrDecode = errors.New("audio decode failed")

	// ErrEmbedding indicates the embedding endpoint returned a failure.
	ErrEmbedding = errors.New("embedding extraction failed")

	// ErrSynthesis indicates the synthesis endpoint returned a failure.
	ErrSynthesis = errors.New("synthesis failed")

	// ErrTransport indicates the backend could not be reached at all.
	ErrTransport = errors.New("backend unreachable")

	// ErrValidation indicates a request was rejected before any network
	// call (empty text, missing embedding, wrong state).
	ErrValidation = errors.New("validation failed")
)

// FieldError is one rejected request field.
type FieldError struct {
	Field   string `json:"field"`   // JSON name of the field
	Message string `json:"message"` // Human-readable error message
	Value   any    `json:"value"`   // The invalid value that was provided
}

// ValidationError aggregates the rejected fields of one request.
type ValidationError struct {
	Errors []FieldError `json:"errors"`
}

// NewValidationError returns an empty ValidationError ready for Add.
func NewValidationError() *ValidationError {
	return &ValidationError{Errors: make([]FieldError, 0)}
}

// Add records one rejected field.
func (v *ValidationError) Add(field, message string, value any) {
	v.Errors = append(v.Errors, FieldError{Field: field, Message: message, Value: value})
}
