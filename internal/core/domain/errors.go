package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every failure surfaced by the pipeline matches exactly one
// of these with errors.Is.
var (
	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("validation error")

	// ErrNotFound indicates the requested document or location does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized indicates the caller may not access the resource.
	// Reserved for an identity layer; no reader produces it today.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrSourceConnection indicates a remote source could not be reached or
	// returned an unexpected response.
	ErrSourceConnection = errors.New("source connection error")

	// ErrDocumentParse indicates a parser failed on the document bytes.
	ErrDocumentParse = errors.New("document parse error")

	// ErrDocumentTooLarge indicates the fetched document exceeds the size limit.
	ErrDocumentTooLarge = errors.New("document too large")

	// ErrUnsupportedFormat indicates no reader or parser matches the input.
	ErrUnsupportedFormat = errors.New("unsupported format")
)

var kinds = []error{
	ErrInvalidInput,
	ErrNotFound,
	ErrUnauthorized,
	ErrSourceConnection,
	ErrDocumentParse,
	ErrDocumentTooLarge,
	ErrUnsupportedFormat,
}

// Error is a classified pipeline failure.
// Error() returns only the human readable message; the kind and the
// underlying cause are reachable through errors.Is and errors.As.
type Error struct {
	Kind    error
	Message string
	Details map[string]any
	Err     error
}

// Errorf builds an Error of the given kind. A %w verb in format records the
// cause so that errors.Is reaches it.
func Errorf(kind error, format string, args ...any) *Error {
	wrapped := fmt.Errorf(format, args...)
	return &Error{
		Kind:    kind,
		Message: wrapped.Error(),
		Err:     errors.Unwrap(wrapped),
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes both the kind and the cause.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// WithDetail attaches a structured detail and returns the same error.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// ValidationError reports invalid input.
func ValidationError(format string, args ...any) *Error {
	return Errorf(ErrInvalidInput, format, args...)
}

// NotFoundError reports a missing document or location.
func NotFoundError(format string, args ...any) *Error {
	return Errorf(ErrNotFound, format, args...)
}

// SourceConnectionError reports a failure talking to a remote source.
func SourceConnectionError(format string, args ...any) *Error {
	return Errorf(ErrSourceConnection, format, args...)
}

// DocumentParseError reports a parser failure.
func DocumentParseError(format string, args ...any) *Error {
	return Errorf(ErrDocumentParse, format, args...)
}

// DocumentTooLargeError reports a document over the size limit.
func DocumentTooLargeError(size, limit int64) *Error {
	return Errorf(ErrDocumentTooLarge, "document size %d exceeds limit %d", size, limit).
		WithDetail("size", size).
		WithDetail("limit", limit)
}

// UnsupportedFormatError reports a protocol or format nobody handles.
func UnsupportedFormatError(format string, args ...any) *Error {
	return Errorf(ErrUnsupportedFormat, format, args...)
}

// KindOf returns the error kind err matches, or nil when err is not
// classified.
func KindOf(err error) error {
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

// KindName returns a stable snake_case name for the kind of err.
// Unclassified errors are reported as "internal_error".
func KindName(err error) string {
	switch KindOf(err) {
	case ErrInvalidInput:
		return "validation_error"
	case ErrNotFound:
		return "not_found"
	case ErrUnauthorized:
		return "unauthorized"
	case ErrSourceConnection:
		return "source_connection_error"
	case ErrDocumentParse:
		return "document_parse_error"
	case ErrDocumentTooLarge:
		return "document_too_large"
	case ErrUnsupportedFormat:
		return "unsupported_format"
	default:
		return "internal_error"
	}
}
