package driven

import (
	"context"

	"github.com/custodia-labs/policy-reader/internal/core/domain"
)

// Parser converts staged document bytes into text plus metadata.
type Parser interface {
	// Kind returns the parser kind.
	Kind() domain.ParserKind

	// Extensions returns the lower-case file extensions, with leading dot,
	// this parser accepts. Extension sets of registered parsers must not
	// overlap.
	Extensions() []string

	// Parse reads the staged file. Failures are DocumentParse errors.
	Parse(ctx context.Context, file domain.StagedFile) (*domain.ParseResult, error)
}

// ParserRegistry selects the parser for a file extension.
type ParserRegistry interface {
	// Resolve returns the parser for ext. Matching ignores case and the
	// leading dot. Returns an UnsupportedFormat error when none matches.
	Resolve(ext string) (Parser, error)

	// Extensions returns every supported extension.
	Extensions() []string
}
