package driving

import (
	"context"

	"github.com/custodia-labs/policy-reader/internal/core/domain"
)

// RetrieveOptions tunes a single retrieval.
type RetrieveOptions struct {
	// MaxSizeBytes rejects documents larger than this. Zero disables the check.
	MaxSizeBytes int64
	// Format forces a parser by extension instead of the staged file's
	// extension. Empty or "auto" means detect.
	Format string
}

// RetrievalService runs the fetch-then-parse pipeline.
// Every call is an independent unit of work; errors are classified domain
// errors.
type RetrievalService interface {
	// RetrieveDocument fetches and parses the document at uri.
	RetrieveDocument(ctx context.Context, uri string, secrets domain.Secrets, opts RetrieveOptions) (*domain.ParsedDocument, error)

	// ListDocuments enumerates the files at uri whose names match pattern.
	// An empty pattern or "*" matches everything.
	ListDocuments(ctx context.Context, uri string, secrets domain.Secrets, pattern string) ([]domain.DirectoryEntry, error)
}
