package driving

import (
	"context"

	"github.com/custodia-labs/policy-reader/internal/core/domain"
)

// ReadDocumentInput is the input of the read-document tool.
type ReadDocumentInput struct {
	Source          string
	CredentialsPath string
	Format          string
	// Caller identifies the requesting agent for the audit trail.
	Caller string
}

// ListDocumentsInput is the input of the list-documents tool.
type ListDocumentsInput struct {
	Source          string
	CredentialsPath string
	Pattern         string
	Caller          string
}

// ToolService exposes the two tools. It never returns an error: every
// failure is reported through an error Outcome.
type ToolService interface {
	ReadDocument(ctx context.Context, in ReadDocumentInput) domain.Outcome
	ListDocuments(ctx context.Context, in ListDocumentsInput) domain.Outcome
}

// SourceInfo describes one registered source reader.
type SourceInfo struct {
	Kind        domain.SourceKind `json:"kind"`
	Description string            `json:"description"`
	Enabled     bool              `json:"enabled"`
}

// CatalogService describes what the server can read.
type CatalogService interface {
	// Sources returns the registered readers in priority order.
	Sources() []SourceInfo

	// Formats returns every supported file extension in priority order.
	Formats() []string
}
