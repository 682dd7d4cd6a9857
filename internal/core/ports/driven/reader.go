package driven

import (
	"context"

	"github.com/custodia-labs/policy-reader/internal/core/domain"
)

// SourceReader fetches documents from one kind of source.
// Each source kind (local, s3, git, http, smb) implements this interface.
type SourceReader interface {
	// Kind returns the source kind this reader serves.
	// The registry orders readers by kind, not by registration order.
	Kind() domain.SourceKind

	// Supports reports whether the raw URI uses this reader's protocol.
	// Must be pure and cheap: no I/O, no allocation beyond prefix checks.
	Supports(uri string) bool

	// ReadFile fetches the document at loc and returns where its bytes live.
	// Remote readers write into area; the local reader returns the original
	// path with InPlace set. Errors are classified domain errors
	// (NotFound, SourceConnection, Validation).
	ReadFile(ctx context.Context, loc domain.Location, creds domain.Credentials, area StagingArea) (domain.StagedFile, error)

	// ListFiles enumerates the files directly under loc. Listings are never
	// recursive. A source that cannot enumerate returns UnsupportedFormat
	// rather than an empty slice.
	ListFiles(ctx context.Context, loc domain.Location, creds domain.Credentials) ([]domain.DirectoryEntry, error)
}

// ReaderRegistry selects the reader for a URI.
type ReaderRegistry interface {
	// Resolve returns the first reader, in priority order, whose Supports
	// accepts uri. Returns an UnsupportedFormat error when none does.
	Resolve(uri string) (SourceReader, error)

	// Readers returns all registered readers in priority order.
	Readers() []SourceReader
}
