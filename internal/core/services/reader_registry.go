package services

import (
	"context"
	"fmt"
	"slices"

	"github.com/custodia-labs/policy-reader/internal/core/domain"
	"github.com/custodia-labs/policy-reader/internal/core/ports/driven"
)

// Ensure ReaderRegistry implements the interface.
var _ driven.ReaderRegistry = (*ReaderRegistry)(nil)

// ReaderPriority is the order in which readers are consulted.
// Local is last because it accepts any URI without "://".
var ReaderPriority = []domain.SourceKind{
	domain.SourceObjectStore,
	domain.SourceVersionControl,
	domain.SourceNetworkShare,
	domain.SourceHTTP,
	domain.SourceLocal,
}

// ReaderRegistry resolves URIs to source readers, first match wins.
type ReaderRegistry struct {
	readers []driven.SourceReader
}

// NewReaderRegistry orders readers by ReaderPriority. Argument order does
// not matter. Two readers of the same kind, or a kind outside
// ReaderPriority, is an error.
func NewReaderRegistry(readers ...driven.SourceReader) (*ReaderRegistry, error) {
	byKind := make(map[domain.SourceKind]driven.SourceReader, len(readers))
	for _, r := range readers {
		kind := r.Kind()
		if !slices.Contains(ReaderPriority, kind) {
			return nil, fmt.Errorf("reader kind %q has no priority slot: %w", kind, domain.ErrInvalidInput)
		}
		if _, dup := byKind[kind]; dup {
			return nil, fmt.Errorf("reader kind %q registered twice: %w", kind, domain.ErrInvalidInput)
		}
		byKind[kind] = r
	}

	reg := &ReaderRegistry{}
	for _, kind := range ReaderPriority {
		if r, ok := byKind[kind]; ok {
			reg.readers = append(reg.readers, r)
		}
	}
	return reg, nil
}

// Resolve returns the first reader whose predicate accepts uri.
func (r *ReaderRegistry) Resolve(uri string) (driven.SourceReader, error) {
	for _, reader := range r.readers {
		if reader.Supports(uri) {
			return reader, nil
		}
	}
	return nil, domain.UnsupportedFormatError("no reader for protocol: %s", uri)
}

// Readers returns the readers in priority order.
func (r *ReaderRegistry) Readers() []driven.SourceReader {
	return slices.Clone(r.readers)
}

// DisabledReader keeps a switched-off reader in its priority slot. It still
// claims its URIs, so a disabled reader never lets a later one (usually
// local) pick them up, but every operation fails.
type DisabledReader struct {
	driven.SourceReader
}

// Disable wraps reader so that it claims URIs but refuses to serve them.
func Disable(reader driven.SourceReader) *DisabledReader {
	return &DisabledReader{SourceReader: reader}
}

// ReadFile always fails.
func (d *DisabledReader) ReadFile(
	_ context.Context,
	_ domain.Location,
	_ domain.Credentials,
	_ driven.StagingArea,
) (domain.StagedFile, error) {
	return domain.StagedFile{}, d.err()
}

// ListFiles always fails.
func (d *DisabledReader) ListFiles(_ context.Context, _ domain.Location, _ domain.Credentials) ([]domain.DirectoryEntry, error) {
	return nil, d.err()
}

func (d *DisabledReader) err() error {
	return domain.ValidationError("source type %s is disabled", d.Kind())
}
