package services

import (
	"github.com/custodia-labs/policy-reader/internal/core/ports/driven"
	"github.com/custodia-labs/policy-reader/internal/core/ports/driving"
)

// Ensure Catalog implements the interface.
var _ driving.CatalogService = (*Catalog)(nil)

// Catalog reports the contents of the two registries.
type Catalog struct {
	readers driven.ReaderRegistry
	parsers driven.ParserRegistry
}

// NewCatalog creates a catalog over the registries.
func NewCatalog(readers driven.ReaderRegistry, parsers driven.ParserRegistry) *Catalog {
	return &Catalog{readers: readers, parsers: parsers}
}

// Sources returns one entry per reader. Readers wrapped by Disable are
// reported as disabled.
func (c *Catalog) Sources() []driving.SourceInfo {
	readers := c.readers.Readers()
	out := make([]driving.SourceInfo, 0, len(readers))
	for _, r := range readers {
		_, disabled := r.(*DisabledReader)
		out = append(out, driving.SourceInfo{
			Kind:        r.Kind(),
			Description: r.Kind().Description(),
			Enabled:     !disabled,
		})
	}
	return out
}

// Formats returns the parser registry's extensions.
func (c *Catalog) Formats() []string {
	return c.parsers.Extensions()
}
