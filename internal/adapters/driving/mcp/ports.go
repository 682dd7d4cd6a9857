package mcp

import (
	"net/http"

	"github.com/custodia-labs/policy-reader/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Tools runs read-document and list-documents.
	Tools driving.ToolService

	// Catalog backs the sources and formats resources. Optional.
	Catalog driving.CatalogService

	// Metrics is served at /metrics in HTTP mode. Optional.
	Metrics http.Handler
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Tools == nil {
		return ErrMissingToolService
	}
	return nil
}
