package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for policy-reader resources.
	uriScheme = "policy-reader://"

	resourceSources = uriScheme + "sources"
	resourceFormats = uriScheme + "formats"
)

// registerResources registers the catalog resources. Without a catalog
// there is nothing to describe.
func (s *Server) registerResources() {
	if s.ports.Catalog == nil {
		return
	}

	s.server.AddResource(&mcp.Resource{
		URI:         resourceSources,
		Name:        "sources",
		Description: "Source readers in resolution order and whether each is enabled",
		MIMEType:    "application/json",
	}, s.handleSourcesResource)

	s.server.AddResource(&mcp.Resource{
		URI:         resourceFormats,
		Name:        "formats",
		Description: "File extensions read-document can parse",
		MIMEType:    "application/json",
	}, s.handleFormatsResource)
}

// handleSourcesResource returns the registered source readers.
func (s *Server) handleSourcesResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	return jsonResource(req.Params.URI, s.ports.Catalog.Sources())
}

// handleFormatsResource returns the supported extensions.
func (s *Server) handleFormatsResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	return jsonResource(req.Params.URI, s.ports.Catalog.Formats())
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
