package mcp

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/custodia-labs/policy-reader/internal/core/domain"
	"github.com/custodia-labs/policy-reader/internal/core/ports/driving"
)

// Tool names.
const (
	ToolReadDocument  = "read-document"
	ToolListDocuments = "list-documents"
)

// ReadDocumentInput is the input schema for the read-document tool.
type ReadDocumentInput struct {
	Source          string `json:"source" jsonschema:"document location: s3://, git://, smb://, UNC, http(s):// or a local path"`
	CredentialsPath string `json:"credentials_path,omitempty" jsonschema:"path in the secret store holding credentials for the source"`
	Format          string `json:"format,omitempty" jsonschema:"force a format such as pdf or csv instead of detecting it (default auto)"`
}

// ListDocumentsInput is the input schema for the list-documents tool.
type ListDocumentsInput struct {
	Source          string `json:"source" jsonschema:"directory location to list"`
	CredentialsPath string `json:"credentials_path,omitempty" jsonschema:"path in the secret store holding credentials for the source"`
	Pattern         string `json:"pattern,omitempty" jsonschema:"glob matched against file names (default *)"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        ToolReadDocument,
		Description: "Fetch a document and return its text content and metadata",
	}, s.handleReadDocument)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        ToolListDocuments,
		Description: "List the files directly under a location, optionally filtered by a glob",
	}, s.handleListDocuments)
}

// handleReadDocument handles the read-document tool invocation.
func (s *Server) handleReadDocument(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input ReadDocumentInput,
) (*mcp.CallToolResult, domain.Outcome, error) {
	if !s.limiter.Allow() {
		return s.reject(ToolReadDocument)
	}
	out := s.ports.Tools.ReadDocument(ctx, driving.ReadDocumentInput{
		Source:          input.Source,
		CredentialsPath: input.CredentialsPath,
		Format:          input.Format,
		Caller:          callerOf(req),
	})
	return result(out), out, nil
}

// handleListDocuments handles the list-documents tool invocation.
func (s *Server) handleListDocuments(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input ListDocumentsInput,
) (*mcp.CallToolResult, domain.Outcome, error) {
	if !s.limiter.Allow() {
		return s.reject(ToolListDocuments)
	}
	out := s.ports.Tools.ListDocuments(ctx, driving.ListDocumentsInput{
		Source:          input.Source,
		CredentialsPath: input.CredentialsPath,
		Pattern:         input.Pattern,
		Caller:          callerOf(req),
	})
	return result(out), out, nil
}

func (s *Server) reject(tool string) (*mcp.CallToolResult, domain.Outcome, error) {
	s.logger.Warn("tool call rate limited", zap.String("tool", tool))
	out := domain.Failure(ErrRateLimited)
	return result(out), out, nil
}

// result renders the envelope as the text content of the call. Error
// envelopes are flagged so clients can tell them apart without parsing.
func result(out domain.Outcome) *mcp.CallToolResult {
	data, err := json.Marshal(out)
	if err != nil {
		data, _ = json.Marshal(domain.Failure(err))
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
		IsError: !out.IsSuccess(),
	}
}

// callerOf identifies the session for the audit trail.
func callerOf(req *mcp.CallToolRequest) string {
	if req == nil || req.Session == nil {
		return ""
	}
	return req.Session.ID()
}
