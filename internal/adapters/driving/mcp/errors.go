// Package mcp provides an MCP (Model Context Protocol) server adapter for policy-reader.
// It exposes the read-document and list-documents tools to calling agents.
package mcp

import "errors"

// ErrMissingToolService is returned when the tool service is not provided.
var ErrMissingToolService = errors.New("mcp: tool service is required")

// ErrRateLimited is reported in the error envelope when a call is rejected
// by the token bucket.
var ErrRateLimited = errors.New("rate limit exceeded: try again later")
