package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/policy-reader/internal/core/domain"
	"github.com/custodia-labs/policy-reader/internal/core/ports/driving"
)

func TestServer_Resources(t *testing.T) {
	catalog := &mockCatalogService{
		sources: []driving.SourceInfo{
			{Kind: domain.SourceObjectStore, Description: "s3", Enabled: true},
			{Kind: domain.SourceNetworkShare, Description: "smb", Enabled: false},
		},
		formats: []string{".pdf", ".csv"},
	}
	server, err := NewServer(&Ports{Tools: &mockToolService{}, Catalog: catalog}, Options{})
	require.NoError(t, err)
	session := connect(t, server)
	ctx := context.Background()

	t.Run("sources", func(t *testing.T) {
		res, err := session.ReadResource(ctx, &mcp.ReadResourceParams{URI: resourceSources})
		require.NoError(t, err)
		require.Len(t, res.Contents, 1)
		assert.Equal(t, "application/json", res.Contents[0].MIMEType)

		var got []driving.SourceInfo
		require.NoError(t, json.Unmarshal([]byte(res.Contents[0].Text), &got))
		assert.Equal(t, catalog.sources, got)
	})

	t.Run("formats", func(t *testing.T) {
		res, err := session.ReadResource(ctx, &mcp.ReadResourceParams{URI: resourceFormats})
		require.NoError(t, err)

		var got []string
		require.NoError(t, json.Unmarshal([]byte(res.Contents[0].Text), &got))
		assert.Equal(t, []string{".pdf", ".csv"}, got)
	})
}

func TestServer_Resources_WithoutCatalog(t *testing.T) {
	server, err := NewServer(&Ports{Tools: &mockToolService{}}, Options{})
	require.NoError(t, err)
	session := connect(t, server)

	_, err = session.ReadResource(context.Background(), &mcp.ReadResourceParams{URI: resourceSources})
	assert.Error(t, err)
}
