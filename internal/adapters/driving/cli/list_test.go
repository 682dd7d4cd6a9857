package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/policy-reader/internal/core/domain"
)

func TestListCmd_HasPatternFlag(t *testing.T) {
	flag := listCmd.Flags().Lookup("pattern")
	require.NotNil(t, flag, "pattern flag should exist")
	assert.Equal(t, "p", flag.Shorthand)
	assert.Equal(t, "*", flag.DefValue)
}

func TestListCmd_PrintsTable(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"list", "/srv/policies", "--pattern", "*.pdf"})

	require.NoError(t, rootCmd.Execute())

	out := buf.String()
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "/srv/policies/a.pdf")
	assert.Contains(t, out, "2025-03-01 12:00")
	assert.Contains(t, out, "Total: 2 documents")

	assert.Equal(t, "*.pdf", ts.tools.lastList.Pattern)
	assert.Equal(t, callerName, ts.tools.lastList.Caller)
}

func TestListCmd_Empty(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.tools.listOutcome = domain.Success(domain.Listing{Files: []domain.DirectoryEntry{}, Count: 0})

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"list", "/srv/empty"})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), "No documents found at /srv/empty")
}

func TestListCmd_Error(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.tools.listOutcome = domain.Failure(domain.UnsupportedFormatError("listing is not supported for http://x/a"))

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"list", "http://x/a"})

	err := rootCmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "listing is not supported")
}
