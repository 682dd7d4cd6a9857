package csv

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/policy-reader/internal/core/domain"
)

func writeCSV(t *testing.T, content string) domain.StagedFile {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return domain.StagedFile{Path: path, Name: "data.csv", Size: int64(len(content))}
}

func TestParser_Descriptor(t *testing.T) {
	p := New()
	assert.Equal(t, domain.ParserTabular, p.Kind())
	assert.Equal(t, []string{".csv"}, p.Extensions())
}

func TestParser_Parse(t *testing.T) {
	file := writeCSV(t, "\xef\xbb\xbfsystem,owner,review\nvpn,netops,2024-01\n\"hr, portal\",people,2024-03\n")

	res, err := New().Parse(context.Background(), file)
	require.NoError(t, err)

	assert.Equal(t, Format, res.Format)
	assert.Equal(t, 2, res.Metadata["rows"])
	assert.Equal(t, []string{"system", "owner", "review"}, res.Metadata["columns"])
	assert.Equal(t, 3, res.Metadata["column_count"])

	want := "    system   owner   review\n" +
		"       vpn  netops  2024-01\n" +
		"hr, portal  people  2024-03"
	assert.Equal(t, want, res.Content)
}

func TestParser_Parse_HeaderOnly(t *testing.T) {
	res, err := New().Parse(context.Background(), writeCSV(t, "a,b\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, res.Metadata["rows"])
	assert.Equal(t, "a  b", res.Content)
}

func TestParser_Parse_RaggedRows(t *testing.T) {
	res, err := New().Parse(context.Background(), writeCSV(t, "a,b\n1\n1,2,3\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Metadata["rows"])
	assert.Equal(t, 2, res.Metadata["column_count"])
}

func TestParser_Parse_Errors(t *testing.T) {
	_, err := New().Parse(context.Background(), writeCSV(t, ""))
	assert.ErrorIs(t, err, domain.ErrDocumentParse)
	assert.Contains(t, err.Error(), "CSV parse error")

	_, err = New().Parse(context.Background(), domain.StagedFile{Path: filepath.Join(t.TempDir(), "missing.csv")})
	assert.ErrorIs(t, err, domain.ErrDocumentParse)
}
