package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/policy-reader/internal/core/domain"
)

// createTestDOCX writes a minimal DOCX archive and returns its path.
func createTestDOCX(t *testing.T, documentXML, coreXML string) string {
	t.Helper()
	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)

	contentTypes, err := w.Create("[Content_Types].xml")
	require.NoError(t, err)
	_, _ = contentTypes.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="xml" ContentType="application/xml"/>
</Types>`))

	if documentXML != "" {
		doc, err := w.Create(documentPart)
		require.NoError(t, err)
		_, _ = doc.Write([]byte(documentXML))
	}
	if coreXML != "" {
		core, err := w.Create(corePart)
		require.NoError(t, err)
		_, _ = core.Write([]byte(coreXML))
	}
	require.NoError(t, w.Close())

	path := filepath.Join(t.TempDir(), "policy.docx")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0600))
	return path
}

const documentXML = `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:r><w:t>Acceptable Use Policy</w:t></w:r></w:p>
<w:p></w:p>
<w:p><w:r><w:t xml:space="preserve">Employees </w:t></w:r><w:hyperlink><w:r><w:t>must</w:t></w:r></w:hyperlink><w:r><w:t xml:space="preserve"> lock screens.</w:t></w:r></w:p>
<w:tbl><w:tr><w:tc><w:p><w:r><w:t>cell text</w:t></w:r></w:p></w:tc></w:tr></w:tbl>
<w:p><w:pPr><w:sectPr/></w:pPr><w:r><w:t>Part</w:t><w:tab/><w:t>Two</w:t></w:r></w:p>
<w:sectPr><w:pgSz w:w="12240" w:h="15840"/></w:sectPr>
</w:body>
</w:document>`

const coreXML = `<?xml version="1.0" encoding="UTF-8"?>
<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties"
  xmlns:dc="http://purl.org/dc/elements/1.1/"
  xmlns:dcterms="http://purl.org/dc/terms/">
<dc:title> Acceptable Use </dc:title>
<dc:creator>IT Security</dc:creator>
<cp:lastModifiedBy>Someone Else</cp:lastModifiedBy>
<dcterms:created>2024-03-01T09:30:00Z</dcterms:created>
<dcterms:modified>2024-03-05T10:00:00+02:00</dcterms:modified>
</cp:coreProperties>`

func TestParser_Descriptor(t *testing.T) {
	p := New()
	assert.Equal(t, domain.ParserWord, p.Kind())
	assert.Equal(t, []string{".docx", ".doc"}, p.Extensions())
}

func TestParser_ParseDocx(t *testing.T) {
	path := createTestDOCX(t, documentXML, coreXML)

	res, err := New().Parse(context.Background(), domain.StagedFile{Path: path, Name: "policy.docx"})
	require.NoError(t, err)

	assert.Equal(t, FormatDOCX, res.Format)
	assert.Equal(t, "Acceptable Use Policy\n\nEmployees must lock screens.\n\nPart\tTwo", res.Content)
	assert.Equal(t, map[string]any{
		"title":      "Acceptable Use",
		"author":     "IT Security",
		"created":    "2024-03-01T09:30:00Z",
		"modified":   "2024-03-05T08:00:00Z",
		"paragraphs": 4,
		"sections":   2,
	}, res.Metadata)
}

func TestParser_ParseDocx_NoCoreProperties(t *testing.T) {
	path := createTestDOCX(t, documentXML, "")

	res, err := New().Parse(context.Background(), domain.StagedFile{Path: path, Name: "policy.DOCX"})
	require.NoError(t, err)
	assert.Equal(t, "", res.Metadata["title"])
	assert.Equal(t, "", res.Metadata["author"])
	assert.Equal(t, "", res.Metadata["created"])
	assert.Equal(t, "", res.Metadata["modified"])
}

func TestParser_ParseDocx_Errors(t *testing.T) {
	t.Run("not a zip", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.docx")
		require.NoError(t, os.WriteFile(path, []byte("plain text"), 0600))
		_, err := New().Parse(context.Background(), domain.StagedFile{Path: path, Name: "bad.docx"})
		assert.ErrorIs(t, err, domain.ErrDocumentParse)
		assert.Contains(t, err.Error(), "DOCX parse error")
	})

	t.Run("no document part", func(t *testing.T) {
		path := createTestDOCX(t, "", coreXML)
		_, err := New().Parse(context.Background(), domain.StagedFile{Path: path, Name: "policy.docx"})
		assert.ErrorIs(t, err, domain.ErrDocumentParse)
	})

	t.Run("malformed xml", func(t *testing.T) {
		path := createTestDOCX(t, "<w:document><w:body><w:p>", "")
		_, err := New().Parse(context.Background(), domain.StagedFile{Path: path, Name: "policy.docx"})
		assert.ErrorIs(t, err, domain.ErrDocumentParse)
	})
}

func TestParser_ParseDoc(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.doc")
	require.NoError(t, os.WriteFile(path, []byte("binary"), 0600))

	p := New()
	p.convertDoc = func(r io.Reader) (string, map[string]string, error) {
		data, err := io.ReadAll(r)
		require.NoError(t, err)
		assert.Equal(t, "binary", string(data))
		return "First paragraph\r\n\r\n\n\nSecond paragraph\n", map[string]string{
			"Title":  "Legacy",
			"Author": "Records",
		}, nil
	}

	res, err := p.Parse(context.Background(), domain.StagedFile{Path: path, Name: "legacy.doc"})
	require.NoError(t, err)
	assert.Equal(t, FormatDOC, res.Format)
	assert.Equal(t, "First paragraph\n\nSecond paragraph", res.Content)
	assert.Equal(t, "Legacy", res.Metadata["title"])
	assert.Equal(t, "Records", res.Metadata["author"])
	assert.Equal(t, 2, res.Metadata["paragraphs"])
	assert.Equal(t, 1, res.Metadata["sections"])
}

func TestParser_ParseDoc_ConversionFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.doc")
	require.NoError(t, os.WriteFile(path, []byte("binary"), 0600))

	p := New()
	p.convertDoc = func(io.Reader) (string, map[string]string, error) {
		return "", nil, errors.New("wvText: executable file not found")
	}
	_, err := p.Parse(context.Background(), domain.StagedFile{Path: path, Name: "legacy.doc"})
	assert.ErrorIs(t, err, domain.ErrDocumentParse)
	assert.Contains(t, err.Error(), "wvText")
}

func TestParser_ExplicitFormatOverridesName(t *testing.T) {
	path := createTestDOCX(t, documentXML, coreXML)
	renamed := filepath.Join(filepath.Dir(path), "legacy.doc")
	require.NoError(t, os.Rename(path, renamed))

	p := New()
	p.convertDoc = func(io.Reader) (string, map[string]string, error) {
		t.Fatal("legacy converter must not run for an explicit docx format")
		return "", nil, nil
	}

	res, err := p.Parse(context.Background(), domain.StagedFile{Path: renamed, Name: "legacy.doc", Format: "docx"})
	require.NoError(t, err)
	assert.Equal(t, FormatDOCX, res.Format)
	assert.Contains(t, res.Content, "Acceptable Use Policy")
}

func TestParser_ParseDoc_ArchiveWithoutText(t *testing.T) {
	path := createTestDOCX(t, documentXML, "")
	renamed := filepath.Join(filepath.Dir(path), "legacy.doc")
	require.NoError(t, os.Rename(path, renamed))

	p := New()
	p.convertDoc = func(io.Reader) (string, map[string]string, error) {
		return "", map[string]string{}, nil
	}

	_, err := p.Parse(context.Background(), domain.StagedFile{Path: renamed, Name: "legacy.doc"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDocumentParse)
	assert.Contains(t, err.Error(), "OOXML archive")
}

func TestParser_ParseDoc_EmptyLegacyDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blank.doc")
	require.NoError(t, os.WriteFile(path, []byte{0xD0, 0xCF, 0x11, 0xE0}, 0600))

	p := New()
	p.convertDoc = func(io.Reader) (string, map[string]string, error) {
		return "", map[string]string{}, nil
	}

	res, err := p.Parse(context.Background(), domain.StagedFile{Path: path, Name: "blank.doc"})
	require.NoError(t, err)
	assert.Equal(t, "", res.Content)
	assert.Equal(t, FormatDOC, res.Format)
}
