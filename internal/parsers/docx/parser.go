// Package docx extracts paragraphs and core properties from Word documents.
package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"io"
	"os"
	"strings"
	"time"

	"code.sajari.com/docconv"

	"github.com/custodia-labs/policy-reader/internal/core/domain"
	"github.com/custodia-labs/policy-reader/internal/core/ports/driven"
)

// Format tags of parsed Word documents.
const (
	FormatDOCX = "docx"
	FormatDOC  = "doc"
)

const (
	documentPart = "word/document.xml"
	corePart     = "docProps/core.xml"
)

// Ensure Parser implements the interface.
var _ driven.Parser = (*Parser)(nil)

// Parser handles .docx and legacy .doc files.
type Parser struct {
	// convertDoc converts legacy binary documents. Replaced in tests.
	convertDoc func(io.Reader) (string, map[string]string, error)
}

// New creates a Word parser.
func New() *Parser {
	return &Parser{convertDoc: docconv.ConvertDoc}
}

// Kind returns the Word parser kind.
func (p *Parser) Kind() domain.ParserKind {
	return domain.ParserWord
}

// Extensions returns the extensions this parser accepts.
func (p *Parser) Extensions() []string {
	return []string{".docx", ".doc"}
}

// Parse extracts the non-empty body paragraphs joined by blank lines.
// An explicit file format takes precedence over the file name.
func (p *Parser) Parse(_ context.Context, file domain.StagedFile) (*domain.ParseResult, error) {
	if file.Extension() == ".doc" {
		return p.parseDoc(file)
	}
	return parseDocx(file)
}

func parseDocx(file domain.StagedFile) (*domain.ParseResult, error) {
	reader, err := zip.OpenReader(file.Path)
	if err != nil {
		return nil, domain.DocumentParseError("DOCX parse error: %w", err)
	}
	defer reader.Close()

	body, err := readPart(&reader.Reader, documentPart)
	if err != nil {
		return nil, domain.DocumentParseError("DOCX parse error: %w", err)
	}
	doc, err := parseDocumentXML(body)
	if err != nil {
		return nil, domain.DocumentParseError("DOCX parse error: %w", err)
	}

	var props coreProperties
	if core, err := readPart(&reader.Reader, corePart); err == nil {
		// Missing or malformed properties leave the fields empty.
		_ = xml.Unmarshal(core, &props)
	}

	nonEmpty := make([]string, 0, len(doc.paragraphs))
	for _, para := range doc.paragraphs {
		if strings.TrimSpace(para) != "" {
			nonEmpty = append(nonEmpty, para)
		}
	}

	return &domain.ParseResult{
		Content:  strings.Join(nonEmpty, "\n\n"),
		Metadata: props.metadata(len(doc.paragraphs), doc.sections),
		Format:   FormatDOCX,
	}, nil
}

func (p *Parser) parseDoc(file domain.StagedFile) (*domain.ParseResult, error) {
	f, err := os.Open(file.Path)
	if err != nil {
		return nil, domain.DocumentParseError("DOC parse error: %w", err)
	}
	defer f.Close()

	text, meta, err := p.convertDoc(f)
	if err != nil {
		return nil, domain.DocumentParseError("DOC parse error: %w", err)
	}
	if strings.TrimSpace(text) == "" && isZip(file.Path) {
		return nil, domain.DocumentParseError("DOC parse error: %s is an OOXML archive, not a legacy Word document", file.Name)
	}

	var paragraphs []string
	for _, block := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n") {
		if s := strings.TrimSpace(block); s != "" {
			paragraphs = append(paragraphs, s)
		}
	}
	props := coreProperties{
		Title:    meta["Title"],
		Creator:  meta["Author"],
		Created:  meta["Created"],
		Modified: meta["Last Modified"],
	}
	sections := 0
	if len(paragraphs) > 0 {
		sections = 1
	}

	return &domain.ParseResult{
		Content:  strings.Join(paragraphs, "\n\n"),
		Metadata: props.metadata(len(paragraphs), sections),
		Format:   FormatDOC,
	}, nil
}

// zipMagic starts every OOXML package.
var zipMagic = []byte("PK\x03\x04")

func isZip(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	head := make([]byte, len(zipMagic))
	if _, err := io.ReadFull(f, head); err != nil {
		return false
	}
	return bytes.Equal(head, zipMagic)
}

var errPartMissing = errors.New("part missing")

// readPart returns the bytes of the named archive member.
func readPart(reader *zip.Reader, name string) ([]byte, error) {
	for _, file := range reader.File {
		if file.Name != name {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, errPartMissing
}

type document struct {
	// paragraphs holds the text of every top-level body paragraph,
	// including empty ones.
	paragraphs []string
	sections   int
}

// parseDocumentXML walks word/document.xml. Text inside tables and other
// nested containers is not part of a top-level paragraph and is skipped.
func parseDocumentXML(content []byte) (document, error) {
	var doc document
	dec := xml.NewDecoder(bytes.NewReader(content))

	var stack []string
	var current *strings.Builder
	paraDepth := -1

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return document{}, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			name := t.Name.Local
			parent := ""
			if len(stack) > 0 {
				parent = stack[len(stack)-1]
			}
			stack = append(stack, name)

			switch {
			case name == "sectPr":
				doc.sections++
			case name == "p" && parent == "body" && current == nil:
				current = &strings.Builder{}
				paraDepth = len(stack)
			case current != nil && name == "tab":
				current.WriteByte('\t')
			case current != nil && (name == "br" || name == "cr"):
				current.WriteByte('\n')
			}

		case xml.EndElement:
			if current != nil && len(stack) == paraDepth {
				doc.paragraphs = append(doc.paragraphs, current.String())
				current = nil
				paraDepth = -1
			}
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}

		case xml.CharData:
			if current != nil && len(stack) > 0 && stack[len(stack)-1] == "t" {
				current.Write(t)
			}
		}
	}
	return doc, nil
}

// coreProperties is the subset of docProps/core.xml that is reported.
type coreProperties struct {
	Title    string `xml:"title"`
	Creator  string `xml:"creator"`
	Created  string `xml:"created"`
	Modified string `xml:"modified"`
}

func (c coreProperties) metadata(paragraphs, sections int) map[string]any {
	return map[string]any{
		"title":      strings.TrimSpace(c.Title),
		"author":     strings.TrimSpace(c.Creator),
		"created":    normaliseDate(c.Created),
		"modified":   normaliseDate(c.Modified),
		"paragraphs": paragraphs,
		"sections":   sections,
	}
}

// normaliseDate rewrites W3C dates as RFC 3339 in UTC. Anything else is
// returned trimmed.
func normaliseDate(s string) string {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC().Format(time.RFC3339)
	}
	return s
}
