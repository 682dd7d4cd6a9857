// Package pdf extracts page text from PDF documents.
package pdf

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/policy-reader/internal/core/domain"
	"github.com/custodia-labs/policy-reader/internal/core/ports/driven"
)

// Format is the format tag of parsed PDFs.
const Format = "pdf"

// Ensure Parser implements the interface.
var _ driven.Parser = (*Parser)(nil)

// Parser handles .pdf files.
type Parser struct{}

// New creates a PDF parser.
func New() *Parser {
	return &Parser{}
}

// Kind returns the PDF parser kind.
func (p *Parser) Kind() domain.ParserKind {
	return domain.ParserPDF
}

// Extensions returns the extensions this parser accepts.
func (p *Parser) Extensions() []string {
	return []string{".pdf"}
}

// Parse extracts text page by page. Pages without text are skipped but
// still counted.
func (p *Parser) Parse(ctx context.Context, file domain.StagedFile) (res *domain.ParseResult, err error) {
	// The PDF library panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = domain.DocumentParseError("PDF parse error: %v", r)
		}
	}()

	f, reader, err := pdf.Open(file.Path)
	if err != nil {
		return nil, domain.DocumentParseError("PDF parse error: %w", err)
	}
	defer f.Close()

	pages := reader.NumPage()
	parts := make([]string, 0, pages)
	for i := 1; i <= pages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, domain.DocumentParseError("PDF parse error on page %d: %w", i, err)
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("[Page %d]\n%s", i, text))
	}

	return &domain.ParseResult{
		Content: strings.Join(parts, "\n\n"),
		Metadata: map[string]any{
			"pages":    pages,
			"metadata": documentInfo(reader),
		},
		Format: Format,
	}, nil
}

// documentInfo flattens the trailer's Info dictionary into strings.
func documentInfo(reader *pdf.Reader) map[string]any {
	info := map[string]any{}
	dict := reader.Trailer().Key("Info")
	if dict.Kind() != pdf.Dict {
		return info
	}
	for _, key := range dict.Keys() {
		v := dict.Key(key)
		switch v.Kind() {
		case pdf.String:
			info[key] = v.Text()
		case pdf.Null:
		default:
			info[key] = v.String()
		}
	}
	return info
}
