// Package plaintext passes text and markup files through unchanged.
package plaintext

import (
	"context"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/policy-reader/internal/core/domain"
	"github.com/custodia-labs/policy-reader/internal/core/ports/driven"
)

// Encoding is the only accepted text encoding.
const Encoding = "utf-8"

// Ensure Parser implements the interface.
var _ driven.Parser = (*Parser)(nil)

// Parser handles plain text, markdown, JSON and YAML files.
type Parser struct{}

// New creates a plain text parser.
func New() *Parser {
	return &Parser{}
}

// Kind returns the plain text parser kind.
func (p *Parser) Kind() domain.ParserKind {
	return domain.ParserPlainText
}

// Extensions returns the extensions this parser accepts.
func (p *Parser) Extensions() []string {
	return []string{".txt", ".md", ".markdown", ".json", ".yaml", ".yml"}
}

// Parse returns the file content verbatim. The format is the explicit file
// format or else the file extension, without its dot.
func (p *Parser) Parse(_ context.Context, file domain.StagedFile) (*domain.ParseResult, error) {
	data, err := os.ReadFile(file.Path)
	if err != nil {
		return nil, domain.DocumentParseError("Text parse error: %w", err)
	}
	if !utf8.Valid(data) {
		return nil, domain.DocumentParseError("Text parse error: %s is not valid %s", file.Name, Encoding)
	}
	content := string(data)

	return &domain.ParseResult{
		Content: content,
		Metadata: map[string]any{
			"size_bytes": int64(len(data)),
			"lines":      countLines(content),
			"encoding":   Encoding,
		},
		Format: strings.TrimPrefix(file.Extension(), "."),
	}, nil
}

// countLines counts lines the way a split on line endings would, so a
// trailing newline does not start an extra line.
func countLines(s string) int {
	if s == "" {
		return 0
	}
	n := strings.Count(s, "\n")
	if !strings.HasSuffix(s, "\n") {
		n++
	}
	return n
}
