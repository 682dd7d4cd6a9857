// Package csv renders comma separated files as plain text tables.
package csv

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"os"

	"github.com/custodia-labs/policy-reader/internal/core/domain"
	"github.com/custodia-labs/policy-reader/internal/core/ports/driven"
	"github.com/custodia-labs/policy-reader/internal/parsers/table"
)

// Format is the format tag of parsed CSV files.
const Format = "csv"

var errEmpty = errors.New("file has no header row")

// Ensure Parser implements the interface.
var _ driven.Parser = (*Parser)(nil)

// Parser handles .csv files.
type Parser struct{}

// New creates a CSV parser.
func New() *Parser {
	return &Parser{}
}

// Kind returns the tabular parser kind.
func (p *Parser) Kind() domain.ParserKind {
	return domain.ParserTabular
}

// Extensions returns the extensions this parser accepts.
func (p *Parser) Extensions() []string {
	return []string{".csv"}
}

// Parse treats the first record as the header. Records may differ in
// length.
func (p *Parser) Parse(_ context.Context, file domain.StagedFile) (*domain.ParseResult, error) {
	f, err := os.Open(file.Path)
	if err != nil {
		return nil, domain.DocumentParseError("CSV parse error: %w", err)
	}
	defer f.Close()

	records, err := readRecords(f)
	if err != nil {
		return nil, domain.DocumentParseError("CSV parse error: %w", err)
	}
	header, rows := records[0], records[1:]

	return &domain.ParseResult{
		Content: table.Render(header, rows),
		Metadata: map[string]any{
			"rows":         len(rows),
			"columns":      header,
			"column_count": len(header),
		},
		Format: Format,
	}, nil
}

func readRecords(r io.Reader) ([][]string, error) {
	br := bufio.NewReader(r)
	// Excel writes a byte order mark that would otherwise end up in the
	// first column name.
	if bom, err := br.Peek(3); err == nil && string(bom) == "\xef\xbb\xbf" {
		_, _ = br.Discard(3)
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errEmpty
	}
	return records, nil
}
