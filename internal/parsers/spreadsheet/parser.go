// Package spreadsheet renders Excel workbooks as plain text tables.
package spreadsheet

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"github.com/custodia-labs/policy-reader/internal/core/domain"
	"github.com/custodia-labs/policy-reader/internal/core/ports/driven"
	"github.com/custodia-labs/policy-reader/internal/parsers/table"
)

// Format tags of parsed workbooks.
const (
	FormatXLSX = "xlsx"
	FormatXLS  = "xls"
)

// xlsCharset is the charset legacy workbooks are decoded with.
const xlsCharset = "utf-8"

// Ensure Parser implements the interface.
var _ driven.Parser = (*Parser)(nil)

// sheet is one worksheet's name and cell grid.
type sheet struct {
	name string
	rows [][]string
}

// Parser handles .xlsx and .xls workbooks.
type Parser struct{}

// New creates a spreadsheet parser.
func New() *Parser {
	return &Parser{}
}

// Kind returns the spreadsheet parser kind.
func (p *Parser) Kind() domain.ParserKind {
	return domain.ParserSpreadsheet
}

// Extensions returns the extensions this parser accepts.
func (p *Parser) Extensions() []string {
	return []string{".xlsx", ".xls"}
}

// Parse renders every sheet as "[Sheet: name]" followed by its table, the
// first row being the header. An explicit file format picks the decoder
// ahead of the file name.
func (p *Parser) Parse(ctx context.Context, file domain.StagedFile) (*domain.ParseResult, error) {
	var (
		sheets []sheet
		format string
		err    error
	)
	if file.Extension() == ".xls" {
		format = FormatXLS
		sheets, err = readXLS(file.Path)
	} else {
		format = FormatXLSX
		sheets, err = readXLSX(ctx, file.Path)
	}
	if err != nil {
		return nil, domain.DocumentParseError("Excel parse error: %w", err)
	}

	names := make([]string, 0, len(sheets))
	parts := make([]string, 0, len(sheets))
	for _, s := range sheets {
		names = append(names, s.name)
		parts = append(parts, renderSheet(s))
	}

	return &domain.ParseResult{
		Content: strings.Join(parts, "\n\n"),
		Metadata: map[string]any{
			"sheets":      names,
			"sheet_count": len(names),
		},
		Format: format,
	}, nil
}

func renderSheet(s sheet) string {
	heading := fmt.Sprintf("[Sheet: %s]", s.name)
	if len(s.rows) == 0 {
		return heading
	}
	return heading + "\n" + table.Render(s.rows[0], s.rows[1:])
}

func readXLSX(ctx context.Context, path string) ([]sheet, error) {
	src, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var sheets []sheet
	for _, name := range f.GetSheetList() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("sheet %s: %w", name, err)
		}
		sheets = append(sheets, sheet{name: name, rows: rows})
	}
	return sheets, nil
}

// readXLS reads a BIFF workbook. The decoder panics on some corrupt files.
func readXLS(path string) (sheets []sheet, err error) {
	defer func() {
		if r := recover(); r != nil {
			sheets = nil
			err = fmt.Errorf("corrupt workbook: %v", r)
		}
	}()

	wb, err := xls.Open(path, xlsCharset)
	if err != nil {
		return nil, err
	}

	for i := 0; i < wb.NumSheets(); i++ {
		ws := wb.GetSheet(i)
		if ws == nil {
			continue
		}
		s := sheet{name: ws.Name}
		for r := 0; r <= int(ws.MaxRow); r++ {
			row := ws.Row(r)
			if row == nil {
				continue
			}
			cells := make([]string, 0, row.LastCol())
			for c := 0; c < row.LastCol(); c++ {
				cells = append(cells, row.Col(c))
			}
			s.rows = append(s.rows, trimTrailingEmpty(cells))
		}
		sheets = append(sheets, s)
	}
	return sheets, nil
}

func trimTrailingEmpty(cells []string) []string {
	n := len(cells)
	for n > 0 && strings.TrimSpace(cells[n-1]) == "" {
		n--
	}
	return cells[:n]
}
