// Package table renders rows of cells as right-aligned plain text columns.
package table

import (
	"strings"
	"text/tabwriter"
)

// padding is the minimum gap between two columns.
const padding = 2

var cellReplacer = strings.NewReplacer("\t", " ", "\r\n", " ", "\n", " ", "\r", " ")

// Render lays out header and rows as aligned columns, one line per row.
// Short rows are padded with empty cells. The result has no trailing newline.
func Render(header []string, rows [][]string) string {
	width := len(header)
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	if width == 0 {
		return ""
	}

	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, padding, ' ', tabwriter.AlignRight)
	writeRow(w, header, width)
	for _, row := range rows {
		writeRow(w, row, width)
	}
	_ = w.Flush()

	lines := strings.Split(strings.TrimSuffix(b.String(), "\n"), "\n")
	for i, line := range lines {
		// Every cell carries at least padding spaces in front of it.
		lines[i] = strings.TrimRight(strings.TrimPrefix(line, strings.Repeat(" ", padding)), " ")
	}
	return strings.Join(lines, "\n")
}

func writeRow(w *tabwriter.Writer, row []string, width int) {
	var b strings.Builder
	for i := 0; i < width; i++ {
		if i < len(row) {
			b.WriteString(cellReplacer.Replace(row[i]))
		}
		b.WriteByte('\t')
	}
	b.WriteByte('\n')
	_, _ = w.Write([]byte(b.String()))
}
