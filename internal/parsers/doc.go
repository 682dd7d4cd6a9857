// Package parsers holds the format parsers that turn staged documents into
// text plus metadata.
//
// Each subpackage handles one family of file extensions:
//
//   - pdf: .pdf
//   - docx: .docx, .doc
//   - spreadsheet: .xlsx, .xls
//   - csv: .csv
//   - plaintext: .txt, .md, .markdown, .json, .yaml, .yml
//
// Tabular output from the spreadsheet and csv parsers is rendered by the
// table package so both look the same.
package parsers
