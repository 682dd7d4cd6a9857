package domain

// SourceKind identifies one of the supported document sources.
type SourceKind string

// Supported source kinds.
const (
	// SourceObjectStore reads from S3 compatible object storage.
	SourceObjectStore SourceKind = "s3"
	// SourceVersionControl reads from a git repository.
	SourceVersionControl SourceKind = "git"
	// SourceNetworkShare reads from an SMB share.
	SourceNetworkShare SourceKind = "smb"
	// SourceHTTP reads from an HTTP or HTTPS endpoint.
	SourceHTTP SourceKind = "http"
	// SourceLocal reads from the local filesystem.
	SourceLocal SourceKind = "local"
)

// IsValid returns true if the source kind is recognised.
func (k SourceKind) IsValid() bool {
	switch k {
	case SourceObjectStore, SourceVersionControl, SourceNetworkShare, SourceHTTP, SourceLocal:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (k SourceKind) String() string {
	return string(k)
}

// Description returns a human-readable description of the source kind.
func (k SourceKind) Description() string {
	switch k {
	case SourceObjectStore:
		return "Object storage (s3://bucket/key)"
	case SourceVersionControl:
		return "Git repository (git://host/org/repo/branch/path)"
	case SourceNetworkShare:
		return "SMB share (smb://server/share/path or \\\\server\\share\\path)"
	case SourceHTTP:
		return "HTTP endpoint (http:// or https://)"
	case SourceLocal:
		return "Local filesystem (file:// or bare path)"
	default:
		return unknownDescription
	}
}

// ParserKind identifies one of the supported format parsers.
type ParserKind string

// Supported parser kinds.
const (
	ParserPDF         ParserKind = "pdf"
	ParserWord        ParserKind = "word"
	ParserSpreadsheet ParserKind = "spreadsheet"
	ParserTabular     ParserKind = "csv"
	ParserPlainText   ParserKind = "plaintext"
)

// IsValid returns true if the parser kind is recognised.
func (k ParserKind) IsValid() bool {
	switch k {
	case ParserPDF, ParserWord, ParserSpreadsheet, ParserTabular, ParserPlainText:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (k ParserKind) String() string {
	return string(k)
}
