package domain

import (
	"path/filepath"
	"strings"
	"time"
)

// StagedFile is a document fetched into a staging area, or a local file
// used in place. It is owned by exactly one invocation.
type StagedFile struct {
	// Path is the absolute or relative path of the staged bytes.
	Path string
	// Name is the document file name, used for extension dispatch.
	Name string
	// Size is the byte length of the staged file. Size checks use this value.
	Size int64
	// InPlace marks a local file that was not copied and must never be removed.
	InPlace bool
	// Format is an explicit format tag chosen by the caller, such as "docx".
	// Empty means the extension of Name decides.
	Format string
}

// Extension returns the lower-cased extension parsers dispatch on, with its
// leading dot: the explicit Format when set, otherwise the extension of Name.
func (f StagedFile) Extension() string {
	ext := f.Format
	if ext == "" {
		ext = filepath.Ext(f.Name)
	}
	ext = strings.TrimLeft(strings.ToLower(strings.TrimSpace(ext)), ".")
	if ext == "" {
		return ""
	}
	return "." + ext
}

// ParseResult is what a parser produces before file info is attached.
type ParseResult struct {
	Content  string
	Metadata map[string]any
	Format   string
}

// ParsedDocument is the uniform representation returned for every format.
type ParsedDocument struct {
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata"`
	Format   string         `json:"format"`
	FileName string         `json:"file_name"`
	FilePath string         `json:"file_path"`
	FileSize int64          `json:"file_size"`
}

// NewParsedDocument attaches staged file info to a parse result.
func NewParsedDocument(res *ParseResult, file StagedFile) *ParsedDocument {
	meta := res.Metadata
	if meta == nil {
		meta = map[string]any{}
	}
	return &ParsedDocument{
		Content:  res.Content,
		Metadata: meta,
		Format:   res.Format,
		FileName: file.Name,
		FilePath: file.Path,
		FileSize: file.Size,
	}
}

// DirectoryEntry describes one file returned by a listing.
type DirectoryEntry struct {
	Name     string    `json:"name"`
	Path     string    `json:"path"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}
