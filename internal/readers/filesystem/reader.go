// Package filesystem reads documents from the local filesystem.
package filesystem

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/custodia-labs/policy-reader/internal/core/domain"
	"github.com/custodia-labs/policy-reader/internal/core/ports/driven"
)

// Ensure Reader implements the interface.
var _ driven.SourceReader = (*Reader)(nil)

// Reader serves file:// URIs and bare paths. Files are used in place and
// never copied.
type Reader struct{}

// New creates a local filesystem reader.
func New() *Reader {
	return &Reader{}
}

// Kind returns the local source kind.
func (r *Reader) Kind() domain.SourceKind {
	return domain.SourceLocal
}

// Supports accepts file:// URIs and anything without a scheme.
func (r *Reader) Supports(uri string) bool {
	return strings.HasPrefix(uri, "file://") || !strings.Contains(uri, "://")
}

// ReadFile stats the file and returns its original path.
func (r *Reader) ReadFile(
	_ context.Context,
	loc domain.Location,
	_ domain.Credentials,
	_ driven.StagingArea,
) (domain.StagedFile, error) {
	path := loc.LocalPath()
	info, err := os.Stat(path)
	if err != nil {
		return domain.StagedFile{}, classify(err, "file", path)
	}
	if info.IsDir() {
		return domain.StagedFile{}, domain.ValidationError("not a file: %s", path)
	}
	return domain.StagedFile{
		Path:    path,
		Name:    info.Name(),
		Size:    info.Size(),
		InPlace: true,
	}, nil
}

// ListFiles returns the regular files directly inside the directory.
func (r *Reader) ListFiles(_ context.Context, loc domain.Location, _ domain.Credentials) ([]domain.DirectoryEntry, error) {
	dir := loc.LocalPath()
	info, err := os.Stat(dir)
	if err != nil {
		return nil, classify(err, "directory", dir)
	}
	if !info.IsDir() {
		return nil, domain.ValidationError("not a directory: %s", dir)
	}

	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, classify(err, "directory", dir)
	}

	entries := make([]domain.DirectoryEntry, 0, len(dirEntries))
	for _, de := range dirEntries {
		if !de.Type().IsRegular() {
			continue
		}
		fi, err := de.Info()
		if err != nil {
			// Removed between ReadDir and Info.
			continue
		}
		entries = append(entries, domain.DirectoryEntry{
			Name:     de.Name(),
			Path:     filepath.Join(dir, de.Name()),
			Size:     fi.Size(),
			Modified: fi.ModTime().UTC(),
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

func classify(err error, what, path string) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return domain.NotFoundError("%s not found: %s", what, path)
	case errors.Is(err, fs.ErrPermission):
		return domain.Errorf(domain.ErrUnauthorized, "permission denied: %s", path)
	default:
		return domain.SourceConnectionError("reading %s %s: %w", what, path, err)
	}
}
