package domain

import (
	"path/filepath"
	"strings"
)

// DefaultBranch is used when a git location names no branch.
const DefaultBranch = "main"

// URI schemes understood by ParseLocation.
const (
	SchemeFile  = "file"
	SchemeS3    = "s3"
	SchemeGit   = "git"
	SchemeSMB   = "smb"
	SchemeHTTP  = "http"
	SchemeHTTPS = "https"
)

// Location is a parsed document location. It is immutable once parsed.
//
// Segment layout per scheme:
//
//	s3://bucket/a/b.pdf                  Authority=bucket  Segments=[a b.pdf]
//	git://host/org/repo/branch/a/b.md    Authority=host    Segments=[org repo a b.md]  Ref=branch
//	smb://server/share/a/b.docx          Authority=server  Segments=[share a b.docx]
//	\\server\share\a\b.docx              Authority=server  Segments=[share a b.docx]
//	https://host/a/b.csv                 Authority=host    Segments=[a b.csv]
//	file:///tmp/a.txt, /tmp/a.txt        Authority=""      Segments=nil
type Location struct {
	// Raw is the URI exactly as supplied by the caller.
	Raw string
	// Scheme is the lower-cased protocol, SchemeFile for bare paths.
	Scheme string
	// Authority is the host, bucket or server.
	Authority string
	// Segments are the non-empty path segments after the authority.
	Segments []string
	// Ref is the git branch. Empty for every other scheme.
	Ref string
	// TrailingSlash records whether the path ended with a separator,
	// which listings use to tell a prefix from an object.
	TrailingSlash bool
}

// ParseLocation parses a raw location URI.
func ParseLocation(raw string) (Location, error) {
	if strings.TrimSpace(raw) == "" {
		return Location{}, ValidationError("source is required")
	}

	if strings.HasPrefix(raw, `\\`) {
		return parseUNC(raw)
	}

	scheme, rest, ok := strings.Cut(raw, "://")
	if !ok {
		return Location{Raw: raw, Scheme: SchemeFile}, nil
	}
	scheme = strings.ToLower(scheme)

	loc := Location{Raw: raw, Scheme: scheme}
	if scheme == SchemeFile {
		return loc, nil
	}

	authority, path, _ := strings.Cut(rest, "/")
	if scheme == SchemeHTTP || scheme == SchemeHTTPS {
		path, _, _ = strings.Cut(path, "?")
		path, _, _ = strings.Cut(path, "#")
	}
	if authority == "" {
		return Location{}, ValidationError("invalid %s location %q: missing host", scheme, raw)
	}
	loc.Authority = authority
	loc.Segments = splitSegments(path, "/")
	loc.TrailingSlash = strings.HasSuffix(path, "/")

	switch scheme {
	case SchemeGit:
		return parseGit(loc)
	case SchemeSMB:
		if len(loc.Segments) == 0 {
			return Location{}, ValidationError("invalid smb location %q: missing share", raw)
		}
	}
	return loc, nil
}

func parseUNC(raw string) (Location, error) {
	body := strings.TrimPrefix(raw, `\\`)
	parts := splitSegments(strings.ReplaceAll(body, `\`, "/"), "/")
	if len(parts) < 2 {
		return Location{}, ValidationError("invalid UNC path %q: expected \\\\server\\share", raw)
	}
	return Location{
		Raw:           raw,
		Scheme:        SchemeSMB,
		Authority:     parts[0],
		Segments:      parts[1:],
		TrailingSlash: strings.HasSuffix(body, `\`) || strings.HasSuffix(body, "/"),
	}, nil
}

// parseGit moves the branch segment into Ref.
func parseGit(loc Location) (Location, error) {
	if len(loc.Segments) < 2 {
		return Location{}, ValidationError("invalid git location %q: expected git://host/org/repo[/branch/path]", loc.Raw)
	}
	loc.Ref = DefaultBranch
	if len(loc.Segments) > 2 {
		loc.Ref = loc.Segments[2]
		rest := append([]string{}, loc.Segments[:2]...)
		loc.Segments = append(rest, loc.Segments[3:]...)
	}
	return loc, nil
}

func splitSegments(path, sep string) []string {
	var out []string
	for _, s := range strings.Split(path, sep) {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// IsLocal returns true for file:// URIs and bare paths.
func (l Location) IsLocal() bool {
	return l.Scheme == SchemeFile
}

// LocalPath returns the filesystem path of a local location.
func (l Location) LocalPath() string {
	if strings.HasPrefix(strings.ToLower(l.Raw), "file://") {
		return l.Raw[len("file://"):]
	}
	return l.Raw
}

// Path joins the segments with "/".
func (l Location) Path() string {
	return strings.Join(l.Segments, "/")
}

// Base returns the final path element, or "" when there is none.
func (l Location) Base() string {
	if l.IsLocal() {
		return filepath.Base(l.LocalPath())
	}
	if len(l.Segments) == 0 {
		return ""
	}
	return l.Segments[len(l.Segments)-1]
}

// Owner returns the organisation segment of a git location.
func (l Location) Owner() string {
	if l.Scheme != SchemeGit || len(l.Segments) < 2 {
		return ""
	}
	return l.Segments[0]
}

// Repository returns the repository segment of a git location.
func (l Location) Repository() string {
	if l.Scheme != SchemeGit || len(l.Segments) < 2 {
		return ""
	}
	return l.Segments[1]
}

// RepoPath returns the path inside the repository of a git location.
func (l Location) RepoPath() string {
	if l.Scheme != SchemeGit || len(l.Segments) < 2 {
		return ""
	}
	return strings.Join(l.Segments[2:], "/")
}

// Share returns the share segment of an smb location.
func (l Location) Share() string {
	if l.Scheme != SchemeSMB || len(l.Segments) == 0 {
		return ""
	}
	return l.Segments[0]
}

// SharePath returns the path inside the share of an smb location.
func (l Location) SharePath() string {
	if l.Scheme != SchemeSMB || len(l.Segments) == 0 {
		return ""
	}
	return strings.Join(l.Segments[1:], "/")
}

// String returns the raw URI.
func (l Location) String() string {
	return l.Raw
}
