package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLocation(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		scheme    string
		authority string
		segments  []string
		ref       string
	}{
		{"bare relative path", "notes.txt", SchemeFile, "", nil, ""},
		{"bare absolute path", "/srv/policies/a.pdf", SchemeFile, "", nil, ""},
		{"file uri", "file:///srv/policies/a.pdf", SchemeFile, "", nil, ""},
		{"s3", "s3://bucket/policies/a.pdf", SchemeS3, "bucket", []string{"policies", "a.pdf"}, ""},
		{"s3 bucket root", "s3://bucket", SchemeS3, "bucket", nil, ""},
		{"git with branch", "git://github.com/acme/docs/dev/policies/a.md", SchemeGit, "github.com",
			[]string{"acme", "docs", "policies", "a.md"}, "dev"},
		{"git default branch", "git://github.com/acme/docs", SchemeGit, "github.com",
			[]string{"acme", "docs"}, DefaultBranch},
		{"smb uri", "smb://fs01/share/hr/a.docx", SchemeSMB, "fs01", []string{"share", "hr", "a.docx"}, ""},
		{"unc path", `\\fs01\share\hr\a.docx`, SchemeSMB, "fs01", []string{"share", "hr", "a.docx"}, ""},
		{"https", "https://example.com/docs/a.csv?x=1", SchemeHTTPS, "example.com", []string{"docs", "a.csv"}, ""},
		{"upper case scheme", "S3://bucket/a.pdf", SchemeS3, "bucket", []string{"a.pdf"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := ParseLocation(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.raw, loc.Raw)
			assert.Equal(t, tt.scheme, loc.Scheme)
			assert.Equal(t, tt.authority, loc.Authority)
			assert.Equal(t, tt.segments, loc.Segments)
			assert.Equal(t, tt.ref, loc.Ref)
		})
	}
}

func TestParseLocation_Invalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"blank", "   "},
		{"git missing repo", "git://github.com/acme"},
		{"s3 missing bucket", "s3:///key"},
		{"smb missing share", "smb://fs01"},
		{"unc missing share", `\\fs01`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLocation(tt.raw)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestLocation_Accessors(t *testing.T) {
	t.Run("git", func(t *testing.T) {
		loc, err := ParseLocation("git://gitlab.example.com/acme/docs/main/policies/security.md")
		require.NoError(t, err)
		assert.Equal(t, "acme", loc.Owner())
		assert.Equal(t, "docs", loc.Repository())
		assert.Equal(t, "policies/security.md", loc.RepoPath())
		assert.Equal(t, "security.md", loc.Base())
	})

	t.Run("smb", func(t *testing.T) {
		loc, err := ParseLocation(`\\fs01\policies\hr\leave.docx`)
		require.NoError(t, err)
		assert.Equal(t, "policies", loc.Share())
		assert.Equal(t, "hr/leave.docx", loc.SharePath())
	})

	t.Run("local", func(t *testing.T) {
		loc, err := ParseLocation("file:///srv/policies/a.pdf")
		require.NoError(t, err)
		assert.True(t, loc.IsLocal())
		assert.Equal(t, "/srv/policies/a.pdf", loc.LocalPath())
		assert.Equal(t, "a.pdf", loc.Base())
	})

	t.Run("trailing slash", func(t *testing.T) {
		loc, err := ParseLocation("s3://bucket/policies/")
		require.NoError(t, err)
		assert.True(t, loc.TrailingSlash)
		assert.Equal(t, "policies", loc.Path())
	})

	t.Run("non git accessors are empty", func(t *testing.T) {
		loc, err := ParseLocation("s3://bucket/a/b")
		require.NoError(t, err)
		assert.Empty(t, loc.Owner())
		assert.Empty(t, loc.RepoPath())
		assert.Empty(t, loc.Share())
	})
}
