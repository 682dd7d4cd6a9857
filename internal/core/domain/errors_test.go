package domain

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestErrors_Existence tests that all error kinds exist and are distinct
func TestErrors_Existence(t *testing.T) {
	seen := map[string]bool{}
	for _, k := range kinds {
		require.NotNil(t, k)
		assert.NotEmpty(t, k.Error())
		assert.False(t, seen[k.Error()], "duplicate kind message %q", k.Error())
		seen[k.Error()] = true
	}
}

func TestErrorf_MessageOnly(t *testing.T) {
	err := NotFoundError("file not found: %s", "/tmp/x.pdf")

	assert.Equal(t, "file not found: /tmp/x.pdf", err.Error())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrInvalidInput)
}

func TestErrorf_WrapsCause(t *testing.T) {
	err := SourceConnectionError("s3 download failed: %w", fs.ErrPermission)

	assert.ErrorIs(t, err, ErrSourceConnection)
	assert.ErrorIs(t, err, fs.ErrPermission)
	assert.Contains(t, err.Error(), "s3 download failed")
}

func TestError_As(t *testing.T) {
	var wrapped error = DocumentParseError("csv parse error: bad quote")
	wrapped = errors.Join(wrapped)

	var target *Error
	require.True(t, errors.As(wrapped, &target))
	assert.Equal(t, ErrDocumentParse, target.Kind)
}

func TestDocumentTooLargeError(t *testing.T) {
	err := DocumentTooLargeError(101, 100)

	assert.Equal(t, "document size 101 exceeds limit 100", err.Error())
	assert.ErrorIs(t, err, ErrDocumentTooLarge)
	assert.Equal(t, int64(101), err.Details["size"])
	assert.Equal(t, int64(100), err.Details["limit"])
}

func TestKindName(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{ValidationError("x"), "validation_error"},
		{NotFoundError("x"), "not_found"},
		{Errorf(ErrUnauthorized, "x"), "unauthorized"},
		{SourceConnectionError("x"), "source_connection_error"},
		{DocumentParseError("x"), "document_parse_error"},
		{DocumentTooLargeError(2, 1), "document_too_large"},
		{UnsupportedFormatError("x"), "unsupported_format"},
		{errors.New("boom"), "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, KindName(tt.err))
		})
	}
}

func TestKindOf_Unclassified(t *testing.T) {
	assert.Nil(t, KindOf(errors.New("boom")))
	assert.Nil(t, KindOf(nil))
}
