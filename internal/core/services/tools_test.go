package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/policy-reader/internal/core/domain"
	"github.com/custodia-labs/policy-reader/internal/core/ports/driven"
	"github.com/custodia-labs/policy-reader/internal/core/ports/driving"
)

func newTestTools(r *fakeRetrieval, secrets fakeSecrets, auditor *fakeAuditor) *Tools {
	var a driven.Auditor
	if auditor != nil {
		a = auditor
	}
	return NewTools(r, secrets, a, ToolsConfig{MaxSizeBytes: 100})
}

func TestTools_ReadDocument_Success(t *testing.T) {
	doc := &domain.ParsedDocument{Content: "x", Format: "pdf", FileName: "a.pdf", FileSize: 42}
	r := &fakeRetrieval{doc: doc}
	auditor := &fakeAuditor{}
	secrets := fakeSecrets{"aws/reader": {"access_key_id": "AKIA"}}
	tools := newTestTools(r, secrets, auditor)

	out := tools.ReadDocument(context.Background(), driving.ReadDocumentInput{
		Source:          "s3://bucket/a.pdf",
		CredentialsPath: "aws/reader",
		Format:          "PDF",
		Caller:          "agent-1",
	})

	require.True(t, out.IsSuccess())
	assert.Same(t, doc, out.Data)
	assert.Equal(t, "AKIA", r.gotSecrets["access_key_id"])
	assert.Equal(t, int64(100), r.gotOpts.MaxSizeBytes)
	assert.Equal(t, "pdf", r.gotOpts.Format)

	events := auditor.all()
	require.Len(t, events, 1)
	assert.Equal(t, domain.ActionDocumentRead, events[0].Action)
	assert.Equal(t, "agent-1", events[0].Caller)
	assert.Equal(t, "pdf", events[0].Format)
	assert.Equal(t, int64(42), events[0].Size)
	assert.True(t, events[0].Succeeded())
	assert.NotEmpty(t, events[0].ID)
}

func TestTools_ReadDocument_Failures(t *testing.T) {
	tests := []struct {
		name     string
		in       driving.ReadDocumentInput
		retrErr  error
		wantKind string
	}{
		{"missing source", driving.ReadDocumentInput{}, nil, "validation_error"},
		{"bad format", driving.ReadDocumentInput{Source: "a.txt", Format: "pptx"}, nil, "validation_error"},
		{"unknown credentials", driving.ReadDocumentInput{Source: "a.txt", CredentialsPath: "nope"}, nil, "not_found"},
		{"pipeline error", driving.ReadDocumentInput{Source: "a.pdf"}, domain.DocumentTooLargeError(101, 100), "document_too_large"},
		{"unclassified error", driving.ReadDocumentInput{Source: "a.pdf"}, errBoom, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auditor := &fakeAuditor{}
			tools := newTestTools(&fakeRetrieval{err: tt.retrErr}, fakeSecrets{}, auditor)

			out := tools.ReadDocument(context.Background(), tt.in)

			assert.Equal(t, domain.StatusError, out.Status)
			assert.NotEmpty(t, out.Error)
			assert.Nil(t, out.Data)

			events := auditor.all()
			require.Len(t, events, 1)
			assert.Equal(t, domain.StatusError, events[0].Status)
			assert.Equal(t, tt.wantKind, events[0].ErrorKind)
		})
	}
}

func TestTools_ReadDocument_DefaultFormatIsAuto(t *testing.T) {
	r := &fakeRetrieval{doc: &domain.ParsedDocument{}}
	tools := newTestTools(r, nil, nil)

	out := tools.ReadDocument(context.Background(), driving.ReadDocumentInput{Source: "a.txt"})

	require.True(t, out.IsSuccess())
	assert.Equal(t, FormatAuto, r.gotOpts.Format)
	assert.Nil(t, r.gotSecrets)
}

func TestTools_CredentialsWithoutStore(t *testing.T) {
	tools := NewTools(&fakeRetrieval{}, nil, nil, ToolsConfig{})

	out := tools.ReadDocument(context.Background(), driving.ReadDocumentInput{Source: "a.txt", CredentialsPath: "x"})

	assert.Equal(t, domain.StatusError, out.Status)
	assert.Contains(t, out.Error, "no secret store")
}

func TestTools_ListDocuments(t *testing.T) {
	entries := []domain.DirectoryEntry{{Name: "a.pdf"}, {Name: "b.pdf"}}
	r := &fakeRetrieval{entries: entries}
	auditor := &fakeAuditor{}
	tools := newTestTools(r, nil, auditor)

	out := tools.ListDocuments(context.Background(), driving.ListDocumentsInput{Source: "s3://bucket/", Pattern: "*.pdf"})

	require.True(t, out.IsSuccess())
	listing, ok := out.Data.(domain.Listing)
	require.True(t, ok)
	assert.Equal(t, 2, listing.Count)
	assert.Equal(t, entries, listing.Files)
	assert.Equal(t, "*.pdf", r.gotPattern)

	events := auditor.all()
	require.Len(t, events, 1)
	assert.Equal(t, domain.ActionDocumentsListed, events[0].Action)
	assert.Equal(t, 2, events[0].Count)
}

func TestTools_ListDocuments_DefaultPattern(t *testing.T) {
	r := &fakeRetrieval{}
	tools := newTestTools(r, nil, nil)

	out := tools.ListDocuments(context.Background(), driving.ListDocumentsInput{Source: "/srv"})

	require.True(t, out.IsSuccess())
	assert.Equal(t, "*", r.gotPattern)
}

func TestTools_ListDocuments_Error(t *testing.T) {
	tools := newTestTools(&fakeRetrieval{err: domain.NotFoundError("directory not found: /nope")}, nil, nil)

	out := tools.ListDocuments(context.Background(), driving.ListDocumentsInput{Source: "/nope"})

	assert.Equal(t, domain.StatusError, out.Status)
	assert.Equal(t, "directory not found: /nope", out.Error)
}

func TestTools_AuditFailureDoesNotFailCall(t *testing.T) {
	auditor := &fakeAuditor{err: errBoom}
	tools := newTestTools(&fakeRetrieval{doc: &domain.ParsedDocument{}}, nil, auditor)

	out := tools.ReadDocument(context.Background(), driving.ReadDocumentInput{Source: "a.txt"})

	assert.True(t, out.IsSuccess())
	assert.Len(t, auditor.all(), 1)
}
