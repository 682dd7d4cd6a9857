package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/custodia-labs/policy-reader/internal/core/domain"
	"github.com/custodia-labs/policy-reader/internal/core/ports/driven"
	"github.com/custodia-labs/policy-reader/internal/core/ports/driving"
)

// Ensure Tools implements the interface.
var _ driving.ToolService = (*Tools)(nil)

// ToolFormats lists the values accepted by the read-document format field.
var ToolFormats = []string{
	FormatAuto, "pdf", "docx", "doc", "xlsx", "xls", "csv", "txt", "md", "markdown", "json", "yaml", "yml",
}

// ToolsConfig tunes the tool service.
type ToolsConfig struct {
	// MaxSizeBytes is passed to every retrieval.
	MaxSizeBytes int64
	Logger       *zap.Logger
}

// Tools implements read-document and list-documents on top of the
// retrieval pipeline. It is the only place errors turn into envelopes.
type Tools struct {
	retrieval driving.RetrievalService
	secrets   driven.SecretStore
	auditor   driven.Auditor
	maxSize   int64
	logger    *zap.Logger
	now       func() time.Time
}

// NewTools creates the tool service. secrets and auditor may be nil.
func NewTools(
	retrieval driving.RetrievalService,
	secrets driven.SecretStore,
	auditor driven.Auditor,
	cfg ToolsConfig,
) *Tools {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tools{
		retrieval: retrieval,
		secrets:   secrets,
		auditor:   auditor,
		maxSize:   cfg.MaxSizeBytes,
		logger:    logger.With(zap.String("component", "tools")),
		now:       time.Now,
	}
}

// ReadDocument fetches and parses one document.
func (t *Tools) ReadDocument(ctx context.Context, in driving.ReadDocumentInput) domain.Outcome {
	start := t.now()
	t.logger.Info("reading document", zap.String("source", in.Source), zap.String("caller", in.Caller))

	doc, err := t.readDocument(ctx, in)

	event := t.newEvent(domain.ActionDocumentRead, in.Caller, in.Source, start)
	if err != nil {
		t.fail(ctx, &event, err)
		return domain.Failure(err)
	}
	event.Format = doc.Format
	event.Size = doc.FileSize
	t.record(ctx, event)
	return domain.Success(doc)
}

// ListDocuments lists one location.
func (t *Tools) ListDocuments(ctx context.Context, in driving.ListDocumentsInput) domain.Outcome {
	start := t.now()
	t.logger.Info("listing documents", zap.String("source", in.Source), zap.String("caller", in.Caller))

	entries, err := t.listDocuments(ctx, in)

	event := t.newEvent(domain.ActionDocumentsListed, in.Caller, in.Source, start)
	if err != nil {
		t.fail(ctx, &event, err)
		return domain.Failure(err)
	}
	event.Count = len(entries)
	t.record(ctx, event)
	return domain.Success(domain.Listing{Files: entries, Count: len(entries)})
}

func (t *Tools) readDocument(ctx context.Context, in driving.ReadDocumentInput) (*domain.ParsedDocument, error) {
	if strings.TrimSpace(in.Source) == "" {
		return nil, domain.ValidationError("source is required")
	}
	format, err := validateFormat(in.Format)
	if err != nil {
		return nil, err
	}
	secrets, err := t.lookupSecrets(ctx, in.CredentialsPath)
	if err != nil {
		return nil, err
	}
	return t.retrieval.RetrieveDocument(ctx, in.Source, secrets, driving.RetrieveOptions{
		MaxSizeBytes: t.maxSize,
		Format:       format,
	})
}

func (t *Tools) listDocuments(ctx context.Context, in driving.ListDocumentsInput) ([]domain.DirectoryEntry, error) {
	if strings.TrimSpace(in.Source) == "" {
		return nil, domain.ValidationError("source is required")
	}
	secrets, err := t.lookupSecrets(ctx, in.CredentialsPath)
	if err != nil {
		return nil, err
	}
	pattern := in.Pattern
	if pattern == "" {
		pattern = "*"
	}
	return t.retrieval.ListDocuments(ctx, in.Source, secrets, pattern)
}

func (t *Tools) lookupSecrets(ctx context.Context, path string) (domain.Secrets, error) {
	if path == "" {
		return nil, nil
	}
	if t.secrets == nil {
		return nil, domain.ValidationError("credentials_path %q given but no secret store is configured", path)
	}
	return t.secrets.Lookup(ctx, path)
}

func validateFormat(format string) (string, error) {
	f := strings.ToLower(strings.TrimSpace(format))
	if f == "" {
		return FormatAuto, nil
	}
	for _, allowed := range ToolFormats {
		if f == allowed {
			return f, nil
		}
	}
	return "", domain.ValidationError("format %q is not one of %s", format, strings.Join(ToolFormats, ", "))
}

func (t *Tools) newEvent(action, caller, source string, start time.Time) domain.AuditEvent {
	return domain.AuditEvent{
		ID:        uuid.NewString(),
		Action:    action,
		Caller:    caller,
		Source:    source,
		Status:    domain.StatusSuccess,
		Timestamp: start.UTC(),
		Duration:  t.now().Sub(start),
	}
}

func (t *Tools) fail(ctx context.Context, event *domain.AuditEvent, err error) {
	event.Status = domain.StatusError
	event.ErrorKind = domain.KindName(err)
	event.Error = err.Error()
	t.logger.Error("tool invocation failed",
		zap.String("action", event.Action),
		zap.String("source", event.Source),
		zap.String("error_kind", event.ErrorKind),
		zap.Error(err))
	t.record(ctx, *event)
}

func (t *Tools) record(ctx context.Context, event domain.AuditEvent) {
	if t.auditor == nil {
		return
	}
	if err := t.auditor.Record(ctx, event); err != nil {
		t.logger.Warn("audit record failed", zap.String("action", event.Action), zap.Error(err))
	}
}
