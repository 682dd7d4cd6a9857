package services

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/custodia-labs/policy-reader/internal/core/domain"
	"github.com/custodia-labs/policy-reader/internal/core/ports/driven"
	"github.com/custodia-labs/policy-reader/internal/core/ports/driving"
)

// fakeReader is a SourceReader whose predicate is a list of URI prefixes.
// An empty prefix list means "anything without ://", like the local reader.
type fakeReader struct {
	kind     domain.SourceKind
	prefixes []string
	name     string
	content  []byte
	inPlace  string
	entries  []domain.DirectoryEntry
	readErr  error
	listErr  error

	reads     atomic.Int32
	mu        sync.Mutex
	lastCreds domain.Credentials
	lastLoc   domain.Location
	lastLimit int64
}

func newPrefixReader(kind domain.SourceKind, prefixes ...string) *fakeReader {
	return &fakeReader{kind: kind, prefixes: prefixes, name: "doc.txt", content: []byte("hello")}
}

func (f *fakeReader) Kind() domain.SourceKind { return f.kind }

func (f *fakeReader) Supports(uri string) bool {
	if len(f.prefixes) == 0 {
		return strings.HasPrefix(uri, "file://") || !strings.Contains(uri, "://")
	}
	for _, p := range f.prefixes {
		if strings.HasPrefix(uri, p) {
			return true
		}
	}
	return false
}

func (f *fakeReader) ReadFile(
	_ context.Context,
	loc domain.Location,
	creds domain.Credentials,
	area driven.StagingArea,
) (domain.StagedFile, error) {
	f.reads.Add(1)
	f.mu.Lock()
	f.lastCreds = creds
	f.lastLoc = loc
	f.lastLimit = area.MaxBytes()
	f.mu.Unlock()

	if f.readErr != nil {
		return domain.StagedFile{}, f.readErr
	}
	if f.inPlace != "" {
		info, err := os.Stat(f.inPlace)
		if err != nil {
			return domain.StagedFile{}, err
		}
		return domain.StagedFile{Path: f.inPlace, Name: info.Name(), Size: info.Size(), InPlace: true}, nil
	}
	p, err := area.Path(f.name)
	if err != nil {
		return domain.StagedFile{}, err
	}
	if err := os.WriteFile(p, f.content, 0600); err != nil {
		return domain.StagedFile{}, err
	}
	return domain.StagedFile{Path: p, Name: f.name, Size: int64(len(f.content))}, nil
}

func (f *fakeReader) ListFiles(_ context.Context, _ domain.Location, _ domain.Credentials) ([]domain.DirectoryEntry, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.entries, nil
}

func (f *fakeReader) creds() domain.Credentials {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastCreds
}

// standardReaders returns fakes with the real protocol predicates, in
// reverse priority order to prove ordering comes from the registry.
func standardReaders() []driven.SourceReader {
	return []driven.SourceReader{
		newPrefixReader(domain.SourceLocal),
		newPrefixReader(domain.SourceHTTP, "http://", "https://"),
		newPrefixReader(domain.SourceNetworkShare, "smb://", `\\`),
		newPrefixReader(domain.SourceVersionControl, "git://"),
		newPrefixReader(domain.SourceObjectStore, "s3://"),
	}
}

// fakeParser echoes the staged file content.
type fakeParser struct {
	kind    domain.ParserKind
	exts    []string
	err     error
	parsed  atomic.Int32
	lastCtx context.Context
}

func (f *fakeParser) Kind() domain.ParserKind { return f.kind }
func (f *fakeParser) Extensions() []string    { return f.exts }

func (f *fakeParser) Parse(ctx context.Context, file domain.StagedFile) (*domain.ParseResult, error) {
	f.parsed.Add(1)
	f.lastCtx = ctx
	if f.err != nil {
		return nil, f.err
	}
	data, err := os.ReadFile(file.Path)
	if err != nil {
		return nil, err
	}
	return &domain.ParseResult{
		Content:  string(data),
		Metadata: map[string]any{"parser": string(f.kind)},
		Format:   strings.TrimPrefix(file.Extension(), "."),
	}, nil
}

func standardParsers() (*fakeParser, *fakeParser, *fakeParser, *fakeParser, *fakeParser) {
	return &fakeParser{kind: domain.ParserPDF, exts: []string{".pdf"}},
		&fakeParser{kind: domain.ParserWord, exts: []string{".docx", ".doc"}},
		&fakeParser{kind: domain.ParserSpreadsheet, exts: []string{".xlsx", ".xls"}},
		&fakeParser{kind: domain.ParserTabular, exts: []string{".csv"}},
		&fakeParser{kind: domain.ParserPlainText, exts: []string{".txt", ".md", ".markdown", ".json", ".yaml", ".yml"}}
}

// fakeSecrets is an in-memory SecretStore.
type fakeSecrets map[string]domain.Secrets

func (f fakeSecrets) Lookup(_ context.Context, path string) (domain.Secrets, error) {
	s, ok := f[path]
	if !ok {
		return nil, domain.NotFoundError("credentials not found: %s", path)
	}
	return s, nil
}

// fakeAuditor collects events.
type fakeAuditor struct {
	mu     sync.Mutex
	events []domain.AuditEvent
	err    error
}

func (f *fakeAuditor) Record(_ context.Context, e domain.AuditEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
	return f.err
}

func (f *fakeAuditor) all() []domain.AuditEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.AuditEvent(nil), f.events...)
}

// fakeRetrieval is a scripted RetrievalService.
type fakeRetrieval struct {
	doc     *domain.ParsedDocument
	entries []domain.DirectoryEntry
	err     error

	gotSecrets domain.Secrets
	gotOpts    driving.RetrieveOptions
	gotPattern string
}

func (f *fakeRetrieval) RetrieveDocument(
	_ context.Context,
	_ string,
	secrets domain.Secrets,
	opts driving.RetrieveOptions,
) (*domain.ParsedDocument, error) {
	f.gotSecrets = secrets
	f.gotOpts = opts
	if f.err != nil {
		return nil, f.err
	}
	return f.doc, nil
}

func (f *fakeRetrieval) ListDocuments(
	_ context.Context,
	_ string,
	secrets domain.Secrets,
	pattern string,
) ([]domain.DirectoryEntry, error) {
	f.gotSecrets = secrets
	f.gotPattern = pattern
	if f.err != nil {
		return nil, f.err
	}
	return f.entries, nil
}

var errBoom = errors.New("boom")
