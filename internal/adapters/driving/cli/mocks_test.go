package cli

import (
	"context"
	"errors"
	"time"

	"github.com/custodia-labs/policy-reader/internal/core/domain"
	"github.com/custodia-labs/policy-reader/internal/core/ports/driving"
)

type mockToolService struct {
	readOutcome domain.Outcome
	listOutcome domain.Outcome
	lastRead    driving.ReadDocumentInput
	lastList    driving.ListDocumentsInput
}

func (m *mockToolService) ReadDocument(_ context.Context, in driving.ReadDocumentInput) domain.Outcome {
	m.lastRead = in
	return m.readOutcome
}

func (m *mockToolService) ListDocuments(_ context.Context, in driving.ListDocumentsInput) domain.Outcome {
	m.lastList = in
	return m.listOutcome
}

type mockCatalogService struct{}

func (mockCatalogService) Sources() []driving.SourceInfo {
	return []driving.SourceInfo{
		{Kind: domain.SourceObjectStore, Description: domain.SourceObjectStore.Description(), Enabled: true},
		{Kind: domain.SourceNetworkShare, Description: domain.SourceNetworkShare.Description(), Enabled: false},
	}
}

func (mockCatalogService) Formats() []string { return []string{".pdf", ".csv"} }

type mockAuditStore struct {
	events []domain.AuditEvent
	err    error
	limit  int
}

func (m *mockAuditStore) Record(_ context.Context, e domain.AuditEvent) error {
	m.events = append(m.events, e)
	return nil
}

func (m *mockAuditStore) Recent(_ context.Context, limit int) ([]domain.AuditEvent, error) {
	m.limit = limit
	if m.err != nil {
		return nil, m.err
	}
	if limit < len(m.events) {
		return m.events[:limit], nil
	}
	return m.events, nil
}

var testTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func testDocument() *domain.ParsedDocument {
	return &domain.ParsedDocument{
		Content:  "a  b\n1  2",
		Metadata: map[string]any{"rows": 1, "columns": []string{"a", "b"}, "column_count": 2},
		Format:   "csv",
		FileName: "access.csv",
		FilePath: "s3://bucket/policies/access.csv",
		FileSize: 8,
	}
}

// testServices are what setupTestServices installs.
type testServices struct {
	tools *mockToolService
	audit *mockAuditStore
	svc   *Services
}

// setupTestServices installs a bootstrap returning mocks and returns a
// cleanup func that restores global state.
func setupTestServices() (*testServices, func()) {
	ts := &testServices{
		tools: &mockToolService{
			readOutcome: domain.Success(testDocument()),
			listOutcome: domain.Success(domain.Listing{
				Files: []domain.DirectoryEntry{
					{Name: "a.pdf", Path: "/srv/policies/a.pdf", Size: 1024, Modified: testTime},
					{Name: "b.pdf", Path: "/srv/policies/b.pdf", Size: 2048},
				},
				Count: 2,
			}),
		},
		audit: &mockAuditStore{},
	}
	ts.svc = &Services{
		Settings: domain.DefaultSettings(),
		Tools:    ts.tools,
		Catalog:  mockCatalogService{},
		Audit:    ts.audit,
	}

	originalBootstrap := bootstrap
	bootstrap = func(_ context.Context, _ string, _ bool) (*Services, error) {
		return ts.svc, nil
	}

	return ts, func() {
		bootstrap = originalBootstrap
		services = nil
		configPath = ""
		verbose = false
		readCredentials, readFormat, readJSON = "", "auto", false
		listCredentials, listPattern, listJSON = "", "*", false
		auditLimit, auditJSON = 20, false
		rootCmd.SetArgs(nil)
	}
}

var errBootstrap = errors.New("config broken")
