package mcp

import (
	"context"
	"sync"

	"github.com/custodia-labs/policy-reader/internal/core/domain"
	"github.com/custodia-labs/policy-reader/internal/core/ports/driving"
)

// mockToolService is a mock implementation of driving.ToolService.
type mockToolService struct {
	readOutcome domain.Outcome
	listOutcome domain.Outcome

	mu        sync.Mutex
	readCalls []driving.ReadDocumentInput
	listCalls []driving.ListDocumentsInput
}

func (m *mockToolService) ReadDocument(_ context.Context, in driving.ReadDocumentInput) domain.Outcome {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readCalls = append(m.readCalls, in)
	return m.readOutcome
}

func (m *mockToolService) ListDocuments(_ context.Context, in driving.ListDocumentsInput) domain.Outcome {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls = append(m.listCalls, in)
	return m.listOutcome
}

// mockCatalogService is a mock implementation of driving.CatalogService.
type mockCatalogService struct {
	sources []driving.SourceInfo
	formats []string
}

func (m *mockCatalogService) Sources() []driving.SourceInfo { return m.sources }
func (m *mockCatalogService) Formats() []string             { return m.formats }

func (m *mockToolService) reads() []driving.ReadDocumentInput {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]driving.ReadDocumentInput(nil), m.readCalls...)
}

func (m *mockToolService) lists() []driving.ListDocumentsInput {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]driving.ListDocumentsInput(nil), m.listCalls...)
}
