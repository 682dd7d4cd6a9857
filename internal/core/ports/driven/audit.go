package driven

import (
	"context"

	"github.com/custodia-labs/policy-reader/internal/core/domain"
)

// Auditor records tool invocations.
// Implementations must not fail the invocation; errors are returned so the
// caller can log them.
type Auditor interface {
	Record(ctx context.Context, event domain.AuditEvent) error
}

// AuditStore is an Auditor that can also read events back.
type AuditStore interface {
	Auditor

	// Recent returns up to limit events, newest first.
	Recent(ctx context.Context, limit int) ([]domain.AuditEvent, error)
}
