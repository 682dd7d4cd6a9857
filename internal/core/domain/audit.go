package domain

import "time"

// Audit actions.
const (
	ActionDocumentRead    = "document.read"
	ActionDocumentsListed = "documents.listed"
)

// AuditEvent records one tool invocation.
type AuditEvent struct {
	ID        string        `json:"id"`
	Action    string        `json:"action"`
	Caller    string        `json:"caller,omitempty"`
	Source    string        `json:"source"`
	Format    string        `json:"format,omitempty"`
	Size      int64         `json:"size,omitempty"`
	Count     int           `json:"count,omitempty"`
	Status    string        `json:"status"`
	ErrorKind string        `json:"error_kind,omitempty"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration"`
	Timestamp time.Time     `json:"timestamp"`
}

// Succeeded returns true if the invocation returned a success envelope.
func (e AuditEvent) Succeeded() bool {
	return e.Status == StatusSuccess
}
