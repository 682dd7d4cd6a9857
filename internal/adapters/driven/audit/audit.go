// Package audit records tool invocations.
package audit

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/custodia-labs/policy-reader/internal/core/domain"
	"github.com/custodia-labs/policy-reader/internal/core/ports/driven"
)

// Ensure implementations satisfy the interface.
var (
	_ driven.Auditor = (*Logger)(nil)
	_ driven.Auditor = Fanout(nil)
)

// Logger writes one AUDIT line per invocation.
type Logger struct {
	logger *zap.Logger
}

// NewLogger creates a Logger. A nil logger discards events.
func NewLogger(logger *zap.Logger) *Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Logger{logger: logger.With(zap.String("component", "audit"))}
}

// Record logs the event. Failed invocations are logged at warn level.
func (l *Logger) Record(_ context.Context, e domain.AuditEvent) error {
	fields := []zap.Field{
		zap.String("request_id", e.ID),
		zap.String("action", e.Action),
		zap.String("source", e.Source),
		zap.String("status", e.Status),
		zap.Duration("duration", e.Duration),
	}
	if e.Caller != "" {
		fields = append(fields, zap.String("caller", e.Caller))
	}
	if e.Format != "" {
		fields = append(fields, zap.String("format", e.Format))
	}

	if e.Succeeded() {
		switch e.Action {
		case domain.ActionDocumentRead:
			fields = append(fields, zap.Int64("size", e.Size))
		case domain.ActionDocumentsListed:
			fields = append(fields, zap.Int("count", e.Count))
		}
		l.logger.Info("AUDIT", fields...)
		return nil
	}

	fields = append(fields, zap.String("error_kind", e.ErrorKind), zap.String("error", e.Error))
	l.logger.Warn("AUDIT", fields...)
	return nil
}

// Fanout sends every event to each auditor in order. All auditors are
// called even when one fails; the failures are joined.
type Fanout []driven.Auditor

// Record forwards the event.
func (f Fanout) Record(ctx context.Context, e domain.AuditEvent) error {
	var errs []error
	for _, a := range f {
		if a == nil {
			continue
		}
		if err := a.Record(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
