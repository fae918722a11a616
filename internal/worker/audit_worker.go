package worker

import (
	"context"
	"fmt"
	"log/slog"

	"maymonee/internal/events"
)

// AuditSink persists ledger events. InsertAuditEntry must tolerate
// redelivery of the same event id.
type AuditSink interface {
	InsertAuditEntry(ctx context.Context, e *events.LedgerEvent) error
}

// AuditWorker consumes ledger events from the queue and appends them to the
// audit log.
type AuditWorker struct {
	sink AuditSink
}

func NewAuditWorker(sink AuditSink) *AuditWorker {
	return &AuditWorker{sink: sink}
}

// HandleEvent processes a single ledger event. Returning an error requeues
// the delivery.
func (w *AuditWorker) HandleEvent(ctx context.Context, e *events.LedgerEvent) error {
	slog.InfoContext(ctx, "Processing ledger event",
		"event_id", e.EventID,
		"user_id", e.UserID,
		"entity", e.Entity,
		"entity_id", e.EntityID,
		"action", e.Action)

	if err := w.sink.InsertAuditEntry(ctx, e); err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// Run blocks consuming events until the context is canceled.
func (w *AuditWorker) Run(ctx context.Context, client *events.Client) error {
	return client.ConsumeLedgerEvents(ctx, func(e *events.LedgerEvent) error {
		return w.HandleEvent(ctx, e)
	})
}
