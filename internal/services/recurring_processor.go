package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"maymonee/internal/core"
	"maymonee/internal/ledger"
)

// RecurringProcessor materializes transactions from active recurring rules.
// Each (rule, due date) pair is claimed in the same transaction that books
// the entry, so overlapping runs never double-book and a failed booking
// leaves the date free for the next tick.
type RecurringProcessor struct {
	store  ledger.Store
	ledger *ledger.Service
}

// NewRecurringProcessor creates a new recurring rule processor
func NewRecurringProcessor(store ledger.Store, ledgerService *ledger.Service) *RecurringProcessor {
	return &RecurringProcessor{
		store:  store,
		ledger: ledgerService,
	}
}

// ProcessDue materializes every active rule that is due on the given day.
func (p *RecurringProcessor) ProcessDue(ctx context.Context, now time.Time) (int, error) {
	if p.store == nil || p.ledger == nil {
		return 0, fmt.Errorf("processor not properly initialized")
	}

	due := core.DateOf(now)

	rules, err := p.store.ListActiveRules(ctx)
	if err != nil {
		return 0, fmt.Errorf("list active rules: %w", err)
	}

	slog.InfoContext(ctx, "Processing recurring rules",
		"total_active", len(rules),
		"processing_date", due.String())

	processedCount := 0

	for _, item := range rules {
		rule := item.Rule

		// Rules never fire before their start date.
		if due.Before(rule.Date.Time) {
			continue
		}

		checker, err := GetDuenessChecker(rule.RecurFrequency)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to resolve dueness checker",
				"rule_id", rule.ID,
				"frequency", rule.RecurFrequency,
				"error", err)
			continue
		}

		if !checker.IsDue(rule, due) {
			continue
		}

		// The run record and the booked transaction commit together; a
		// failure here leaves the due date free for the next tick.
		booked, err := p.ledger.MaterializeRule(ctx, item.UserID, rule, due)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to create transaction from recurring rule",
				"rule_id", rule.ID,
				"user_id", item.UserID,
				"description", rule.Description,
				"error", err)
			continue
		}
		if !booked {
			continue
		}

		processedCount++
		slog.InfoContext(ctx, "Created transaction from recurring rule",
			"rule_id", rule.ID,
			"user_id", item.UserID,
			"description", rule.Description,
			"amount", rule.Amount,
			"frequency", rule.RecurFrequency)
	}

	slog.InfoContext(ctx, "Recurring rule processing complete",
		"processed", processedCount,
		"total_checked", len(rules))

	return processedCount, nil
}

// Run processes due rules once immediately, then on every tick until the
// context is cancelled.
func (p *RecurringProcessor) Run(ctx context.Context, interval time.Duration) error {
	if _, err := p.ProcessDue(ctx, time.Now()); err != nil {
		slog.ErrorContext(ctx, "Recurring rule processing failed", "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping recurring rule processor", "reason", ctx.Err())
			return ctx.Err()
		case now := <-ticker.C:
			if _, err := p.ProcessDue(ctx, now); err != nil {
				slog.ErrorContext(ctx, "Recurring rule processing failed", "error", err)
			}
		}
	}
}
