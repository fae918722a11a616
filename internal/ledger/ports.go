// Package ledger owns the mutation layer: the storage ports every backend
// implements and the service that drives the pure rules in core through them.
package ledger

import (
	"context"

	"maymonee/internal/core"
)

// AccountStore is per-user account CRUD.
type AccountStore interface {
	CreateAccount(ctx context.Context, userID int64, a core.Account) (core.Account, error)
	GetAccount(ctx context.Context, userID, id int64) (core.Account, error)
	ListAccounts(ctx context.Context, userID int64) ([]core.Account, error)
	UpdateAccount(ctx context.Context, userID int64, a core.Account) error
	DeleteAccount(ctx context.Context, userID, id int64) error
}

// TransactionStore is the per-user transaction log.
type TransactionStore interface {
	CreateTransaction(ctx context.Context, userID int64, tx core.Transaction) (core.Transaction, error)
	GetTransaction(ctx context.Context, userID, id int64) (core.Transaction, error)
	ListTransactions(ctx context.Context, userID int64) ([]core.Transaction, error)
	UpdateTransaction(ctx context.Context, userID int64, tx core.Transaction) error
	DeleteTransaction(ctx context.Context, userID, id int64) error
	// CountTransactionsByAccount guards account deletion.
	CountTransactionsByAccount(ctx context.Context, userID, accountID int64) (int64, error)
}

// AssetStore is per-user asset-holding CRUD.
type AssetStore interface {
	CreateAsset(ctx context.Context, userID int64, a core.Asset) (core.Asset, error)
	GetAsset(ctx context.Context, userID, id int64) (core.Asset, error)
	// FindAssetByName matches case-insensitively; core.ErrNotFound when absent.
	FindAssetByName(ctx context.Context, userID int64, name string) (core.Asset, error)
	ListAssets(ctx context.Context, userID int64) ([]core.Asset, error)
	UpdateAsset(ctx context.Context, userID int64, a core.Asset) error
	DeleteAsset(ctx context.Context, userID, id int64) error
}

// RecurringStore holds recurring-rule templates and the materialization
// bookkeeping that keeps the worker idempotent.
type RecurringStore interface {
	CreateRule(ctx context.Context, userID int64, r core.RecurringRule) (core.RecurringRule, error)
	GetRule(ctx context.Context, userID, id int64) (core.RecurringRule, error)
	ListRules(ctx context.Context, userID int64) ([]core.RecurringRule, error)
	ListActiveRules(ctx context.Context) ([]RuleWithOwner, error)
	UpdateRule(ctx context.Context, userID int64, r core.RecurringRule) error
	DeleteRule(ctx context.Context, userID, id int64) error
	// MarkRuleRun records one materialization for a rule and due date.
	// It returns false when that (rule, due date) pair was already recorded.
	MarkRuleRun(ctx context.Context, ruleID int64, due core.Date) (bool, error)
}

// RuleWithOwner pairs a rule with its owning user for worker-side scans.
type RuleWithOwner struct {
	UserID int64
	Rule   core.RecurringRule
}

// SettingsStore holds the per-user budget grid and category taxonomy blobs.
type SettingsStore interface {
	GetBudgets(ctx context.Context, userID int64) (core.BudgetGrid, error)
	SaveBudgets(ctx context.Context, userID int64, g core.BudgetGrid) error
	GetCategories(ctx context.Context, userID int64) (core.Categories, error)
	SaveCategories(ctx context.Context, userID int64, c core.Categories) error
}

// Store is the full persistence surface the mutation layer runs against.
// Atomic executes fn against a view of the store where every write commits
// or fails together; the ledger-balance update and the paired transaction
// append must never be split.
type Store interface {
	AccountStore
	TransactionStore
	AssetStore
	RecurringStore
	SettingsStore

	Atomic(ctx context.Context, fn func(Store) error) error
}

// UserStore is the authentication collaborator's persistence surface.
type UserStore interface {
	// CreateUser fails with core.ErrEmailTaken on a duplicate email.
	CreateUser(ctx context.Context, u core.User) (core.User, error)
	GetUser(ctx context.Context, id int64) (core.User, error)
	GetUserByEmail(ctx context.Context, email string) (core.User, error)
	UpdateUserCurrency(ctx context.Context, id int64, currency string) error
}
