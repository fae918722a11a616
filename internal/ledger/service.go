package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"maymonee/internal/core"
	"maymonee/internal/events"
	applog "maymonee/internal/log"

	"github.com/shopspring/decimal"
)

// Publisher emits ledger events after a mutation commits.
type Publisher interface {
	PublishLedgerEvent(ctx context.Context, event *events.LedgerEvent) error
}

// Service orchestrates ledger mutations: the balance rules in core run
// inside one atomic store block, then an event goes out best-effort.
type Service struct {
	store     Store
	publisher Publisher
	logger    *applog.StructuredLogger
}

func NewService(store Store, publisher Publisher) *Service {
	return &Service{
		store:     store,
		publisher: publisher,
		logger:    applog.NewStructuredLogger(applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentLedger)),
	}
}

// Accounts

func (s *Service) CreateAccount(ctx context.Context, userID int64, a core.Account) (core.Account, error) {
	if err := a.Validate(); err != nil {
		return core.Account{}, err
	}
	created, err := s.store.CreateAccount(ctx, userID, a)
	if err != nil {
		return core.Account{}, fmt.Errorf("create account: %w", err)
	}
	s.publish(ctx, events.NewLedgerEvent(userID, "account", created.ID, events.ActionCreate, created.Balance))
	return created, nil
}

func (s *Service) GetAccount(ctx context.Context, userID, id int64) (core.Account, error) {
	return s.store.GetAccount(ctx, userID, id)
}

func (s *Service) ListAccounts(ctx context.Context, userID int64) ([]core.Account, error) {
	return s.store.ListAccounts(ctx, userID)
}

// UpdateAccount changes name and type; balance moves only through transactions.
func (s *Service) UpdateAccount(ctx context.Context, userID int64, id int64, name string, accType core.AccountType) (core.Account, error) {
	var updated core.Account
	err := s.store.Atomic(ctx, func(st Store) error {
		acc, err := st.GetAccount(ctx, userID, id)
		if err != nil {
			return err
		}
		acc.Name = name
		acc.Type = accType
		if err := acc.Validate(); err != nil {
			return err
		}
		if err := st.UpdateAccount(ctx, userID, acc); err != nil {
			return err
		}
		updated = acc
		return nil
	})
	if err != nil {
		return core.Account{}, fmt.Errorf("update account: %w", err)
	}
	s.publish(ctx, events.NewLedgerEvent(userID, "account", id, events.ActionUpdate, updated.Balance))
	return updated, nil
}

// DeleteAccount refuses while transactions still reference the account.
func (s *Service) DeleteAccount(ctx context.Context, userID, id int64) error {
	err := s.store.Atomic(ctx, func(st Store) error {
		if _, err := st.GetAccount(ctx, userID, id); err != nil {
			return err
		}
		n, err := st.CountTransactionsByAccount(ctx, userID, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return core.ErrAccountInUse
		}
		return st.DeleteAccount(ctx, userID, id)
	})
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	s.publish(ctx, events.NewLedgerEvent(userID, "account", id, events.ActionDelete, 0))
	return nil
}

// Transactions

func (s *Service) ListTransactions(ctx context.Context, userID int64) ([]core.Transaction, error) {
	return s.store.ListTransactions(ctx, userID)
}

// AddTransaction appends a transaction and moves its account balance.
func (s *Service) AddTransaction(ctx context.Context, userID int64, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	var created core.Transaction
	err := s.store.Atomic(ctx, func(st Store) error {
		acc, err := st.GetAccount(ctx, userID, tx.AccountID)
		if err != nil {
			return err
		}
		core.ApplyTransaction(&acc, tx)
		if err := st.UpdateAccount(ctx, userID, acc); err != nil {
			return err
		}
		created, err = st.CreateTransaction(ctx, userID, tx)
		return err
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("add transaction: %w", err)
	}
	s.logger.LogTransactionRecorded(ctx, userID, created.Description, created.Amount, created.Category, string(created.Type))
	s.publish(ctx, events.NewLedgerEvent(userID, "transaction", created.ID, events.ActionCreate, created.Amount))
	return created, nil
}

// UpdateTransaction reverses the stored transaction's balance effect and
// applies the new one, across accounts when the account changed.
func (s *Service) UpdateTransaction(ctx context.Context, userID int64, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	err := s.store.Atomic(ctx, func(st Store) error {
		old, err := st.GetTransaction(ctx, userID, tx.ID)
		if err != nil {
			return err
		}
		oldAcc, err := st.GetAccount(ctx, userID, old.AccountID)
		if err != nil {
			return err
		}
		newAcc := &oldAcc
		var other core.Account
		if tx.AccountID != old.AccountID {
			other, err = st.GetAccount(ctx, userID, tx.AccountID)
			if err != nil {
				return err
			}
			newAcc = &other
		}
		core.ReviseTransaction(&oldAcc, newAcc, old, tx)
		if err := st.UpdateAccount(ctx, userID, oldAcc); err != nil {
			return err
		}
		if newAcc != &oldAcc {
			if err := st.UpdateAccount(ctx, userID, *newAcc); err != nil {
				return err
			}
		}
		return st.UpdateTransaction(ctx, userID, tx)
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	s.publish(ctx, events.NewLedgerEvent(userID, "transaction", tx.ID, events.ActionUpdate, tx.Amount))
	return tx, nil
}

// DeleteTransaction removes a transaction and reverses its balance effect.
func (s *Service) DeleteTransaction(ctx context.Context, userID, id int64) error {
	err := s.store.Atomic(ctx, func(st Store) error {
		tx, err := st.GetTransaction(ctx, userID, id)
		if err != nil {
			return err
		}
		acc, err := st.GetAccount(ctx, userID, tx.AccountID)
		if err != nil {
			return err
		}
		core.ReverseTransaction(&acc, tx)
		if err := st.UpdateAccount(ctx, userID, acc); err != nil {
			return err
		}
		return st.DeleteTransaction(ctx, userID, id)
	})
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	s.publish(ctx, events.NewLedgerEvent(userID, "transaction", id, events.ActionDelete, 0))
	return nil
}

// Transfer moves money between two accounts as a paired expense and income.
func (s *Service) Transfer(ctx context.Context, userID, fromID, toID, amount int64, on core.Date) (out, in core.Transaction, err error) {
	err = s.store.Atomic(ctx, func(st Store) error {
		from, err := st.GetAccount(ctx, userID, fromID)
		if err != nil {
			return err
		}
		to, err := st.GetAccount(ctx, userID, toID)
		if err != nil {
			return err
		}
		out, in, err = core.NewTransfer(&from, &to, amount, on)
		if err != nil {
			return err
		}
		if err := st.UpdateAccount(ctx, userID, from); err != nil {
			return err
		}
		if err := st.UpdateAccount(ctx, userID, to); err != nil {
			return err
		}
		if out, err = st.CreateTransaction(ctx, userID, out); err != nil {
			return err
		}
		in, err = st.CreateTransaction(ctx, userID, in)
		return err
	})
	if err != nil {
		return core.Transaction{}, core.Transaction{}, fmt.Errorf("transfer: %w", err)
	}
	s.publish(ctx, events.NewLedgerEvent(userID, "transfer", out.ID, events.ActionTransfer, amount))
	return out, in, nil
}

// Assets

func (s *Service) ListAssets(ctx context.Context, userID int64) ([]core.Asset, error) {
	return s.store.ListAssets(ctx, userID)
}

// AddAsset records a holding directly without touching any account.
func (s *Service) AddAsset(ctx context.Context, userID int64, a core.Asset) (core.Asset, error) {
	if a.Name == "" {
		return core.Asset{}, core.ErrEmptyName
	}
	if a.Quantity.IsNegative() || a.Quantity.IsZero() {
		return core.Asset{}, core.ErrInvalidQuantity
	}
	a.Recalc()
	created, err := s.store.CreateAsset(ctx, userID, a)
	if err != nil {
		return core.Asset{}, fmt.Errorf("add asset: %w", err)
	}
	s.publish(ctx, events.NewLedgerEvent(userID, "asset", created.ID, events.ActionCreate, created.Value))
	return created, nil
}

// BuyAsset debits an account and merges the purchase into an existing
// holding with the same name, or creates a new one.
func (s *Service) BuyAsset(ctx context.Context, userID, accountID int64, order core.BuyOrder, on core.Date) (core.Asset, core.Transaction, error) {
	if err := order.Validate(); err != nil {
		return core.Asset{}, core.Transaction{}, err
	}
	var (
		asset core.Asset
		tx    core.Transaction
	)
	err := s.store.Atomic(ctx, func(st Store) error {
		acc, err := st.GetAccount(ctx, userID, accountID)
		if err != nil {
			return err
		}
		var existing *core.Asset
		found, err := st.FindAssetByName(ctx, userID, order.Name)
		switch {
		case err == nil:
			existing = &found
		case errors.Is(err, core.ErrNotFound):
		default:
			return err
		}
		asset, tx, err = core.BuyAsset(&acc, existing, order, on)
		if err != nil {
			return err
		}
		if err := st.UpdateAccount(ctx, userID, acc); err != nil {
			return err
		}
		if existing != nil {
			if err := st.UpdateAsset(ctx, userID, asset); err != nil {
				return err
			}
		} else {
			if asset, err = st.CreateAsset(ctx, userID, asset); err != nil {
				return err
			}
		}
		tx, err = st.CreateTransaction(ctx, userID, tx)
		return err
	})
	if err != nil {
		return core.Asset{}, core.Transaction{}, fmt.Errorf("buy asset: %w", err)
	}
	s.publish(ctx, events.NewLedgerEvent(userID, "asset", asset.ID, events.ActionBuy, order.TotalCost()))
	return asset, tx, nil
}

// SellAsset credits an account with the proceeds, removing the holding
// when the full quantity is sold.
func (s *Service) SellAsset(ctx context.Context, userID, assetID, accountID int64, quantity decimal.Decimal, on core.Date) (core.Transaction, error) {
	var (
		tx      core.Transaction
		removed bool
	)
	err := s.store.Atomic(ctx, func(st Store) error {
		asset, err := st.GetAsset(ctx, userID, assetID)
		if err != nil {
			return err
		}
		acc, err := st.GetAccount(ctx, userID, accountID)
		if err != nil {
			return err
		}
		removed, tx, err = core.SellAsset(&acc, &asset, quantity, on)
		if err != nil {
			return err
		}
		if err := st.UpdateAccount(ctx, userID, acc); err != nil {
			return err
		}
		if removed {
			if err := st.DeleteAsset(ctx, userID, assetID); err != nil {
				return err
			}
		} else {
			if err := st.UpdateAsset(ctx, userID, asset); err != nil {
				return err
			}
		}
		tx, err = st.CreateTransaction(ctx, userID, tx)
		return err
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("sell asset: %w", err)
	}
	s.publish(ctx, events.NewLedgerEvent(userID, "asset", assetID, events.ActionSell, tx.Amount))
	return tx, nil
}

// UpdateAssetPrice refreshes the market price and derived value.
func (s *Service) UpdateAssetPrice(ctx context.Context, userID, assetID, price int64) (core.Asset, error) {
	if price < 0 {
		return core.Asset{}, core.ErrInvalidAmount
	}
	var updated core.Asset
	err := s.store.Atomic(ctx, func(st Store) error {
		asset, err := st.GetAsset(ctx, userID, assetID)
		if err != nil {
			return err
		}
		asset.CurrentPrice = price
		asset.Recalc()
		if err := st.UpdateAsset(ctx, userID, asset); err != nil {
			return err
		}
		updated = asset
		return nil
	})
	if err != nil {
		return core.Asset{}, fmt.Errorf("update asset price: %w", err)
	}
	s.publish(ctx, events.NewLedgerEvent(userID, "asset", assetID, events.ActionUpdate, updated.Value))
	return updated, nil
}

func (s *Service) DeleteAsset(ctx context.Context, userID, id int64) error {
	if err := s.store.DeleteAsset(ctx, userID, id); err != nil {
		return fmt.Errorf("delete asset: %w", err)
	}
	s.publish(ctx, events.NewLedgerEvent(userID, "asset", id, events.ActionDelete, 0))
	return nil
}

// Budgets and categories

func (s *Service) GetBudgets(ctx context.Context, userID int64) (core.BudgetGrid, error) {
	return s.store.GetBudgets(ctx, userID)
}

func (s *Service) SaveBudgets(ctx context.Context, userID int64, g core.BudgetGrid) error {
	if err := s.store.SaveBudgets(ctx, userID, g); err != nil {
		return fmt.Errorf("save budgets: %w", err)
	}
	return nil
}

// SetBudgetCell writes one year/month/bucket/category amount.
func (s *Service) SetBudgetCell(ctx context.Context, userID int64, year, month int, bucket core.Bucket, category string, amount int64) error {
	if !bucket.Valid() {
		return core.ErrEmptyCategory
	}
	if month < 0 || month > 11 {
		return fmt.Errorf("month %d out of range: %w", month, core.ErrInvalidAmount)
	}
	if category == "" {
		return core.ErrEmptyCategory
	}
	if amount < 0 {
		return core.ErrInvalidAmount
	}
	err := s.store.Atomic(ctx, func(st Store) error {
		grid, err := st.GetBudgets(ctx, userID)
		if err != nil {
			return err
		}
		grid.Set(year, month, bucket, category, amount)
		return st.SaveBudgets(ctx, userID, grid)
	})
	if err != nil {
		return fmt.Errorf("set budget cell: %w", err)
	}
	return nil
}

func (s *Service) GetCategories(ctx context.Context, userID int64) (core.Categories, error) {
	cats, err := s.store.GetCategories(ctx, userID)
	if err != nil {
		return core.Categories{}, err
	}
	if cats.IsEmpty() {
		return core.DefaultCategories(), nil
	}
	return cats, nil
}

func (s *Service) AddCategory(ctx context.Context, userID int64, bucket core.Bucket, name string) (core.Categories, error) {
	var cats core.Categories
	err := s.store.Atomic(ctx, func(st Store) error {
		var err error
		cats, err = st.GetCategories(ctx, userID)
		if err != nil {
			return err
		}
		if cats.IsEmpty() {
			cats = core.DefaultCategories()
		}
		if err := cats.Add(bucket, name); err != nil {
			return err
		}
		return st.SaveCategories(ctx, userID, cats)
	})
	if err != nil {
		return core.Categories{}, fmt.Errorf("add category: %w", err)
	}
	return cats, nil
}

func (s *Service) RemoveCategory(ctx context.Context, userID int64, bucket core.Bucket, name string) (core.Categories, error) {
	var cats core.Categories
	err := s.store.Atomic(ctx, func(st Store) error {
		var err error
		cats, err = st.GetCategories(ctx, userID)
		if err != nil {
			return err
		}
		if cats.IsEmpty() {
			cats = core.DefaultCategories()
		}
		if err := cats.Remove(bucket, name); err != nil {
			return err
		}
		return st.SaveCategories(ctx, userID, cats)
	})
	if err != nil {
		return core.Categories{}, fmt.Errorf("remove category: %w", err)
	}
	return cats, nil
}

// Recurring rules

func (s *Service) CreateRule(ctx context.Context, userID int64, r core.RecurringRule) (core.RecurringRule, error) {
	if err := r.Validate(); err != nil {
		return core.RecurringRule{}, err
	}
	created, err := s.store.CreateRule(ctx, userID, r)
	if err != nil {
		return core.RecurringRule{}, fmt.Errorf("create rule: %w", err)
	}
	return created, nil
}

func (s *Service) ListRules(ctx context.Context, userID int64) ([]core.RecurringRule, error) {
	return s.store.ListRules(ctx, userID)
}

func (s *Service) UpdateRule(ctx context.Context, userID int64, r core.RecurringRule) (core.RecurringRule, error) {
	if err := r.Validate(); err != nil {
		return core.RecurringRule{}, err
	}
	err := s.store.Atomic(ctx, func(st Store) error {
		if _, err := st.GetRule(ctx, userID, r.ID); err != nil {
			return err
		}
		return st.UpdateRule(ctx, userID, r)
	})
	if err != nil {
		return core.RecurringRule{}, fmt.Errorf("update rule: %w", err)
	}
	return r, nil
}

func (s *Service) DeleteRule(ctx context.Context, userID, id int64) error {
	if err := s.store.DeleteRule(ctx, userID, id); err != nil {
		return fmt.Errorf("delete rule: %w", err)
	}
	return nil
}

// MaterializeRule books the transaction a rule prescribes for a due date.
// The run record and the transaction commit together, so a failed booking
// leaves the date unclaimed for the next attempt. Returns false when the
// date was already booked.
func (s *Service) MaterializeRule(ctx context.Context, userID int64, rule core.RecurringRule, due core.Date) (bool, error) {
	tx := core.Transaction{
		Date:        due,
		Description: rule.Description,
		Category:    rule.Category,
		Amount:      rule.Amount,
		AccountID:   rule.AccountID,
		Type:        rule.Type,
	}
	if err := tx.Validate(); err != nil {
		return false, err
	}
	var (
		created core.Transaction
		fresh   bool
	)
	err := s.store.Atomic(ctx, func(st Store) error {
		var err error
		fresh, err = st.MarkRuleRun(ctx, rule.ID, due)
		if err != nil || !fresh {
			return err
		}
		acc, err := st.GetAccount(ctx, userID, tx.AccountID)
		if err != nil {
			return err
		}
		core.ApplyTransaction(&acc, tx)
		if err := st.UpdateAccount(ctx, userID, acc); err != nil {
			return err
		}
		created, err = st.CreateTransaction(ctx, userID, tx)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("materialize rule: %w", err)
	}
	if !fresh {
		return false, nil
	}
	s.logger.LogTransactionRecorded(ctx, userID, created.Description, created.Amount, created.Category, string(created.Type))
	s.publish(ctx, events.NewLedgerEvent(userID, "transaction", created.ID, events.ActionCreate, created.Amount))
	return true, nil
}

// Snapshot loads every collection the dashboard and the aggregation
// engine need in one shot, fetching in parallel.
func (s *Service) Snapshot(ctx context.Context, userID int64) (*core.Snapshot, error) {
	snap := &core.Snapshot{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		snap.Accounts, err = s.store.ListAccounts(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Transactions, err = s.store.ListTransactions(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Assets, err = s.store.ListAssets(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Recurring, err = s.store.ListRules(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Budgets, err = s.store.GetBudgets(gctx, userID)
		return err
	})
	g.Go(func() error {
		cats, err := s.store.GetCategories(gctx, userID)
		if err != nil {
			return err
		}
		if cats.IsEmpty() {
			cats = core.DefaultCategories()
		}
		snap.Categories = cats
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return snap, nil
}

func (s *Service) publish(ctx context.Context, event *events.LedgerEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishLedgerEvent(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"eventId", event.EventID,
			"entity", event.Entity,
			"action", event.Action,
			"error", err)
	}
}
