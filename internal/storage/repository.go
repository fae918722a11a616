package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"maymonee/internal/core"
	"maymonee/internal/events"
	"maymonee/internal/ledger"

	_ "modernc.org/sqlite"
)

// dbtx is the subset of database/sql shared by *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLiteRepository implements the ledger and user stores on SQLite.
type SQLiteRepository struct {
	db *sql.DB
	q  dbtx
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// SQLite allows one writer; a single connection avoids SQLITE_BUSY
	// between the server and the worker sharing this handle.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, q: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Atomic runs fn inside a single SQLite transaction. A nested call joins
// the transaction already in flight.
func (r *SQLiteRepository) Atomic(ctx context.Context, fn func(ledger.Store) error) error {
	if _, inTx := r.q.(*sql.Tx); inTx {
		return fn(r)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	scoped := &SQLiteRepository{db: r.db, q: tx}
	if err := fn(scoped); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback after %w: %v", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Accounts

func (r *SQLiteRepository) CreateAccount(ctx context.Context, userID int64, a core.Account) (core.Account, error) {
	res, err := r.q.ExecContext(ctx,
		`INSERT INTO accounts (user_id, name, type, balance) VALUES (?, ?, ?, ?)`,
		userID, a.Name, string(a.Type), a.Balance)
	if err != nil {
		return core.Account{}, fmt.Errorf("insert account: %w", err)
	}
	a.ID, err = res.LastInsertId()
	if err != nil {
		return core.Account{}, fmt.Errorf("account id: %w", err)
	}
	return a, nil
}

func (r *SQLiteRepository) GetAccount(ctx context.Context, userID, id int64) (core.Account, error) {
	var a core.Account
	err := r.q.QueryRowContext(ctx,
		`SELECT id, name, type, balance FROM accounts WHERE user_id = ? AND id = ?`,
		userID, id).Scan(&a.ID, &a.Name, &a.Type, &a.Balance)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Account{}, core.ErrNotFound
	}
	if err != nil {
		return core.Account{}, fmt.Errorf("select account: %w", err)
	}
	return a, nil
}

func (r *SQLiteRepository) ListAccounts(ctx context.Context, userID int64) ([]core.Account, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT id, name, type, balance FROM accounts WHERE user_id = ? ORDER BY id`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("select accounts: %w", err)
	}
	defer rows.Close()

	accounts := []core.Account{}
	for rows.Next() {
		var a core.Account
		if err := rows.Scan(&a.ID, &a.Name, &a.Type, &a.Balance); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *SQLiteRepository) UpdateAccount(ctx context.Context, userID int64, a core.Account) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE accounts SET name = ?, type = ?, balance = ? WHERE user_id = ? AND id = ?`,
		a.Name, string(a.Type), a.Balance, userID, a.ID)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) DeleteAccount(ctx context.Context, userID, id int64) error {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM accounts WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return requireRow(res)
}

// Transactions

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, userID int64, tx core.Transaction) (core.Transaction, error) {
	res, err := r.q.ExecContext(ctx,
		`INSERT INTO transactions (user_id, date, description, category, amount, account_id, type)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		userID, tx.Date.String(), tx.Description, tx.Category, tx.Amount, tx.AccountID, string(tx.Type))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	tx.ID, err = res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction id: %w", err)
	}
	return tx, nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, userID, id int64) (core.Transaction, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT id, date, description, category, amount, account_id, type
		 FROM transactions WHERE user_id = ? AND id = ?`, userID, id)
	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("select transaction: %w", err)
	}
	return tx, nil
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context, userID int64) ([]core.Transaction, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT id, date, description, category, amount, account_id, type
		 FROM transactions WHERE user_id = ? ORDER BY date DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("select transactions: %w", err)
	}
	defer rows.Close()

	txs := []core.Transaction{}
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, userID int64, tx core.Transaction) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE transactions SET date = ?, description = ?, category = ?, amount = ?, account_id = ?, type = ?
		 WHERE user_id = ? AND id = ?`,
		tx.Date.String(), tx.Description, tx.Category, tx.Amount, tx.AccountID, string(tx.Type), userID, tx.ID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, userID, id int64) error {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM transactions WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) CountTransactionsByAccount(ctx context.Context, userID, accountID int64) (int64, error) {
	var n int64
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE user_id = ? AND account_id = ?`,
		userID, accountID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}

// Assets

func (r *SQLiteRepository) CreateAsset(ctx context.Context, userID int64, a core.Asset) (core.Asset, error) {
	res, err := r.q.ExecContext(ctx,
		`INSERT INTO assets (user_id, name, category, liquidity, quantity, unit, current_price, value)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, a.Name, string(a.Category), string(a.Liquidity), a.Quantity.String(), a.Unit, a.CurrentPrice, a.Value)
	if err != nil {
		return core.Asset{}, fmt.Errorf("insert asset: %w", err)
	}
	a.ID, err = res.LastInsertId()
	if err != nil {
		return core.Asset{}, fmt.Errorf("asset id: %w", err)
	}
	return a, nil
}

func (r *SQLiteRepository) GetAsset(ctx context.Context, userID, id int64) (core.Asset, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT id, name, category, liquidity, quantity, unit, current_price, value
		 FROM assets WHERE user_id = ? AND id = ?`, userID, id)
	a, err := scanAsset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Asset{}, core.ErrNotFound
	}
	if err != nil {
		return core.Asset{}, fmt.Errorf("select asset: %w", err)
	}
	return a, nil
}

func (r *SQLiteRepository) FindAssetByName(ctx context.Context, userID int64, name string) (core.Asset, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT id, name, category, liquidity, quantity, unit, current_price, value
		 FROM assets WHERE user_id = ? AND name = ? COLLATE NOCASE`, userID, name)
	a, err := scanAsset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Asset{}, core.ErrNotFound
	}
	if err != nil {
		return core.Asset{}, fmt.Errorf("select asset by name: %w", err)
	}
	return a, nil
}

func (r *SQLiteRepository) ListAssets(ctx context.Context, userID int64) ([]core.Asset, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT id, name, category, liquidity, quantity, unit, current_price, value
		 FROM assets WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("select assets: %w", err)
	}
	defer rows.Close()

	assets := []core.Asset{}
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		assets = append(assets, a)
	}
	return assets, rows.Err()
}

func (r *SQLiteRepository) UpdateAsset(ctx context.Context, userID int64, a core.Asset) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE assets SET name = ?, category = ?, liquidity = ?, quantity = ?, unit = ?, current_price = ?, value = ?
		 WHERE user_id = ? AND id = ?`,
		a.Name, string(a.Category), string(a.Liquidity), a.Quantity.String(), a.Unit, a.CurrentPrice, a.Value, userID, a.ID)
	if err != nil {
		return fmt.Errorf("update asset: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) DeleteAsset(ctx context.Context, userID, id int64) error {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM assets WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return fmt.Errorf("delete asset: %w", err)
	}
	return requireRow(res)
}

// Recurring rules

func (r *SQLiteRepository) CreateRule(ctx context.Context, userID int64, rule core.RecurringRule) (core.RecurringRule, error) {
	days, dates, err := marshalRecurrence(rule)
	if err != nil {
		return core.RecurringRule{}, err
	}
	res, err := r.q.ExecContext(ctx,
		`INSERT INTO recurring_rules (user_id, date, description, category, account_id, amount, type, frequency, recur_days, recur_dates, active)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, rule.Date.String(), rule.Description, rule.Category, rule.AccountID, rule.Amount,
		string(rule.Type), string(rule.RecurFrequency), days, dates, rule.Active)
	if err != nil {
		return core.RecurringRule{}, fmt.Errorf("insert rule: %w", err)
	}
	rule.ID, err = res.LastInsertId()
	if err != nil {
		return core.RecurringRule{}, fmt.Errorf("rule id: %w", err)
	}
	return rule, nil
}

func (r *SQLiteRepository) GetRule(ctx context.Context, userID, id int64) (core.RecurringRule, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT id, date, description, category, account_id, amount, type, frequency, recur_days, recur_dates, active
		 FROM recurring_rules WHERE user_id = ? AND id = ?`, userID, id)
	rule, err := scanRule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.RecurringRule{}, core.ErrNotFound
	}
	if err != nil {
		return core.RecurringRule{}, fmt.Errorf("select rule: %w", err)
	}
	return rule, nil
}

func (r *SQLiteRepository) ListRules(ctx context.Context, userID int64) ([]core.RecurringRule, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT id, date, description, category, account_id, amount, type, frequency, recur_days, recur_dates, active
		 FROM recurring_rules WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("select rules: %w", err)
	}
	defer rows.Close()

	rules := []core.RecurringRule{}
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

func (r *SQLiteRepository) ListActiveRules(ctx context.Context) ([]ledger.RuleWithOwner, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT user_id, id, date, description, category, account_id, amount, type, frequency, recur_days, recur_dates, active
		 FROM recurring_rules WHERE active = 1 ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("select active rules: %w", err)
	}
	defer rows.Close()

	var out []ledger.RuleWithOwner
	for rows.Next() {
		var (
			item        ledger.RuleWithOwner
			date        string
			days, dates string
		)
		rule := &item.Rule
		if err := rows.Scan(&item.UserID, &rule.ID, &date, &rule.Description, &rule.Category,
			&rule.AccountID, &rule.Amount, &rule.Type, &rule.RecurFrequency, &days, &dates, &rule.Active); err != nil {
			return nil, fmt.Errorf("scan active rule: %w", err)
		}
		if err := hydrateRule(rule, date, days, dates); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpdateRule(ctx context.Context, userID int64, rule core.RecurringRule) error {
	days, dates, err := marshalRecurrence(rule)
	if err != nil {
		return err
	}
	res, err := r.q.ExecContext(ctx,
		`UPDATE recurring_rules SET date = ?, description = ?, category = ?, account_id = ?, amount = ?, type = ?, frequency = ?, recur_days = ?, recur_dates = ?, active = ?
		 WHERE user_id = ? AND id = ?`,
		rule.Date.String(), rule.Description, rule.Category, rule.AccountID, rule.Amount,
		string(rule.Type), string(rule.RecurFrequency), days, dates, rule.Active, userID, rule.ID)
	if err != nil {
		return fmt.Errorf("update rule: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) DeleteRule(ctx context.Context, userID, id int64) error {
	if _, err := r.q.ExecContext(ctx,
		`DELETE FROM recurring_runs WHERE rule_id = ?`, id); err != nil {
		return fmt.Errorf("delete rule runs: %w", err)
	}
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM recurring_rules WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return fmt.Errorf("delete rule: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) MarkRuleRun(ctx context.Context, ruleID int64, due core.Date) (bool, error) {
	res, err := r.q.ExecContext(ctx,
		`INSERT OR IGNORE INTO recurring_runs (rule_id, due_date) VALUES (?, ?)`,
		ruleID, due.String())
	if err != nil {
		return false, fmt.Errorf("mark rule run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark rule run: %w", err)
	}
	return n > 0, nil
}

// Budgets and categories

func (r *SQLiteRepository) GetBudgets(ctx context.Context, userID int64) (core.BudgetGrid, error) {
	var data string
	err := r.q.QueryRowContext(ctx,
		`SELECT data FROM budgets WHERE user_id = ?`, userID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return core.BudgetGrid{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select budgets: %w", err)
	}
	var grid core.BudgetGrid
	if err := json.Unmarshal([]byte(data), &grid); err != nil {
		return nil, fmt.Errorf("decode budgets: %w", err)
	}
	return grid, nil
}

func (r *SQLiteRepository) SaveBudgets(ctx context.Context, userID int64, g core.BudgetGrid) error {
	data, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("encode budgets: %w", err)
	}
	_, err = r.q.ExecContext(ctx,
		`INSERT INTO budgets (user_id, data) VALUES (?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET data = excluded.data`,
		userID, string(data))
	if err != nil {
		return fmt.Errorf("save budgets: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetCategories(ctx context.Context, userID int64) (core.Categories, error) {
	var data string
	err := r.q.QueryRowContext(ctx,
		`SELECT data FROM categories WHERE user_id = ?`, userID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Categories{}, nil
	}
	if err != nil {
		return core.Categories{}, fmt.Errorf("select categories: %w", err)
	}
	var cats core.Categories
	if err := json.Unmarshal([]byte(data), &cats); err != nil {
		return core.Categories{}, fmt.Errorf("decode categories: %w", err)
	}
	return cats, nil
}

func (r *SQLiteRepository) SaveCategories(ctx context.Context, userID int64, c core.Categories) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode categories: %w", err)
	}
	_, err = r.q.ExecContext(ctx,
		`INSERT INTO categories (user_id, data) VALUES (?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET data = excluded.data`,
		userID, string(data))
	if err != nil {
		return fmt.Errorf("save categories: %w", err)
	}
	return nil
}

// Users

func (r *SQLiteRepository) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	res, err := r.q.ExecContext(ctx,
		`INSERT INTO users (name, email, password_hash, currency, created_at) VALUES (?, ?, ?, ?, ?)`,
		u.Name, u.Email, u.PasswordHash, u.Currency, u.CreatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return core.User{}, core.ErrEmailTaken
		}
		return core.User{}, fmt.Errorf("insert user: %w", err)
	}
	u.ID, err = res.LastInsertId()
	if err != nil {
		return core.User{}, fmt.Errorf("user id: %w", err)
	}
	return u, nil
}

func (r *SQLiteRepository) GetUser(ctx context.Context, id int64) (core.User, error) {
	var u core.User
	err := r.q.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, currency, created_at FROM users WHERE id = ?`,
		id).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Currency, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, core.ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("select user: %w", err)
	}
	return u, nil
}

func (r *SQLiteRepository) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	var u core.User
	err := r.q.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, currency, created_at FROM users WHERE email = ? COLLATE NOCASE`,
		email).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Currency, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, core.ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("select user by email: %w", err)
	}
	return u, nil
}

func (r *SQLiteRepository) UpdateUserCurrency(ctx context.Context, id int64, currency string) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE users SET currency = ? WHERE id = ?`, currency, id)
	if err != nil {
		return fmt.Errorf("update user currency: %w", err)
	}
	return requireRow(res)
}

// Audit log

// InsertAuditEntry records a consumed ledger event. Duplicate event ids are
// ignored so redelivered messages stay harmless.
func (r *SQLiteRepository) InsertAuditEntry(ctx context.Context, e *events.LedgerEvent) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT OR IGNORE INTO audit_log (event_id, user_id, entity, entity_id, action, amount, occurred_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.EventID, e.UserID, e.Entity, e.EntityID, e.Action, e.Amount, e.OccurredAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// helpers

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		tx   core.Transaction
		date string
	)
	if err := row.Scan(&tx.ID, &date, &tx.Description, &tx.Category, &tx.Amount, &tx.AccountID, &tx.Type); err != nil {
		return core.Transaction{}, err
	}
	parsed, err := core.ParseDate(date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse transaction date %q: %w", date, err)
	}
	tx.Date = parsed
	return tx, nil
}

func scanAsset(row rowScanner) (core.Asset, error) {
	var (
		a        core.Asset
		quantity string
	)
	if err := row.Scan(&a.ID, &a.Name, &a.Category, &a.Liquidity, &quantity, &a.Unit, &a.CurrentPrice, &a.Value); err != nil {
		return core.Asset{}, err
	}
	q, err := decimal.NewFromString(quantity)
	if err != nil {
		return core.Asset{}, fmt.Errorf("parse asset quantity %q: %w", quantity, err)
	}
	a.Quantity = q
	return a, nil
}

func scanRule(row rowScanner) (core.RecurringRule, error) {
	var (
		rule        core.RecurringRule
		date        string
		days, dates string
	)
	if err := row.Scan(&rule.ID, &date, &rule.Description, &rule.Category, &rule.AccountID,
		&rule.Amount, &rule.Type, &rule.RecurFrequency, &days, &dates, &rule.Active); err != nil {
		return core.RecurringRule{}, err
	}
	if err := hydrateRule(&rule, date, days, dates); err != nil {
		return core.RecurringRule{}, err
	}
	return rule, nil
}

func hydrateRule(rule *core.RecurringRule, date, days, dates string) error {
	parsed, err := core.ParseDate(date)
	if err != nil {
		return fmt.Errorf("parse rule date %q: %w", date, err)
	}
	rule.Date = parsed
	if err := json.Unmarshal([]byte(days), &rule.RecurDays); err != nil {
		return fmt.Errorf("decode recur days: %w", err)
	}
	if err := json.Unmarshal([]byte(dates), &rule.RecurDates); err != nil {
		return fmt.Errorf("decode recur dates: %w", err)
	}
	return nil
}

func marshalRecurrence(rule core.RecurringRule) (days, dates string, err error) {
	d, err := json.Marshal(orEmpty(rule.RecurDays))
	if err != nil {
		return "", "", fmt.Errorf("encode recur days: %w", err)
	}
	t, err := json.Marshal(orEmpty(rule.RecurDates))
	if err != nil {
		return "", "", fmt.Errorf("encode recur dates: %w", err)
	}
	return string(d), string(t), nil
}

func orEmpty(xs []int) []int {
	if xs == nil {
		return []int{}
	}
	return xs
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}
