// Package memstore is an in-memory ledger store used by tests and the
// memory data backend.
package memstore

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"maymonee/internal/core"
	"maymonee/internal/ledger"
)

// Store keeps every collection in per-user maps. Atomic serializes whole
// mutation blocks; individual reads and writes take the inner lock.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	nextID int64

	accounts     map[int64]map[int64]core.Account
	transactions map[int64]map[int64]core.Transaction
	assets       map[int64]map[int64]core.Asset
	rules        map[int64]map[int64]core.RecurringRule
	runs         map[string]bool
	budgets      map[int64]core.BudgetGrid
	categories   map[int64]core.Categories
}

func New() *Store {
	return &Store{
		accounts:     make(map[int64]map[int64]core.Account),
		transactions: make(map[int64]map[int64]core.Transaction),
		assets:       make(map[int64]map[int64]core.Asset),
		rules:        make(map[int64]map[int64]core.RecurringRule),
		runs:         make(map[string]bool),
		budgets:      make(map[int64]core.BudgetGrid),
		categories:   make(map[int64]core.Categories),
	}
}

// Atomic runs fn while holding the transaction lock. Mutations in core
// validate before writing, so a failed block has nothing to roll back.
func (s *Store) Atomic(_ context.Context, fn func(ledger.Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return fn(s)
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// Accounts

func (s *Store) CreateAccount(_ context.Context, userID int64, a core.Account) (core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.accounts[userID] == nil {
		s.accounts[userID] = make(map[int64]core.Account)
	}
	a.ID = s.id()
	s.accounts[userID][a.ID] = a
	return a, nil
}

func (s *Store) GetAccount(_ context.Context, userID, id int64) (core.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[userID][id]
	if !ok {
		return core.Account{}, core.ErrNotFound
	}
	return a, nil
}

func (s *Store) ListAccounts(_ context.Context, userID int64) ([]core.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Account, 0, len(s.accounts[userID]))
	for _, a := range s.accounts[userID] {
		out = append(out, a)
	}
	sortByID(out, func(a core.Account) int64 { return a.ID })
	return out, nil
}

func (s *Store) UpdateAccount(_ context.Context, userID int64, a core.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[userID][a.ID]; !ok {
		return core.ErrNotFound
	}
	s.accounts[userID][a.ID] = a
	return nil
}

func (s *Store) DeleteAccount(_ context.Context, userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[userID][id]; !ok {
		return core.ErrNotFound
	}
	delete(s.accounts[userID], id)
	return nil
}

// Transactions

func (s *Store) CreateTransaction(_ context.Context, userID int64, tx core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.transactions[userID] == nil {
		s.transactions[userID] = make(map[int64]core.Transaction)
	}
	tx.ID = s.id()
	s.transactions[userID][tx.ID] = tx
	return tx, nil
}

func (s *Store) GetTransaction(_ context.Context, userID, id int64) (core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tx, ok := s.transactions[userID][id]
	if !ok {
		return core.Transaction{}, core.ErrNotFound
	}
	return tx, nil
}

func (s *Store) ListTransactions(_ context.Context, userID int64) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Transaction, 0, len(s.transactions[userID]))
	for _, tx := range s.transactions[userID] {
		out = append(out, tx)
	}
	sortByID(out, func(tx core.Transaction) int64 { return tx.ID })
	return out, nil
}

func (s *Store) UpdateTransaction(_ context.Context, userID int64, tx core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.transactions[userID][tx.ID]; !ok {
		return core.ErrNotFound
	}
	s.transactions[userID][tx.ID] = tx
	return nil
}

func (s *Store) DeleteTransaction(_ context.Context, userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.transactions[userID][id]; !ok {
		return core.ErrNotFound
	}
	delete(s.transactions[userID], id)
	return nil
}

func (s *Store) CountTransactionsByAccount(_ context.Context, userID, accountID int64) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, tx := range s.transactions[userID] {
		if tx.AccountID == accountID {
			n++
		}
	}
	return n, nil
}

// Assets

func (s *Store) CreateAsset(_ context.Context, userID int64, a core.Asset) (core.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.assets[userID] == nil {
		s.assets[userID] = make(map[int64]core.Asset)
	}
	a.ID = s.id()
	s.assets[userID][a.ID] = a
	return a, nil
}

func (s *Store) GetAsset(_ context.Context, userID, id int64) (core.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.assets[userID][id]
	if !ok {
		return core.Asset{}, core.ErrNotFound
	}
	return a, nil
}

func (s *Store) FindAssetByName(_ context.Context, userID int64, name string) (core.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.assets[userID] {
		if strings.EqualFold(a.Name, name) {
			return a, nil
		}
	}
	return core.Asset{}, core.ErrNotFound
}

func (s *Store) ListAssets(_ context.Context, userID int64) ([]core.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Asset, 0, len(s.assets[userID]))
	for _, a := range s.assets[userID] {
		out = append(out, a)
	}
	sortByID(out, func(a core.Asset) int64 { return a.ID })
	return out, nil
}

func (s *Store) UpdateAsset(_ context.Context, userID int64, a core.Asset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.assets[userID][a.ID]; !ok {
		return core.ErrNotFound
	}
	s.assets[userID][a.ID] = a
	return nil
}

func (s *Store) DeleteAsset(_ context.Context, userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.assets[userID][id]; !ok {
		return core.ErrNotFound
	}
	delete(s.assets[userID], id)
	return nil
}

// Recurring rules

func (s *Store) CreateRule(_ context.Context, userID int64, r core.RecurringRule) (core.RecurringRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rules[userID] == nil {
		s.rules[userID] = make(map[int64]core.RecurringRule)
	}
	r.ID = s.id()
	s.rules[userID][r.ID] = r
	return r, nil
}

func (s *Store) GetRule(_ context.Context, userID, id int64) (core.RecurringRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rules[userID][id]
	if !ok {
		return core.RecurringRule{}, core.ErrNotFound
	}
	return r, nil
}

func (s *Store) ListRules(_ context.Context, userID int64) ([]core.RecurringRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.RecurringRule, 0, len(s.rules[userID]))
	for _, r := range s.rules[userID] {
		out = append(out, r)
	}
	sortByID(out, func(r core.RecurringRule) int64 { return r.ID })
	return out, nil
}

func (s *Store) ListActiveRules(_ context.Context) ([]ledger.RuleWithOwner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []ledger.RuleWithOwner
	for userID, rules := range s.rules {
		for _, r := range rules {
			if r.Active {
				out = append(out, ledger.RuleWithOwner{UserID: userID, Rule: r})
			}
		}
	}
	sortByID(out, func(rw ledger.RuleWithOwner) int64 { return rw.Rule.ID })
	return out, nil
}

func (s *Store) UpdateRule(_ context.Context, userID int64, r core.RecurringRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rules[userID][r.ID]; !ok {
		return core.ErrNotFound
	}
	s.rules[userID][r.ID] = r
	return nil
}

func (s *Store) DeleteRule(_ context.Context, userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rules[userID][id]; !ok {
		return core.ErrNotFound
	}
	delete(s.rules[userID], id)
	return nil
}

func (s *Store) MarkRuleRun(_ context.Context, ruleID int64, due core.Date) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := fmt.Sprintf("%d|%s", ruleID, due.String())
	if s.runs[key] {
		return false, nil
	}
	s.runs[key] = true
	return true, nil
}

// Budgets and categories

func (s *Store) GetBudgets(_ context.Context, userID int64) (core.BudgetGrid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.budgets[userID]
	if !ok {
		return core.BudgetGrid{}, nil
	}
	return g.Clone(), nil
}

func (s *Store) SaveBudgets(_ context.Context, userID int64, g core.BudgetGrid) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.budgets[userID] = g.Clone()
	return nil
}

func (s *Store) GetCategories(_ context.Context, userID int64) (core.Categories, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyCategories(s.categories[userID]), nil
}

func (s *Store) SaveCategories(_ context.Context, userID int64, c core.Categories) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories[userID] = copyCategories(c)
	return nil
}

func copyCategories(c core.Categories) core.Categories {
	return core.Categories{
		Income:   append([]string(nil), c.Income...),
		Savings:  append([]string(nil), c.Savings...),
		Expenses: append([]string(nil), c.Expenses...),
	}
}

func sortByID[T any](items []T, id func(T) int64) {
	slices.SortFunc(items, func(a, b T) int {
		return cmp.Compare(id(a), id(b))
	})
}
