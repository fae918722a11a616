package memstore

import (
	"context"
	"strings"
	"sync"
	"time"

	"maymonee/internal/core"
)

// UserStore is the in-memory user registry.
type UserStore struct {
	mu     sync.RWMutex
	nextID int64
	users  map[int64]core.User
	emails map[string]int64
}

func NewUserStore() *UserStore {
	return &UserStore{
		users:  make(map[int64]core.User),
		emails: make(map[string]int64),
	}
}

func (s *UserStore) CreateUser(_ context.Context, u core.User) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(u.Email)
	if _, taken := s.emails[key]; taken {
		return core.User{}, core.ErrEmailTaken
	}
	s.nextID++
	u.ID = s.nextID
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	s.users[u.ID] = u
	s.emails[key] = u.ID
	return u, nil
}

func (s *UserStore) GetUser(_ context.Context, id int64) (core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return core.User{}, core.ErrNotFound
	}
	return u, nil
}

func (s *UserStore) GetUserByEmail(_ context.Context, email string) (core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.emails[strings.ToLower(email)]
	if !ok {
		return core.User{}, core.ErrNotFound
	}
	return s.users[id], nil
}

func (s *UserStore) UpdateUserCurrency(_ context.Context, id int64, currency string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return core.ErrNotFound
	}
	u.Currency = currency
	s.users[id] = u
	return nil
}
