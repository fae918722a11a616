// Package auth handles registration, login and bearer-token verification.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"maymonee/internal/core"
	"maymonee/internal/ledger"
)

const bcryptCost = 10

// StarterAccountName is the account every new user begins with.
const StarterAccountName = "Dompet Utama"

const (
	ErrInvalidEmail = core.ValidationError("invalid email address")
	ErrWeakPassword = core.ValidationError("password must be at least 8 characters")
)

// Service registers and authenticates users and mints bearer tokens.
type Service struct {
	users  ledger.UserStore
	store  ledger.Store
	secret []byte
	ttl    time.Duration
}

// NewService builds the auth service. A zero ttl falls back to 24h; negative
// values are kept as-is so tests can mint already-expired tokens.
func NewService(users ledger.UserStore, store ledger.Store, secret string, ttl time.Duration) *Service {
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	return &Service{users: users, store: store, secret: []byte(secret), ttl: ttl}
}

// Register creates a user and seeds the starter account and default
// category taxonomy, then returns a fresh token.
func (s *Service) Register(ctx context.Context, name, email, password, currency string) (core.User, string, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" {
		return core.User{}, "", core.ErrEmptyName
	}
	if !strings.Contains(email, "@") {
		return core.User{}, "", ErrInvalidEmail
	}
	if len(password) < 8 {
		return core.User{}, "", ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return core.User{}, "", fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.CreateUser(ctx, core.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Currency:     core.CurrencyFor(currency).Code,
		CreatedAt:    time.Now(),
	})
	if err != nil {
		return core.User{}, "", err
	}

	if err := s.seed(ctx, user.ID); err != nil {
		return core.User{}, "", fmt.Errorf("seed user data: %w", err)
	}

	token, err := s.IssueToken(user.ID)
	if err != nil {
		return core.User{}, "", err
	}
	return user, token, nil
}

func (s *Service) seed(ctx context.Context, userID int64) error {
	return s.store.Atomic(ctx, func(st ledger.Store) error {
		if _, err := st.CreateAccount(ctx, userID, core.Account{
			Name: StarterAccountName,
			Type: core.Cash,
		}); err != nil {
			return err
		}
		return st.SaveCategories(ctx, userID, core.DefaultCategories())
	})
}

// Login verifies the credentials and returns the user with a fresh token.
// The same error covers unknown email and wrong password.
func (s *Service) Login(ctx context.Context, email, password string) (core.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.User{}, "", core.ErrInvalidCredentials
		}
		return core.User{}, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return core.User{}, "", core.ErrInvalidCredentials
	}
	token, err := s.IssueToken(user.ID)
	if err != nil {
		return core.User{}, "", err
	}
	return user, token, nil
}

// GetUser loads a user by id.
func (s *Service) GetUser(ctx context.Context, id int64) (core.User, error) {
	return s.users.GetUser(ctx, id)
}

// IssueToken mints a signed HS256 token carrying the user id as subject.
func (s *Service) IssueToken(userID int64) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies a token and returns the user id it carries.
func (s *Service) ParseToken(tokenString string) (int64, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return 0, core.ErrInvalidCredentials
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		return 0, core.ErrInvalidCredentials
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return 0, core.ErrInvalidCredentials
	}
	return userID, nil
}
