package auth_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"maymonee/internal/auth"
	"maymonee/internal/core"
	"maymonee/internal/memstore"
)

func newTestAuth(ttl time.Duration) (*auth.Service, *memstore.Store) {
	store := memstore.New()
	return auth.NewService(memstore.NewUserStore(), store, "test-secret", ttl), store
}

func TestService_Register(t *testing.T) {
	svc, store := newTestAuth(time.Hour)
	ctx := context.Background()

	user, token, err := svc.Register(ctx, "Budi", "budi@example.com", "rahasia123", "")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if user.ID == 0 {
		t.Error("Register() should assign a user id")
	}
	if token == "" {
		t.Error("Register() should return a token")
	}
	if user.Currency != core.DefaultCurrencyCode {
		t.Errorf("Register() currency = %q, want %q", user.Currency, core.DefaultCurrencyCode)
	}

	t.Run("seeds starter account and categories", func(t *testing.T) {
		accounts, err := store.ListAccounts(ctx, user.ID)
		if err != nil {
			t.Fatalf("ListAccounts() error = %v", err)
		}
		if len(accounts) != 1 || accounts[0].Name != auth.StarterAccountName || accounts[0].Type != core.Cash {
			t.Errorf("starter accounts = %+v", accounts)
		}
		cats, err := store.GetCategories(ctx, user.ID)
		if err != nil {
			t.Fatalf("GetCategories() error = %v", err)
		}
		if cats.IsEmpty() {
			t.Error("default categories not seeded")
		}
	})

	t.Run("duplicate email", func(t *testing.T) {
		if _, _, err := svc.Register(ctx, "Budi 2", "BUDI@example.com", "rahasia123", ""); !errors.Is(err, core.ErrEmailTaken) {
			t.Errorf("Register() duplicate email error = %v, want ErrEmailTaken", err)
		}
	})
}

func TestService_Register_Invalid(t *testing.T) {
	svc, _ := newTestAuth(time.Hour)
	ctx := context.Background()

	tests := []struct {
		name     string
		userName string
		email    string
		password string
	}{
		{"empty name", "", "a@example.com", "rahasia123"},
		{"bad email", "Budi", "not-an-email", "rahasia123"},
		{"short password", "Budi", "a@example.com", "short"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := svc.Register(ctx, tt.userName, tt.email, tt.password, ""); err == nil {
				t.Error("Register() should fail")
			}
		})
	}
}

func TestService_Login(t *testing.T) {
	svc, _ := newTestAuth(time.Hour)
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, "Sari", "sari@example.com", "rahasia123", "USD"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	user, token, err := svc.Login(ctx, "Sari@Example.com", "rahasia123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if token == "" || user.Email != "sari@example.com" {
		t.Errorf("Login() = %+v, token %q", user, token)
	}

	t.Run("wrong password", func(t *testing.T) {
		if _, _, err := svc.Login(ctx, "sari@example.com", "salah12345"); !errors.Is(err, core.ErrInvalidCredentials) {
			t.Errorf("Login() error = %v, want ErrInvalidCredentials", err)
		}
	})
	t.Run("unknown email", func(t *testing.T) {
		if _, _, err := svc.Login(ctx, "nobody@example.com", "rahasia123"); !errors.Is(err, core.ErrInvalidCredentials) {
			t.Errorf("Login() error = %v, want ErrInvalidCredentials", err)
		}
	})
}

func TestService_Tokens(t *testing.T) {
	svc, _ := newTestAuth(time.Hour)

	token, err := svc.IssueToken(42)
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}
	userID, err := svc.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if userID != 42 {
		t.Errorf("ParseToken() = %d, want 42", userID)
	}

	t.Run("garbage token", func(t *testing.T) {
		if _, err := svc.ParseToken("not.a.token"); !errors.Is(err, core.ErrInvalidCredentials) {
			t.Errorf("ParseToken() error = %v, want ErrInvalidCredentials", err)
		}
	})

	t.Run("expired token", func(t *testing.T) {
		expired, _ := newTestAuth(-time.Minute)
		token, err := expired.IssueToken(42)
		if err != nil {
			t.Fatalf("IssueToken() error = %v", err)
		}
		if _, err := expired.ParseToken(token); !errors.Is(err, core.ErrInvalidCredentials) {
			t.Errorf("ParseToken() expired error = %v, want ErrInvalidCredentials", err)
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := auth.NewService(memstore.NewUserStore(), memstore.New(), "other-secret", time.Hour)
		if _, err := other.ParseToken(token); !errors.Is(err, core.ErrInvalidCredentials) {
			t.Errorf("ParseToken() foreign token error = %v, want ErrInvalidCredentials", err)
		}
	})
}

func TestMiddleware(t *testing.T) {
	svc, _ := newTestAuth(time.Hour)

	var gotUserID int64
	handler := svc.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = auth.UserID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	t.Run("valid token", func(t *testing.T) {
		token, _ := svc.IssueToken(7)
		req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Errorf("status = %d, want 204", rec.Code)
		}
		if gotUserID != 7 {
			t.Errorf("user id in context = %d, want 7", gotUserID)
		}
	})

	t.Run("missing header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("mangled token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
		req.Header.Set("Authorization", "Bearer bogus")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})
}

func TestService_Register_SetsTTLDefault(t *testing.T) {
	// zero ttl falls back to 24h; the minted token must still verify.
	svc, _ := newTestAuth(0)
	token, err := svc.IssueToken(1)
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}
	if _, err := svc.ParseToken(token); err != nil {
		t.Errorf("ParseToken() error = %v", err)
	}
}
