package http

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"maymonee/internal/auth"
	"maymonee/internal/cache"
	"maymonee/internal/core"
	"maymonee/internal/ledger"
	applog "maymonee/internal/log"
	"maymonee/internal/middleware/ratelimit"
	"maymonee/internal/middleware/security"
	"maymonee/internal/middleware/trace"
)

// Options tunes the ambient behavior of the server.
type Options struct {
	RateLimitPerMinute int
	SnapshotTTL        time.Duration
}

type Server struct {
	http.Server
	ledger *ledger.Service
	auth   *auth.Service

	detector *security.Detector
	limiter  *ratelimit.Limiter
	tracer   *trace.Middleware
	started  time.Time

	// Dashboard snapshots are expensive to assemble, so they are cached per
	// user and invalidated on every mutation.
	snapshots *cache.LRUCache[*core.Snapshot]
	caches    *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, ledgerSvc *ledger.Service, authSvc *auth.Service, opts Options) *Server {
	if opts.SnapshotTTL <= 0 {
		opts.SnapshotTTL = 5 * time.Minute
	}

	s := &Server{
		ledger:    ledgerSvc,
		auth:      authSvc,
		detector:  security.NewDetector(),
		limiter:   ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		snapshots: cache.NewLRUCache[*core.Snapshot](1000, opts.SnapshotTTL),
		caches:    cache.NewManager(),
		started:   time.Now(),
	}
	s.tracer = trace.NewMiddleware(s.detector.ExtractClientIP)
	s.caches.Register(s.snapshots)
	s.caches.StartCleanup(10 * time.Minute)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)

	mux.Handle("GET /api/me", s.protected(s.handleMe))

	mux.Handle("GET /api/dashboard", s.protected(s.handleDashboard))
	mux.Handle("GET /api/summary", s.protected(s.handleSummary))

	mux.Handle("GET /api/accounts", s.protected(s.handleListAccounts))
	mux.Handle("POST /api/accounts", s.protected(s.handleCreateAccount))
	mux.Handle("PUT /api/accounts/{id}", s.protected(s.handleUpdateAccount))
	mux.Handle("DELETE /api/accounts/{id}", s.protected(s.handleDeleteAccount))

	mux.Handle("GET /api/transactions", s.protected(s.handleListTransactions))
	mux.Handle("POST /api/transactions", s.protected(s.handleCreateTransaction))
	mux.Handle("PUT /api/transactions/{id}", s.protected(s.handleUpdateTransaction))
	mux.Handle("DELETE /api/transactions/{id}", s.protected(s.handleDeleteTransaction))

	mux.Handle("POST /api/transfers", s.protected(s.handleTransfer))

	mux.Handle("GET /api/assets", s.protected(s.handleListAssets))
	mux.Handle("POST /api/assets", s.protected(s.handleCreateAsset))
	mux.Handle("POST /api/assets/buy", s.protected(s.handleBuyAsset))
	mux.Handle("POST /api/assets/{id}/sell", s.protected(s.handleSellAsset))
	mux.Handle("PUT /api/assets/{id}/price", s.protected(s.handleUpdateAssetPrice))
	mux.Handle("DELETE /api/assets/{id}", s.protected(s.handleDeleteAsset))

	mux.Handle("GET /api/budgets", s.protected(s.handleGetBudgets))
	mux.Handle("PUT /api/budgets", s.protected(s.handleSaveBudgets))
	mux.Handle("PUT /api/budgets/cell", s.protected(s.handleSetBudgetCell))

	mux.Handle("GET /api/categories", s.protected(s.handleGetCategories))
	mux.Handle("POST /api/categories", s.protected(s.handleAddCategory))
	mux.Handle("DELETE /api/categories", s.protected(s.handleRemoveCategory))

	mux.Handle("GET /api/recurring", s.protected(s.handleListRules))
	mux.Handle("POST /api/recurring", s.protected(s.handleCreateRule))
	mux.Handle("PUT /api/recurring/{id}", s.protected(s.handleUpdateRule))
	mux.Handle("DELETE /api/recurring/{id}", s.protected(s.handleDeleteRule))

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	rateLimited := s.limiter.Middleware(s.detector.ExtractClientIP, handleRateLimited)

	var handler http.Handler = mux
	handler = rateLimited(handler)
	handler = headers.Middleware(handler)
	handler = applog.Middleware(applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentHTTP))(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return s
}

// protected gates a handler behind bearer-token authentication.
func (s *Server) protected(h http.HandlerFunc) http.Handler {
	return s.auth.Middleware(h)
}

// Shutdown stops the background cleanup goroutines and drains the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		s.caches.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleRateLimited(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Retry-After", "60")
	writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "rate limit exceeded"})
}

func (s *Server) snapshotKey(userID int64) string {
	return strconv.FormatInt(userID, 10)
}

func (s *Server) invalidateSnapshot(userID int64) {
	s.snapshots.Delete(s.snapshotKey(userID))
}

func (s *Server) loadSnapshot(ctx context.Context, userID int64) (*core.Snapshot, error) {
	key := s.snapshotKey(userID)
	if snap, ok := s.snapshots.Get(key); ok {
		return snap, nil
	}
	snap, err := s.ledger.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.snapshots.Set(key, snap)
	return snap, nil
}
