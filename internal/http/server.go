// Package http is the JSON API surface of the dashboard. Handlers read the
// ledger through a cached aggregation snapshot and degrade to empty
// aggregates when the store is unreachable.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync"
	"time"

	"bankdash/internal/cache"
	"bankdash/internal/core"
	"bankdash/internal/ledger"
	applog "bankdash/internal/log"
	"bankdash/internal/report"
	"bankdash/internal/services"
	"bankdash/internal/session"
)

const snapshotKey = "working-set"

type Server struct {
	http.Server

	fetcher  ledger.TransactionFetcher
	accounts ledger.AccountReader
	users    ledger.UserStore
	txs      *services.TransactionService
	sessions *session.Store

	topN int

	rateLimiter *rateLimiter

	// One cached aggregation of the whole working set; purged on writes.
	aggCache *cache.LRUCache[report.Aggregation]
	// Raw records cached alongside for the transaction list handlers.
	recordsCache *cache.LRUCache[[]core.TransactionRecord]

	cacheManager *cache.Manager
	shutdownOnce sync.Once
}

type Options struct {
	Addr     string
	Fetcher  ledger.TransactionFetcher
	Accounts ledger.AccountReader
	Users    ledger.UserStore
	Txs      *services.TransactionService
	Sessions *session.Store
	TopN     int
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(opts Options) *Server {
	mux := http.NewServeMux()

	topN := opts.TopN
	if topN <= 0 {
		topN = 8
	}

	httpLogger := applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentHTTP)

	s := &Server{
		Server: http.Server{
			Addr:    opts.Addr,
			Handler: applog.Middleware(httpLogger)(mux),
		},
		fetcher:      opts.Fetcher,
		accounts:     opts.Accounts,
		users:        opts.Users,
		txs:          opts.Txs,
		sessions:     opts.Sessions,
		topN:         topN,
		rateLimiter:  newRateLimiter(),
		aggCache:     cache.NewLRUCache[report.Aggregation](4, 30*time.Second),
		recordsCache: cache.NewLRUCache[[]core.TransactionRecord](4, 30*time.Second),
		cacheManager: cache.NewManager(),
	}

	s.cacheManager.Register(s.aggCache)
	s.cacheManager.Register(s.recordsCache)
	if opts.Sessions != nil {
		s.cacheManager.Register(opts.Sessions)
	}
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	mux.HandleFunc("POST /api/session", s.withSecurityHeaders(s.handleLogin))
	mux.HandleFunc("DELETE /api/session", s.withSecurityHeaders(s.handleLogout))

	mux.HandleFunc("GET /api/accounts", s.protected(s.handleListAccounts))
	mux.HandleFunc("GET /api/transactions", s.protected(s.handleListTransactions))

	mux.HandleFunc("GET /api/dashboard/summary", s.protected(s.handleDashboardSummary))
	mux.HandleFunc("GET /api/dashboard/series", s.protected(s.handleDashboardSeries))
	mux.HandleFunc("GET /api/dashboard/top", s.protected(s.handleDashboardTop))

	mux.HandleFunc("GET /api/user", s.protected(s.handleGetUser))
	mux.HandleFunc("PUT /api/user", s.protected(s.handleUpdateUser))

	mux.HandleFunc("POST /api/transfer", s.protected(s.handleTransfer))
	mux.HandleFunc("POST /api/deposit", s.protected(s.handleDeposit))

	mux.HandleFunc("POST /api/admin/transactions", s.protected(s.handleAdminCreate))
	mux.HandleFunc("PUT /api/admin/transactions/{ref}", s.protected(s.handleAdminUpdate))

	return s
}

// Shutdown stops the cleanup goroutines along with the HTTP listener.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.cacheManager != nil {
			s.cacheManager.Stop()
		}
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// snapshot returns the cached aggregation of the working set, rebuilding it
// from the store when stale. A fetch failure yields empty aggregates; the
// dashboard renders zeros rather than an error page.
func (s *Server) snapshot(ctx context.Context) report.Aggregation {
	if agg, ok := s.aggCache.Get(snapshotKey); ok {
		return agg
	}

	records, err := s.fetchRecords(ctx)
	if err != nil {
		return report.Aggregate(nil)
	}

	agg := report.Aggregate(records)
	s.aggCache.Set(snapshotKey, agg)
	return agg
}

// fetchRecords reads the full working set, serving from cache when fresh.
func (s *Server) fetchRecords(ctx context.Context) ([]core.TransactionRecord, error) {
	if records, ok := s.recordsCache.Get(snapshotKey); ok {
		return records, nil
	}

	records, err := s.fetcher.FetchAll(ctx)
	if err != nil {
		applog.FromContext(ctx).ErrorContext(ctx, "Failed to fetch transactions, degrading to empty",
			applog.NewFields().WithError(err).ToSlice()...)
		return nil, err
	}

	s.recordsCache.Set(snapshotKey, records)
	return records, nil
}

// invalidateSnapshot drops cached aggregates after a write.
func (s *Server) invalidateSnapshot() {
	s.aggCache.Purge()
	s.recordsCache.Purge()
}

// protected composes the security middleware with the session guard.
func (s *Server) protected(next http.HandlerFunc) http.HandlerFunc {
	return s.withSecurityHeaders(s.requireSession(next))
}

func (s *Server) requireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.sessions == nil {
			next(w, r)
			return
		}
		if _, ok := s.sessions.Validate(bearerToken(r)); !ok {
			writeError(w, http.StatusUnauthorized, "not signed in")
			return
		}
		next(w, r)
	}
}

// withSecurityHeaders adds security headers, rate limiting and request
// logging.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		logger := applog.FromContext(ctx).With(applog.FieldRequestID, requestID)
		ctx = context.WithValue(ctx, applog.LoggerContextKey, logger)
		r = r.WithContext(ctx)

		logger.InfoContext(ctx, "Request started",
			applog.NewFields().
				WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery).
				ToSlice()...)

		// Rate limiting applies to mutating requests only.
		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			logger.WarnContext(ctx, "Rate limit exceeded", applog.FieldClientIP, clientIP, applog.FieldMethod, r.Method, applog.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; connect-src 'self'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		logger.InfoContext(ctx, "Request completed",
			applog.NewFields().
				WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery).
				WithHTTPResponse(rw.statusCode, duration.Milliseconds()).
				ToSlice()...)
	}
}

type contextKey string

const requestIDKey contextKey = "request_id"

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
