package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/ahmedsps3/personal-budget-app/internal/auth"
	"github.com/ahmedsps3/personal-budget-app/internal/cache"
	"github.com/ahmedsps3/personal-budget-app/internal/core"
	applog "github.com/ahmedsps3/personal-budget-app/internal/log"
	"github.com/ahmedsps3/personal-budget-app/internal/services"
	"github.com/ahmedsps3/personal-budget-app/internal/storage"
)

type Server struct {
	http.Server
	storage     *storage.Repository
	service     *services.BudgetService
	sessions    *auth.SessionManager
	rateLimiter *rateLimiter

	// Cached month listings, keyed "user:<id>:month:<year>-<month>".
	monthCache   *cache.LRUCache[[]core.Transaction]
	cacheManager *cache.Manager

	shutdownOnce sync.Once
}

// NewServer wires the RPC routes and returns a ready-to-run server.
func NewServer(addr string, repo *storage.Repository, service *services.BudgetService, sessions *auth.SessionManager) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		storage:      repo,
		service:      service,
		sessions:     sessions,
		rateLimiter:  newRateLimiter(),
		monthCache:   cache.NewLRUCache[[]core.Transaction](200, 5*time.Minute),
		cacheManager: cache.NewManager(),
	}

	s.cacheManager.Register(s.monthCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)

	mux.HandleFunc("POST /rpc/auth.login", s.withMiddleware(s.handleLogin))
	mux.HandleFunc("POST /rpc/auth.me", s.withMiddleware(s.requireAuth(s.handleMe)))
	mux.HandleFunc("POST /rpc/auth.logout", s.withMiddleware(s.handleLogout))

	mux.HandleFunc("POST /rpc/transactions.create", s.withMiddleware(s.requireAuth(s.handleTransactionCreate)))
	mux.HandleFunc("POST /rpc/transactions.update", s.withMiddleware(s.requireAuth(s.handleTransactionUpdate)))
	mux.HandleFunc("POST /rpc/transactions.delete", s.withMiddleware(s.requireAuth(s.handleTransactionDelete)))
	mux.HandleFunc("POST /rpc/transactions.getByMonth", s.withMiddleware(s.requireAuth(s.handleTransactionsByMonth)))
	mux.HandleFunc("POST /rpc/transactions.getByDateRange", s.withMiddleware(s.requireAuth(s.handleTransactionsByDateRange)))
	mux.HandleFunc("POST /rpc/transactions.getByCategory", s.withMiddleware(s.requireAuth(s.handleTransactionsByCategory)))
	mux.HandleFunc("POST /rpc/transactions.getAll", s.withMiddleware(s.requireAuth(s.handleTransactionsAll)))

	mux.HandleFunc("POST /rpc/budget.get", s.withMiddleware(s.requireAuth(s.handleBudgetGet)))
	mux.HandleFunc("POST /rpc/budget.set", s.withMiddleware(s.requireAuth(s.handleBudgetSet)))

	mux.HandleFunc("POST /rpc/categories.getByType", s.withMiddleware(s.requireAuth(s.handleCategoriesByType)))
	mux.HandleFunc("POST /rpc/categories.create", s.withMiddleware(s.requireAuth(s.handleCategoryCreate)))

	mux.HandleFunc("POST /rpc/recurringTransactions.getAll", s.withMiddleware(s.requireAuth(s.handleRecurringAll)))
	mux.HandleFunc("POST /rpc/recurringTransactions.create", s.withMiddleware(s.requireAuth(s.handleRecurringCreate)))
	mux.HandleFunc("POST /rpc/recurringTransactions.update", s.withMiddleware(s.requireAuth(s.handleRecurringUpdate)))

	mux.HandleFunc("POST /rpc/appSettings.get", s.withMiddleware(s.requireAuth(s.handleSettingsGet)))
	mux.HandleFunc("POST /rpc/appSettings.updateGoogleDrive", s.withMiddleware(s.requireAuth(s.handleSettingsUpdateGoogleDrive)))

	httpLogger := applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentHTTP)
	s.Server.Handler = applog.Middleware(httpLogger)(mux)

	return s
}

// Shutdown stops background routines before draining connections.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// withMiddleware adds security headers, rate limiting and request logging.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
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
		r = r.WithContext(ctx)

		logger := applog.FromContext(ctx).With(applog.FieldRequestID, requestID)

		logger.InfoContext(ctx, "Request started",
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldClientIP, clientIP,
			applog.FieldUserAgent, r.Header.Get("User-Agent"))

		if !s.rateLimiter.allow(clientIP) {
			logger.WarnContext(ctx, "Rate limit exceeded", applog.FieldClientIP, clientIP, applog.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(errorEnvelope{Error: rpcError{
				Code:    codeValidation,
				Message: "rate limit exceeded, try again later",
			}})
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		logger.InfoContext(ctx, "Request completed",
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldStatusCode, rw.statusCode,
			applog.FieldDuration, duration.Milliseconds(),
			applog.FieldClientIP, clientIP)
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

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if _, err := s.storage.GetUserByOpenID(r.Context(), "readiness-probe"); err != nil && !errors.Is(err, core.ErrNotFound) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("storage not ready"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) monthCacheKey(userID int64, year, month int) string {
	return fmt.Sprintf("user:%d:month:%04d-%02d", userID, year, month)
}

func (s *Server) invalidateUserCache(userID int64) {
	s.monthCache.InvalidatePrefix(fmt.Sprintf("user:%d:", userID))
}
