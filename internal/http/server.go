// Package http exposes the REST API. Routing is gorilla/mux; every /api
// route sits behind the JWT middleware, and the whole surface behind
// security headers, request logging and a per-IP rate limiter.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"fintrack/internal/auth"
	"fintrack/internal/log"
	"fintrack/internal/secrets"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

type Server struct {
	http.Server

	storage  *storage.SQLiteRepository
	budget   *services.BudgetService
	insights *services.InsightService
	tokens   *auth.TokenManager
	cipher   *secrets.Cipher
	logger   *log.Logger

	rateLimiter  *rateLimiter
	shutdownOnce sync.Once
}

func NewServer(addr string, st *storage.SQLiteRepository, budget *services.BudgetService, insights *services.InsightService, tokens *auth.TokenManager, cipher *secrets.Cipher, logger *log.Logger) *Server {
	s := &Server{
		storage:     st,
		budget:      budget,
		insights:    insights,
		tokens:      tokens,
		cipher:      cipher,
		logger:      logger.WithComponent(log.ComponentHTTP),
		rateLimiter: newRateLimiter(),
	}

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)
	r.HandleFunc("/register", s.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.tokens.Middleware)

	api.HandleFunc("/transactions", s.handleListTransactions).Methods(http.MethodGet)
	api.HandleFunc("/transactions", s.handleCreateTransaction).Methods(http.MethodPost)
	api.HandleFunc("/transactions/{id:[0-9]+}", s.handleUpdateTransaction).Methods(http.MethodPut)
	api.HandleFunc("/transactions/{id:[0-9]+}", s.handleDeleteTransaction).Methods(http.MethodDelete)
	api.HandleFunc("/transactions/categories", s.handleListCategories).Methods(http.MethodGet)

	api.HandleFunc("/bills", s.handleListBills).Methods(http.MethodGet)
	api.HandleFunc("/bills", s.handleCreateBill).Methods(http.MethodPost)
	api.HandleFunc("/bills/{id:[0-9]+}", s.handleUpdateBill).Methods(http.MethodPut)
	api.HandleFunc("/bills/{id:[0-9]+}", s.handleDeleteBill).Methods(http.MethodDelete)
	api.HandleFunc("/bills/{id:[0-9]+}/payments", s.handleListBillPayments).Methods(http.MethodGet)
	api.HandleFunc("/bills/{id:[0-9]+}/payments", s.handleCreateBillPayment).Methods(http.MethodPost)
	api.HandleFunc("/bills/{id:[0-9]+}/variance", s.handleBillVariance).Methods(http.MethodGet)

	api.HandleFunc("/income", s.handleListIncomeSources).Methods(http.MethodGet)
	api.HandleFunc("/income", s.handleCreateIncomeSource).Methods(http.MethodPost)
	api.HandleFunc("/income/summary", s.handleIncomeSummary).Methods(http.MethodGet)
	api.HandleFunc("/income/{id:[0-9]+}", s.handleUpdateIncomeSource).Methods(http.MethodPut)
	api.HandleFunc("/income/{id:[0-9]+}", s.handleDeleteIncomeSource).Methods(http.MethodDelete)

	api.HandleFunc("/wealth/accounts", s.handleListAccounts).Methods(http.MethodGet)
	api.HandleFunc("/wealth/accounts", s.handleCreateAccount).Methods(http.MethodPost)
	api.HandleFunc("/wealth/accounts/{id:[0-9]+}", s.handleUpdateAccount).Methods(http.MethodPut)
	api.HandleFunc("/wealth/accounts/{id:[0-9]+}", s.handleDeleteAccount).Methods(http.MethodDelete)
	api.HandleFunc("/wealth/retirement", s.handleListRetirementAccounts).Methods(http.MethodGet)
	api.HandleFunc("/wealth/retirement", s.handleCreateRetirementAccount).Methods(http.MethodPost)
	api.HandleFunc("/wealth/retirement/{id:[0-9]+}", s.handleUpdateRetirementAccount).Methods(http.MethodPut)
	api.HandleFunc("/wealth/retirement/{id:[0-9]+}", s.handleDeleteRetirementAccount).Methods(http.MethodDelete)
	api.HandleFunc("/wealth/assets", s.handleListAssets).Methods(http.MethodGet)
	api.HandleFunc("/wealth/assets", s.handleCreateAsset).Methods(http.MethodPost)
	api.HandleFunc("/wealth/assets/{id:[0-9]+}", s.handleUpdateAsset).Methods(http.MethodPut)
	api.HandleFunc("/wealth/assets/{id:[0-9]+}", s.handleDeleteAsset).Methods(http.MethodDelete)
	api.HandleFunc("/wealth/networth", s.handleNetWorth).Methods(http.MethodGet)
	api.HandleFunc("/wealth/snapshots", s.handleListSnapshots).Methods(http.MethodGet)
	api.HandleFunc("/wealth/snapshots", s.handleCreateSnapshot).Methods(http.MethodPost)

	api.HandleFunc("/properties", s.handleListProperties).Methods(http.MethodGet)
	api.HandleFunc("/properties", s.handleCreateProperty).Methods(http.MethodPost)
	api.HandleFunc("/properties/{id:[0-9]+}", s.handleGetProperty).Methods(http.MethodGet)
	api.HandleFunc("/properties/{id:[0-9]+}", s.handleUpdateProperty).Methods(http.MethodPut)
	api.HandleFunc("/properties/{id:[0-9]+}", s.handleDeleteProperty).Methods(http.MethodDelete)
	api.HandleFunc("/properties/{id:[0-9]+}/loans", s.handleListPropertyLoans).Methods(http.MethodGet)
	api.HandleFunc("/properties/{id:[0-9]+}/loans", s.handleCreatePropertyLoan).Methods(http.MethodPost)
	api.HandleFunc("/properties/{id:[0-9]+}/loans/{childID:[0-9]+}", s.handleDeletePropertyLoan).Methods(http.MethodDelete)
	api.HandleFunc("/properties/{id:[0-9]+}/rental-income", s.handleListRentalIncome).Methods(http.MethodGet)
	api.HandleFunc("/properties/{id:[0-9]+}/rental-income", s.handleCreateRentalIncome).Methods(http.MethodPost)
	api.HandleFunc("/properties/{id:[0-9]+}/rental-income/{childID:[0-9]+}", s.handleDeleteRentalIncome).Methods(http.MethodDelete)
	api.HandleFunc("/properties/{id:[0-9]+}/expenses", s.handleListPropertyExpenses).Methods(http.MethodGet)
	api.HandleFunc("/properties/{id:[0-9]+}/expenses", s.handleCreatePropertyExpense).Methods(http.MethodPost)
	api.HandleFunc("/properties/{id:[0-9]+}/expenses/{childID:[0-9]+}", s.handleDeletePropertyExpense).Methods(http.MethodDelete)
	api.HandleFunc("/properties/{id:[0-9]+}/tenants", s.handleListPropertyTenants).Methods(http.MethodGet)
	api.HandleFunc("/properties/{id:[0-9]+}/tenants", s.handleCreatePropertyTenant).Methods(http.MethodPost)
	api.HandleFunc("/properties/{id:[0-9]+}/tenants/{childID:[0-9]+}", s.handleDeletePropertyTenant).Methods(http.MethodDelete)

	api.HandleFunc("/opportunities", s.handleListOpportunities).Methods(http.MethodGet)
	api.HandleFunc("/opportunities", s.handleCreateOpportunity).Methods(http.MethodPost)
	api.HandleFunc("/opportunities/{id:[0-9]+}", s.handleUpdateOpportunity).Methods(http.MethodPut)
	api.HandleFunc("/opportunities/{id:[0-9]+}", s.handleDeleteOpportunity).Methods(http.MethodDelete)
	api.HandleFunc("/targets", s.handleListTargets).Methods(http.MethodGet)
	api.HandleFunc("/targets", s.handleCreateTarget).Methods(http.MethodPost)
	api.HandleFunc("/targets/{id:[0-9]+}", s.handleUpdateTarget).Methods(http.MethodPut)
	api.HandleFunc("/targets/{id:[0-9]+}", s.handleDeleteTarget).Methods(http.MethodDelete)
	api.HandleFunc("/credit-scores", s.handleListCreditScores).Methods(http.MethodGet)
	api.HandleFunc("/credit-scores", s.handleCreateCreditScore).Methods(http.MethodPost)
	api.HandleFunc("/credit-scores/{id:[0-9]+}", s.handleDeleteCreditScore).Methods(http.MethodDelete)

	api.HandleFunc("/budget/summary", s.handleBudgetSummary).Methods(http.MethodGet)
	api.HandleFunc("/budget/suggestions", s.handleBudgetSuggestions).Methods(http.MethodGet)
	api.HandleFunc("/budget/trends", s.handleBudgetTrends).Methods(http.MethodGet)

	api.HandleFunc("/ai/credentials", s.handleListCredentials).Methods(http.MethodGet)
	api.HandleFunc("/ai/credentials", s.handleUpsertCredential).Methods(http.MethodPost)
	api.HandleFunc("/ai/credentials/{provider}", s.handleDeleteCredential).Methods(http.MethodDelete)
	api.HandleFunc("/ai/insights", s.handleListInsights).Methods(http.MethodGet)
	api.HandleFunc("/ai/insights", s.handleGenerateInsights).Methods(http.MethodPost)

	return s.withRequestLogging(r)
}

// withRequestLogging is the outermost middleware: security headers, rate
// limiting on writes, and one structured log line per request.
func (s *Server) withRequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)
		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Cache-Control", "no-store")

		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			s.logger.WarnContext(ctx, "Rate limit exceeded",
				log.FieldClientIP, clientIP,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			respondError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		s.logger.InfoContext(ctx, "Request handled",
			log.FieldRequestID, requestID,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldStatusCode, rec.status,
			log.FieldClientIP, clientIP,
			log.FieldDuration, time.Since(start).Milliseconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.storage.Ping(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
}

// Shutdown stops the rate limiter's cleanup goroutine and drains the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

type requestIDContextKey struct{}

var requestIDKey requestIDContextKey

func generateRequestID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(b)
}
