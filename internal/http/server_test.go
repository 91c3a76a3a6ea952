package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"fintrack/internal/ai"
	"fintrack/internal/auth"
	"fintrack/internal/log"
	"fintrack/internal/secrets"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "fintrack_test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	logger := log.New(log.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
	cipher, err := secrets.NewCipher(bytes.Repeat([]byte{0x11}, 32))
	if err != nil {
		t.Fatalf("NewCipher: %v", err)
	}

	budget := services.NewBudgetService(repo)
	client := ai.NewClient(time.Second, 0, logger)
	insights := services.NewInsightService(repo, budget, client, cipher, logger)
	tokens := auth.NewTokenManager("test-secret")

	s := NewServer(":0", repo, budget, insights, tokens, cipher, logger)
	t.Cleanup(func() { s.rateLimiter.stop() })
	return s
}

func doJSON(t *testing.T, s *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		buf = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func registerUser(t *testing.T, s *Server, email string) string {
	t.Helper()

	rec := doJSON(t, s, http.MethodPost, "/register", "", map[string]string{
		"email":    email,
		"name":     "Test User",
		"password": "s3cretpass",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register returned %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode register response: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("register returned empty token")
	}
	return resp.Token
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestServer(t)

	registerUser(t, s, "alice@example.com")

	rec := doJSON(t, s, http.MethodPost, "/register", "", map[string]string{
		"email": "alice@example.com", "password": "s3cretpass",
	})
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate register returned %d, want 409", rec.Code)
	}

	rec = doJSON(t, s, http.MethodPost, "/register", "", map[string]string{
		"email": "not-an-email", "password": "s3cretpass",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad email returned %d, want 400", rec.Code)
	}

	rec = doJSON(t, s, http.MethodPost, "/login", "", map[string]string{
		"email": "alice@example.com", "password": "wrong-password",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong password returned %d, want 401", rec.Code)
	}

	rec = doJSON(t, s, http.MethodPost, "/login", "", map[string]string{
		"email": "Alice@Example.com", "password": "s3cretpass",
	})
	if rec.Code != http.StatusOK {
		t.Errorf("login returned %d, want 200: %s", rec.Code, rec.Body.String())
	}
}

func TestAPIRequiresToken(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/api/transactions", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated request returned %d, want 401", rec.Code)
	}
}

func TestTransactionLifecycle(t *testing.T) {
	s := newTestServer(t)
	token := registerUser(t, s, "tx@example.com")

	rec := doJSON(t, s, http.MethodPost, "/api/transactions", token, map[string]any{
		"type": "expense", "amount": "42.50", "category": "groceries", "date": "2026-08-10",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create returned %d: %s", rec.Code, rec.Body.String())
	}
	var created struct {
		ID     int64 `json:"id"`
		Amount struct {
			Cents int64 `json:"cents"`
		} `json:"amount"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if created.Amount.Cents != 4250 {
		t.Errorf("created cents = %d, want 4250", created.Amount.Cents)
	}

	rec = doJSON(t, s, http.MethodPost, "/api/transactions", token, map[string]any{
		"type": "expense", "amount": "-5.00", "category": "groceries", "date": "2026-08-10",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("negative amount returned %d, want 400", rec.Code)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/transactions?type=expense&year=2026&month=8", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list returned %d", rec.Code)
	}
	var list []json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("list returned %d rows, want 1", len(list))
	}

	path := fmt.Sprintf("/api/transactions/%d", created.ID)
	rec = doJSON(t, s, http.MethodPut, path, token, map[string]any{
		"type": "expense", "amount": "50.00", "category": "groceries", "date": "2026-08-11",
	})
	if rec.Code != http.StatusOK {
		t.Errorf("update returned %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, s, http.MethodDelete, path, token, nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete returned %d, want 204", rec.Code)
	}
	rec = doJSON(t, s, http.MethodDelete, path, token, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete returned %d, want 404", rec.Code)
	}
}

func TestBillPaymentsAndVariance(t *testing.T) {
	s := newTestServer(t)
	token := registerUser(t, s, "bills@example.com")

	rec := doJSON(t, s, http.MethodPost, "/api/bills", token, map[string]any{
		"name": "Electric", "category": "utilities", "target": "100.00", "due_day": 15,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create bill returned %d: %s", rec.Code, rec.Body.String())
	}
	var bill struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &bill); err != nil {
		t.Fatalf("decode bill: %v", err)
	}

	paidAt := time.Now().UTC().Format("2006-01-02")
	rec = doJSON(t, s, http.MethodPost, fmt.Sprintf("/api/bills/%d/payments", bill.ID), token, map[string]any{
		"amount": "110.00", "paid_at": paidAt,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create payment returned %d: %s", rec.Code, rec.Body.String())
	}
	var payment struct {
		MonthKey string `json:"month_key"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payment); err != nil {
		t.Fatalf("decode payment: %v", err)
	}
	if want := paidAt[:7]; payment.MonthKey != want {
		t.Errorf("month_key = %q, want %q", payment.MonthKey, want)
	}

	rec = doJSON(t, s, http.MethodGet, fmt.Sprintf("/api/bills/%d/variance?months=1", bill.ID), token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("variance returned %d: %s", rec.Code, rec.Body.String())
	}
	var variance struct {
		Months   int `json:"months"`
		Variance struct {
			Cents int64 `json:"cents"`
		} `json:"variance"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &variance); err != nil {
		t.Fatalf("decode variance: %v", err)
	}
	if variance.Months != 1 || variance.Variance.Cents != 1000 {
		t.Errorf("variance = %+v, want months 1 and 1000 cents over", variance)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/bills/9999/variance", token, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown bill variance returned %d, want 404", rec.Code)
	}
}

func TestPropertyOwnership(t *testing.T) {
	s := newTestServer(t)
	owner := registerUser(t, s, "owner@example.com")
	other := registerUser(t, s, "other@example.com")

	rec := doJSON(t, s, http.MethodPost, "/api/properties", owner, map[string]any{
		"name": "Duplex", "address": "12 Main St", "purchase_price": "250000.00", "current_value": "300000.00",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create property returned %d: %s", rec.Code, rec.Body.String())
	}
	var prop struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &prop); err != nil {
		t.Fatalf("decode property: %v", err)
	}

	rec = doJSON(t, s, http.MethodPost, fmt.Sprintf("/api/properties/%d/rental-income", prop.ID), owner, map[string]any{
		"amount": "1500.00", "received_at": "2026-08-01",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create rental income returned %d: %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, s, http.MethodPost, fmt.Sprintf("/api/properties/%d/expenses", prop.ID), owner, map[string]any{
		"amount": "400.00", "category": "repairs", "incurred_at": "2026-08-05",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create expense returned %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, s, http.MethodGet, fmt.Sprintf("/api/properties/%d", prop.ID), owner, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get property returned %d", rec.Code)
	}
	var detail struct {
		NetCashflow struct {
			Cents int64 `json:"cents"`
		} `json:"net_cashflow"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &detail); err != nil {
		t.Fatalf("decode detail: %v", err)
	}
	if detail.NetCashflow.Cents != 110000 {
		t.Errorf("net cashflow = %d, want 110000", detail.NetCashflow.Cents)
	}

	// A different user sees someone else's property as missing.
	rec = doJSON(t, s, http.MethodGet, fmt.Sprintf("/api/properties/%d", prop.ID), other, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("foreign get returned %d, want 404", rec.Code)
	}
	rec = doJSON(t, s, http.MethodPost, fmt.Sprintf("/api/properties/%d/loans", prop.ID), other, map[string]any{
		"lender": "Bank", "balance": "100000.00", "rate_percent": 4.5, "monthly_payment": "900.00",
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("foreign loan create returned %d, want 404", rec.Code)
	}
}

func TestTrackerUpdateWithoutStatus(t *testing.T) {
	s := newTestServer(t)
	token := registerUser(t, s, "trackers@example.com")

	rec := doJSON(t, s, http.MethodPost, "/api/opportunities", token, map[string]any{
		"title": "Side project", "amount": "1000.00", "status": "resolved",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create opportunity returned %d: %s", rec.Code, rec.Body.String())
	}
	var opp struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &opp); err != nil {
		t.Fatalf("decode opportunity: %v", err)
	}

	// A status-less update falls back to pending rather than writing ''.
	rec = doJSON(t, s, http.MethodPut, fmt.Sprintf("/api/opportunities/%d", opp.ID), token, map[string]any{
		"title": "Side project", "amount": "1500.00",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status-less update returned %d: %s", rec.Code, rec.Body.String())
	}
	var updated struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decode update: %v", err)
	}
	if updated.Status != "pending" {
		t.Errorf("status = %q, want pending", updated.Status)
	}

	rec = doJSON(t, s, http.MethodPost, "/api/targets", token, map[string]any{
		"name": "House fund", "target": "20000.00", "saved": "500.00",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create target returned %d: %s", rec.Code, rec.Body.String())
	}
	var target struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &target); err != nil {
		t.Fatalf("decode target: %v", err)
	}
	rec = doJSON(t, s, http.MethodPut, fmt.Sprintf("/api/targets/%d", target.ID), token, map[string]any{
		"name": "House fund", "target": "20000.00", "saved": "1000.00",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status-less target update returned %d: %s", rec.Code, rec.Body.String())
	}
}

func TestBudgetSummaryEndpoint(t *testing.T) {
	s := newTestServer(t)
	token := registerUser(t, s, "budget@example.com")

	seed := []map[string]any{
		{"type": "income", "amount": "5000.00", "category": "salary", "date": "2026-07-01"},
		{"type": "expense", "amount": "1200.00", "category": "rent", "date": "2026-07-03"},
		{"type": "expense", "amount": "800.00", "category": "groceries", "date": "2026-07-10"},
	}
	for _, tx := range seed {
		rec := doJSON(t, s, http.MethodPost, "/api/transactions", token, tx)
		if rec.Code != http.StatusCreated {
			t.Fatalf("seed returned %d: %s", rec.Code, rec.Body.String())
		}
	}

	rec := doJSON(t, s, http.MethodGet, "/api/budget/summary?year=2026&month=7", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("summary returned %d: %s", rec.Code, rec.Body.String())
	}
	var sum struct {
		Income struct {
			Cents int64 `json:"cents"`
		} `json:"income"`
		Expenses struct {
			Cents int64 `json:"cents"`
		} `json:"expenses"`
		SavingsRate float64 `json:"savings_rate"`
		ByCategory  []struct {
			Category string `json:"category"`
		} `json:"by_category"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &sum); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if sum.Income.Cents != 500000 || sum.Expenses.Cents != 200000 {
		t.Errorf("summary totals = %d/%d, want 500000/200000", sum.Income.Cents, sum.Expenses.Cents)
	}
	if sum.SavingsRate != 60 {
		t.Errorf("savings rate = %v, want 60", sum.SavingsRate)
	}
	if len(sum.ByCategory) != 2 || sum.ByCategory[0].Category != "rent" {
		t.Errorf("by_category = %+v, want rent first", sum.ByCategory)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/budget/summary?month=13", token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid month returned %d, want 400", rec.Code)
	}
}

func TestCredentialEndpoints(t *testing.T) {
	s := newTestServer(t)
	token := registerUser(t, s, "ai@example.com")

	rec := doJSON(t, s, http.MethodPost, "/api/ai/credentials", token, map[string]string{
		"provider": "openai", "api_key": "sk-test-1234abcd",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("upsert returned %d: %s", rec.Code, rec.Body.String())
	}
	var cred struct {
		MaskedKey string `json:"masked_key"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &cred); err != nil {
		t.Fatalf("decode credential: %v", err)
	}
	if !strings.HasSuffix(cred.MaskedKey, "abcd") || strings.Contains(cred.MaskedKey, "sk-test") {
		t.Errorf("masked key = %q, want last 4 chars only", cred.MaskedKey)
	}

	rec = doJSON(t, s, http.MethodPost, "/api/ai/credentials", token, map[string]string{
		"provider": "skynet", "api_key": "whatever",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown provider returned %d, want 400", rec.Code)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/ai/credentials", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list returned %d", rec.Code)
	}
	var creds []struct {
		Provider  string `json:"provider"`
		MaskedKey string `json:"masked_key"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &creds); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(creds) != 1 || creds[0].Provider != "openai" || strings.Contains(creds[0].MaskedKey, "sk-test") {
		t.Errorf("credential list = %+v", creds)
	}

	rec = doJSON(t, s, http.MethodDelete, "/api/ai/credentials/openai", token, nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete returned %d, want 204", rec.Code)
	}

	// With no stored keys, generation has nothing to run against.
	rec = doJSON(t, s, http.MethodPost, "/api/ai/insights", token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("generate without credentials returned %d, want 400", rec.Code)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/ai/insights", token, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("list insights returned %d", rec.Code)
	}
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("healthz returned %d", rec.Code)
	}
	rec = doJSON(t, s, http.MethodGet, "/readyz", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("readyz returned %d", rec.Code)
	}
}
