package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

func newTestStorage(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "services_test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seedUser(t *testing.T, repo *storage.SQLiteRepository, email string) int64 {
	t.Helper()
	id, err := repo.CreateUser(context.Background(), core.User{Email: email, PasswordHash: "x"})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return id
}

func seedTx(t *testing.T, repo *storage.SQLiteRepository, userID int64, typ core.TransactionType, cents int64, category string, d core.Date) {
	t.Helper()
	if _, err := repo.CreateTransaction(context.Background(), core.Transaction{
		UserID: userID, Type: typ, Amount: core.Money{Cents: cents}, Category: category, Date: d,
	}); err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
}

func TestSummary(t *testing.T) {
	repo := newTestStorage(t)
	svc := NewBudgetService(repo)
	userID := seedUser(t, repo, "summary@example.com")

	seedTx(t, repo, userID, core.Income, 500000, "salary", core.NewDate(2026, 3, 1))
	seedTx(t, repo, userID, core.Expense, 150000, "rent", core.NewDate(2026, 3, 2))
	seedTx(t, repo, userID, core.Expense, 50000, "groceries", core.NewDate(2026, 3, 10))
	// Other month, must not leak in.
	seedTx(t, repo, userID, core.Expense, 999900, "rent", core.NewDate(2026, 2, 2))

	got, err := svc.Summary(context.Background(), userID, 2026, 3)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if got.Income.Cents != 500000 || got.Expenses.Cents != 200000 {
		t.Errorf("totals: income %d expenses %d", got.Income.Cents, got.Expenses.Cents)
	}
	if got.Savings.Cents != 300000 {
		t.Errorf("savings: want 300000, got %d", got.Savings.Cents)
	}
	if got.SavingsRate != 60 {
		t.Errorf("savings rate: want 60, got %v", got.SavingsRate)
	}
	if len(got.ByCategory) != 2 || got.ByCategory[0].Category != "rent" {
		t.Errorf("categories: %+v", got.ByCategory)
	}
}

func TestSuggestionsHighSpending(t *testing.T) {
	repo := newTestStorage(t)
	svc := NewBudgetService(repo)
	userID := seedUser(t, repo, "rules@example.com")

	// 35% of income on one category triggers the high-spending rule.
	seedTx(t, repo, userID, core.Income, 1000000, "salary", core.NewDate(2026, 3, 1))
	seedTx(t, repo, userID, core.Expense, 350000, "dining", core.NewDate(2026, 3, 5))

	got, err := svc.Suggestions(context.Background(), userID, 2026, 3)
	if err != nil {
		t.Fatalf("Suggestions: %v", err)
	}

	var haveHighSpending bool
	for _, sug := range got {
		if sug.Type == core.SuggestionHighSpending && sug.Category == "dining" {
			haveHighSpending = true
			if sug.PotentialSavings.Cents != 52500 {
				t.Errorf("potential savings: want 52500, got %d", sug.PotentialSavings.Cents)
			}
		}
	}
	if !haveHighSpending {
		t.Errorf("expected high_spending suggestion, got %+v", got)
	}
}

func TestTrends(t *testing.T) {
	repo := newTestStorage(t)
	svc := NewBudgetService(repo)
	userID := seedUser(t, repo, "trends@example.com")

	now := time.Date(2026, 5, 15, 0, 0, 0, 0, time.UTC)
	seedTx(t, repo, userID, core.Income, 400000, "salary", core.NewDate(2026, 4, 1))
	seedTx(t, repo, userID, core.Expense, 100000, "rent", core.NewDate(2026, 4, 3))
	seedTx(t, repo, userID, core.Income, 400000, "salary", core.NewDate(2026, 5, 1))
	// Outside the 3-month window.
	seedTx(t, repo, userID, core.Expense, 50000, "rent", core.NewDate(2026, 1, 3))

	got, err := svc.trendsAt(context.Background(), userID, 3, now)
	if err != nil {
		t.Fatalf("trendsAt: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("want 2 months in window, got %+v", got)
	}
	if got[0].MonthKey != "2026-04" || got[1].MonthKey != "2026-05" {
		t.Errorf("order: %+v", got)
	}
	if got[0].Savings.Cents != 300000 || got[0].SavingsRate != 75 {
		t.Errorf("april point: %+v", got[0])
	}
}

func TestTrendsMonthEndWindow(t *testing.T) {
	repo := newTestStorage(t)
	svc := NewBudgetService(repo)
	userID := seedUser(t, repo, "month-end@example.com")

	// Mar 31 − 1 month would normalize to Mar 3 without the first-of-month
	// anchor, dropping February from a 2-month window.
	now := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	seedTx(t, repo, userID, core.Income, 200000, "salary", core.NewDate(2026, 2, 10))
	seedTx(t, repo, userID, core.Income, 300000, "salary", core.NewDate(2026, 3, 10))

	got, err := svc.trendsAt(context.Background(), userID, 2, now)
	if err != nil {
		t.Fatalf("trendsAt: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("want Feb and Mar in window, got %+v", got)
	}
	if got[0].MonthKey != "2026-02" || got[1].MonthKey != "2026-03" {
		t.Errorf("order: %+v", got)
	}
}

func TestNetWorthAndSnapshot(t *testing.T) {
	repo := newTestStorage(t)
	svc := NewBudgetService(repo)
	userID := seedUser(t, repo, "nw@example.com")
	ctx := context.Background()

	if _, err := repo.CreateAccount(ctx, core.Account{
		UserID: userID, Name: "Checking", Type: core.Checking, Balance: core.Money{Cents: 300000},
	}); err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	if _, err := repo.CreateAccount(ctx, core.Account{
		UserID: userID, Name: "Card", Type: core.CreditCard, Balance: core.Money{Cents: -50000},
	}); err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}

	breakdown, err := svc.NetWorth(ctx, userID)
	if err != nil {
		t.Fatalf("NetWorth: %v", err)
	}
	if breakdown.Total.Cents != 250000 {
		t.Errorf("total: want 250000, got %d", breakdown.Total.Cents)
	}

	snap, err := svc.SnapshotNetWorth(ctx, userID)
	if err != nil {
		t.Fatalf("SnapshotNetWorth: %v", err)
	}
	if snap.Total.Cents != 250000 || snap.ID == 0 {
		t.Errorf("snapshot: %+v", snap)
	}

	history, err := repo.ListNetWorthSnapshots(ctx, userID)
	if err != nil {
		t.Fatalf("ListNetWorthSnapshots: %v", err)
	}
	if len(history) != 1 {
		t.Errorf("snapshot not persisted: %+v", history)
	}
}

func TestBillVariance(t *testing.T) {
	repo := newTestStorage(t)
	svc := NewBudgetService(repo)
	userID := seedUser(t, repo, "variance@example.com")
	ctx := context.Background()

	billID, err := repo.CreateBill(ctx, core.Bill{
		UserID: userID, Name: "Power", Target: core.Money{Cents: 10000}, DueDay: 1,
	})
	if err != nil {
		t.Fatalf("CreateBill: %v", err)
	}
	for _, p := range []struct {
		d     core.Date
		cents int64
	}{
		{core.NewDate(2026, 4, 2), 11000},
		{core.NewDate(2026, 5, 2), 12000},
		{core.NewDate(2026, 6, 2), 10000},
		{core.NewDate(2026, 1, 2), 99999}, // outside window
	} {
		if _, err := repo.CreateBillPayment(ctx, userID, core.BillPayment{
			BillID: billID, Amount: core.Money{Cents: p.cents}, PaidAt: p.d,
		}); err != nil {
			t.Fatalf("CreateBillPayment: %v", err)
		}
	}

	now := time.Date(2026, 6, 20, 0, 0, 0, 0, time.UTC)
	got, err := svc.billVarianceAt(ctx, userID, billID, 3, now)
	if err != nil {
		t.Fatalf("billVarianceAt: %v", err)
	}
	if got.Target.Cents != 30000 || got.Actual.Cents != 33000 {
		t.Errorf("window sums: %+v", got)
	}
	if got.Variance.Cents != 3000 || got.VariancePercent != 10 {
		t.Errorf("variance: %+v", got)
	}

	if _, err := svc.BillVariance(ctx, userID+1, billID, 3); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("foreign bill: want ErrNotFound, got %v", err)
	}

	// Month-end anchor: a 2-month window ending Mar 31 still reaches into
	// February.
	waterID, err := repo.CreateBill(ctx, core.Bill{
		UserID: userID, Name: "Water", Target: core.Money{Cents: 5000}, DueDay: 1,
	})
	if err != nil {
		t.Fatalf("CreateBill: %v", err)
	}
	for _, p := range []struct {
		d     core.Date
		cents int64
	}{
		{core.NewDate(2026, 2, 15), 8000},
		{core.NewDate(2026, 3, 15), 9000},
		{core.NewDate(2026, 1, 15), 7777}, // outside window
	} {
		if _, err := repo.CreateBillPayment(ctx, userID, core.BillPayment{
			BillID: waterID, Amount: core.Money{Cents: p.cents}, PaidAt: p.d,
		}); err != nil {
			t.Fatalf("CreateBillPayment: %v", err)
		}
	}
	got, err = svc.billVarianceAt(ctx, userID, waterID, 2, time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("billVarianceAt: %v", err)
	}
	if got.Actual.Cents != 17000 {
		t.Errorf("month-end window sum: want 17000, got %d", got.Actual.Cents)
	}
}

func TestIncomeSummary(t *testing.T) {
	repo := newTestStorage(t)
	svc := NewBudgetService(repo)
	userID := seedUser(t, repo, "income@example.com")
	ctx := context.Background()

	sources := []core.IncomeSource{
		{UserID: userID, Name: "Job", Amount: core.Money{Cents: 100000}, Frequency: core.Biweekly},
		{UserID: userID, Name: "Bonus", Amount: core.Money{Cents: 120000}, Frequency: core.Annually},
	}
	for _, src := range sources {
		if _, err := repo.CreateIncomeSource(ctx, src); err != nil {
			t.Fatalf("CreateIncomeSource: %v", err)
		}
	}

	items, total, err := svc.IncomeSummary(ctx, userID)
	if err != nil {
		t.Fatalf("IncomeSummary: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("want 2 sources, got %+v", items)
	}
	// biweekly 100000 * 26/12 = 216667, annually 120000 / 12 = 10000
	if total.Cents != 226667 {
		t.Errorf("monthly total: want 226667, got %d", total.Cents)
	}
}
