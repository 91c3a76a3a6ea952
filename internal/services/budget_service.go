// Package services holds the orchestration layer between HTTP handlers,
// storage and the AI providers.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// BudgetService derives summaries, suggestions, trends, net worth and bill
// variance from raw rows. Nothing here is persisted except snapshots.
type BudgetService struct {
	storage *storage.SQLiteRepository
}

func NewBudgetService(storage *storage.SQLiteRepository) *BudgetService {
	return &BudgetService{storage: storage}
}

// Summary aggregates one month. The income and category queries run
// concurrently.
func (s *BudgetService) Summary(ctx context.Context, userID int64, year, month int) (core.BudgetSummary, error) {
	var (
		income     core.Money
		byCategory []core.CategoryTotal
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		income, err = s.storage.MonthlyIncomeTotal(gctx, userID, year, month)
		return err
	})
	g.Go(func() error {
		var err error
		byCategory, err = s.storage.MonthlyCategoryTotals(gctx, userID, year, month)
		return err
	})
	if err := g.Wait(); err != nil {
		return core.BudgetSummary{}, fmt.Errorf("aggregate month: %w", err)
	}

	return core.NewBudgetSummary(year, month, income, byCategory), nil
}

// Suggestions runs the threshold rules over one month's aggregates.
func (s *BudgetService) Suggestions(ctx context.Context, userID int64, year, month int) ([]core.Suggestion, error) {
	summary, err := s.Summary(ctx, userID, year, month)
	if err != nil {
		return nil, err
	}
	return core.EvaluateSuggestions(summary.Income, summary.ByCategory), nil
}

// TrendPoint is one month of the income/expense series.
type TrendPoint struct {
	MonthKey    string
	Income      core.Money
	Expenses    core.Money
	Savings     core.Money
	SavingsRate float64
}

// Trends returns the last n months of totals, oldest first. Months without
// transactions are omitted.
func (s *BudgetService) Trends(ctx context.Context, userID int64, months int) ([]TrendPoint, error) {
	return s.trendsAt(ctx, userID, months, time.Now().UTC())
}

func (s *BudgetService) trendsAt(ctx context.Context, userID int64, months int, now time.Time) ([]TrendPoint, error) {
	if months < 1 {
		months = 6
	}
	fromKey := windowStartKey(now, months)

	totals, err := s.storage.MonthlyTrendTotals(ctx, userID, fromKey)
	if err != nil {
		return nil, err
	}

	out := make([]TrendPoint, 0, len(totals))
	for _, m := range totals {
		savings := m.Income.Cents - m.Expenses.Cents
		var rate float64
		if m.Income.Cents > 0 {
			rate, _ = decimal.NewFromInt(savings).
				Div(decimal.NewFromInt(m.Income.Cents)).
				Mul(decimal.NewFromInt(100)).
				Round(2).Float64()
		}
		out = append(out, TrendPoint{
			MonthKey:    m.MonthKey,
			Income:      m.Income,
			Expenses:    m.Expenses,
			Savings:     core.Money{Cents: savings},
			SavingsRate: rate,
		})
	}
	return out, nil
}

// NetWorth aggregates the current breakdown on demand.
func (s *BudgetService) NetWorth(ctx context.Context, userID int64) (core.NetWorthBreakdown, error) {
	assets, liabilities, err := s.storage.NetWorthSums(ctx, userID)
	if err != nil {
		return core.NetWorthBreakdown{}, err
	}
	return core.NewNetWorthBreakdown(core.Money{Cents: assets}, core.Money{Cents: liabilities}), nil
}

// SnapshotNetWorth persists the current total for the history series.
func (s *BudgetService) SnapshotNetWorth(ctx context.Context, userID int64) (core.NetWorthSnapshot, error) {
	breakdown, err := s.NetWorth(ctx, userID)
	if err != nil {
		return core.NetWorthSnapshot{}, err
	}

	snapshot := core.NetWorthSnapshot{
		UserID:     userID,
		Total:      breakdown.Total,
		RecordedAt: time.Now().UTC(),
	}
	id, err := s.storage.CreateNetWorthSnapshot(ctx, snapshot)
	if err != nil {
		return core.NetWorthSnapshot{}, err
	}
	snapshot.ID = id
	return snapshot, nil
}

// BillVariance compares the trailing window of payments against the bill's
// monthly target.
func (s *BudgetService) BillVariance(ctx context.Context, userID, billID int64, months int) (core.BillVariance, error) {
	return s.billVarianceAt(ctx, userID, billID, months, time.Now().UTC())
}

func (s *BudgetService) billVarianceAt(ctx context.Context, userID, billID int64, months int, now time.Time) (core.BillVariance, error) {
	if months < 1 {
		months = 3
	}

	bill, err := s.storage.GetBill(ctx, userID, billID)
	if err != nil {
		return core.BillVariance{}, err
	}

	actual, err := s.storage.SumBillPaymentsSince(ctx, billID, windowStartKey(now, months))
	if err != nil {
		return core.BillVariance{}, err
	}

	return core.NewBillVariance(billID, bill.Target, core.Money{Cents: actual}, months), nil
}

// windowStartKey returns the YYYY-MM key of the oldest month in a trailing
// window ending at now. Anchoring to the first of the month keeps AddDate
// from normalizing forward on month-end dates (Mar 31 − 1 month is Feb 31,
// which Go renders as Mar 3).
func windowStartKey(now time.Time, months int) string {
	anchor := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	from := anchor.AddDate(0, -(months - 1), 0)
	return fmt.Sprintf("%04d-%02d", from.Year(), int(from.Month()))
}

// IncomeSourceSummary is one income source with its monthly equivalent.
type IncomeSourceSummary struct {
	Source  core.IncomeSource
	Monthly core.Money
}

// IncomeSummary converts every income source to its monthly equivalent and
// totals them.
func (s *BudgetService) IncomeSummary(ctx context.Context, userID int64) ([]IncomeSourceSummary, core.Money, error) {
	sources, err := s.storage.ListIncomeSources(ctx, userID)
	if err != nil {
		return nil, core.Money{}, err
	}

	out := make([]IncomeSourceSummary, 0, len(sources))
	var total int64
	for _, src := range sources {
		monthly := core.MonthlyEquivalent(src.Amount, src.Frequency)
		total += monthly.Cents
		out = append(out, IncomeSourceSummary{Source: src, Monthly: monthly})
	}
	return out, core.Money{Cents: total}, nil
}
