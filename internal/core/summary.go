package core

import "github.com/shopspring/decimal"

// CategoryTotal is an expense amount aggregated by category, with the
// number of transactions that produced it.
type CategoryTotal struct {
	Category string
	Total    Money
	Count    int
}

// BudgetSummary is a compact derivation for a specific year+month.
// Everything here is computed from raw rows at read time; nothing is
// persisted.
type BudgetSummary struct {
	Year        int
	Month       int // 1-12
	Income      Money
	Expenses    Money
	Savings     Money
	SavingsRate float64 // percent of income
	ByCategory  []CategoryTotal
}

// NewBudgetSummary derives the monthly totals and savings rate from the
// month's income figure and per-category expense totals.
func NewBudgetSummary(year, month int, income Money, byCategory []CategoryTotal) BudgetSummary {
	var expenses int64
	for _, c := range byCategory {
		expenses += c.Total.Cents
	}
	savings := income.Cents - expenses

	var rate float64
	if income.Cents > 0 {
		rate, _ = decimal.NewFromInt(savings).
			Div(decimal.NewFromInt(income.Cents)).
			Mul(decimal.NewFromInt(100)).
			Round(2).Float64()
	}

	return BudgetSummary{
		Year:        year,
		Month:       month,
		Income:      Money{Cents: income.Cents},
		Expenses:    Money{Cents: expenses},
		Savings:     Money{Cents: savings},
		SavingsRate: rate,
		ByCategory:  byCategory,
	}
}

// NetWorthBreakdown holds the on-demand asset/liability aggregation.
type NetWorthBreakdown struct {
	Assets      Money // checking + savings + retirement + asset values
	Liabilities Money // absolute sum of debt balances
	Total       Money
}

// NewNetWorthBreakdown computes net worth from the two signed sums.
// Liabilities are passed as an absolute total.
func NewNetWorthBreakdown(assets, liabilities Money) NetWorthBreakdown {
	return NetWorthBreakdown{
		Assets:      assets,
		Liabilities: liabilities,
		Total:       Money{Cents: assets.Cents - liabilities.Cents},
	}
}

// BillVariance compares a trailing window of payment sums against the
// bill's fixed monthly target.
type BillVariance struct {
	BillID          int64
	Months          int
	Target          Money // target for the whole window
	Actual          Money // payment sum over the window
	Variance        Money
	VariancePercent float64
}

// NewBillVariance derives the variance for a window of months. Zero-target
// bills report 0% rather than dividing by zero.
func NewBillVariance(billID int64, monthlyTarget, actual Money, months int) BillVariance {
	if months < 1 {
		months = 1
	}
	target := monthlyTarget.Cents * int64(months)
	variance := actual.Cents - target

	var pct float64
	if target != 0 {
		pct, _ = decimal.NewFromInt(variance).
			Div(decimal.NewFromInt(target)).
			Mul(decimal.NewFromInt(100)).
			Round(2).Float64()
	}

	return BillVariance{
		BillID:          billID,
		Months:          months,
		Target:          Money{Cents: target},
		Actual:          actual,
		Variance:        Money{Cents: variance},
		VariancePercent: pct,
	}
}
