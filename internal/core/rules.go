package core

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Suggestion types produced by the budget rules.
const (
	SuggestionHighSpending      = "high_spending"
	SuggestionSubscriptionBloat = "subscription_bloat"
	SuggestionSavingsGoal       = "savings_goal"
)

// Suggestion is one triggered budget rule. Rules are independent and
// non-exclusive; a single category can trigger more than one.
type Suggestion struct {
	Type             string
	Category         string // empty for whole-budget suggestions
	Message          string
	PotentialSavings Money
}

var (
	highSpendingShare  = decimal.New(30, -2) // category > 30% of income
	highSpendingCut    = decimal.New(15, -2) // suggest a 15% reduction
	bloatMaxAvgCents   = int64(5000)         // average transaction under $50
	bloatMinCount      = 10                  // more than 10 transactions
	bloatCut           = decimal.New(20, -2) // suggest 20% savings
	targetSavingsShare = decimal.New(20, -2) // 20% savings-rate target
)

// EvaluateSuggestions applies the fixed threshold rules to a month's
// category totals and income figure. Categories with no income context
// only trigger the subscription rule.
func EvaluateSuggestions(income Money, byCategory []CategoryTotal) []Suggestion {
	var out []Suggestion
	incomeDec := decimal.NewFromInt(income.Cents)

	var expenses int64
	for _, c := range byCategory {
		expenses += c.Total.Cents

		if income.Cents > 0 {
			share := decimal.NewFromInt(c.Total.Cents).Div(incomeDec)
			if share.GreaterThan(highSpendingShare) {
				saving := decimal.NewFromInt(c.Total.Cents).Mul(highSpendingCut).Round(0).IntPart()
				pct, _ := share.Mul(decimal.NewFromInt(100)).Round(0).Float64()
				out = append(out, Suggestion{
					Type:             SuggestionHighSpending,
					Category:         c.Category,
					Message:          fmt.Sprintf("%s takes %.0f%% of your income; a 15%% reduction would free up funds", c.Category, pct),
					PotentialSavings: Money{Cents: saving},
				})
			}
		}

		if c.Count > bloatMinCount && c.Count > 0 {
			avg := c.Total.Cents / int64(c.Count)
			if avg < bloatMaxAvgCents {
				saving := decimal.NewFromInt(c.Total.Cents).Mul(bloatCut).Round(0).IntPart()
				out = append(out, Suggestion{
					Type:             SuggestionSubscriptionBloat,
					Category:         c.Category,
					Message:          fmt.Sprintf("%s has %d small charges this month; reviewing subscriptions could save about 20%%", c.Category, c.Count),
					PotentialSavings: Money{Cents: saving},
				})
			}
		}
	}

	if income.Cents > 0 {
		savings := income.Cents - expenses
		targetSavings := incomeDec.Mul(targetSavingsShare).Round(0).IntPart()
		if savings < targetSavings {
			shortfall := targetSavings - savings
			out = append(out, Suggestion{
				Type:             SuggestionSavingsGoal,
				Message:          fmt.Sprintf("Savings rate is below the 20%% target; saving %.2f more would close the gap", Money{Cents: shortfall}.Float()),
				PotentialSavings: Money{Cents: shortfall},
			})
		}
	}

	return out
}
