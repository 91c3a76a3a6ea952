package core

import "testing"

func findSuggestion(suggestions []Suggestion, typ, category string) *Suggestion {
	for i := range suggestions {
		if suggestions[i].Type == typ && suggestions[i].Category == category {
			return &suggestions[i]
		}
	}
	return nil
}

func TestHighSpendingRule(t *testing.T) {
	income := Money{Cents: 1000000} // $10,000

	t.Run("35 percent of income triggers", func(t *testing.T) {
		got := EvaluateSuggestions(income, []CategoryTotal{
			{Category: "dining", Total: Money{Cents: 350000}, Count: 5},
		})
		s := findSuggestion(got, SuggestionHighSpending, "dining")
		if s == nil {
			t.Fatal("expected high_spending suggestion for dining")
		}
		// 15% of $3,500
		if s.PotentialSavings.Cents != 52500 {
			t.Errorf("potential savings = %d, want 52500", s.PotentialSavings.Cents)
		}
	})

	t.Run("20 percent of income does not trigger", func(t *testing.T) {
		got := EvaluateSuggestions(income, []CategoryTotal{
			{Category: "dining", Total: Money{Cents: 200000}, Count: 5},
		})
		if s := findSuggestion(got, SuggestionHighSpending, "dining"); s != nil {
			t.Errorf("unexpected high_spending suggestion: %+v", s)
		}
	})

	t.Run("zero income never triggers", func(t *testing.T) {
		got := EvaluateSuggestions(Money{}, []CategoryTotal{
			{Category: "dining", Total: Money{Cents: 350000}, Count: 5},
		})
		if s := findSuggestion(got, SuggestionHighSpending, "dining"); s != nil {
			t.Errorf("unexpected high_spending suggestion with zero income: %+v", s)
		}
	})
}

func TestSubscriptionBloatRule(t *testing.T) {
	income := Money{Cents: 1000000}

	t.Run("many small charges trigger", func(t *testing.T) {
		got := EvaluateSuggestions(income, []CategoryTotal{
			{Category: "streaming", Total: Money{Cents: 36000}, Count: 12}, // avg $30
		})
		s := findSuggestion(got, SuggestionSubscriptionBloat, "streaming")
		if s == nil {
			t.Fatal("expected subscription_bloat suggestion")
		}
		// 20% of $360
		if s.PotentialSavings.Cents != 7200 {
			t.Errorf("potential savings = %d, want 7200", s.PotentialSavings.Cents)
		}
	})

	t.Run("few transactions do not trigger", func(t *testing.T) {
		got := EvaluateSuggestions(income, []CategoryTotal{
			{Category: "streaming", Total: Money{Cents: 9000}, Count: 3},
		})
		if s := findSuggestion(got, SuggestionSubscriptionBloat, "streaming"); s != nil {
			t.Errorf("unexpected subscription_bloat suggestion: %+v", s)
		}
	})

	t.Run("large average does not trigger", func(t *testing.T) {
		got := EvaluateSuggestions(income, []CategoryTotal{
			{Category: "travel", Total: Money{Cents: 120000}, Count: 12}, // avg $100
		})
		if s := findSuggestion(got, SuggestionSubscriptionBloat, "travel"); s != nil {
			t.Errorf("unexpected subscription_bloat suggestion: %+v", s)
		}
	})
}

func TestSavingsGoalRule(t *testing.T) {
	t.Run("shortfall sized to the gap", func(t *testing.T) {
		// Income $5,000, expenses $4,500: savings $500 against a $1,000 target.
		got := EvaluateSuggestions(Money{Cents: 500000}, []CategoryTotal{
			{Category: "rent", Total: Money{Cents: 300000}, Count: 1},
			{Category: "food", Total: Money{Cents: 150000}, Count: 8},
		})
		s := findSuggestion(got, SuggestionSavingsGoal, "")
		if s == nil {
			t.Fatal("expected savings_goal suggestion")
		}
		if s.PotentialSavings.Cents != 50000 {
			t.Errorf("shortfall = %d, want 50000", s.PotentialSavings.Cents)
		}
	})

	t.Run("healthy savings rate does not trigger", func(t *testing.T) {
		got := EvaluateSuggestions(Money{Cents: 500000}, []CategoryTotal{
			{Category: "rent", Total: Money{Cents: 300000}, Count: 1},
		})
		if s := findSuggestion(got, SuggestionSavingsGoal, ""); s != nil {
			t.Errorf("unexpected savings_goal suggestion: %+v", s)
		}
	})
}
