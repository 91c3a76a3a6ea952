package http

import (
	"net/http"

	"fintrack/internal/core"
)

type categoryTotalJSON struct {
	Category string    `json:"category"`
	Total    moneyJSON `json:"total"`
	Count    int       `json:"count"`
}

type budgetSummaryResponse struct {
	Year        int                 `json:"year"`
	Month       int                 `json:"month"`
	Income      moneyJSON           `json:"income"`
	Expenses    moneyJSON           `json:"expenses"`
	Savings     moneyJSON           `json:"savings"`
	SavingsRate float64             `json:"savings_rate"`
	ByCategory  []categoryTotalJSON `json:"by_category"`
}

func toBudgetSummaryResponse(sum core.BudgetSummary) budgetSummaryResponse {
	out := budgetSummaryResponse{
		Year:        sum.Year,
		Month:       sum.Month,
		Income:      toMoneyJSON(sum.Income),
		Expenses:    toMoneyJSON(sum.Expenses),
		Savings:     toMoneyJSON(sum.Savings),
		SavingsRate: sum.SavingsRate,
		ByCategory:  make([]categoryTotalJSON, 0, len(sum.ByCategory)),
	}
	for _, c := range sum.ByCategory {
		out.ByCategory = append(out.ByCategory, categoryTotalJSON{
			Category: c.Category,
			Total:    toMoneyJSON(c.Total),
			Count:    c.Count,
		})
	}
	return out
}

func (s *Server) handleBudgetSummary(w http.ResponseWriter, r *http.Request) {
	year, month, err := parseYearMonth(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	sum, err := s.budget.Summary(r.Context(), mustUserID(r), year, month)
	if err != nil {
		s.respondStorageError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toBudgetSummaryResponse(sum))
}

type suggestionResponse struct {
	Type             string    `json:"type"`
	Category         string    `json:"category,omitempty"`
	Message          string    `json:"message"`
	PotentialSavings moneyJSON `json:"potential_savings"`
}

func (s *Server) handleBudgetSuggestions(w http.ResponseWriter, r *http.Request) {
	year, month, err := parseYearMonth(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	suggestions, err := s.budget.Suggestions(r.Context(), mustUserID(r), year, month)
	if err != nil {
		s.respondStorageError(w, r, err)
		return
	}

	out := make([]suggestionResponse, 0, len(suggestions))
	for _, sug := range suggestions {
		out = append(out, suggestionResponse{
			Type:             sug.Type,
			Category:         sug.Category,
			Message:          sug.Message,
			PotentialSavings: toMoneyJSON(sug.PotentialSavings),
		})
	}
	respondJSON(w, http.StatusOK, out)
}

type trendPointResponse struct {
	Month       string    `json:"month"`
	Income      moneyJSON `json:"income"`
	Expenses    moneyJSON `json:"expenses"`
	Savings     moneyJSON `json:"savings"`
	SavingsRate float64   `json:"savings_rate"`
}

func (s *Server) handleBudgetTrends(w http.ResponseWriter, r *http.Request) {
	months, err := parseQueryInt(r, "months", "invalid months", 6)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	points, err := s.budget.Trends(r.Context(), mustUserID(r), months)
	if err != nil {
		s.respondStorageError(w, r, err)
		return
	}

	out := make([]trendPointResponse, 0, len(points))
	for _, p := range points {
		out = append(out, trendPointResponse{
			Month:       p.MonthKey,
			Income:      toMoneyJSON(p.Income),
			Expenses:    toMoneyJSON(p.Expenses),
			Savings:     toMoneyJSON(p.Savings),
			SavingsRate: p.SavingsRate,
		})
	}
	respondJSON(w, http.StatusOK, out)
}
