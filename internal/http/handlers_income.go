package http

import (
	"net/http"
	"strings"

	"fintrack/internal/core"
)

type incomeSourceRequest struct {
	Name      string `json:"name"`
	Amount    string `json:"amount"`
	Frequency string `json:"frequency"`
}

type incomeSourceResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Amount    moneyJSON `json:"amount"`
	Frequency string    `json:"frequency"`
}

func toIncomeSourceResponse(src core.IncomeSource) incomeSourceResponse {
	return incomeSourceResponse{
		ID:        src.ID,
		Name:      src.Name,
		Amount:    toMoneyJSON(src.Amount),
		Frequency: string(src.Frequency),
	}
}

func incomeSourceFromRequest(userID, id int64, req incomeSourceRequest) (core.IncomeSource, error) {
	cents, err := core.ParseAmountToCents(req.Amount)
	if err != nil {
		return core.IncomeSource{}, err
	}

	src := core.IncomeSource{
		ID:        id,
		UserID:    userID,
		Name:      strings.TrimSpace(req.Name),
		Amount:    core.Money{Cents: cents},
		Frequency: core.Frequency(strings.TrimSpace(req.Frequency)),
	}
	if err := src.Validate(); err != nil {
		return core.IncomeSource{}, err
	}
	return src, nil
}

func (s *Server) handleCreateIncomeSource(w http.ResponseWriter, r *http.Request) {
	var req incomeSourceRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	src, err := incomeSourceFromRequest(mustUserID(r), 0, req)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := s.storage.CreateIncomeSource(r.Context(), src)
	if err != nil {
		s.respondStorageError(w, r, err)
		return
	}
	src.ID = id
	respondJSON(w, http.StatusCreated, toIncomeSourceResponse(src))
}

func (s *Server) handleListIncomeSources(w http.ResponseWriter, r *http.Request) {
	sources, err := s.storage.ListIncomeSources(r.Context(), mustUserID(r))
	if err != nil {
		s.respondStorageError(w, r, err)
		return
	}
	out := make([]incomeSourceResponse, 0, len(sources))
	for _, src := range sources {
		out = append(out, toIncomeSourceResponse(src))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpdateIncomeSource(w http.ResponseWriter, r *http.Request) {
	var req incomeSourceRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	src, err := incomeSourceFromRequest(mustUserID(r), pathID(r, "id"), req)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.storage.UpdateIncomeSource(r.Context(), src); err != nil {
		s.respondStorageError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toIncomeSourceResponse(src))
}

func (s *Server) handleDeleteIncomeSource(w http.ResponseWriter, r *http.Request) {
	if err := s.storage.DeleteIncomeSource(r.Context(), mustUserID(r), pathID(r, "id")); err != nil {
		s.respondStorageError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type incomeSummaryItem struct {
	Source  incomeSourceResponse `json:"source"`
	Monthly moneyJSON            `json:"monthly_equivalent"`
}

type incomeSummaryResponse struct {
	Sources      []incomeSummaryItem `json:"sources"`
	MonthlyTotal moneyJSON           `json:"monthly_total"`
}

func (s *Server) handleIncomeSummary(w http.ResponseWriter, r *http.Request) {
	items, total, err := s.budget.IncomeSummary(r.Context(), mustUserID(r))
	if err != nil {
		s.respondStorageError(w, r, err)
		return
	}

	out := incomeSummaryResponse{
		Sources:      make([]incomeSummaryItem, 0, len(items)),
		MonthlyTotal: toMoneyJSON(total),
	}
	for _, item := range items {
		out.Sources = append(out.Sources, incomeSummaryItem{
			Source:  toIncomeSourceResponse(item.Source),
			Monthly: toMoneyJSON(item.Monthly),
		})
	}
	respondJSON(w, http.StatusOK, out)
}
