package http

import (
	"net/http"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

type transactionRequest struct {
	Type        string `json:"type"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Date        string `json:"date"`
}

type transactionResponse struct {
	ID          int64     `json:"id"`
	Type        string    `json:"type"`
	Amount      moneyJSON `json:"amount"`
	Category    string    `json:"category"`
	Description string    `json:"description,omitempty"`
	Date        string    `json:"date"`
}

func toTransactionResponse(t core.Transaction) transactionResponse {
	return transactionResponse{
		ID:          t.ID,
		Type:        string(t.Type),
		Amount:      toMoneyJSON(t.Amount),
		Category:    t.Category,
		Description: t.Description,
		Date:        t.Date.Format("2006-01-02"),
	}
}

// transactionFromRequest validates and converts the wire form.
func transactionFromRequest(userID, id int64, req transactionRequest) (core.Transaction, error) {
	cents, err := core.ParseAmountToCents(req.Amount)
	if err != nil {
		return core.Transaction{}, err
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return core.Transaction{}, err
	}

	t := core.Transaction{
		ID:          id,
		UserID:      userID,
		Type:        core.TransactionType(strings.TrimSpace(req.Type)),
		Amount:      core.Money{Cents: cents},
		Category:    strings.TrimSpace(req.Category),
		Description: strings.TrimSpace(req.Description),
		Date:        date,
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	t, err := transactionFromRequest(mustUserID(r), 0, req)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := s.storage.CreateTransaction(r.Context(), t)
	if err != nil {
		s.respondStorageError(w, r, err)
		return
	}
	t.ID = id
	respondJSON(w, http.StatusCreated, toTransactionResponse(t))
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := storage.TransactionFilter{
		Type:     core.TransactionType(strings.TrimSpace(q.Get("type"))),
		Category: strings.TrimSpace(q.Get("category")),
	}
	if filter.Type != "" && !filter.Type.Valid() {
		respondError(w, http.StatusBadRequest, "invalid type filter")
		return
	}
	if q.Get("year") != "" || q.Get("month") != "" {
		year, month, err := parseYearMonth(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		filter.Year = year
		if q.Get("month") != "" {
			filter.Month = month
		}
	}

	list, err := s.storage.ListTransactions(r.Context(), mustUserID(r), filter)
	if err != nil {
		s.respondStorageError(w, r, err)
		return
	}

	out := make([]transactionResponse, 0, len(list))
	for _, t := range list {
		out = append(out, toTransactionResponse(t))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	t, err := transactionFromRequest(mustUserID(r), pathID(r, "id"), req)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.storage.UpdateTransaction(r.Context(), t); err != nil {
		s.respondStorageError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toTransactionResponse(t))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.storage.DeleteTransaction(r.Context(), mustUserID(r), pathID(r, "id")); err != nil {
		s.respondStorageError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.storage.ListCategories(r.Context(), mustUserID(r))
	if err != nil {
		s.respondStorageError(w, r, err)
		return
	}
	if categories == nil {
		categories = []string{}
	}
	respondJSON(w, http.StatusOK, categories)
}
