package http

import (
	"net/http"
	"strings"

	"fintrack/internal/core"
)

type billRequest struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Target   string `json:"target"`
	DueDay   int    `json:"due_day"`
}

type billResponse struct {
	ID       int64     `json:"id"`
	Name     string    `json:"name"`
	Category string    `json:"category,omitempty"`
	Target   moneyJSON `json:"target"`
	DueDay   int       `json:"due_day"`
}

func toBillResponse(b core.Bill) billResponse {
	return billResponse{
		ID:       b.ID,
		Name:     b.Name,
		Category: b.Category,
		Target:   toMoneyJSON(b.Target),
		DueDay:   b.DueDay,
	}
}

func billFromRequest(userID, id int64, req billRequest) (core.Bill, error) {
	cents, err := core.ParseSignedAmountToCents(req.Target)
	if err != nil {
		return core.Bill{}, err
	}

	b := core.Bill{
		ID:       id,
		UserID:   userID,
		Name:     strings.TrimSpace(req.Name),
		Category: strings.TrimSpace(req.Category),
		Target:   core.Money{Cents: cents},
		DueDay:   req.DueDay,
	}
	if err := b.Validate(); err != nil {
		return core.Bill{}, err
	}
	return b, nil
}

func (s *Server) handleCreateBill(w http.ResponseWriter, r *http.Request) {
	var req billRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	b, err := billFromRequest(mustUserID(r), 0, req)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := s.storage.CreateBill(r.Context(), b)
	if err != nil {
		s.respondStorageError(w, r, err)
		return
	}
	b.ID = id
	respondJSON(w, http.StatusCreated, toBillResponse(b))
}

func (s *Server) handleListBills(w http.ResponseWriter, r *http.Request) {
	bills, err := s.storage.ListBills(r.Context(), mustUserID(r))
	if err != nil {
		s.respondStorageError(w, r, err)
		return
	}
	out := make([]billResponse, 0, len(bills))
	for _, b := range bills {
		out = append(out, toBillResponse(b))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpdateBill(w http.ResponseWriter, r *http.Request) {
	var req billRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	b, err := billFromRequest(mustUserID(r), pathID(r, "id"), req)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.storage.UpdateBill(r.Context(), b); err != nil {
		s.respondStorageError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toBillResponse(b))
}

func (s *Server) handleDeleteBill(w http.ResponseWriter, r *http.Request) {
	if err := s.storage.DeleteBill(r.Context(), mustUserID(r), pathID(r, "id")); err != nil {
		s.respondStorageError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type billPaymentRequest struct {
	Amount string `json:"amount"`
	PaidAt string `json:"paid_at"`
}

type billPaymentResponse struct {
	ID       int64     `json:"id"`
	BillID   int64     `json:"bill_id"`
	Amount   moneyJSON `json:"amount"`
	PaidAt   string    `json:"paid_at"`
	MonthKey string    `json:"month_key"`
}

func toBillPaymentResponse(p core.BillPayment) billPaymentResponse {
	return billPaymentResponse{
		ID:       p.ID,
		BillID:   p.BillID,
		Amount:   toMoneyJSON(p.Amount),
		PaidAt:   p.PaidAt.Format("2006-01-02"),
		MonthKey: p.MonthKey,
	}
}

func (s *Server) handleCreateBillPayment(w http.ResponseWriter, r *http.Request) {
	var req billPaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	cents, err := core.ParseAmountToCents(req.Amount)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	paidAt, err := parseDate(req.PaidAt)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	p := core.BillPayment{
		BillID: pathID(r, "id"),
		Amount: core.Money{Cents: cents},
		PaidAt: paidAt,
	}
	if err := p.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := s.storage.CreateBillPayment(r.Context(), mustUserID(r), p)
	if err != nil {
		s.respondStorageError(w, r, err)
		return
	}
	p.ID = id
	p.MonthKey = p.PaidAt.MonthKey()
	respondJSON(w, http.StatusCreated, toBillPaymentResponse(p))
}

func (s *Server) handleListBillPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := s.storage.ListBillPayments(r.Context(), mustUserID(r), pathID(r, "id"))
	if err != nil {
		s.respondStorageError(w, r, err)
		return
	}
	out := make([]billPaymentResponse, 0, len(payments))
	for _, p := range payments {
		out = append(out, toBillPaymentResponse(p))
	}
	respondJSON(w, http.StatusOK, out)
}

type billVarianceResponse struct {
	BillID          int64     `json:"bill_id"`
	Months          int       `json:"months"`
	Target          moneyJSON `json:"target"`
	Actual          moneyJSON `json:"actual"`
	Variance        moneyJSON `json:"variance"`
	VariancePercent float64   `json:"variance_percent"`
}

func (s *Server) handleBillVariance(w http.ResponseWriter, r *http.Request) {
	months, err := parseQueryInt(r, "months", "invalid months", 3)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	v, err := s.budget.BillVariance(r.Context(), mustUserID(r), pathID(r, "id"), months)
	if err != nil {
		s.respondStorageError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, billVarianceResponse{
		BillID:          v.BillID,
		Months:          v.Months,
		Target:          toMoneyJSON(v.Target),
		Actual:          toMoneyJSON(v.Actual),
		Variance:        toMoneyJSON(v.Variance),
		VariancePercent: v.VariancePercent,
	})
}
