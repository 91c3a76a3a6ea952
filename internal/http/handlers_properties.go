package http

import (
	"net/http"
	"strings"

	"fintrack/internal/core"
)

type propertyRequest struct {
	Name          string `json:"name"`
	Address       string `json:"address"`
	PurchasePrice string `json:"purchase_price"`
	CurrentValue  string `json:"current_value"`
}

type propertyResponse struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Address       string    `json:"address,omitempty"`
	PurchasePrice moneyJSON `json:"purchase_price"`
	CurrentValue  moneyJSON `json:"current_value"`
}

func propertyFromRequest(userID, id int64, req propertyRequest) (core.Property, error) {
	purchase, err := core.ParseSignedAmountToCents(req.PurchasePrice)
	if err != nil {
		return core.Property{}, err
	}
	current, err := core.ParseSignedAmountToCents(req.CurrentValue)
	if err != nil {
		return core.Property{}, err
	}

	p := core.Property{
		ID:            id,
		UserID:        userID,
		Name:          strings.TrimSpace(req.Name),
		Address:       strings.TrimSpace(req.Address),
		PurchasePrice: core.Money{Cents: purchase},
		CurrentValue:  core.Money{Cents: current},
	}
	if err := p.Validate(); err != nil {
		return core.Property{}, err
	}
	return p, nil
}

func toPropertyResponse(p core.Property) propertyResponse {
	return propertyResponse{
		ID:            p.ID,
		Name:          p.Name,
		Address:       p.Address,
		PurchasePrice: toMoneyJSON(p.PurchasePrice),
		CurrentValue:  toMoneyJSON(p.CurrentValue),
	}
}

func (s *Server) handleCreateProperty(w http.ResponseWriter, r *http.Request) {
	var req propertyRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	p, err := propertyFromRequest(mustUserID(r), 0, req)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := s.storage.CreateProperty(r.Context(), p)
	if err != nil {
		s.respondStorageError(w, r, err)
		return
	}
	p.ID = id
	respondJSON(w, http.StatusCreated, toPropertyResponse(p))
}

func (s *Server) handleListProperties(w http.ResponseWriter, r *http.Request) {
	properties, err := s.storage.ListProperties(r.Context(), mustUserID(r))
	if err != nil {
		s.respondStorageError(w, r, err)
		return
	}
	out := make([]propertyResponse, 0, len(properties))
	for _, p := range properties {
		out = append(out, toPropertyResponse(p))
	}
	respondJSON(w, http.StatusOK, out)
}

type propertyDetailResponse struct {
	propertyResponse
	RentalIncomeTotal moneyJSON `json:"rental_income_total"`
	ExpenseTotal      moneyJSON `json:"expense_total"`
	NetCashflow       moneyJSON `json:"net_cashflow"`
}

func (s *Server) handleGetProperty(w http.ResponseWriter, r *http.Request) {
	userID, propertyID := mustUserID(r), pathID(r, "id")

	p, err := s.storage.GetProperty(r.Context(), userID, propertyID)
	if err != nil {
		s.respondStorageError(w, r, err)
		return
	}
	income, expenses, err := s.storage.PropertyCashflowSums(r.Context(), userID, propertyID)
	if err != nil {
		s.respondStorageError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, propertyDetailResponse{
		propertyResponse:  toPropertyResponse(*p),
		RentalIncomeTotal: toMoneyJSON(core.Money{Cents: income}),
		ExpenseTotal:      toMoneyJSON(core.Money{Cents: expenses}),
		NetCashflow:       toMoneyJSON(core.Money{Cents: income - expenses}),
	})
}

func (s *Server) handleUpdateProperty(w http.ResponseWriter, r *http.Request) {
	var req propertyRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	p, err := propertyFromRequest(mustUserID(r), pathID(r, "id"), req)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.storage.UpdateProperty(r.Context(), p); err != nil {
		s.respondStorageError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toPropertyResponse(p))
}

func (s *Server) handleDeleteProperty(w http.ResponseWriter, r *http.Request) {
	if err := s.storage.DeleteProperty(r.Context(), mustUserID(r), pathID(r, "id")); err != nil {
		s.respondStorageError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type propertyLoanRequest struct {
	Lender         string  `json:"lender"`
	Balance        string  `json:"balance"`
	RatePercent    float64 `json:"rate_percent"`
	MonthlyPayment string  `json:"monthly_payment"`
}

type propertyLoanResponse struct {
	ID             int64     `json:"id"`
	Lender         string    `json:"lender,omitempty"`
	Balance        moneyJSON `json:"balance"`
	RatePercent    float64   `json:"rate_percent"`
	MonthlyPayment moneyJSON `json:"monthly_payment"`
}

func (s *Server) handleCreatePropertyLoan(w http.ResponseWriter, r *http.Request) {
	var req propertyLoanRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	balance, err := core.ParseSignedAmountToCents(req.Balance)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	payment, err := core.ParseSignedAmountToCents(req.MonthlyPayment)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.RatePercent < 0 || req.RatePercent > 100 {
		respondError(w, http.StatusBadRequest, "rate_percent must be between 0 and 100")
		return
	}

	l := core.PropertyLoan{
		PropertyID:     pathID(r, "id"),
		Lender:         strings.TrimSpace(req.Lender),
		Balance:        core.Money{Cents: balance},
		RatePercent:    req.RatePercent,
		MonthlyPayment: core.Money{Cents: payment},
	}
	id, err := s.storage.CreatePropertyLoan(r.Context(), mustUserID(r), l)
	if err != nil {
		s.respondStorageError(w, r, err)
		return
	}
	l.ID = id
	respondJSON(w, http.StatusCreated, toPropertyLoanResponse(l))
}

func toPropertyLoanResponse(l core.PropertyLoan) propertyLoanResponse {
	return propertyLoanResponse{
		ID:             l.ID,
		Lender:         l.Lender,
		Balance:        toMoneyJSON(l.Balance),
		RatePercent:    l.RatePercent,
		MonthlyPayment: toMoneyJSON(l.MonthlyPayment),
	}
}

func (s *Server) handleListPropertyLoans(w http.ResponseWriter, r *http.Request) {
	loans, err := s.storage.ListPropertyLoans(r.Context(), mustUserID(r), pathID(r, "id"))
	if err != nil {
		s.respondStorageError(w, r, err)
		return
	}
	out := make([]propertyLoanResponse, 0, len(loans))
	for _, l := range loans {
		out = append(out, toPropertyLoanResponse(l))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeletePropertyLoan(w http.ResponseWriter, r *http.Request) {
	err := s.storage.DeletePropertyLoan(r.Context(), mustUserID(r), pathID(r, "id"), pathID(r, "childID"))
	if err != nil {
		s.respondStorageError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type rentalIncomeRequest struct {
	Amount     string `json:"amount"`
	ReceivedAt string `json:"received_at"`
}

type rentalIncomeResponse struct {
	ID         int64     `json:"id"`
	Amount     moneyJSON `json:"amount"`
	ReceivedAt string    `json:"received_at"`
}

func (s *Server) handleCreateRentalIncome(w http.ResponseWriter, r *http.Request) {
	var req rentalIncomeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	cents, err := core.ParseAmountToCents(req.Amount)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	receivedAt, err := parseDate(req.ReceivedAt)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ri := core.RentalIncome{
		PropertyID: pathID(r, "id"),
		Amount:     core.Money{Cents: cents},
		ReceivedAt: receivedAt,
	}
	id, err := s.storage.CreateRentalIncome(r.Context(), mustUserID(r), ri)
	if err != nil {
		s.respondStorageError(w, r, err)
		return
	}
	ri.ID = id
	respondJSON(w, http.StatusCreated, rentalIncomeResponse{
		ID:         ri.ID,
		Amount:     toMoneyJSON(ri.Amount),
		ReceivedAt: ri.ReceivedAt.Format("2006-01-02"),
	})
}

func (s *Server) handleListRentalIncome(w http.ResponseWriter, r *http.Request) {
	list, err := s.storage.ListRentalIncome(r.Context(), mustUserID(r), pathID(r, "id"))
	if err != nil {
		s.respondStorageError(w, r, err)
		return
	}
	out := make([]rentalIncomeResponse, 0, len(list))
	for _, ri := range list {
		out = append(out, rentalIncomeResponse{
			ID:         ri.ID,
			Amount:     toMoneyJSON(ri.Amount),
			ReceivedAt: ri.ReceivedAt.Format("2006-01-02"),
		})
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteRentalIncome(w http.ResponseWriter, r *http.Request) {
	err := s.storage.DeleteRentalIncome(r.Context(), mustUserID(r), pathID(r, "id"), pathID(r, "childID"))
	if err != nil {
		s.respondStorageError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type propertyExpenseRequest struct {
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	Description string `json:"description"`
	IncurredAt  string `json:"incurred_at"`
}

type propertyExpenseResponse struct {
	ID          int64     `json:"id"`
	Amount      moneyJSON `json:"amount"`
	Category    string    `json:"category,omitempty"`
	Description string    `json:"description,omitempty"`
	IncurredAt  string    `json:"incurred_at"`
}

func (s *Server) handleCreatePropertyExpense(w http.ResponseWriter, r *http.Request) {
	var req propertyExpenseRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	cents, err := core.ParseAmountToCents(req.Amount)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	incurredAt, err := parseDate(req.IncurredAt)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	e := core.PropertyExpense{
		PropertyID:  pathID(r, "id"),
		Amount:      core.Money{Cents: cents},
		Category:    strings.TrimSpace(req.Category),
		Description: strings.TrimSpace(req.Description),
		IncurredAt:  incurredAt,
	}
	id, err := s.storage.CreatePropertyExpense(r.Context(), mustUserID(r), e)
	if err != nil {
		s.respondStorageError(w, r, err)
		return
	}
	e.ID = id
	respondJSON(w, http.StatusCreated, toPropertyExpenseResponse(e))
}

func toPropertyExpenseResponse(e core.PropertyExpense) propertyExpenseResponse {
	return propertyExpenseResponse{
		ID:          e.ID,
		Amount:      toMoneyJSON(e.Amount),
		Category:    e.Category,
		Description: e.Description,
		IncurredAt:  e.IncurredAt.Format("2006-01-02"),
	}
}

func (s *Server) handleListPropertyExpenses(w http.ResponseWriter, r *http.Request) {
	list, err := s.storage.ListPropertyExpenses(r.Context(), mustUserID(r), pathID(r, "id"))
	if err != nil {
		s.respondStorageError(w, r, err)
		return
	}
	out := make([]propertyExpenseResponse, 0, len(list))
	for _, e := range list {
		out = append(out, toPropertyExpenseResponse(e))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeletePropertyExpense(w http.ResponseWriter, r *http.Request) {
	err := s.storage.DeletePropertyExpense(r.Context(), mustUserID(r), pathID(r, "id"), pathID(r, "childID"))
	if err != nil {
		s.respondStorageError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type tenantRequest struct {
	Name       string `json:"name"`
	Rent       string `json:"rent"`
	LeaseStart string `json:"lease_start"`
	LeaseEnd   string `json:"lease_end"`
}

type tenantResponse struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Rent       moneyJSON `json:"rent"`
	LeaseStart string    `json:"lease_start,omitempty"`
	LeaseEnd   string    `json:"lease_end,omitempty"`
}

func (s *Server) handleCreatePropertyTenant(w http.ResponseWriter, r *http.Request) {
	var req tenantRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		respondError(w, http.StatusBadRequest, core.ErrEmptyName.Error())
		return
	}
	rent, err := core.ParseSignedAmountToCents(req.Rent)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	t := core.PropertyTenant{
		PropertyID: pathID(r, "id"),
		Name:       strings.TrimSpace(req.Name),
		Rent:       core.Money{Cents: rent},
	}
	if req.LeaseStart != "" {
		if t.LeaseStart, err = parseDate(req.LeaseStart); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if req.LeaseEnd != "" {
		if t.LeaseEnd, err = parseDate(req.LeaseEnd); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	id, err := s.storage.CreatePropertyTenant(r.Context(), mustUserID(r), t)
	if err != nil {
		s.respondStorageError(w, r, err)
		return
	}
	t.ID = id
	respondJSON(w, http.StatusCreated, toTenantResponse(t))
}

func toTenantResponse(t core.PropertyTenant) tenantResponse {
	out := tenantResponse{ID: t.ID, Name: t.Name, Rent: toMoneyJSON(t.Rent)}
	if !t.LeaseStart.IsZero() {
		out.LeaseStart = t.LeaseStart.Format("2006-01-02")
	}
	if !t.LeaseEnd.IsZero() {
		out.LeaseEnd = t.LeaseEnd.Format("2006-01-02")
	}
	return out
}

func (s *Server) handleListPropertyTenants(w http.ResponseWriter, r *http.Request) {
	tenants, err := s.storage.ListPropertyTenants(r.Context(), mustUserID(r), pathID(r, "id"))
	if err != nil {
		s.respondStorageError(w, r, err)
		return
	}
	out := make([]tenantResponse, 0, len(tenants))
	for _, t := range tenants {
		out = append(out, toTenantResponse(t))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeletePropertyTenant(w http.ResponseWriter, r *http.Request) {
	err := s.storage.DeletePropertyTenant(r.Context(), mustUserID(r), pathID(r, "id"), pathID(r, "childID"))
	if err != nil {
		s.respondStorageError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
