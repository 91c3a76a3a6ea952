package http

import (
	"net/http"
	"strings"

	"fintrack/internal/core"
)

type opportunityRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Status      string `json:"status"`
}

type opportunityResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Amount      moneyJSON `json:"amount"`
	Status      string    `json:"status"`
}

func opportunityFromRequest(userID, id int64, req opportunityRequest) (core.Opportunity, error) {
	cents, err := core.ParseSignedAmountToCents(req.Amount)
	if err != nil {
		return core.Opportunity{}, err
	}

	o := core.Opportunity{
		ID:          id,
		UserID:      userID,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Amount:      core.Money{Cents: cents},
		Status:      core.Status(strings.TrimSpace(req.Status)),
	}
	if err := o.Validate(); err != nil {
		return core.Opportunity{}, err
	}
	return o, nil
}

func toOpportunityResponse(o core.Opportunity) opportunityResponse {
	status := string(o.Status)
	if status == "" {
		status = string(core.StatusPending)
	}
	return opportunityResponse{
		ID:          o.ID,
		Title:       o.Title,
		Description: o.Description,
		Amount:      toMoneyJSON(o.Amount),
		Status:      status,
	}
}

func (s *Server) handleCreateOpportunity(w http.ResponseWriter, r *http.Request) {
	var req opportunityRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	o, err := opportunityFromRequest(mustUserID(r), 0, req)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := s.storage.CreateOpportunity(r.Context(), o)
	if err != nil {
		s.respondStorageError(w, r, err)
		return
	}
	o.ID = id
	respondJSON(w, http.StatusCreated, toOpportunityResponse(o))
}

func (s *Server) handleListOpportunities(w http.ResponseWriter, r *http.Request) {
	opportunities, err := s.storage.ListOpportunities(r.Context(), mustUserID(r))
	if err != nil {
		s.respondStorageError(w, r, err)
		return
	}
	out := make([]opportunityResponse, 0, len(opportunities))
	for _, o := range opportunities {
		out = append(out, toOpportunityResponse(o))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpdateOpportunity(w http.ResponseWriter, r *http.Request) {
	var req opportunityRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	o, err := opportunityFromRequest(mustUserID(r), pathID(r, "id"), req)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.storage.UpdateOpportunity(r.Context(), o); err != nil {
		s.respondStorageError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toOpportunityResponse(o))
}

func (s *Server) handleDeleteOpportunity(w http.ResponseWriter, r *http.Request) {
	if err := s.storage.DeleteOpportunity(r.Context(), mustUserID(r), pathID(r, "id")); err != nil {
		s.respondStorageError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type targetRequest struct {
	Name     string `json:"name"`
	Target   string `json:"target"`
	Saved    string `json:"saved"`
	Deadline string `json:"deadline"`
	Status   string `json:"status"`
}

type targetResponse struct {
	ID       int64     `json:"id"`
	Name     string    `json:"name"`
	Target   moneyJSON `json:"target"`
	Saved    moneyJSON `json:"saved"`
	Deadline string    `json:"deadline,omitempty"`
	Status   string    `json:"status"`
	Progress float64   `json:"progress_percent"`
}

func targetFromRequest(userID, id int64, req targetRequest) (core.FinancialTarget, error) {
	target, err := core.ParseAmountToCents(req.Target)
	if err != nil {
		return core.FinancialTarget{}, err
	}
	saved := int64(0)
	if req.Saved != "" {
		if saved, err = core.ParseSignedAmountToCents(req.Saved); err != nil {
			return core.FinancialTarget{}, err
		}
	}

	t := core.FinancialTarget{
		ID:     id,
		UserID: userID,
		Name:   strings.TrimSpace(req.Name),
		Target: core.Money{Cents: target},
		Saved:  core.Money{Cents: saved},
		Status: core.Status(strings.TrimSpace(req.Status)),
	}
	if req.Deadline != "" {
		if t.Deadline, err = parseDate(req.Deadline); err != nil {
			return core.FinancialTarget{}, err
		}
	}
	if err := t.Validate(); err != nil {
		return core.FinancialTarget{}, err
	}
	return t, nil
}

func toTargetResponse(t core.FinancialTarget) targetResponse {
	status := string(t.Status)
	if status == "" {
		status = string(core.StatusPending)
	}
	out := targetResponse{
		ID:     t.ID,
		Name:   t.Name,
		Target: toMoneyJSON(t.Target),
		Saved:  toMoneyJSON(t.Saved),
		Status: status,
	}
	if !t.Deadline.IsZero() {
		out.Deadline = t.Deadline.Format("2006-01-02")
	}
	if t.Target.Cents > 0 {
		out.Progress = float64(t.Saved.Cents) / float64(t.Target.Cents) * 100
	}
	return out
}

func (s *Server) handleCreateTarget(w http.ResponseWriter, r *http.Request) {
	var req targetRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	t, err := targetFromRequest(mustUserID(r), 0, req)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := s.storage.CreateFinancialTarget(r.Context(), t)
	if err != nil {
		s.respondStorageError(w, r, err)
		return
	}
	t.ID = id
	respondJSON(w, http.StatusCreated, toTargetResponse(t))
}

func (s *Server) handleListTargets(w http.ResponseWriter, r *http.Request) {
	targets, err := s.storage.ListFinancialTargets(r.Context(), mustUserID(r))
	if err != nil {
		s.respondStorageError(w, r, err)
		return
	}
	out := make([]targetResponse, 0, len(targets))
	for _, t := range targets {
		out = append(out, toTargetResponse(t))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpdateTarget(w http.ResponseWriter, r *http.Request) {
	var req targetRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	t, err := targetFromRequest(mustUserID(r), pathID(r, "id"), req)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.storage.UpdateFinancialTarget(r.Context(), t); err != nil {
		s.respondStorageError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toTargetResponse(t))
}

func (s *Server) handleDeleteTarget(w http.ResponseWriter, r *http.Request) {
	if err := s.storage.DeleteFinancialTarget(r.Context(), mustUserID(r), pathID(r, "id")); err != nil {
		s.respondStorageError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type creditScoreRequest struct {
	Score      int    `json:"score"`
	Bureau     string `json:"bureau"`
	RecordedAt string `json:"recorded_at"`
}

type creditScoreResponse struct {
	ID         int64  `json:"id"`
	Score      int    `json:"score"`
	Bureau     string `json:"bureau,omitempty"`
	RecordedAt string `json:"recorded_at"`
}

func (s *Server) handleCreateCreditScore(w http.ResponseWriter, r *http.Request) {
	var req creditScoreRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	recordedAt, err := parseDate(req.RecordedAt)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	c := core.CreditScore{
		UserID:     mustUserID(r),
		Score:      req.Score,
		Bureau:     strings.TrimSpace(req.Bureau),
		RecordedAt: recordedAt,
	}
	if err := c.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := s.storage.CreateCreditScore(r.Context(), c)
	if err != nil {
		s.respondStorageError(w, r, err)
		return
	}
	c.ID = id
	respondJSON(w, http.StatusCreated, toCreditScoreResponse(c))
}

func toCreditScoreResponse(c core.CreditScore) creditScoreResponse {
	return creditScoreResponse{
		ID:         c.ID,
		Score:      c.Score,
		Bureau:     c.Bureau,
		RecordedAt: c.RecordedAt.Format("2006-01-02"),
	}
}

func (s *Server) handleListCreditScores(w http.ResponseWriter, r *http.Request) {
	scores, err := s.storage.ListCreditScores(r.Context(), mustUserID(r))
	if err != nil {
		s.respondStorageError(w, r, err)
		return
	}
	out := make([]creditScoreResponse, 0, len(scores))
	for _, c := range scores {
		out = append(out, toCreditScoreResponse(c))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteCreditScore(w http.ResponseWriter, r *http.Request) {
	if err := s.storage.DeleteCreditScore(r.Context(), mustUserID(r), pathID(r, "id")); err != nil {
		s.respondStorageError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
