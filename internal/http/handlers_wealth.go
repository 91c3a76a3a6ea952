package http

import (
	"net/http"
	"strings"
	"time"

	"fintrack/internal/core"
)

type accountRequest struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Balance string `json:"balance"`
}

type accountResponse struct {
	ID      int64     `json:"id"`
	Name    string    `json:"name"`
	Type    string    `json:"type"`
	Balance moneyJSON `json:"balance"`
}

func accountFromRequest(userID, id int64, req accountRequest) (core.Account, error) {
	cents, err := core.ParseSignedAmountToCents(req.Balance)
	if err != nil {
		return core.Account{}, err
	}

	a := core.Account{
		ID:      id,
		UserID:  userID,
		Name:    strings.TrimSpace(req.Name),
		Type:    core.AccountType(strings.TrimSpace(req.Type)),
		Balance: core.Money{Cents: cents},
	}
	if err := a.Validate(); err != nil {
		return core.Account{}, err
	}
	return a, nil
}

func toAccountResponse(a core.Account) accountResponse {
	return accountResponse{ID: a.ID, Name: a.Name, Type: string(a.Type), Balance: toMoneyJSON(a.Balance)}
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	a, err := accountFromRequest(mustUserID(r), 0, req)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := s.storage.CreateAccount(r.Context(), a)
	if err != nil {
		s.respondStorageError(w, r, err)
		return
	}
	a.ID = id
	respondJSON(w, http.StatusCreated, toAccountResponse(a))
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.storage.ListAccounts(r.Context(), mustUserID(r))
	if err != nil {
		s.respondStorageError(w, r, err)
		return
	}
	out := make([]accountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toAccountResponse(a))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	a, err := accountFromRequest(mustUserID(r), pathID(r, "id"), req)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.storage.UpdateAccount(r.Context(), a); err != nil {
		s.respondStorageError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toAccountResponse(a))
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := s.storage.DeleteAccount(r.Context(), mustUserID(r), pathID(r, "id")); err != nil {
		s.respondStorageError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type retirementRequest struct {
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	Balance string `json:"balance"`
}

type retirementResponse struct {
	ID      int64     `json:"id"`
	Name    string    `json:"name"`
	Kind    string    `json:"kind,omitempty"`
	Balance moneyJSON `json:"balance"`
}

func retirementFromRequest(userID, id int64, req retirementRequest) (core.RetirementAccount, error) {
	cents, err := core.ParseSignedAmountToCents(req.Balance)
	if err != nil {
		return core.RetirementAccount{}, err
	}

	a := core.RetirementAccount{
		ID:      id,
		UserID:  userID,
		Name:    strings.TrimSpace(req.Name),
		Kind:    strings.TrimSpace(req.Kind),
		Balance: core.Money{Cents: cents},
	}
	if err := a.Validate(); err != nil {
		return core.RetirementAccount{}, err
	}
	return a, nil
}

func toRetirementResponse(a core.RetirementAccount) retirementResponse {
	return retirementResponse{ID: a.ID, Name: a.Name, Kind: a.Kind, Balance: toMoneyJSON(a.Balance)}
}

func (s *Server) handleCreateRetirementAccount(w http.ResponseWriter, r *http.Request) {
	var req retirementRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	a, err := retirementFromRequest(mustUserID(r), 0, req)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := s.storage.CreateRetirementAccount(r.Context(), a)
	if err != nil {
		s.respondStorageError(w, r, err)
		return
	}
	a.ID = id
	respondJSON(w, http.StatusCreated, toRetirementResponse(a))
}

func (s *Server) handleListRetirementAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.storage.ListRetirementAccounts(r.Context(), mustUserID(r))
	if err != nil {
		s.respondStorageError(w, r, err)
		return
	}
	out := make([]retirementResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toRetirementResponse(a))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpdateRetirementAccount(w http.ResponseWriter, r *http.Request) {
	var req retirementRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	a, err := retirementFromRequest(mustUserID(r), pathID(r, "id"), req)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.storage.UpdateRetirementAccount(r.Context(), a); err != nil {
		s.respondStorageError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toRetirementResponse(a))
}

func (s *Server) handleDeleteRetirementAccount(w http.ResponseWriter, r *http.Request) {
	if err := s.storage.DeleteRetirementAccount(r.Context(), mustUserID(r), pathID(r, "id")); err != nil {
		s.respondStorageError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type assetRequest struct {
	Name  string `json:"name"`
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

type assetResponse struct {
	ID    int64     `json:"id"`
	Name  string    `json:"name"`
	Kind  string    `json:"kind,omitempty"`
	Value moneyJSON `json:"value"`
}

func assetFromRequest(userID, id int64, req assetRequest) (core.Asset, error) {
	cents, err := core.ParseSignedAmountToCents(req.Value)
	if err != nil {
		return core.Asset{}, err
	}

	a := core.Asset{
		ID:     id,
		UserID: userID,
		Name:   strings.TrimSpace(req.Name),
		Kind:   strings.TrimSpace(req.Kind),
		Value:  core.Money{Cents: cents},
	}
	if err := a.Validate(); err != nil {
		return core.Asset{}, err
	}
	return a, nil
}

func toAssetResponse(a core.Asset) assetResponse {
	return assetResponse{ID: a.ID, Name: a.Name, Kind: a.Kind, Value: toMoneyJSON(a.Value)}
}

func (s *Server) handleCreateAsset(w http.ResponseWriter, r *http.Request) {
	var req assetRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	a, err := assetFromRequest(mustUserID(r), 0, req)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := s.storage.CreateAsset(r.Context(), a)
	if err != nil {
		s.respondStorageError(w, r, err)
		return
	}
	a.ID = id
	respondJSON(w, http.StatusCreated, toAssetResponse(a))
}

func (s *Server) handleListAssets(w http.ResponseWriter, r *http.Request) {
	assets, err := s.storage.ListAssets(r.Context(), mustUserID(r))
	if err != nil {
		s.respondStorageError(w, r, err)
		return
	}
	out := make([]assetResponse, 0, len(assets))
	for _, a := range assets {
		out = append(out, toAssetResponse(a))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpdateAsset(w http.ResponseWriter, r *http.Request) {
	var req assetRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	a, err := assetFromRequest(mustUserID(r), pathID(r, "id"), req)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.storage.UpdateAsset(r.Context(), a); err != nil {
		s.respondStorageError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toAssetResponse(a))
}

func (s *Server) handleDeleteAsset(w http.ResponseWriter, r *http.Request) {
	if err := s.storage.DeleteAsset(r.Context(), mustUserID(r), pathID(r, "id")); err != nil {
		s.respondStorageError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type netWorthResponse struct {
	Assets      moneyJSON `json:"assets"`
	Liabilities moneyJSON `json:"liabilities"`
	Total       moneyJSON `json:"total"`
}

func (s *Server) handleNetWorth(w http.ResponseWriter, r *http.Request) {
	breakdown, err := s.budget.NetWorth(r.Context(), mustUserID(r))
	if err != nil {
		s.respondStorageError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, netWorthResponse{
		Assets:      toMoneyJSON(breakdown.Assets),
		Liabilities: toMoneyJSON(breakdown.Liabilities),
		Total:       toMoneyJSON(breakdown.Total),
	})
}

type snapshotResponse struct {
	ID         int64     `json:"id"`
	Total      moneyJSON `json:"total"`
	RecordedAt string    `json:"recorded_at"`
}

func toSnapshotResponse(snap core.NetWorthSnapshot) snapshotResponse {
	return snapshotResponse{
		ID:         snap.ID,
		Total:      toMoneyJSON(snap.Total),
		RecordedAt: snap.RecordedAt.UTC().Format(time.RFC3339),
	}
}

func (s *Server) handleCreateSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := s.budget.SnapshotNetWorth(r.Context(), mustUserID(r))
	if err != nil {
		s.respondStorageError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toSnapshotResponse(snap))
}

func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	snaps, err := s.storage.ListNetWorthSnapshots(r.Context(), mustUserID(r))
	if err != nil {
		s.respondStorageError(w, r, err)
		return
	}
	out := make([]snapshotResponse, 0, len(snaps))
	for _, snap := range snaps {
		out = append(out, toSnapshotResponse(snap))
	}
	respondJSON(w, http.StatusOK, out)
}
