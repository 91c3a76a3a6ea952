package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"fintrack/internal/ai"
	"fintrack/internal/log"
	"fintrack/internal/secrets"
	"fintrack/internal/storage"
)

type credentialRequest struct {
	Provider string `json:"provider"`
	APIKey   string `json:"api_key"`
}

type credentialResponse struct {
	Provider   string `json:"provider"`
	MaskedKey  string `json:"masked_key"`
	LastUsedAt string `json:"last_used_at,omitempty"`
}

func (s *Server) handleUpsertCredential(w http.ResponseWriter, r *http.Request) {
	var req credentialRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	provider := strings.ToLower(strings.TrimSpace(req.Provider))
	if !ai.KnownProvider(provider) {
		respondError(w, http.StatusBadRequest, "unknown provider")
		return
	}
	apiKey := strings.TrimSpace(req.APIKey)
	if apiKey == "" {
		respondError(w, http.StatusBadRequest, "api_key is required")
		return
	}

	ciphertext, err := s.cipher.Encrypt(apiKey)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Credential encryption failed", log.FieldError, err.Error())
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	_, err = s.storage.UpsertCredential(r.Context(), storage.StoredCredential{
		UserID:     mustUserID(r),
		Provider:   provider,
		Ciphertext: ciphertext,
	})
	if err != nil {
		s.respondStorageError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, credentialResponse{
		Provider:  provider,
		MaskedKey: secrets.Mask(apiKey),
	})
}

func (s *Server) handleListCredentials(w http.ResponseWriter, r *http.Request) {
	creds, err := s.storage.ListCredentials(r.Context(), mustUserID(r))
	if err != nil {
		s.respondStorageError(w, r, err)
		return
	}

	out := make([]credentialResponse, 0, len(creds))
	for _, c := range creds {
		resp := credentialResponse{Provider: c.Provider, MaskedKey: "****"}
		if key, err := s.cipher.Decrypt(c.Ciphertext); err == nil {
			resp.MaskedKey = secrets.Mask(key)
		}
		if !c.LastUsedAt.IsZero() {
			resp.LastUsedAt = c.LastUsedAt.UTC().Format(time.RFC3339)
		}
		out = append(out, resp)
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteCredential(w http.ResponseWriter, r *http.Request) {
	provider := strings.ToLower(strings.TrimSpace(mux.Vars(r)["provider"]))
	if !ai.KnownProvider(provider) {
		respondError(w, http.StatusBadRequest, "unknown provider")
		return
	}
	if err := s.storage.DeleteCredential(r.Context(), mustUserID(r), provider); err != nil {
		s.respondStorageError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type insightResponse struct {
	ID          int64  `json:"id"`
	Provider    string `json:"provider"`
	Title       string `json:"title"`
	Body        string `json:"body"`
	GeneratedAt string `json:"generated_at"`
}

func (s *Server) handleGenerateInsights(w http.ResponseWriter, r *http.Request) {
	insights, err := s.insights.GenerateForUser(r.Context(), mustUserID(r))
	if err != nil {
		if errors.Is(err, ai.ErrNoCredentials) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.ErrorContext(r.Context(), "Insight generation failed", log.FieldError, err.Error())
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	out := make([]insightResponse, 0, len(insights))
	for _, in := range insights {
		out = append(out, insightResponse{
			ID:          in.ID,
			Provider:    in.Provider,
			Title:       in.Title,
			Body:        in.Body,
			GeneratedAt: in.GeneratedAt.UTC().Format(time.RFC3339),
		})
	}
	respondJSON(w, http.StatusCreated, out)
}

func (s *Server) handleListInsights(w http.ResponseWriter, r *http.Request) {
	limit, err := parseQueryInt(r, "limit", "invalid limit", 50)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	insights, err := s.storage.ListInsights(r.Context(), mustUserID(r), limit)
	if err != nil {
		s.respondStorageError(w, r, err)
		return
	}

	out := make([]insightResponse, 0, len(insights))
	for _, in := range insights {
		out = append(out, insightResponse{
			ID:          in.ID,
			Provider:    in.Provider,
			Title:       in.Title,
			Body:        in.Body,
			GeneratedAt: in.GeneratedAt.UTC().Format(time.RFC3339),
		})
	}
	respondJSON(w, http.StatusOK, out)
}
