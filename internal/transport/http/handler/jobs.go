package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hirewire-api/internal/application/job"
	"github.com/hirewire-api/internal/domain"
	"github.com/hirewire-api/internal/pkg/validate"
	"github.com/hirewire-api/internal/transport/http/middleware"
)

// JobHandler handles job-posting endpoints.
type JobHandler struct {
	svc job.Service
}

func NewJobHandler(svc job.Service) *JobHandler { return &JobHandler{svc: svc} }

func (h *JobHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.CreateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	j, err := h.svc.Create(r.Context(), claims.UserID, req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, j)
}

func (h *JobHandler) Get(w http.ResponseWriter, r *http.Request) {
	j, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, j)
}

func (h *JobHandler) List(w http.ResponseWriter, r *http.Request) {
	if posterID := r.URL.Query().Get("posted_by"); posterID != "" {
		jobs, err := h.svc.ListByPoster(r.Context(), posterID)
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, PageEnvelope{Data: jobs})
		return
	}
	jobs, next, err := h.svc.List(r.Context(), parseLimit(r), r.URL.Query().Get("cursor"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PageEnvelope{Data: jobs, NextCursor: next})
}

func (h *JobHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id"), claims.UserID); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "job deleted"})
}
