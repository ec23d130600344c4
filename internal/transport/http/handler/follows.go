package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hirewire-api/internal/application/follow"
	"github.com/hirewire-api/internal/transport/http/middleware"
)

// FollowHandler handles follower-edge endpoints.
type FollowHandler struct {
	svc follow.Service
}

func NewFollowHandler(svc follow.Service) *FollowHandler { return &FollowHandler{svc: svc} }

func (h *FollowHandler) Follow(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.svc.Follow(r.Context(), claims.UserID, chi.URLParam(r, "id")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, MessageEnvelope{Message: "following"})
}

func (h *FollowHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.svc.Unfollow(r.Context(), claims.UserID, chi.URLParam(r, "id")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "unfollowed"})
}

func (h *FollowHandler) ListFollowers(w http.ResponseWriter, r *http.Request) {
	ids, err := h.svc.ListFollowerIDs(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PageEnvelope{Data: ids})
}
