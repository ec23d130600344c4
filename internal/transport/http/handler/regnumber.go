package handler

import (
	"encoding/json"
	"net/http"

	"github.com/hirewire-api/internal/application/regnumber"
	"github.com/hirewire-api/internal/pkg/validate"
)

// RegNumberHandler exposes registration-number validation for signup forms.
type RegNumberHandler struct {
	svc regnumber.Service
}

func NewRegNumberHandler(svc regnumber.Service) *RegNumberHandler {
	return &RegNumberHandler{svc: svc}
}

type validateRegNumberRequest struct {
	RegistrationNumber string `json:"registration_number" validate:"required"`
	CheckAuthority     bool   `json:"check_authority"`
}

func (h *RegNumberHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req validateRegNumberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := h.svc.Validate(r.Context(), req.RegistrationNumber, regnumber.Options{
		CheckAuthority: req.CheckAuthority,
	})
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
