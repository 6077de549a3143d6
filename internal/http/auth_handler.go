package api

import (
	"encoding/json"
	"net/http"
	"time"

	"songvote/internal/platform/apperr"
)

type loginRequest struct {
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// @Summary     Admin login
// @Tags        admin
// @Accept      json
// @Produce     json
// @Param       request  body      loginRequest  true  "Admin password"
// @Success     200      {object}  loginResponse
// @Failure     400      {object}  map[string]string  "invalid body"
// @Failure     401      {object}  map[string]string  "invalid credentials"
// @Failure     403      {object}  map[string]string  "admin login disabled"
// @Failure     429      {object}  map[string]string  "rate limited"
// @Router      /api/v1/admin/login [post]
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, apperr.ErrInvalidBody.Wrap(err))
		return
	}

	token, expires, err := h.adminSvc.Login(req.Password)
	if err != nil {
		errorResponse(w, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Token: token, ExpiresAt: expires})
}
