package http

import (
	"encoding/json"
	"net/http"

	"github.com/greenhollow/stockade/internal/service"
	"github.com/greenhollow/stockade/pkg/httpx"
)

// MFAVerifyHandler handles POST /v1/auth/mfa/verify. It checks the TOTP code
// against an outstanding login challenge without consuming it.
type MFAVerifyHandler struct {
	AuthService *service.AuthService
}

type mfaVerifyRequest struct {
	Username   string `json:"username"`
	LoginToken string `json:"login_token"`
	Code       string `json:"code"`
}

type mfaVerifyResponse struct {
	Verified bool `json:"verified"`
}

func (h *MFAVerifyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req mfaVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "request body must be JSON with username, login_token, and code")
		return
	}

	if req.Username == "" || req.LoginToken == "" || req.Code == "" {
		writeBadRequest(w, "username, login_token, and code are required")
		return
	}

	if err := h.AuthService.VerifySecondFactor(ctx, req.Username, req.LoginToken, req.Code); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, mfaVerifyResponse{Verified: true})
}
