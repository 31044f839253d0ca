package http

import (
	"encoding/json"
	"net/http"

	"github.com/greenhollow/stockade/internal/service"
	"github.com/greenhollow/stockade/pkg/httpx"
)

// TokenHandler handles POST /v1/auth/token: the final step of the login flow,
// exchanging a login challenge plus a TOTP code for a bearer access token.
type TokenHandler struct {
	AuthService *service.AuthService
}

type tokenRequest struct {
	Username   string `json:"username"`
	LoginToken string `json:"login_token"`
	Code       string `json:"code"`
}

func (h *TokenHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "request body must be JSON with username, login_token, and code")
		return
	}

	if req.Username == "" || req.LoginToken == "" || req.Code == "" {
		writeBadRequest(w, "username, login_token, and code are required")
		return
	}

	token, err := h.AuthService.IssueToken(ctx, req.Username, req.LoginToken, req.Code)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, token)
}
