package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/greenhollow/stockade/internal/service"
	"github.com/greenhollow/stockade/pkg/httpx"
	"github.com/greenhollow/stockade/pkg/slogx"
)

// RegisterHandler handles POST /v1/auth/register.
type RegisterHandler struct {
	AccountService *service.AccountService
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "request body must be JSON with username and password")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		writeBadRequest(w, "username and password are required")
		return
	}

	ident, err := h.AccountService.Register(ctx, req.Username, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	log.Info("identity registered", "username", ident.Username)

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusCreated, registerResponse{
		ID:       ident.ID,
		Username: ident.Username,
	})
}
