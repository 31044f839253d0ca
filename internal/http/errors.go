package http

import (
	"errors"
	"net/http"

	"github.com/greenhollow/stockade/internal/service"
	"github.com/greenhollow/stockade/internal/store"
	"github.com/greenhollow/stockade/pkg/httpx"
	"github.com/greenhollow/stockade/pkg/slogx"
)

// writeServiceError maps service sentinels onto the wire. Unknown usernames
// stay 404 (distinct from bad credentials) to match the existing client
// contract; anything unmapped is a 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, "not_found", "resource not found")
	case errors.Is(err, service.ErrUsernameTaken):
		httpx.WriteError(w, http.StatusConflict, "username_taken", "username is already registered")
	case errors.Is(err, service.ErrInvalidCredentials):
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "username or password is incorrect")
	case errors.Is(err, service.ErrInvalidTOTPCode):
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_totp_code", "authenticator code is incorrect")
	case errors.Is(err, service.ErrChallengeInvalid):
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_login_challenge", "login challenge is missing, expired, or already used")
	case errors.Is(err, service.ErrTooManyAttempts):
		httpx.WriteError(w, http.StatusUnauthorized, "too_many_attempts", "too many failed attempts for this login challenge")
	default:
		slogx.FromContext(r.Context()).Error("request failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal server error")
	}
}

func writeBadRequest(w http.ResponseWriter, description string) {
	httpx.WriteError(w, http.StatusBadRequest, "invalid_request", description)
}
