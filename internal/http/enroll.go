package http

import (
	"image/png"
	"net/http"
	"strings"

	"github.com/greenhollow/stockade/internal/service"
	"github.com/greenhollow/stockade/pkg/httpx"
	"github.com/greenhollow/stockade/pkg/slogx"
	"github.com/pquerna/otp"
)

const qrImageSize = 256

// EnrollHandler handles GET /v1/auth/enroll/{username}. The default response
// is a QR PNG of the otpauth:// provisioning URI; clients sending
// Accept: application/json get the raw URI instead.
type EnrollHandler struct {
	AccountService *service.AccountService
}

type enrollResponse struct {
	ProvisioningURI string `json:"provisioning_uri"`
	Issuer          string `json:"issuer"`
	Account         string `json:"account"`
}

func (h *EnrollHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	username := r.PathValue("username")
	if username == "" {
		writeBadRequest(w, "username path segment is required")
		return
	}

	enrollment, err := h.AccountService.Enrollment(ctx, username)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if wantsJSON(r) {
		httpx.NoCache(w)
		httpx.WriteJSON(w, http.StatusOK, enrollResponse{
			ProvisioningURI: enrollment.ProvisioningURI,
			Issuer:          enrollment.Issuer,
			Account:         enrollment.Account,
		})
		return
	}

	key, err := otp.NewKeyFromURL(enrollment.ProvisioningURI)
	if err != nil {
		log.Error("failed to parse provisioning URI", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal server error")
		return
	}

	img, err := key.Image(qrImageSize, qrImageSize)
	if err != nil {
		log.Error("failed to render QR image", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal server error")
		return
	}

	httpx.NoCache(w)
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	if err := png.Encode(w, img); err != nil {
		log.Warn("failed to write QR image", "err", err)
	}
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
