package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/greenhollow/stockade/internal/domain"
	"github.com/greenhollow/stockade/internal/store"
	"github.com/greenhollow/stockade/pkg/cryptox"
	"github.com/greenhollow/stockade/pkg/idx"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

var (
	ErrUsernameTaken = errors.New("username_taken")
)

// AccountService handles registration and authenticator enrollment.
type AccountService struct {
	Store  store.Store
	Issuer string // Issuer name shown in authenticator apps (e.g., "Stockade")
}

// Register creates a new identity: argon2id-hashed password plus a freshly
// generated TOTP secret. The username's unique index resolves concurrent
// registrations to exactly one winner; the loser gets ErrUsernameTaken.
func (s *AccountService) Register(ctx context.Context, username, password string) (domain.Identity, error) {
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("failed to hash password: %w", err)
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.Issuer,
		AccountName: username,
		Period:      30,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return domain.Identity{}, fmt.Errorf("failed to generate TOTP key: %w", err)
	}

	now := time.Now().UTC()
	ident := domain.Identity{
		ID:           idx.New().String(),
		Username:     username,
		PasswordHash: hash,
		TOTPSecret:   key.Secret(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.Store.Identities().Create(ctx, ident); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Identity{}, ErrUsernameTaken
		}
		return domain.Identity{}, fmt.Errorf("failed to create identity: %w", err)
	}

	return ident, nil
}

// Enrollment rebuilds the otpauth:// provisioning URI for an existing
// identity so the user can (re-)scan it into an authenticator app. Returns
// store.ErrNotFound for unknown usernames.
func (s *AccountService) Enrollment(ctx context.Context, username string) (domain.EnrollmentResponse, error) {
	ident, err := s.Store.Identities().GetByUsername(ctx, username)
	if err != nil {
		return domain.EnrollmentResponse{}, err
	}

	return domain.EnrollmentResponse{
		ProvisioningURI: buildProvisioningURI(s.Issuer, ident.Username, ident.TOTPSecret),
		Issuer:          s.Issuer,
		Account:         ident.Username,
	}, nil
}

// buildProvisioningURI assembles the otpauth:// URL from a stored secret,
// mirroring the parameters used at registration so the rendered QR always
// matches what Register generated.
func buildProvisioningURI(issuer, account, secret string) string {
	v := url.Values{}
	v.Set("secret", secret)
	v.Set("issuer", issuer)
	v.Set("period", "30")
	v.Set("algorithm", "SHA1")
	v.Set("digits", "6")

	u := url.URL{
		Scheme:   "otpauth",
		Host:     "totp",
		Path:     "/" + issuer + ":" + account,
		RawQuery: v.Encode(),
	}
	return u.String()
}
