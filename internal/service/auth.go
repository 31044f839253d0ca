package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/greenhollow/stockade/internal/domain"
	"github.com/greenhollow/stockade/internal/store"
	"github.com/greenhollow/stockade/pkg/cryptox"
	"github.com/greenhollow/stockade/pkg/idx"
	"github.com/greenhollow/stockade/pkg/jwtx"
	"github.com/greenhollow/stockade/pkg/slogx"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	// MaxChallengeAttempts is the number of failed TOTP codes allowed per
	// login challenge before it locks.
	MaxChallengeAttempts = 5

	// DefaultChallengeTTL bounds how long a password-verified session may
	// wait for its second factor.
	DefaultChallengeTTL = 5 * time.Minute
)

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidTOTPCode    = errors.New("invalid_totp_code")
	ErrChallengeInvalid   = errors.New("invalid_login_challenge")
	ErrTooManyAttempts    = errors.New("too_many_attempts")
)

// AuthService drives the password → second-factor → token flow. A successful
// password check mints a single-use login challenge; the second-factor and
// token steps must present it, and token issuance consumes it.
type AuthService struct {
	Store        store.Store
	KeyManager   *jwtx.KeyManager
	Issuer       string
	AccessTTL    time.Duration
	ChallengeTTL time.Duration

	// Now overrides the clock in tests. Nil means time.Now.
	Now func() time.Time
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *AuthService) challengeTTL() time.Duration {
	if s.ChallengeTTL > 0 {
		return s.ChallengeTTL
	}
	return DefaultChallengeTTL
}

// Login verifies the password factor. Unknown usernames surface as
// store.ErrNotFound, bad passwords as ErrInvalidCredentials. On success it
// returns a fresh login challenge the caller must present to the second
// factor and token endpoints.
func (s *AuthService) Login(ctx context.Context, username, password string) (domain.LoginChallengeResponse, error) {
	l := slogx.FromContext(ctx)

	ident, err := s.Store.Identities().GetByUsername(ctx, username)
	if err != nil {
		return domain.LoginChallengeResponse{}, err
	}

	if err := cryptox.VerifyPassword(password, ident.PasswordHash); err != nil {
		l.Info("password verification failed", slog.String("username", username))
		return domain.LoginChallengeResponse{}, ErrInvalidCredentials
	}

	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return domain.LoginChallengeResponse{}, fmt.Errorf("failed to generate challenge token: %w", err)
	}

	now := s.now().UTC()
	ttl := s.challengeTTL()
	ch := domain.LoginChallenge{
		ID:        idx.New().String(),
		UserID:    ident.ID,
		TokenHash: cryptox.FingerprintToken(token),
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
	if err := s.Store.LoginChallenges().Create(ctx, ch); err != nil {
		return domain.LoginChallengeResponse{}, fmt.Errorf("failed to store login challenge: %w", err)
	}

	return domain.LoginChallengeResponse{
		MFARequired: true,
		Token:       token,
		ExpiresIn:   int64(ttl.Seconds()),
		Methods:     []string{"totp"},
	}, nil
}

// VerifySecondFactor checks a TOTP code against an outstanding login
// challenge without consuming it, so a client can confirm its authenticator
// before asking for a token. Failed codes count toward the attempt limit.
func (s *AuthService) VerifySecondFactor(ctx context.Context, username, challengeToken, code string) error {
	_, _, err := s.checkChallenge(ctx, username, challengeToken, code)
	return err
}

// IssueToken re-validates both factors, consumes the challenge, and signs a
// bearer access token. Each challenge mints at most one token; under a
// concurrent double-spend exactly one caller wins.
func (s *AuthService) IssueToken(ctx context.Context, username, challengeToken, code string) (domain.AccessToken, error) {
	l := slogx.FromContext(ctx)

	ident, ch, err := s.checkChallenge(ctx, username, challengeToken, code)
	if err != nil {
		return domain.AccessToken{}, err
	}

	if err := s.Store.LoginChallenges().Delete(ctx, ch.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Lost the consumption race; the challenge already minted a token.
			return domain.AccessToken{}, ErrChallengeInvalid
		}
		return domain.AccessToken{}, fmt.Errorf("failed to consume login challenge: %w", err)
	}

	claims := jwtx.NewAccessClaims(
		ident.ID,
		ident.Username,
		[]string{jwtx.AMRPassword, jwtx.AMROTP, jwtx.AMRMFA},
		s.AccessTTL,
		s.Issuer,
		s.now(),
	)

	signed, err := s.KeyManager.GetSigner().Sign(claims)
	if err != nil {
		return domain.AccessToken{}, fmt.Errorf("failed to sign access token: %w", err)
	}

	l.Info("access token issued",
		slog.String("username", ident.Username),
		slog.String("jti", claims.ID),
	)

	return domain.AccessToken{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.AccessTTL.Seconds()),
	}, nil
}

// checkChallenge validates the username, the challenge token, and the TOTP
// code. It does not consume the challenge.
func (s *AuthService) checkChallenge(ctx context.Context, username, challengeToken, code string) (domain.Identity, domain.LoginChallenge, error) {
	l := slogx.FromContext(ctx)

	ident, err := s.Store.Identities().GetByUsername(ctx, username)
	if err != nil {
		return domain.Identity{}, domain.LoginChallenge{}, err
	}

	ch, err := s.Store.LoginChallenges().GetByTokenHash(ctx, cryptox.FingerprintToken(challengeToken))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Identity{}, domain.LoginChallenge{}, ErrChallengeInvalid
		}
		return domain.Identity{}, domain.LoginChallenge{}, err
	}

	now := s.now().UTC()
	switch {
	case ch.UserID != ident.ID:
		return domain.Identity{}, domain.LoginChallenge{}, ErrChallengeInvalid
	case now.After(ch.ExpiresAt):
		l.Info("login challenge expired", slog.String("username", username))
		return domain.Identity{}, domain.LoginChallenge{}, ErrChallengeInvalid
	case ch.Attempts >= MaxChallengeAttempts:
		return domain.Identity{}, domain.LoginChallenge{}, ErrTooManyAttempts
	}

	valid, err := totp.ValidateCustom(code, ident.TOTPSecret, now, totp.ValidateOpts{
		Period:    30,
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		return domain.Identity{}, domain.LoginChallenge{}, fmt.Errorf("failed to validate TOTP code: %w", err)
	}
	if !valid {
		if _, ierr := s.Store.LoginChallenges().IncrementAttempts(ctx, ch.ID); ierr != nil {
			l.Error("failed to record TOTP attempt", slog.Any("error", ierr))
		}
		l.Info("TOTP verification failed", slog.String("username", username))
		return domain.Identity{}, domain.LoginChallenge{}, ErrInvalidTOTPCode
	}

	return ident, ch, nil
}
