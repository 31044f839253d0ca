package jwtx_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/greenhollow/stockade/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const testIssuer = "stockade-test"

func newManager(t *testing.T) *jwtx.KeyManager {
	t.Helper()
	km, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{
		Issuer:  testIssuer,
		NumKeys: 2,
	})
	require.NoError(t, err)
	return km
}

func TestSignVerifyRoundTrip(t *testing.T) {
	t.Parallel()

	km := newManager(t)
	now := time.Now().UTC()

	claims := jwtx.NewAccessClaims(
		"01JF0000000000000000000000",
		"alice",
		[]string{jwtx.AMRPassword, jwtx.AMROTP, jwtx.AMRMFA},
		15*time.Minute,
		testIssuer,
		now,
	)

	token, err := km.GetSigner().Sign(claims)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := km.Verifier.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "alice", got.Username)
	require.Equal(t, "01JF0000000000000000000000", got.Subject)
	require.Equal(t, []string{"pwd", "otp", "mfa"}, got.AMR)
	require.NotEmpty(t, got.ID)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	t.Parallel()

	km := newManager(t)
	past := time.Now().UTC().Add(-time.Hour)

	claims := jwtx.NewAccessClaims("sub", "alice", nil, time.Minute, testIssuer, past)
	token, err := km.GetSigner().Sign(claims)
	require.NoError(t, err)

	_, err = km.Verifier.Verify(token)
	require.Error(t, err)
}

func TestVerifyRejectsWrongIssuer(t *testing.T) {
	t.Parallel()

	km := newManager(t)
	claims := jwtx.NewAccessClaims("sub", "alice", nil, time.Minute, "someone-else", time.Now().UTC())
	token, err := km.GetSigner().Sign(claims)
	require.NoError(t, err)

	_, err = km.Verifier.Verify(token)
	require.ErrorIs(t, err, jwtx.ErrIssuer)
}

func TestVerifyRejectsForeignKey(t *testing.T) {
	t.Parallel()

	km := newManager(t)
	other := newManager(t)

	claims := jwtx.NewAccessClaims("sub", "alice", nil, time.Minute, testIssuer, time.Now().UTC())
	token, err := other.GetSigner().Sign(claims)
	require.NoError(t, err)

	_, err = km.Verifier.Verify(token)
	require.Error(t, err)
}

func TestVerifyRejectsAlgorithmConfusion(t *testing.T) {
	t.Parallel()

	km := newManager(t)
	signer := km.GetSigner()

	// HS256 token keyed with the raw public key must never validate.
	claims := jwtx.NewAccessClaims("sub", "alice", nil, time.Minute, testIssuer, time.Now().UTC())
	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	forged.Header["kid"] = signer.KID()
	tokenStr, err := forged.SignedString([]byte(signer.PublicKey()))
	require.NoError(t, err)

	_, err = km.Verifier.Verify(tokenStr)
	require.Error(t, err)
}
