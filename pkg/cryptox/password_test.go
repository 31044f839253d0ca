package cryptox_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/greenhollow/stockade/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "cryptox-test")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

func TestHashPasswordRoundTrip(t *testing.T) {
	hash, err := cryptox.HashPassword("S3cret!")
	require.NoError(t, err)
	require.NotEmpty(t, hash)

	require.NoError(t, cryptox.VerifyPassword("S3cret!", hash))
	require.ErrorIs(t, cryptox.VerifyPassword("wrong", hash), cryptox.ErrPasswordMismatch)
}

func TestHashPasswordSaltUniqueness(t *testing.T) {
	a, err := cryptox.HashPassword("same-password")
	require.NoError(t, err)
	b, err := cryptox.HashPassword("same-password")
	require.NoError(t, err)

	require.NotEqual(t, a, b)
	require.NoError(t, cryptox.VerifyPassword("same-password", a))
	require.NoError(t, cryptox.VerifyPassword("same-password", b))
}

func TestVerifyPasswordFailsClosedOnCorruptHash(t *testing.T) {
	for _, corrupt := range []string{
		"",
		"not-a-hash",
		"$argon2id$v=19$m=19456,t=2,p=1$short",
		"$bcrypt$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=18$m=19456,t=2,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=oops$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=19456,t=2,p=1$!!!$aGFzaA",
		"$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$!!!",
	} {
		require.Error(t, cryptox.VerifyPassword("anything", corrupt), "input: %q", corrupt)
	}
}
