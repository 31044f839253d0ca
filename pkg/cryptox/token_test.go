package cryptox_test

import (
	"testing"

	"github.com/greenhollow/stockade/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	t.Parallel()

	a, err := cryptox.GenerateToken(cryptox.TokenSize256)
	require.NoError(t, err)
	require.Len(t, a, 43) // 32 bytes base64url, no padding

	b, err := cryptox.GenerateToken(cryptox.TokenSize256)
	require.NoError(t, err)
	require.NotEqual(t, a, b)

	_, err = cryptox.GenerateToken(0)
	require.Error(t, err)
}

func TestFingerprintTokenIsDeterministic(t *testing.T) {
	t.Parallel()

	fp1 := cryptox.FingerprintToken("opaque-value")
	fp2 := cryptox.FingerprintToken("opaque-value")
	require.Equal(t, fp1, fp2)
	require.Len(t, fp1, 43)

	require.NotEqual(t, fp1, cryptox.FingerprintToken("other-value"))
}
