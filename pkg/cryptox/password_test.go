package cryptox_test

import (
	"path/filepath"
	"testing"

	"github.com/backdesk/backdesk/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	// Isolate the pepper file so tests never touch a developer's working copy.
	dir, err := filepath.Abs("testdata")
	if err == nil {
		cryptox.SetPepperPath(filepath.Join(dir, "pepper"))
	}
	m.Run()
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := cryptox.HashPassword("correct horse battery staple")
	require.NoError(t, err)
	require.Contains(t, hash, "$argon2id$v=19$")

	require.NoError(t, cryptox.VerifyPassword("correct horse battery staple", hash))
	require.Error(t, cryptox.VerifyPassword("correct horse battery stapl", hash))
}

func TestHashPasswordSaltsDiffer(t *testing.T) {
	h1, err := cryptox.HashPassword("secret")
	require.NoError(t, err)
	h2, err := cryptox.HashPassword("secret")
	require.NoError(t, err)

	require.NotEqual(t, h1, h2, "fresh salt per hash")
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	require.Error(t, cryptox.VerifyPassword("x", "not-a-phc-string"))
	require.Error(t, cryptox.VerifyPassword("x", "$bcrypt$v=19$m=1,t=1,p=1$c2FsdA$aGFzaA"))
	require.Error(t, cryptox.VerifyPassword("x", "$argon2id$v=18$m=1,t=1,p=1$c2FsdA$aGFzaA"))
}

func TestGenerateNumericCode(t *testing.T) {
	code, err := cryptox.GenerateNumericCode(6)
	require.NoError(t, err)
	require.Len(t, code, 6)
	for _, r := range code {
		require.True(t, r >= '0' && r <= '9')
	}

	_, err = cryptox.GenerateNumericCode(0)
	require.Error(t, err)
}

func TestFingerprintTokenDeterministic(t *testing.T) {
	a := cryptox.FingerprintToken("opaque-value")
	b := cryptox.FingerprintToken("opaque-value")
	c := cryptox.FingerprintToken("other-value")

	require.Equal(t, a, b)
	require.NotEqual(t, a, c)
	require.Len(t, a, 43)
}
