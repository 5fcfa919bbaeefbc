package jwtx_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/backdesk/backdesk/pkg/jwtx"
)

const testIssuer = "https://backdesk.test"

func newManager(t *testing.T, n int) *jwtx.KeyManager {
	t.Helper()
	km, err := jwtx.NewKeyManager(n)
	require.NoError(t, err)
	return km
}

func TestSignVerifyRoundTrip(t *testing.T) {
	t.Parallel()

	km := newManager(t, 2)
	verifier := jwtx.NewEdDSAVerifier(km.KeySet(), testIssuer)

	signer, err := km.GetSigner()
	require.NoError(t, err)

	claims := jwtx.NewSessionClaims(testIssuer, "pub-user-1", "admin", "ops@example.com", "ops", time.Minute)
	token, err := signer.Sign(claims)
	require.NoError(t, err)

	got, err := verifier.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "pub-user-1", got.Subject)
	require.Equal(t, "admin", got.Role)
	require.Equal(t, "ops@example.com", got.Email)
	require.Equal(t, "ops", got.Username)
	require.NotEmpty(t, got.ID, "jti should be set")
}

func TestVerifyExpiredToken(t *testing.T) {
	t.Parallel()

	km := newManager(t, 1)
	verifier := jwtx.NewEdDSAVerifier(km.KeySet(), testIssuer)

	signer, err := km.GetSigner()
	require.NoError(t, err)

	claims := jwtx.NewSessionClaims(testIssuer, "pub-user-1", "client", "", "", time.Minute)
	claims.ExpiresAt.Time = time.Now().Add(-time.Minute)

	token, err := signer.Sign(claims)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, jwtx.ErrExpired)
}

func TestVerifyForeignKeyToken(t *testing.T) {
	t.Parallel()

	// Token signed under one key fleet must not verify against another.
	issuing := newManager(t, 1)
	verifying := newManager(t, 1)
	verifier := jwtx.NewEdDSAVerifier(verifying.KeySet(), testIssuer)

	signer, err := issuing.GetSigner()
	require.NoError(t, err)

	token, err := signer.Sign(jwtx.NewSessionClaims(testIssuer, "u", "client", "", "", time.Minute))
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, jwtx.ErrUnknownKID)
}

func TestVerifyTamperedToken(t *testing.T) {
	t.Parallel()

	km := newManager(t, 1)
	verifier := jwtx.NewEdDSAVerifier(km.KeySet(), testIssuer)

	signer, err := km.GetSigner()
	require.NoError(t, err)

	token, err := signer.Sign(jwtx.NewSessionClaims(testIssuer, "u", "client", "", "", time.Minute))
	require.NoError(t, err)

	tampered := token[:len(token)-4] + "AAAA"
	_, err = verifier.Verify(tampered)
	require.Error(t, err)
	require.NotErrorIs(t, err, jwtx.ErrExpired, "signature failure must not read as expiry")
}

func TestVerifyMalformedToken(t *testing.T) {
	t.Parallel()

	km := newManager(t, 1)
	verifier := jwtx.NewEdDSAVerifier(km.KeySet(), testIssuer)

	_, err := verifier.Verify("not-a-jwt")
	require.ErrorIs(t, err, jwtx.ErrMalformed)
}

func TestVerifyIssuerMismatch(t *testing.T) {
	t.Parallel()

	km := newManager(t, 1)
	verifier := jwtx.NewEdDSAVerifier(km.KeySet(), testIssuer)

	signer, err := km.GetSigner()
	require.NoError(t, err)

	token, err := signer.Sign(jwtx.NewSessionClaims("https://other.test", "u", "client", "", "", time.Minute))
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, jwtx.ErrIssuerMismatch)
}

func TestKeySetFromPublishedJWKS(t *testing.T) {
	t.Parallel()

	km := newManager(t, 2)
	published := km.KeySet().PublicJWKS()
	require.Len(t, published.Keys, 2)

	// A remote party reconstructs the key set from the JWKS document.
	remote := jwtx.NewKeySet()
	for _, jwk := range published.Keys {
		require.NoError(t, remote.AddJWK(jwk))
	}
	require.True(t, remote.IsReady())

	signer, err := km.GetSigner()
	require.NoError(t, err)
	token, err := signer.Sign(jwtx.NewSessionClaims(testIssuer, "u", "admin", "", "", time.Minute))
	require.NoError(t, err)

	_, err = jwtx.NewEdDSAVerifier(remote, testIssuer).Verify(token)
	require.NoError(t, err)
}

func TestClaimsValidateExpiry(t *testing.T) {
	t.Parallel()

	now := time.Now()

	t.Run("missing expiry", func(t *testing.T) {
		var c jwtx.Claims
		require.ErrorIs(t, c.ValidateExpiry(now), jwtx.ErrMissingExpiry)
	})

	t.Run("not yet valid", func(t *testing.T) {
		c := jwtx.NewSessionClaims(testIssuer, "u", "client", "", "", time.Minute)
		c.NotBefore.Time = now.Add(time.Hour)
		require.ErrorIs(t, c.ValidateExpiry(now), jwtx.ErrNotYetValid)
	})
}
