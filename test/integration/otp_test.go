package integration_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backdesk/backdesk/pkg/dashsdk"
)

// TestOTPReplayRejected verifies a code can be redeemed exactly once. The
// replay gets the same generic message as a wrong code.
func TestOTPReplayRejected(t *testing.T) {
	srv := newTestServer(t)

	client := dashsdk.NewClient(srv.URL)
	_, err := client.Signup(t.Context(), dashsdk.SignupRequest{
		Email:    "casey@backdesk.test",
		Username: "casey",
		Password: "Secret123!",
	})
	require.NoError(t, err)

	challengeID, err := client.Login(t.Context(), "casey@backdesk.test", "Secret123!")
	require.NoError(t, err)
	code := srv.codes.take("casey@backdesk.test")

	_, err = client.VerifyOTP(t.Context(), challengeID, code, false)
	require.NoError(t, err)

	replay := dashsdk.NewClient(srv.URL)
	_, err = replay.VerifyOTP(t.Context(), challengeID, code, false)
	requireAPIError(t, err, http.StatusUnauthorized, "invalid or expired code")
}

// TestOTPWrongCodeConsumesChallenge verifies a failed attempt spends the
// challenge: the correct code no longer works afterwards.
func TestOTPWrongCodeConsumesChallenge(t *testing.T) {
	srv := newTestServer(t)

	client := dashsdk.NewClient(srv.URL)
	_, err := client.Signup(t.Context(), dashsdk.SignupRequest{
		Email:    "casey@backdesk.test",
		Username: "casey",
		Password: "Secret123!",
	})
	require.NoError(t, err)

	challengeID, err := client.Login(t.Context(), "casey@backdesk.test", "Secret123!")
	require.NoError(t, err)
	code := srv.codes.take("casey@backdesk.test")

	_, err = client.VerifyOTP(t.Context(), challengeID, "000000", false)
	requireAPIError(t, err, http.StatusUnauthorized, "invalid or expired code")

	_, err = client.VerifyOTP(t.Context(), challengeID, code, false)
	requireAPIError(t, err, http.StatusUnauthorized, "invalid or expired code")
}

// TestOTPUnknownChallenge verifies a made-up challenge ID gets the same
// generic rejection, not a distinguishable error.
func TestOTPUnknownChallenge(t *testing.T) {
	srv := newTestServer(t)

	client := dashsdk.NewClient(srv.URL)
	_, err := client.VerifyOTP(t.Context(), "01JSNOSUCHCHALLENGE0000000", "123456", false)
	requireAPIError(t, err, http.StatusUnauthorized, "invalid or expired code")
}

// TestOTPChallengePerLogin verifies each login gets its own challenge and
// code; a code issued for one challenge doesn't redeem another.
func TestOTPChallengePerLogin(t *testing.T) {
	srv := newTestServer(t)

	client := dashsdk.NewClient(srv.URL)
	_, err := client.Signup(t.Context(), dashsdk.SignupRequest{
		Email:    "casey@backdesk.test",
		Username: "casey",
		Password: "Secret123!",
	})
	require.NoError(t, err)

	firstID, err := client.Login(t.Context(), "casey@backdesk.test", "Secret123!")
	require.NoError(t, err)
	firstCode := srv.codes.take("casey@backdesk.test")

	secondID, err := client.Login(t.Context(), "casey@backdesk.test", "Secret123!")
	require.NoError(t, err)
	assert.NotEqual(t, firstID, secondID)

	// First challenge's code against the second challenge fails and spends it.
	_, err = client.VerifyOTP(t.Context(), secondID, firstCode, false)
	requireAPIError(t, err, http.StatusUnauthorized, "invalid or expired code")

	// The first challenge is still open and redeems normally.
	_, err = client.VerifyOTP(t.Context(), firstID, firstCode, false)
	require.NoError(t, err)
}
