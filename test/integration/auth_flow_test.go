package integration_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backdesk/backdesk/pkg/dashsdk"
)

// TestSignupLoginFlow walks the happy path: signup, password step, OTP step,
// then authenticated reads and writes with the issued token.
func TestSignupLoginFlow(t *testing.T) {
	srv := newTestServer(t)

	client := signupAndLogin(t, srv, "casey@backdesk.test", "casey", "Secret123!")

	me, err := client.Me(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "casey@backdesk.test", me.Email)
	assert.Equal(t, "casey", me.Username)
	assert.Equal(t, dashsdk.RoleClient, me.Role)
	assert.NotEmpty(t, me.UserID)

	updated, err := client.UpdateProfile(t.Context(), dashsdk.ProfileRequest{
		Name:     "Casey",
		Contact:  "+61 400 000 000",
		Location: "Brisbane",
	})
	require.NoError(t, err)
	assert.Equal(t, "Casey", updated.Name)
	assert.Equal(t, "Brisbane", updated.Location)

	me, err = client.Me(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "Casey", me.Name)
}

// TestLoginFailuresAreGeneric verifies unknown emails and wrong passwords
// produce the identical response, so the endpoint can't be used to probe
// which accounts exist.
func TestLoginFailuresAreGeneric(t *testing.T) {
	srv := newTestServer(t)
	signupAndLogin(t, srv, "casey@backdesk.test", "casey", "Secret123!")

	client := dashsdk.NewClient(srv.URL)

	_, unknownErr := client.Login(t.Context(), "nobody@backdesk.test", "Secret123!")
	requireAPIError(t, unknownErr, http.StatusUnauthorized, "invalid email or password")

	_, wrongErr := client.Login(t.Context(), "casey@backdesk.test", "WrongPassword!")
	requireAPIError(t, wrongErr, http.StatusUnauthorized, "invalid email or password")

	assert.Equal(t, unknownErr.Error(), wrongErr.Error())
}

// TestSignupDuplicateEmail verifies a second signup with the same email is a
// conflict.
func TestSignupDuplicateEmail(t *testing.T) {
	srv := newTestServer(t)
	signupAndLogin(t, srv, "casey@backdesk.test", "casey", "Secret123!")

	client := dashsdk.NewClient(srv.URL)
	_, err := client.Signup(t.Context(), dashsdk.SignupRequest{
		Email:    "casey@backdesk.test",
		Username: "casey2",
		Password: "Other123!",
	})

	var apiErr *dashsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
}

// TestTOTPLogin enrolls an authenticator and completes a later login with an
// app code instead of the delivered one.
func TestTOTPLogin(t *testing.T) {
	srv := newTestServer(t)
	client := signupAndLogin(t, srv, "casey@backdesk.test", "casey", "Secret123!")

	enrollment, err := client.EnrollTOTP(t.Context())
	require.NoError(t, err)
	require.NotEmpty(t, enrollment.Secret)
	require.Contains(t, enrollment.URL, "otpauth://")

	activateCode, err := totp.GenerateCode(enrollment.Secret, time.Now())
	require.NoError(t, err)
	require.NoError(t, client.ActivateTOTP(t.Context(), activateCode))

	me, err := client.Me(t.Context())
	require.NoError(t, err)
	assert.True(t, me.TOTPEnabled)

	// Fresh login completing the challenge with an authenticator code. The
	// delivered code goes unused.
	fresh := dashsdk.NewClient(srv.URL)
	challengeID, err := fresh.Login(t.Context(), "casey@backdesk.test", "Secret123!")
	require.NoError(t, err)

	appCode, err := totp.GenerateCode(enrollment.Secret, time.Now())
	require.NoError(t, err)

	session, err := fresh.VerifyTOTP(t.Context(), challengeID, appCode, false)
	require.NoError(t, err)
	assert.True(t, session.Session.IsAuthenticated)
	assert.NotEmpty(t, session.Token)
}
