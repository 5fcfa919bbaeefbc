package integration_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backdesk/backdesk/pkg/dashsdk"
)

// TestBootstrapCreatesAdmin verifies first-run setup yields a working admin
// session.
func TestBootstrapCreatesAdmin(t *testing.T) {
	srv := newTestServer(t)

	client := bootstrapAdmin(t, srv)

	me, err := client.Me(t.Context())
	require.NoError(t, err)
	assert.Equal(t, dashsdk.RoleAdmin, me.Role)
	assert.Equal(t, adminEmail, me.Email)
}

// TestBootstrapOnlyOnce verifies bootstrap is rejected once any user exists,
// whether created by bootstrap or open signup.
func TestBootstrapOnlyOnce(t *testing.T) {
	srv := newTestServer(t)
	bootstrapAdmin(t, srv)

	client := dashsdk.NewClient(srv.URL)
	_, err := client.Bootstrap(t.Context(), dashsdk.BootstrapRequest{
		Token:    bootstrapToken,
		Email:    "second@backdesk.test",
		Username: "second",
		Password: "Another123!",
	})
	requireAPIError(t, err, http.StatusConflict, "already bootstrapped")
}

// TestBootstrapBlockedAfterSignup verifies an open signup also closes the
// bootstrap window.
func TestBootstrapBlockedAfterSignup(t *testing.T) {
	srv := newTestServer(t)
	signupAndLogin(t, srv, "casey@backdesk.test", "casey", "Secret123!")

	client := dashsdk.NewClient(srv.URL)
	_, err := client.Bootstrap(t.Context(), dashsdk.BootstrapRequest{
		Token:    bootstrapToken,
		Email:    adminEmail,
		Username: adminUsername,
		Password: adminPassword,
	})
	requireAPIError(t, err, http.StatusConflict, "already bootstrapped")
}

// TestBootstrapWrongToken verifies the pre-shared token is enforced.
func TestBootstrapWrongToken(t *testing.T) {
	srv := newTestServer(t)

	client := dashsdk.NewClient(srv.URL)
	_, err := client.Bootstrap(t.Context(), dashsdk.BootstrapRequest{
		Token:    "not-the-token",
		Email:    adminEmail,
		Username: adminUsername,
		Password: adminPassword,
	})
	requireAPIError(t, err, http.StatusUnauthorized, "bootstrap token invalid")
}
