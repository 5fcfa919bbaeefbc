package integration_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backdesk/backdesk/pkg/dashsdk"
)

// TestAdminListsUsers verifies the admin listing returns every account with
// public identifiers only.
func TestAdminListsUsers(t *testing.T) {
	srv := newTestServer(t)

	admin := bootstrapAdmin(t, srv)
	signupAndLogin(t, srv, "casey@backdesk.test", "casey", "Secret123!")
	signupAndLogin(t, srv, "drew@backdesk.test", "drew", "Secret123!")

	listing, err := admin.ListUsers(t.Context())
	require.NoError(t, err)
	require.Len(t, listing.Users, 3)

	emails := make([]string, 0, len(listing.Users))
	for _, u := range listing.Users {
		emails = append(emails, u.Email)
		assert.NotEmpty(t, u.UserID)
	}
	assert.Contains(t, emails, adminEmail)
	assert.Contains(t, emails, "casey@backdesk.test")
	assert.Contains(t, emails, "drew@backdesk.test")
}

// TestAdminRouteForbiddenForClients verifies an authenticated client role is
// denied with 403, not 401.
func TestAdminRouteForbiddenForClients(t *testing.T) {
	srv := newTestServer(t)

	bootstrapAdmin(t, srv)
	client := signupAndLogin(t, srv, "casey@backdesk.test", "casey", "Secret123!")

	_, err := client.ListUsers(t.Context())
	requireAPIError(t, err, http.StatusForbidden, "forbidden")
}

// TestAdminRouteRequiresAuth verifies the listing is unreachable without a
// token at all.
func TestAdminRouteRequiresAuth(t *testing.T) {
	srv := newTestServer(t)
	bootstrapAdmin(t, srv)

	anon := dashsdk.NewClient(srv.URL)
	_, err := anon.ListUsers(t.Context())
	requireAPIError(t, err, http.StatusUnauthorized, "no credential provided")
}

// TestSignupNeverGrantsAdmin verifies open signup produces client accounts
// even after bootstrap.
func TestSignupNeverGrantsAdmin(t *testing.T) {
	srv := newTestServer(t)
	bootstrapAdmin(t, srv)

	client := signupAndLogin(t, srv, "casey@backdesk.test", "casey", "Secret123!")
	me, err := client.Me(t.Context())
	require.NoError(t, err)
	assert.Equal(t, dashsdk.RoleClient, me.Role)
}
