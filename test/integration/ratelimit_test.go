package integration_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backdesk/backdesk/pkg/dashsdk"
	"github.com/backdesk/backdesk/pkg/httpx"
)

// TestLoginRateLimited verifies the credential endpoints throttle repeated
// attempts. The strict profile is tightened for this test only; routes bind
// their profile at registration, so the server must be built after the swap.
func TestLoginRateLimited(t *testing.T) {
	saved := httpx.StrictLimit
	httpx.StrictLimit = httpx.RateLimitConfig{
		RequestsPerWindow: 3,
		Window:            time.Minute,
		Burst:             3,
	}
	t.Cleanup(func() { httpx.StrictLimit = saved })

	srv := newTestServer(t)

	body := dashsdk.LoginRequest{Email: "casey@backdesk.test", Password: "whatever"}
	for i := 0; i < 3; i++ {
		resp := postRaw(t, srv.URL+"/v1/auth/login", body, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "attempt %d should pass the limiter", i+1)
	}

	resp := postRaw(t, srv.URL+"/v1/auth/login", body, nil)
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "rate_limit_exceeded", decodeError(t, resp))
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))
}

// TestLoginRateLimitIsPerEmail verifies the login limiter keys on IP plus the
// submitted email, so exhausting one account's budget doesn't lock out
// another from the same address.
func TestLoginRateLimitIsPerEmail(t *testing.T) {
	saved := httpx.StrictLimit
	httpx.StrictLimit = httpx.RateLimitConfig{
		RequestsPerWindow: 3,
		Window:            time.Minute,
		Burst:             3,
	}
	t.Cleanup(func() { httpx.StrictLimit = saved })

	srv := newTestServer(t)

	first := dashsdk.LoginRequest{Email: "casey@backdesk.test", Password: "whatever"}
	for i := 0; i < 4; i++ {
		postRaw(t, srv.URL+"/v1/auth/login", first, nil)
	}

	other := dashsdk.LoginRequest{Email: "drew@backdesk.test", Password: "whatever"}
	resp := postRaw(t, srv.URL+"/v1/auth/login", other, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "a different account should have its own budget")
}
