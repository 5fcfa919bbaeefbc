package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/backdesk/backdesk/internal/domain"
	internalhttp "github.com/backdesk/backdesk/internal/http"
	"github.com/backdesk/backdesk/internal/service"
	"github.com/backdesk/backdesk/internal/store/drivers/sqlite"
	"github.com/backdesk/backdesk/pkg/cryptox"
	"github.com/backdesk/backdesk/pkg/dashsdk"
	"github.com/backdesk/backdesk/pkg/httpx"
	"github.com/backdesk/backdesk/pkg/jwtx"
	"github.com/backdesk/backdesk/pkg/slogx"
)

const (
	testIssuer     = "backdesk-test"
	bootstrapToken = "test-bootstrap-token-12345"

	adminEmail    = "admin@backdesk.test"
	adminUsername = "admin"
	adminPassword = "Admin123!"
)

// TestMain loosens the rate limit profiles so flow tests making many rapid
// requests don't trip the production limits. The rate limit behaviour itself
// is tested with an explicit tight profile.
func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "backdesk-integration-*")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	relaxed := httpx.RateLimitConfig{
		RequestsPerWindow: 1000,
		Window:            time.Minute,
		Burst:             1000,
	}
	httpx.StrictLimit = relaxed
	httpx.ModerateLimit = relaxed
	httpx.LenientLimit = relaxed

	code := m.Run()

	os.RemoveAll(dir)
	os.Exit(code)
}

// captureDeliverer records the last code issued per email so tests can
// complete the challenge without an out-of-band channel.
type captureDeliverer struct {
	mu    sync.Mutex
	codes map[string]string
}

func newCaptureDeliverer() *captureDeliverer {
	return &captureDeliverer{codes: make(map[string]string)}
}

func (d *captureDeliverer) Deliver(_ context.Context, user domain.User, code string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.codes[user.Email] = code
	return nil
}

func (d *captureDeliverer) take(email string) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	code := d.codes[email]
	delete(d.codes, email)
	return code
}

type testServer struct {
	*httptest.Server
	codes *captureDeliverer
}

// newTestServer runs the full router in-process against an in-memory
// database, with codes captured instead of delivered.
func newTestServer(t *testing.T) *testServer {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	box, err := cryptox.NewSecretBox("otp-key-001", []byte("integration-test-key-material"))
	require.NoError(t, err)

	km, err := jwtx.NewKeyManager(1)
	require.NoError(t, err)

	logger := slogx.New(slogx.Config{
		Service: "backdesk",
		Version: "test",
		Env:     "test",
		Level:   "error",
		Output:  io.Discard,
	})

	codes := newCaptureDeliverer()
	verifier := jwtx.NewEdDSAVerifier(km.KeySet(), testIssuer)

	router := internalhttp.NewRouter(km.KeySet(), verifier, "test", st, logger)
	router.Credentials = &service.CredentialService{Store: st}
	router.Challenges = service.NewChallengeService(st, box, codes, time.Minute)
	router.Tokens = &service.TokenService{
		KeyManager: km,
		Verifier:   verifier,
		Issuer:     testIssuer,
		TTL:        15 * time.Minute,
	}
	router.TOTP = &service.TOTPService{Store: st, Issuer: testIssuer}
	router.Bootstrap = &service.BootstrapService{Store: st, Token: bootstrapToken}
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testServer{Server: srv, codes: codes}
}

// bootstrapAdmin creates the first admin and returns a client holding an
// admin session token.
func bootstrapAdmin(t *testing.T, srv *testServer) *dashsdk.Client {
	t.Helper()

	client := dashsdk.NewClient(srv.URL)
	_, err := client.Bootstrap(t.Context(), dashsdk.BootstrapRequest{
		Token:    bootstrapToken,
		Email:    adminEmail,
		Username: adminUsername,
		Password: adminPassword,
	})
	require.NoError(t, err)

	loginAs(t, srv, client, adminEmail, adminPassword)
	return client
}

// signupAndLogin registers a client account and completes a full login.
func signupAndLogin(t *testing.T, srv *testServer, email, username, password string) *dashsdk.Client {
	t.Helper()

	client := dashsdk.NewClient(srv.URL)
	_, err := client.Signup(t.Context(), dashsdk.SignupRequest{
		Email:    email,
		Username: username,
		Password: password,
	})
	require.NoError(t, err)

	loginAs(t, srv, client, email, password)
	return client
}

// loginAs runs the password step, pulls the captured code, and completes the
// challenge. The client retains the session token.
func loginAs(t *testing.T, srv *testServer, client *dashsdk.Client, email, password string) dashsdk.SessionResponse {
	t.Helper()

	challengeID, err := client.Login(t.Context(), email, password)
	require.NoError(t, err)

	code := srv.codes.take(email)
	require.NotEmpty(t, code, "no code captured for %s", email)

	session, err := client.VerifyOTP(t.Context(), challengeID, code, false)
	require.NoError(t, err)
	return session
}

// postRaw issues a bare POST for tests that need to inspect status codes,
// headers, or cookies directly.
func postRaw(t *testing.T, url string, body any, decorate func(*http.Request)) *http.Response {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if decorate != nil {
		decorate(req)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

// getRaw issues a bare GET with optional request decoration.
func getRaw(t *testing.T, url string, decorate func(*http.Request)) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	if decorate != nil {
		decorate(req)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

// decodeError reads the standard {"error": "..."} body.
func decodeError(t *testing.T, resp *http.Response) string {
	t.Helper()

	var body dashsdk.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body.Error
}

// requireAPIError asserts err is an APIError with the given status and message.
func requireAPIError(t *testing.T, err error, status int, message string) {
	t.Helper()

	var apiErr *dashsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, status, apiErr.StatusCode)
	require.Equal(t, message, apiErr.Message)
}
