package dashsdk

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Client talks to the backdesk service. Unauthenticated calls work
// immediately; once VerifyOTP succeeds the client holds the session token and
// sends it as a bearer header on authenticated calls.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	mu    sync.RWMutex
	token string
}

// NewClient creates a service client.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Token returns the held session token, empty when not signed in.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetToken installs an existing session token, e.g. one restored from the
// persistent tier.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Signup creates a client-role account.
func (c *Client) Signup(ctx context.Context, req SignupRequest) (UserInfo, error) {
	var out UserInfo
	err := c.postJSON(ctx, "/v1/auth/signup", req, &out, http.StatusCreated)
	return out, err
}

// Login submits credentials. Success returns a challenge ID; the OTP arrives
// out-of-band.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var out LoginResponse
	err := c.postJSON(ctx, "/v1/auth/login", LoginRequest{Email: email, Password: password}, &out, http.StatusOK)
	return out.ChallengeID, err
}

// VerifyOTP completes a challenge with the delivered code. On success the
// returned session token is retained for subsequent authenticated calls.
func (c *Client) VerifyOTP(ctx context.Context, challengeID, code string, remember bool) (SessionResponse, error) {
	return c.verify(ctx, OTPRequest{ChallengeID: challengeID, Code: code, Remember: remember})
}

// VerifyTOTP completes a challenge with an authenticator-app code.
func (c *Client) VerifyTOTP(ctx context.Context, challengeID, code string, remember bool) (SessionResponse, error) {
	return c.verify(ctx, OTPRequest{ChallengeID: challengeID, Code: code, Method: "totp", Remember: remember})
}

func (c *Client) verify(ctx context.Context, req OTPRequest) (SessionResponse, error) {
	var out SessionResponse
	if err := c.postJSON(ctx, "/v1/auth/otp", req, &out, http.StatusOK); err != nil {
		return SessionResponse{}, err
	}
	c.SetToken(out.Token)
	return out, nil
}

// Me returns the authenticated identity.
func (c *Client) Me(ctx context.Context) (UserInfo, error) {
	var out UserInfo
	err := c.getJSON(ctx, "/v1/auth/me", &out, http.StatusOK)
	return out, err
}

// UpdateProfile updates the free-form profile fields.
func (c *Client) UpdateProfile(ctx context.Context, req ProfileRequest) (UserInfo, error) {
	var out UserInfo
	err := c.doJSON(ctx, http.MethodPut, "/v1/auth/profile", req, &out, http.StatusOK)
	return out, err
}

// EnrollTOTP starts authenticator enrollment.
func (c *Client) EnrollTOTP(ctx context.Context) (TOTPEnrollResponse, error) {
	var out TOTPEnrollResponse
	err := c.postJSON(ctx, "/v1/auth/totp/enroll", struct{}{}, &out, http.StatusOK)
	return out, err
}

// ActivateTOTP confirms enrollment with an authenticator code.
func (c *Client) ActivateTOTP(ctx context.Context, code string) error {
	return c.postJSON(ctx, "/v1/auth/totp/activate", TOTPActivateRequest{Code: code}, nil, http.StatusNoContent)
}

// ListUsers is the admin-only account listing.
func (c *Client) ListUsers(ctx context.Context) (UsersResponse, error) {
	var out UsersResponse
	err := c.getJSON(ctx, "/v1/admin/users", &out, http.StatusOK)
	return out, err
}

// Bootstrap creates the first admin on an empty database.
func (c *Client) Bootstrap(ctx context.Context, req BootstrapRequest) (UserInfo, error) {
	var out UserInfo
	err := c.postJSON(ctx, "/v1/bootstrap", req, &out, http.StatusCreated)
	return out, err
}

// GetLiveness checks the service is up.
func (c *Client) GetLiveness(ctx context.Context) (HealthResponse, error) {
	var out HealthResponse
	err := c.getJSON(ctx, "/livez", &out, http.StatusOK)
	return out, err
}
