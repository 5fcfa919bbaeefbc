package dashsdk

// Role is the closed set of dashboard roles as they appear on the wire.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleClient Role = "client"
)

// DashboardPath is the root of the area a role lands on after sign-in.
func (r Role) DashboardPath() string {
	switch r {
	case RoleAdmin:
		return "/admin"
	default:
		return "/dashboard"
	}
}

// SignupRequest creates a client-role account.
type SignupRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest starts authentication. Success issues an OTP challenge rather
// than a token.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the challenge to complete with an OTP.
type LoginResponse struct {
	ChallengeID string `json:"challenge_id"`
}

// OTPRequest completes a challenge. Method is "otp" for the delivered code or
// "totp" for an authenticator code; Remember selects the persistent session
// tier on the client.
type OTPRequest struct {
	ChallengeID string `json:"challenge_id"`
	Code        string `json:"code"`
	Method      string `json:"method,omitempty"`
	Remember    bool   `json:"remember,omitempty"`
}

// SessionResponse is returned when a challenge is accepted. The same token is
// also set as the session cookie.
type SessionResponse struct {
	Token   string        `json:"token"`
	Session SessionRecord `json:"session"`
}

// UserInfo is the authenticated identity as the service reports it. UserID is
// the public identifier, never the storage key.
type UserInfo struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	Username    string `json:"username"`
	Role        Role   `json:"role"`
	Name        string `json:"name,omitempty"`
	Contact     string `json:"contact,omitempty"`
	Location    string `json:"location,omitempty"`
	TOTPEnabled bool   `json:"totp_enabled"`
}

// ProfileRequest updates the free-form profile fields.
type ProfileRequest struct {
	Name     string `json:"name"`
	Contact  string `json:"contact"`
	Location string `json:"location"`
}

// UsersResponse is the admin listing.
type UsersResponse struct {
	Users []UserInfo `json:"users"`
}

// BootstrapRequest creates the first admin on an empty database.
type BootstrapRequest struct {
	Token    string `json:"token"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

// TOTPEnrollResponse carries the material for authenticator setup.
type TOTPEnrollResponse struct {
	Secret string `json:"secret"`
	URL    string `json:"url"`
}

// TOTPActivateRequest confirms enrollment with an authenticator code.
type TOTPActivateRequest struct {
	Code string `json:"code"`
}

// HealthResponse reports liveness/readiness.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime,omitempty"`
	Version string        `json:"version,omitempty"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks itemizes the readiness probes.
type HealthChecks struct {
	Database string `json:"database"`
	Signer   string `json:"signer"`
}

// ErrorResponse is the service's standard error body.
type ErrorResponse struct {
	Error string `json:"error"`
}
