package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/backdesk/backdesk/internal/domain"
	"github.com/backdesk/backdesk/internal/service"
	"github.com/backdesk/backdesk/pkg/dashsdk"
	"github.com/backdesk/backdesk/pkg/httpx"
	"github.com/backdesk/backdesk/pkg/slogx"
)

// SignupHandler creates client-role accounts.
type SignupHandler struct {
	Credentials *service.CredentialService
}

// ServeHTTP handles open signup.
//
//	@Summary		Create an account
//	@Description	Creates a client-role user. Admin accounts only come from bootstrap.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dashsdk.SignupRequest	true	"Account details"
//	@Success		201		{object}	dashsdk.UserInfo		"Created account"
//	@Failure		400		{object}	dashsdk.ErrorResponse	"Malformed request"
//	@Failure		409		{object}	dashsdk.ErrorResponse	"Email already registered"
//	@Router			/v1/auth/signup [post].
func (h *SignupHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req dashsdk.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		dashsdk.ErrMalformedRequest.WriteError(w)
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	req.Username = strings.TrimSpace(req.Username)
	if req.Email == "" || req.Username == "" || req.Password == "" {
		dashsdk.ErrMalformedRequest.WriteError(w)
		return
	}

	user, err := h.Credentials.Signup(ctx, req.Email, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrDuplicateEmail) {
			dashsdk.ErrDuplicateEmail.WriteError(w)
			return
		}
		log.Error("signup failed", "err", err)
		dashsdk.ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, userInfo(user))
}

// LoginHandler validates credentials and issues an OTP challenge.
type LoginHandler struct {
	Credentials *service.CredentialService
	Challenges  *service.ChallengeService
}

// ServeHTTP handles the first authentication step.
//
//	@Summary		Start login
//	@Description	Validates email and password. Success issues an OTP challenge delivered out-of-band; the response carries only the challenge ID.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dashsdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	dashsdk.LoginResponse	"Challenge to complete"
//	@Failure		401		{object}	dashsdk.ErrorResponse	"Invalid email or password"
//	@Router			/v1/auth/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req dashsdk.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		dashsdk.ErrMalformedRequest.WriteError(w)
		return
	}

	user, err := h.Credentials.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			dashsdk.ErrInvalidCredentials.WriteError(w)
			return
		}
		log.Error("login failed", "err", err)
		dashsdk.ErrServerError.WriteError(w)
		return
	}

	challengeID, err := h.Challenges.Issue(ctx, user)
	if err != nil {
		log.Error("challenge issue failed", "err", err)
		dashsdk.ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, dashsdk.LoginResponse{ChallengeID: challengeID})
}

// OTPHandler completes a challenge and issues the session token.
type OTPHandler struct {
	Challenges *service.ChallengeService
	Tokens     *service.TokenService
}

// ServeHTTP handles the second authentication step.
//
//	@Summary		Verify OTP
//	@Description	Consumes a challenge. On acceptance the session token is returned and set as the session cookie. Every failure mode reads the same so the response never explains which check failed.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dashsdk.OTPRequest		true	"Challenge completion"
//	@Success		200		{object}	dashsdk.SessionResponse	"Session token and record"
//	@Failure		401		{object}	dashsdk.ErrorResponse	"Invalid or expired code"
//	@Router			/v1/auth/otp [post].
func (h *OTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req dashsdk.OTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		dashsdk.ErrMalformedRequest.WriteError(w)
		return
	}

	outcome, user, err := h.Challenges.Verify(ctx, req.ChallengeID, req.Code, req.Method)
	if err != nil {
		log.Error("challenge verify failed", "err", err)
		dashsdk.ErrServerError.WriteError(w)
		return
	}
	if outcome != domain.OutcomeAccepted {
		// Rejected and Expired share one message on the wire.
		dashsdk.ErrInvalidCode.WriteError(w)
		return
	}

	token, err := h.Tokens.Issue(user)
	if err != nil {
		log.Error("token issue failed", "err", err)
		dashsdk.ErrServerError.WriteError(w)
		return
	}

	setSessionCookie(w, token, h.Tokens.TTL, req.Remember)

	httpx.WriteJSON(w, http.StatusOK, dashsdk.SessionResponse{
		Token: token,
		Session: dashsdk.SessionRecord{
			IsAuthenticated: true,
			Role:            dashsdk.Role(user.Role.String()),
			Email:           user.Email,
			Username:        user.Username,
		},
	})
}

// setSessionCookie installs the token cookie. Remember-me sessions get a
// Max-Age so the cookie survives browser restarts; otherwise it is a session
// cookie.
func setSessionCookie(w http.ResponseWriter, token string, ttl time.Duration, remember bool) {
	cookie := &http.Cookie{
		Name:     httpx.SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if remember {
		cookie.MaxAge = int(ttl.Seconds())
	}
	http.SetCookie(w, cookie)
}

func userInfo(u domain.User) dashsdk.UserInfo {
	return dashsdk.UserInfo{
		UserID:      u.PublicID,
		Email:       u.Email,
		Username:    u.Username,
		Role:        dashsdk.Role(u.Role.String()),
		Name:        u.Name,
		Contact:     u.Contact,
		Location:    u.Location,
		TOTPEnabled: u.TOTPActive(),
	}
}
