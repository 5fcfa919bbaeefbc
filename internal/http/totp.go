package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/backdesk/backdesk/internal/service"
	"github.com/backdesk/backdesk/pkg/dashsdk"
	"github.com/backdesk/backdesk/pkg/httpx"
	"github.com/backdesk/backdesk/pkg/slogx"
)

// TOTPHandler manages authenticator-app enrollment for the signed-in user.
type TOTPHandler struct {
	Credentials *service.CredentialService
	TOTP        *service.TOTPService
}

// HandleEnroll starts enrollment.
//
//	@Summary		Enroll authenticator
//	@Description	Generates a TOTP secret pending activation and returns it with the otpauth URL.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	dashsdk.TOTPEnrollResponse	"Secret and otpauth URL"
//	@Failure		401	{object}	dashsdk.ErrorResponse		"Missing or invalid session token"
//	@Router			/v1/auth/totp/enroll [post].
func (h *TOTPHandler) HandleEnroll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	user, err := h.Credentials.GetByPublicID(ctx, httpx.SubjectFromContext(ctx))
	if err != nil {
		dashsdk.ErrInvalidToken.WriteError(w)
		return
	}

	enrollment, err := h.TOTP.Enroll(ctx, user)
	if err != nil {
		log.Error("totp enroll failed", "err", err)
		dashsdk.ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, dashsdk.TOTPEnrollResponse{
		Secret: enrollment.Secret,
		URL:    enrollment.URL,
	})
}

// HandleActivate confirms enrollment.
//
//	@Summary		Activate authenticator
//	@Description	Confirms enrollment with a code from the authenticator app.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Accept			json
//	@Success		204	"Authenticator active"
//	@Failure		400	{object}	dashsdk.ErrorResponse	"No pending enrollment or bad code"
//	@Failure		401	{object}	dashsdk.ErrorResponse	"Missing or invalid session token"
//	@Router			/v1/auth/totp/activate [post].
func (h *TOTPHandler) HandleActivate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req dashsdk.TOTPActivateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		dashsdk.ErrMalformedRequest.WriteError(w)
		return
	}

	user, err := h.Credentials.GetByPublicID(ctx, httpx.SubjectFromContext(ctx))
	if err != nil {
		dashsdk.ErrInvalidToken.WriteError(w)
		return
	}

	if err := h.TOTP.Activate(ctx, user, req.Code); err != nil {
		if errors.Is(err, service.ErrTOTPBadCode) || errors.Is(err, service.ErrTOTPNotEnrolled) {
			dashsdk.ErrMalformedRequest.WriteError(w)
			return
		}
		dashsdk.ErrServerError.WriteError(w)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
