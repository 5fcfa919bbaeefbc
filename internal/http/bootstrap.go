package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/backdesk/backdesk/internal/domain"
	"github.com/backdesk/backdesk/internal/service"
	"github.com/backdesk/backdesk/pkg/dashsdk"
	"github.com/backdesk/backdesk/pkg/httpx"
	"github.com/backdesk/backdesk/pkg/slogx"
)

// BootstrapHandler creates the first admin on an empty database.
type BootstrapHandler struct {
	Bootstrap *service.BootstrapService
}

// ServeHTTP handles first-run setup.
//
//	@Summary		Bootstrap the service
//	@Description	Creates the initial admin account. Only works while no users exist; open signup never grants admin.
//	@Tags			Bootstrap
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dashsdk.BootstrapRequest	true	"Admin account and bootstrap token"
//	@Success		201		{object}	dashsdk.UserInfo			"Created admin"
//	@Failure		400		{object}	dashsdk.ErrorResponse		"Malformed request"
//	@Failure		401		{object}	dashsdk.ErrorResponse		"Wrong bootstrap token"
//	@Failure		409		{object}	dashsdk.ErrorResponse		"Already bootstrapped"
//	@Router			/v1/bootstrap [post].
func (h *BootstrapHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req dashsdk.BootstrapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		dashsdk.ErrMalformedRequest.WriteError(w)
		return
	}
	if req.Email == "" || req.Username == "" || req.Password == "" {
		dashsdk.ErrMalformedRequest.WriteError(w)
		return
	}

	admin, err := h.Bootstrap.Bootstrap(ctx, req.Token, domain.BootstrapData{
		AdminEmail:    req.Email,
		AdminUsername: req.Username,
		AdminPassword: req.Password,
		AdminName:     req.Name,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBootstrapAlready):
			(&dashsdk.APIError{StatusCode: http.StatusConflict, Message: "already bootstrapped"}).WriteError(w)
		case errors.Is(err, service.ErrBootstrapUnauthorized):
			(&dashsdk.APIError{StatusCode: http.StatusUnauthorized, Message: "bootstrap token invalid"}).WriteError(w)
		default:
			log.Error("bootstrap failed", "err", err)
			dashsdk.ErrServerError.WriteError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, userInfo(admin))
}
