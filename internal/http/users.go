package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/backdesk/backdesk/internal/service"
	"github.com/backdesk/backdesk/internal/store"
	"github.com/backdesk/backdesk/pkg/dashsdk"
	"github.com/backdesk/backdesk/pkg/httpx"
	"github.com/backdesk/backdesk/pkg/slogx"
)

// MeHandler returns the authenticated identity.
type MeHandler struct {
	Credentials *service.CredentialService
}

// ServeHTTP handles identity lookup for the signed-in user.
//
//	@Summary		Get current user
//	@Description	Returns the authenticated user's identity, role, and profile fields.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	dashsdk.UserInfo		"Current user"
//	@Failure		401	{object}	dashsdk.ErrorResponse	"Missing or invalid session token"
//	@Router			/v1/auth/me [get].
func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	user, err := h.Credentials.GetByPublicID(ctx, httpx.SubjectFromContext(ctx))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			dashsdk.ErrInvalidToken.WriteError(w)
			return
		}
		log.Warn("failed to load user", "err", err)
		dashsdk.ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, userInfo(user))
}

// ProfileHandler edits the free-form profile fields.
type ProfileHandler struct {
	Credentials *service.CredentialService
}

// ServeHTTP handles profile updates.
//
//	@Summary		Update profile
//	@Description	Updates the caller's name, contact, and location fields.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dashsdk.ProfileRequest	true	"Profile fields"
//	@Success		200		{object}	dashsdk.UserInfo		"Updated user"
//	@Failure		401		{object}	dashsdk.ErrorResponse	"Missing or invalid session token"
//	@Router			/v1/auth/profile [put].
func (h *ProfileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req dashsdk.ProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		dashsdk.ErrMalformedRequest.WriteError(w)
		return
	}

	user, err := h.Credentials.GetByPublicID(ctx, httpx.SubjectFromContext(ctx))
	if err != nil {
		dashsdk.ErrInvalidToken.WriteError(w)
		return
	}

	updated, err := h.Credentials.UpdateProfile(ctx, user.ID, req.Name, req.Contact, req.Location)
	if err != nil {
		log.Error("profile update failed", "err", err)
		dashsdk.ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, userInfo(updated))
}

// AdminUsersHandler lists all accounts. Admin only.
type AdminUsersHandler struct {
	Credentials *service.CredentialService
}

// ServeHTTP handles the admin account listing.
//
//	@Summary		List users
//	@Description	Returns every account, newest first. Requires the admin role.
//	@Tags			Admin
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	dashsdk.UsersResponse	"All accounts"
//	@Failure		401	{object}	dashsdk.ErrorResponse	"Missing or invalid session token"
//	@Failure		403	{object}	dashsdk.ErrorResponse	"Caller is not an admin"
//	@Router			/v1/admin/users [get].
func (h *AdminUsersHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	users, err := h.Credentials.ListUsers(ctx)
	if err != nil {
		log.Error("user listing failed", "err", err)
		dashsdk.ErrServerError.WriteError(w)
		return
	}

	out := dashsdk.UsersResponse{Users: make([]dashsdk.UserInfo, 0, len(users))}
	for _, u := range users {
		out.Users = append(out.Users, userInfo(u))
	}

	httpx.WriteJSON(w, http.StatusOK, out)
}
