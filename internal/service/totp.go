package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/pquerna/otp/totp"

	"github.com/backdesk/backdesk/internal/domain"
	"github.com/backdesk/backdesk/internal/store"
	"github.com/backdesk/backdesk/pkg/slogx"
)

var (
	ErrTOTPNotEnrolled = errors.New("totp not enrolled")
	ErrTOTPBadCode     = errors.New("totp code invalid")
)

// TOTPService manages authenticator-app enrollment. Enrollment is two-step:
// Enroll stores a pending secret, Activate confirms the user's authenticator
// produces matching codes before the factor is trusted.
type TOTPService struct {
	Store  store.Store
	Issuer string // shown in the authenticator app
}

// Enroll generates a fresh secret for the user and stores it pending
// activation. Re-enrolling replaces any previous secret.
func (s *TOTPService) Enroll(ctx context.Context, user domain.User) (domain.TOTPEnrollment, error) {
	l := slogx.FromContext(ctx)

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.Issuer,
		AccountName: user.Email,
	})
	if err != nil {
		return domain.TOTPEnrollment{}, err
	}

	if err := s.Store.Users().UpdateTOTPSecret(ctx, user.ID, key.Secret()); err != nil {
		return domain.TOTPEnrollment{}, err
	}

	l.Info("totp enrollment started", slog.String("user_id", user.ID))
	return domain.TOTPEnrollment{
		Secret:  key.Secret(),
		URL:     key.URL(),
		Issuer:  s.Issuer,
		Account: user.Email,
	}, nil
}

// Activate confirms enrollment with a code from the user's authenticator.
func (s *TOTPService) Activate(ctx context.Context, user domain.User, code string) error {
	l := slogx.FromContext(ctx)

	fresh, err := s.Store.Users().GetUserByID(ctx, user.ID)
	if err != nil {
		return err
	}
	if fresh.TOTPSecret == nil {
		return ErrTOTPNotEnrolled
	}

	if !totp.Validate(code, *fresh.TOTPSecret) {
		return ErrTOTPBadCode
	}

	if err := s.Store.Users().EnableTOTP(ctx, user.ID); err != nil {
		return err
	}

	l.Info("totp activated", slog.String("user_id", user.ID))
	return nil
}

// Disable removes the authenticator factor.
func (s *TOTPService) Disable(ctx context.Context, user domain.User) error {
	return s.Store.Users().DisableTOTP(ctx, user.ID)
}
