package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/backdesk/backdesk/internal/domain"
	"github.com/backdesk/backdesk/internal/store"
	"github.com/backdesk/backdesk/pkg/cryptox"
	"github.com/backdesk/backdesk/pkg/idx"
	"github.com/backdesk/backdesk/pkg/slogx"
)

var (
	ErrBootstrapAlready      = errors.New("system already bootstrapped")
	ErrBootstrapUnauthorized = errors.New("unauthorized bootstrap attempt")
)

// BootstrapService creates the first admin account on an empty database.
// Open signup only ever creates client users, so this is the sole path to an
// initial admin.
type BootstrapService struct {
	Store store.Store
	Token string // pre-configured bootstrap token; empty disables the check
}

func (s *BootstrapService) IsBootstrapped(ctx context.Context) (bool, error) {
	empty, err := s.Store.Users().IsEmpty(ctx)
	if err != nil {
		return false, err
	}
	return !empty, nil
}

// Bootstrap creates the admin user. Refuses once any user exists.
func (s *BootstrapService) Bootstrap(
	ctx context.Context,
	token string,
	req domain.BootstrapData,
) (domain.User, error) {
	l := slogx.FromContext(ctx)

	if bootstrapped, err := s.IsBootstrapped(ctx); err != nil {
		return domain.User{}, err
	} else if bootstrapped {
		l.Warn("attempted bootstrap on already-bootstrapped system")
		return domain.User{}, ErrBootstrapAlready
	}

	if s.Token != "" && token != s.Token {
		l.Warn("unauthorized bootstrap attempt")
		return domain.User{}, ErrBootstrapUnauthorized
	}

	hash, err := cryptox.HashPassword(req.AdminPassword)
	if err != nil {
		l.Error("failed to hash admin password", slog.Any("error", err))
		return domain.User{}, err
	}

	admin := domain.User{
		ID:           idx.New().String(),
		PublicID:     uuid.NewString(),
		Email:        req.AdminEmail,
		Username:     req.AdminUsername,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		Name:         req.AdminName,
	}

	// The emptiness check and the insert run in one transaction so two racing
	// bootstrap calls cannot both succeed.
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		empty, err := tx.Users().IsEmpty(ctx)
		if err != nil {
			return err
		}
		if !empty {
			return ErrBootstrapAlready
		}
		return tx.Users().CreateUser(ctx, admin)
	})
	if err != nil {
		return domain.User{}, err
	}

	l.Info("system bootstrapped", slog.String("admin_id", admin.ID))
	return s.Store.Users().GetUserByID(ctx, admin.ID)
}
