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
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrDuplicateEmail     = errors.New("duplicate_email")
)

// CredentialService owns the user table: signup, lookup, and password
// verification. It never touches challenges or tokens.
type CredentialService struct {
	Store store.Store
}

// Signup creates a client-role user. Open signup never grants admin; the first
// admin comes from bootstrap.
func (s *CredentialService) Signup(
	ctx context.Context,
	email, username, password string,
) (domain.User, error) {
	l := slogx.FromContext(ctx)

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		l.Error("failed to hash password", slog.Any("error", err))
		return domain.User{}, err
	}

	u := domain.User{
		ID:           idx.New().String(),
		PublicID:     uuid.NewString(),
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		Role:         domain.RoleClient,
	}

	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrDuplicateEmail
		}
		return domain.User{}, err
	}

	l.Info("user created", slog.String("user_id", u.ID))
	return s.Store.Users().GetUserByID(ctx, u.ID)
}

// FindByEmail looks a user up by exact email. Missing users surface as
// store.ErrNotFound; callers on the login path must collapse that into
// ErrInvalidCredentials before it reaches the wire.
func (s *CredentialService) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	return s.Store.Users().GetUserByEmail(ctx, email)
}

// GetByPublicID resolves the identifier carried in session tokens.
func (s *CredentialService) GetByPublicID(ctx context.Context, publicID string) (domain.User, error) {
	return s.Store.Users().GetUserByPublicID(ctx, publicID)
}

// VerifyPassword checks a candidate password against the user's stored hash.
// Comparison over secret material is constant-time inside cryptox.
func (s *CredentialService) VerifyPassword(user domain.User, candidate string) bool {
	return cryptox.VerifyPassword(candidate, user.PasswordHash) == nil
}

// Authenticate combines lookup and password verification for the login path.
// Both unknown email and wrong password yield ErrInvalidCredentials so the
// response never reveals which half failed.
func (s *CredentialService) Authenticate(ctx context.Context, email, password string) (domain.User, error) {
	user, err := s.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}

	if !s.VerifyPassword(user, password) {
		return domain.User{}, ErrInvalidCredentials
	}

	return user, nil
}

// UpdateProfile mutates the free-form profile fields.
func (s *CredentialService) UpdateProfile(
	ctx context.Context,
	userID, name, contact, location string,
) (domain.User, error) {
	if err := s.Store.Users().UpdateProfile(ctx, userID, name, contact, location); err != nil {
		return domain.User{}, err
	}
	return s.Store.Users().GetUserByID(ctx, userID)
}

// ListUsers returns all users, newest first.
func (s *CredentialService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.Store.Users().ListUsers(ctx)
}
