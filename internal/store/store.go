package store

import (
	"context"
	"errors"
	"time"

	"github.com/backdesk/backdesk/internal/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite today)
// implement this. Sub-repositories keep concerns tidy and testable, and the
// explicit Tx type stops transactions being opened inside transactions.
type Store interface {
	Users() Users
	Challenges() Challenges

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, rolling back when fn errors
	// and committing when it returns nil. Prefer this over Tx directly.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by its storage ID.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByPublicID resolves the identifier carried in session tokens.
	GetUserByPublicID(ctx context.Context, publicID string) (domain.User, error)

	// GetUserByEmail is used during login. Email matching is exact,
	// case-sensitive as stored.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by app via ULID).
	// Returns ErrAlreadyExists when the email is taken.
	CreateUser(ctx context.Context, u domain.User) error

	// UpdateProfile mutates the free-form profile fields and bumps updated_at.
	UpdateProfile(ctx context.Context, userID, name, contact, location string) error

	// UpdatePasswordHash sets the password_hash (argon2) and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, userID, newHash string) error

	// UpdateTOTPSecret stores the pending authenticator secret.
	UpdateTOTPSecret(ctx context.Context, userID, secret string) error

	// EnableTOTP marks authenticator enrollment complete.
	EnableTOTP(ctx context.Context, userID string) error

	// DisableTOTP clears the authenticator secret and enabled timestamp.
	DisableTOTP(ctx context.Context, userID string) error

	// ListUsers returns all users ordered by creation date (newest first).
	ListUsers(ctx context.Context) ([]domain.User, error)

	// IsEmpty returns true if there are no users.
	IsEmpty(ctx context.Context) (bool, error)
}

type Challenges interface {
	// CreateChallenge stores a freshly issued challenge.
	CreateChallenge(ctx context.Context, c domain.Challenge) error

	// GetChallenge returns a challenge by ID.
	GetChallenge(ctx context.Context, id string) (domain.Challenge, error)

	// ConsumeChallenge marks a challenge consumed with the given outcome.
	// The update is conditional on the challenge still being open, so of any
	// number of concurrent callers exactly one observes consumed=true.
	ConsumeChallenge(ctx context.Context, id string, outcome domain.Outcome, at time.Time) (bool, error)

	// DeleteCreatedBefore removes challenges issued before the cutoff,
	// returning how many were deleted.
	DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
