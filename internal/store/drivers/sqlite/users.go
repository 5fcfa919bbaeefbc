package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/backdesk/backdesk/internal/domain"
)

type usersRepo struct {
	db dbtx
}

const userColumns = `id, public_id, email, username, password_hash, role,
	name, contact, location, totp_enabled, totp_secret, created_at, updated_at`

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *usersRepo) GetUserByPublicID(ctx context.Context, publicID string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE public_id = ?`, publicID)
	return scanUser(row)
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, public_id, email, username, password_hash, role,
			name, contact, location, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.PublicID, u.Email, u.Username, u.PasswordHash, u.Role.String(),
		u.Name, u.Contact, u.Location, now, now,
	)
	return mapConstraint(err)
}

func (r *usersRepo) UpdateProfile(ctx context.Context, userID, name, contact, location string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users SET name = ?, contact = ?, location = ?, updated_at = ?
		WHERE id = ?`,
		name, contact, location, time.Now().UTC(), userID,
	)
	return err
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, userID, newHash string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		newHash, time.Now().UTC(), userID,
	)
	return err
}

func (r *usersRepo) UpdateTOTPSecret(ctx context.Context, userID, secret string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users SET totp_secret = ?, updated_at = ? WHERE id = ?`,
		secret, time.Now().UTC(), userID,
	)
	return err
}

func (r *usersRepo) EnableTOTP(ctx context.Context, userID string) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		UPDATE users SET totp_enabled = ?, updated_at = ? WHERE id = ?`,
		now, now, userID,
	)
	return err
}

func (r *usersRepo) DisableTOTP(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users SET totp_enabled = NULL, totp_secret = NULL, updated_at = ?
		WHERE id = ?`,
		time.Now().UTC(), userID,
	)
	return err
}

func (r *usersRepo) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *usersRepo) IsEmpty(ctx context.Context) (bool, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return false, err
	}
	return count == 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (domain.User, error) {
	var (
		u           domain.User
		role        string
		totpEnabled sql.NullTime
		totpSecret  sql.NullString
	)

	err := row.Scan(
		&u.ID, &u.PublicID, &u.Email, &u.Username, &u.PasswordHash, &role,
		&u.Name, &u.Contact, &u.Location, &totpEnabled, &totpSecret,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}

	parsed, err := domain.ParseRole(role)
	if err != nil {
		return domain.User{}, err
	}
	u.Role = parsed

	u.TOTPEnabled = mapNullTimePtr(totpEnabled)
	u.TOTPSecret = mapNullStringPtr(totpSecret)

	return u, nil
}
