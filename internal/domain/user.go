package domain

import "time"

// User is an account in the credential store. ID is the ULID storage key;
// PublicID is the identifier carried in tokens and exposed over the wire.
type User struct {
	ID           string
	PublicID     string // UUID, never the storage key
	Email        string // unique, case-sensitive as stored
	Username     string
	PasswordHash string // argon2id PHC encoded
	Role         Role

	// Free-form profile fields.
	Name     string
	Contact  string
	Location string

	TOTPEnabled *time.Time // when the authenticator app was activated (nullable)
	TOTPSecret  *string    // base32 TOTP secret (nullable)

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TOTPActive reports whether the user has completed authenticator enrollment.
func (u User) TOTPActive() bool {
	return u.TOTPEnabled != nil && u.TOTPSecret != nil
}
