package domain

// BootstrapData seeds the first admin account on an empty database.
type BootstrapData struct {
	AdminEmail    string
	AdminUsername string
	AdminPassword string
	AdminName     string
}

// TOTPEnrollment is returned when a user starts authenticator enrollment.
type TOTPEnrollment struct {
	Secret  string // base32 secret
	URL     string // otpauth:// URL for QR code generation
	Issuer  string
	Account string // user email
}
