package jwtx

import "errors"

var (
	// ErrMalformed indicates the token could not be parsed at all.
	ErrMalformed = errors.New("malformed token")

	// ErrAlgMismatch indicates the token header names an algorithm this
	// verifier does not accept.
	ErrAlgMismatch = errors.New("algorithm mismatch")

	// ErrUnknownKID indicates the token names a key the verifier does not hold.
	ErrUnknownKID = errors.New("unknown key id")

	// ErrInvalidSig indicates the signature does not verify under the named key.
	ErrInvalidSig = errors.New("invalid signature")
)

// Verifier checks a compact serialized token and returns its claims.
// Implementations verify the signature before evaluating any claim, so an
// expired-but-forged token reports a signature failure, not expiry.
type Verifier interface {
	Verify(token string) (Claims, error)
}
