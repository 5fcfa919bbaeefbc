package jwtx

// Signer signs session token claims under a single named key.
type Signer interface {
	// Alg returns the JWA algorithm name, e.g. "EdDSA".
	Alg() string

	// KID returns the key ID stamped into signed token headers.
	KID() string

	// Sign produces a compact serialized JWT for the claims.
	Sign(claims Claims) (string, error)

	// PublicJWK returns the public half of the signing key for JWKS publication.
	PublicJWK() JWK

	// Validate reports whether the signer holds usable key material.
	Validate() error
}
