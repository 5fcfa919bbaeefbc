package dashsdk

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// APIError is the service's error shape, usable on both sides of the wire:
// handlers write it, the SDK client parses responses back into it.
type APIError struct {
	// StatusCode is the HTTP status for this error.
	StatusCode int `json:"-"`

	// Message is the body's "error" field.
	Message string `json:"error"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.StatusCode, e.Message)
}

// WriteError writes this error as the standard {"error": "..."} body.
func (e *APIError) WriteError(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": e.Message})
}

var (
	// ErrNoCredential: the request carried neither cookie nor bearer token.
	ErrNoCredential = &APIError{
		StatusCode: http.StatusUnauthorized,
		Message:    "no credential provided",
	}

	// ErrInvalidToken: a credential was presented but failed verification.
	// Kept distinct from ErrNoCredential for client messaging; both deny.
	ErrInvalidToken = &APIError{
		StatusCode: http.StatusUnauthorized,
		Message:    "invalid token",
	}

	// ErrInvalidCredentials deliberately covers both unknown email and wrong
	// password so responses don't enumerate accounts.
	ErrInvalidCredentials = &APIError{
		StatusCode: http.StatusUnauthorized,
		Message:    "invalid email or password",
	}

	// ErrInvalidCode covers every challenge failure: wrong code, expired,
	// replayed, unknown challenge.
	ErrInvalidCode = &APIError{
		StatusCode: http.StatusUnauthorized,
		Message:    "invalid or expired code",
	}

	ErrDuplicateEmail = &APIError{
		StatusCode: http.StatusConflict,
		Message:    "duplicate_email",
	}

	ErrForbidden = &APIError{
		StatusCode: http.StatusForbidden,
		Message:    "forbidden",
	}

	ErrMalformedRequest = &APIError{
		StatusCode: http.StatusBadRequest,
		Message:    "malformed request",
	}

	ErrServerError = &APIError{
		StatusCode: http.StatusInternalServerError,
		Message:    "internal error",
	}
)
