package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/backdesk/backdesk/pkg/jwtx"
	"github.com/backdesk/backdesk/pkg/slogx"
)

// SessionCookieName is the cookie the dashboard stores its session token in.
const SessionCookieName = "token"

// AuthnMiddleware authenticates requests carrying a session token either in
// the session cookie or an Authorization bearer header. The cookie takes
// precedence when both are present.
//
// The two failure modes deliberately produce distinct bodies: a request with
// no credential at all reports "no credential provided", while a credential
// that fails verification reports "invalid token". Both deny access.
func AuthnMiddleware(v jwtx.Verifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			raw := extractToken(r)
			if raw == "" {
				WriteError(w, http.StatusUnauthorized, "no credential provided")
				return
			}

			claims, err := v.Verify(raw)
			if err != nil {
				log.Warn("token verify failed", "err", err)
				WriteError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			ctx = contextWithAuth(ctx, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken pulls the raw token from the request. Cookie first, then the
// Authorization header.
func extractToken(r *http.Request) string {
	if c, err := r.Cookie(SessionCookieName); err == nil && c.Value != "" {
		return c.Value
	}

	authz := r.Header.Get("Authorization")
	if strings.HasPrefix(authz, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))
	}
	return ""
}

func contextWithAuth(ctx context.Context, c jwtx.Claims) context.Context {
	ctx = context.WithValue(ctx, CtxKeySubject, c.Subject)
	ctx = context.WithValue(ctx, CtxKeyRole, c.Role)
	ctx = context.WithValue(ctx, CtxKeyClaims, c)
	return ctx
}
