package httpx

import "context"

type ctxKey string

const (
	CtxKeySubject ctxKey = "subject" // public user ID from the token
	CtxKeyRole    ctxKey = "role"
	CtxKeyClaims  ctxKey = "claims" // full jwtx.Claims when needed
)

// SubjectFromContext returns the authenticated caller's public user ID.
func SubjectFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeySubject).(string); ok {
		return v
	}
	return ""
}

// RoleFromContext returns the authenticated caller's role name.
func RoleFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyRole).(string); ok {
		return v
	}
	return ""
}
