package httpx

import "net/http"

// RequireRole admits only callers whose token carries one of the listed roles.
// AuthnMiddleware must run earlier in the chain so the role is in context.
func RequireRole(allowed ...string) Middleware {
	want := make(map[string]struct{}, len(allowed))
	for _, r := range allowed {
		want[r] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := RoleFromContext(r.Context())
			if _, ok := want[role]; !ok {
				WriteError(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
