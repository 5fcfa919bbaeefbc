package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/backdesk/backdesk/pkg/httpx"
	"github.com/backdesk/backdesk/pkg/jwtx"
)

const testIssuer = "https://backdesk.test"

func newAuthStack(t *testing.T) (*jwtx.KeyManager, jwtx.Verifier) {
	t.Helper()
	km, err := jwtx.NewKeyManager(1)
	require.NoError(t, err)
	return km, jwtx.NewEdDSAVerifier(km.KeySet(), testIssuer)
}

func signToken(t *testing.T, km *jwtx.KeyManager, role string) string {
	t.Helper()
	signer, err := km.GetSigner()
	require.NoError(t, err)
	token, err := signer.Sign(jwtx.NewSessionClaims(testIssuer, "pub-1", role, "a@b.c", "alice", time.Minute))
	require.NoError(t, err)
	return token
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthnMiddleware(t *testing.T) {
	km, verifier := newAuthStack(t)
	protected := httpx.Chain(okHandler(), httpx.AuthnMiddleware(verifier))

	t.Run("no credential", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.JSONEq(t, `{"error":"no credential provided"}`, rec.Body.String())
	})

	t.Run("invalid bearer token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.JSONEq(t, `{"error":"invalid token"}`, rec.Body.String())
	})

	t.Run("valid bearer token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, km, "admin"))
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("valid cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: httpx.SessionCookieName, Value: signToken(t, km, "client")})
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("cookie takes precedence over bearer", func(t *testing.T) {
		// Bad cookie plus good bearer must fail: the cookie wins.
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: httpx.SessionCookieName, Value: "stale-or-garbage"})
		req.Header.Set("Authorization", "Bearer "+signToken(t, km, "admin"))
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.JSONEq(t, `{"error":"invalid token"}`, rec.Body.String())
	})
}

func TestRequireRole(t *testing.T) {
	km, verifier := newAuthStack(t)

	var gotSubject, gotRole string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSubject = httpx.SubjectFromContext(r.Context())
		gotRole = httpx.RoleFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	adminOnly := httpx.Chain(inner,
		httpx.AuthnMiddleware(verifier),
		httpx.RequireRole("admin"),
	)

	t.Run("matching role admitted", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, km, "admin"))
		rec := httptest.NewRecorder()
		adminOnly.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "pub-1", gotSubject)
		require.Equal(t, "admin", gotRole)
	})

	t.Run("wrong role rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, km, "client"))
		rec := httptest.NewRecorder()
		adminOnly.ServeHTTP(rec, req)

		require.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestChainOrder(t *testing.T) {
	var order []string
	tag := func(name string) httpx.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := httpx.Chain(okHandler(), tag("outer"), tag("inner"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, []string{"outer", "inner"}, order)
}

func TestIPKeyExtractor(t *testing.T) {
	t.Run("extracts from RemoteAddr", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.1:12345"

		require.Equal(t, "192.168.1.1", httpx.IPKeyExtractor(req))
	})

	t.Run("prefers X-Forwarded-For", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		req.Header.Set("X-Forwarded-For", "203.0.113.1, 192.168.1.1")

		require.Equal(t, "203.0.113.1", httpx.IPKeyExtractor(req))
	})
}

func TestJSONFieldKeyExtractor(t *testing.T) {
	extractor := httpx.JSONFieldKeyExtractor("email")

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"ops@example.com","password":"x"}`))
	require.Equal(t, "ops@example.com", extractor(req))

	// Body must still be readable by the handler afterwards.
	var buf [64]byte
	n, _ := req.Body.Read(buf[:])
	require.Contains(t, string(buf[:n]), "ops@example.com")
}

func TestRateLimitMiddleware(t *testing.T) {
	cfg := httpx.RateLimitConfig{RequestsPerWindow: 2, Window: time.Minute, Burst: 2}
	limited := httpx.Chain(okHandler(), httpx.RateLimitByIP(cfg))

	send := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, req)
		return rec
	}

	require.Equal(t, http.StatusOK, send("10.0.0.1:1").Code)
	require.Equal(t, http.StatusOK, send("10.0.0.1:2").Code)

	blocked := send("10.0.0.1:3")
	require.Equal(t, http.StatusTooManyRequests, blocked.Code)
	require.NotEmpty(t, blocked.Header().Get("Retry-After"))

	// A different IP has its own bucket.
	require.Equal(t, http.StatusOK, send("10.0.0.2:1").Code)
}
