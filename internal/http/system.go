package http

import (
	"net/http"
	"time"

	"github.com/backdesk/backdesk/internal/store"
	"github.com/backdesk/backdesk/pkg/dashsdk"
	"github.com/backdesk/backdesk/pkg/httpx"
	"github.com/backdesk/backdesk/pkg/jwtx"
)

// LivezHandler godoc
//
//	@Summary		Liveness probe
//	@Description	Always returns 200 while the process is running.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	dashsdk.HealthResponse	"status, uptime, version"
//	@Router			/livez [get].
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, dashsdk.HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		})
	}
}

// ReadyzHandler godoc
//
//	@Summary		Readiness probe
//	@Description	Checks the database connection and that signing keys are loaded.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	dashsdk.HealthResponse	"ready"
//	@Failure		503	{object}	dashsdk.HealthResponse	"degraded"
//	@Router			/readyz [get].
func ReadyzHandler(startTime time.Time, version string, st store.Store, keys *jwtx.KeySet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &dashsdk.HealthChecks{Database: "ok", Signer: "ok"}
		status := "ok"
		code := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		if !keys.IsReady() {
			checks.Signer = "error: no keys loaded"
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, code, dashsdk.HealthResponse{
			Status:  status,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}

// JWKSHandler exposes the verification keys for public discovery.
//
//	@Summary		Get JWKS
//	@Description	Returns the JSON Web Key Set used to verify session tokens.
//	@Tags			well-known
//	@Produce		json
//	@Success		200	{object}	jwtx.JWKS	"The JSON Web Key Set"
//	@Router			/.well-known/jwks.json [get].
func JWKSHandler(keys *jwtx.KeySet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, keys.PublicJWKS())
	}
}
