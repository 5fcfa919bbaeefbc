package http

import (
	"log/slog"
	"net/http"
	"time"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/backdesk/backdesk/internal/domain"
	"github.com/backdesk/backdesk/internal/service"
	"github.com/backdesk/backdesk/internal/store"
	"github.com/backdesk/backdesk/pkg/httpx"
	"github.com/backdesk/backdesk/pkg/jwtx"
	"github.com/backdesk/backdesk/pkg/slogx"

	_ "github.com/backdesk/backdesk/api" // Swagger docs
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	keys         *jwtx.KeySet
	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store store.Store

	Credentials *service.CredentialService
	Challenges  *service.ChallengeService
	Tokens      *service.TokenService
	TOTP        *service.TOTPService
	Bootstrap   *service.BootstrapService
}

func NewRouter(
	keys *jwtx.KeySet,
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		keys:         keys,
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerTOTP()
	r.registerAdmin()
	r.registerBootstrap()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler and applies the global middleware chain.
//
//	@title			Backdesk Authorization Service API
//	@version		0.1.0
//	@description	Credential and session authorization service for the backdesk dashboard: OTP challenge login, session token issuance, and role-gated access.
//	@description
//	@description				Session tokens are EdDSA-signed JWTs verifiable against the JWKS endpoint. They travel either in the "token" cookie or an Authorization bearer header; the cookie wins when both are present.
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Session token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	// POST /signup - strict rate limit by IP (public account creation)
	r.Mux.Handle("POST /v1/auth/signup",
		httpx.Chain(&SignupHandler{Credentials: r.Credentials},
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /login - limited by IP + submitted email to slow brute force on
	// a single account without letting one attacker starve an office NAT.
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(&LoginHandler{Credentials: r.Credentials, Challenges: r.Challenges},
			httpx.RateLimitByIPAndJSONField(httpx.StrictLimit, "email"),
		),
	)

	// POST /otp - strict rate limit by IP (code guessing)
	r.Mux.Handle("POST /v1/auth/otp",
		httpx.Chain(&OTPHandler{Challenges: r.Challenges, Tokens: r.Tokens},
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// Authenticated identity endpoints - lenient limits by subject
	r.Mux.Handle("GET /v1/auth/me",
		httpx.Chain(&MeHandler{Credentials: r.Credentials},
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitBySubject(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("PUT /v1/auth/profile",
		httpx.Chain(&ProfileHandler{Credentials: r.Credentials},
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitBySubject(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerTOTP() {
	h := &TOTPHandler{Credentials: r.Credentials, TOTP: r.TOTP}

	r.Mux.Handle("POST /v1/auth/totp/enroll",
		httpx.Chain(http.HandlerFunc(h.HandleEnroll),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitBySubject(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/totp/activate",
		httpx.Chain(http.HandlerFunc(h.HandleActivate),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitBySubject(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerAdmin() {
	r.Mux.Handle("GET /v1/admin/users",
		httpx.Chain(&AdminUsersHandler{Credentials: r.Credentials},
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireRole(domain.RoleAdmin.String()),
			httpx.RateLimitBySubject(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerBootstrap() {
	// One-time setup endpoint, strictest limit
	r.Mux.Handle("POST /v1/bootstrap",
		httpx.Chain(&BootstrapHandler{Bootstrap: r.Bootstrap},
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.keys),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /.well-known/jwks.json",
		httpx.Chain(JWKSHandler(r.keys),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
