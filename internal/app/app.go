package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	internalhttp "github.com/backdesk/backdesk/internal/http"
	"github.com/backdesk/backdesk/internal/service"
	"github.com/backdesk/backdesk/internal/store"
	"github.com/backdesk/backdesk/internal/store/drivers/sqlite"
	"github.com/backdesk/backdesk/pkg/cryptox"
	"github.com/backdesk/backdesk/pkg/jwtx"
	"github.com/backdesk/backdesk/pkg/slogx"
)

const buildVersion = "v0.1.0"

// Application wires the store, services, and HTTP server together.
type Application struct {
	cfg    Config
	logger *slog.Logger

	store      store.Store
	keyManager *jwtx.KeyManager

	credentials  *service.CredentialService
	challenges   *service.ChallengeService
	tokens       *service.TokenService
	totp         *service.TOTPService
	bootstrap    *service.BootstrapService
	housekeeping *service.HousekeepingService

	router *internalhttp.Router
	server *http.Server
}

func New(cfg Config) (*Application, error) {
	logger := slogx.New(slogx.Config{
		Service: "backdesk",
		Version: buildVersion,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})

	cryptox.SetPepperPath(cfg.PepperFile)

	app := &Application{
		cfg:    cfg,
		logger: logger,
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initServices(); err != nil {
		return nil, err
	}

	app.initHTTP()

	return app, nil
}

func (a *Application) initDatabase() error {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", a.cfg.DatabaseFile)

	st, err := sqlite.NewStore(dsn)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	if err := st.ApplyMigrations(); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	a.store = st
	a.logger.Info("database ready", "file", a.cfg.DatabaseFile)
	return nil
}

func (a *Application) initServices() error {
	box, err := cryptox.LoadSecretBox(a.cfg.ProofKeyID, a.cfg.ProofKeyFile)
	if err != nil {
		return fmt.Errorf("load proof key: %w", err)
	}

	km, err := InitAuthKeys(a.cfg, a.logger)
	if err != nil {
		return err
	}
	a.keyManager = km

	a.credentials = &service.CredentialService{Store: a.store}

	a.challenges = service.NewChallengeService(
		a.store,
		box,
		&service.LogDeliverer{Logger: a.logger},
		a.cfg.ChallengeTTL,
	)

	a.tokens = &service.TokenService{
		KeyManager: km,
		Verifier:   jwtx.NewEdDSAVerifier(km.KeySet(), a.cfg.Issuer),
		Issuer:     a.cfg.Issuer,
		TTL:        a.cfg.TokenTTL,
	}

	a.totp = &service.TOTPService{Store: a.store, Issuer: a.cfg.Issuer}

	a.bootstrap = &service.BootstrapService{Store: a.store, Token: a.cfg.BootstrapToken}

	a.housekeeping = service.NewHousekeepingService(
		a.store,
		a.logger,
		a.cfg.HousekeepingInterval,
		a.cfg.ChallengeRetention,
	)

	return nil
}

func (a *Application) initHTTP() {
	verifier := jwtx.NewEdDSAVerifier(a.keyManager.KeySet(), a.cfg.Issuer)

	router := internalhttp.NewRouter(a.keyManager.KeySet(), verifier, buildVersion, a.store, a.logger)
	router.Credentials = a.credentials
	router.Challenges = a.challenges
	router.Tokens = a.tokens
	router.TOTP = a.totp
	router.Bootstrap = a.bootstrap
	router.ApplyRoutes()

	a.router = router
	a.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// Run starts the server and blocks until SIGINT or SIGTERM.
func (a *Application) Run() error {
	a.housekeeping.Start()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		a.shutdown()
		return err
	case sig := <-sigCh:
		a.logger.Info("shutdown signal received", "signal", sig.String())
		return a.shutdown()
	}
}

func (a *Application) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownGracePeriod)
	defer cancel()

	var firstErr error
	if err := a.server.Shutdown(ctx); err != nil {
		a.logger.Error("http server shutdown failed", "err", err)
		firstErr = err
	}

	a.housekeeping.Stop()

	if err := a.store.Close(); err != nil {
		a.logger.Error("database close failed", "err", err)
		if firstErr == nil {
			firstErr = err
		}
	}

	a.logger.Info("shutdown complete")
	return firstErr
}
