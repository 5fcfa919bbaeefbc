package app

import (
	"fmt"
	"log/slog"

	"github.com/backdesk/backdesk/pkg/jwtx"
)

// InitAuthKeys generates an ephemeral EdDSA signing fleet. Keys live only in
// memory; restarting the process invalidates every outstanding session token,
// which doubles as a fleet-wide session revocation lever.
func InitAuthKeys(cfg Config, logger *slog.Logger) (*jwtx.KeyManager, error) {
	km, err := jwtx.NewKeyManager(cfg.NumKeys)
	if err != nil {
		return nil, fmt.Errorf("generate signing keys: %w", err)
	}

	logger.Info("ephemeral signing keys generated",
		"count", cfg.NumKeys,
		"alg", "EdDSA",
	)

	return km, nil
}
