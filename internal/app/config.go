package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Issuer         string // Required: issuer claim for session tokens
	BootstrapToken string // Optional: token required to perform bootstrap

	NumKeys      int    // Optional: number of signing keys to generate (default: 3)
	DatabaseFile string // Optional: path to SQLite database file (default: ./backdesk.db)
	PepperFile   string // Optional: path to pepper file for password hashing (default: ./pepper)

	ProofKeyFile string // Optional: path to the OTP proof encryption key file (default: ./proof.key)
	ProofKeyID   string // Optional: identifier stamped on sealed proofs (default: otp-key-001)

	ChallengeTTL         time.Duration // OTP challenge lifetime (default: 5m)
	TokenTTL             time.Duration // Session token lifetime (default: 15m)
	ChallengeRetention   time.Duration // How long spent challenges are kept (default: 24h)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	cfg := Config{
		Issuer:         getEnvOrDefault("BACKDESK_ISSUER", "backdesk"),
		BootstrapToken: os.Getenv("BOOTSTRAP_TOKEN"),

		NumKeys:      getEnvIntOrDefault("BACKDESK_NUM_KEYS", 3),
		DatabaseFile: getEnvOrDefault("BACKDESK_DATABASE_FILE", "backdesk.db"),
		PepperFile:   getEnvOrDefault("BACKDESK_PEPPER_FILE", "pepper"),

		ProofKeyFile: getEnvOrDefault("BACKDESK_PROOF_KEY_FILE", "proof.key"),
		ProofKeyID:   getEnvOrDefault("BACKDESK_PROOF_KEY_ID", "otp-key-001"),

		ChallengeTTL:         getEnvDurationOrDefault("BACKDESK_CHALLENGE_TTL", 5*time.Minute),
		TokenTTL:             getEnvDurationOrDefault("BACKDESK_TOKEN_TTL", 15*time.Minute),
		ChallengeRetention:   getEnvDurationOrDefault("BACKDESK_CHALLENGE_RETENTION", 24*time.Hour),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", time.Hour),

		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Integer values read as minutes.
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
