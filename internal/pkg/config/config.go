package config

import (
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	ServerAddr       string        `env:"SERVER_ADDR" envDefault:":8080"`
	MetricsAddr      string        `env:"METRICS_ADDR" envDefault:":9091"`
	PostgresURL      string        `env:"POSTGRES_URL,required"`
	JWTSecret        string        `env:"JWT_SECRET,required"`
	JWTExpiry        time.Duration `env:"JWT_EXPIRY" envDefault:"24h"`
	LogLevel         string        `env:"LOG_LEVEL" envDefault:"info"`
	AuditLogDir      string        `env:"AUDIT_LOG_DIR" envDefault:"logs"`
	DebugLogging     bool          `env:"DEBUG_LOGGING" envDefault:"false"`
	MaxLoginAttempts int           `env:"MAX_LOGIN_ATTEMPTS" envDefault:"5"`
	LoginBlockWindow time.Duration `env:"LOGIN_BLOCK_WINDOW" envDefault:"5m"`
	BcryptCost       int           `env:"BCRYPT_COST" envDefault:"10"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	// Attempt to load .env file for local development.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
