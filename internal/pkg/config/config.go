package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Auth  AuthConfig
	Mongo MongoConfig
	Redis RedisConfig
	SMTP  SMTPConfig
}

type AuthConfig struct {
	JWTSecret string `env:"JWT_SECRET"`
	// TokenTTL is the session token lifetime.
	TokenTTL time.Duration `env:"TOKEN_TTL, default=24h"`
	// ResetTokenTTL bounds how long a password-reset link stays valid.
	ResetTokenTTL time.Duration `env:"RESET_TOKEN_TTL, default=1h"`
	// ResetBaseURL is the frontend page the reset link points at.
	ResetBaseURL string `env:"RESET_BASE_URL, default=http://localhost:3000/reset-password"`
	// MaxConcurrentHashes caps bcrypt work running at once.
	MaxConcurrentHashes int `env:"MAX_CONCURRENT_HASHES, default=8"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=hr_backend"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
}

type SMTPConfig struct {
	Host     string `env:"SMTP_HOST, default=localhost"`
	Port     int    `env:"SMTP_PORT, default=587"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"SMTP_FROM, default=no-reply@localhost"`
	// Workers sizes the outbound mail dispatcher pool.
	Workers int `env:"MAIL_WORKERS, default=4"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
