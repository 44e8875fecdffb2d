package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Server       ServerConfig       `envPrefix:"SESSIOND_SERVER_"`
	Log          LogConfig          `envPrefix:"SESSIOND_LOG_"`
	Database     DatabaseConfig     `envPrefix:"SESSIOND_DB_"`
	JWT          JWTConfig          `envPrefix:"SESSIOND_JWT_"`
	RefreshToken RefreshTokenConfig `envPrefix:"SESSIOND_REFRESH_"`
	RateLimit    RateLimitConfig    `envPrefix:"SESSIOND_RATELIMIT_"`
	Auth         AuthConfig         `envPrefix:"SESSIOND_AUTH_"`
	Admin        AdminConfig        `envPrefix:"SESSIOND_ADMIN_"`
}

type ServerConfig struct {
	Port string `env:"PORT" envDefault:"8080"`
	Host string `env:"HOST" envDefault:"localhost"`
}

type LogConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"json"`
	Output string `env:"OUTPUT" envDefault:"stdout"`
}

type DatabaseConfig struct {
	Driver      string `env:"DRIVER" envDefault:"sqlite"`
	DSN         string `env:"DSN" envDefault:"sessiond.db"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" envDefault:"true"`
}

type JWTConfig struct {
	SecretKey    string        `env:"SECRET_KEY"`
	Algorithm    string        `env:"ALGORITHM" envDefault:"HS256"`
	Issuer       string        `env:"ISSUER" envDefault:"sessiond"`
	AccessExpiry time.Duration `env:"ACCESS_EXPIRY" envDefault:"15m"`
}

type RefreshTokenConfig struct {
	Expiry time.Duration `env:"EXPIRY" envDefault:"24h"`
	// CookieSecure stays false until the deployment fronts TLS itself.
	CookieSecure bool   `env:"COOKIE_SECURE" envDefault:"false"`
	CookieName   string `env:"COOKIE_NAME" envDefault:"refreshToken"`
}

type RateLimitConfig struct {
	Window      time.Duration `env:"WINDOW" envDefault:"60s"`
	MaxAttempts int           `env:"MAX_ATTEMPTS" envDefault:"3"`
	IPRate      int           `env:"IP_RATE" envDefault:"20"`
	IPPeriod    time.Duration `env:"IP_PERIOD" envDefault:"1m"`
}

type AuthConfig struct {
	BcryptCost int `env:"BCRYPT_COST" envDefault:"10"`
}

type AdminConfig struct {
	AllowedIPs []string `env:"ALLOWED_IPS" envSeparator:"," envDefault:"127.0.0.1"`
}

func LoadConfig(cfg *Config) error {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	if err := env.Parse(cfg); err != nil {
		return err
	}

	return Validate(cfg)
}

func Validate(cfg *Config) error {
	if err := validateJWTConfig(&cfg.JWT); err != nil {
		return err
	}
	if err := validateRateLimitConfig(&cfg.RateLimit); err != nil {
		return err
	}
	if cfg.RefreshToken.Expiry <= 0 {
		return fmt.Errorf("refresh token expiry must be positive")
	}
	return nil
}

var weakSecretPatterns = []string{"password", "secret", "test", "example", "default", "change"}

func validateJWTConfig(cfg *JWTConfig) error {
	if len(cfg.SecretKey) < 32 {
		return fmt.Errorf("JWT secret key must be at least 32 characters long")
	}

	lower := strings.ToLower(cfg.SecretKey)
	for _, pattern := range weakSecretPatterns {
		if strings.Contains(lower, pattern) {
			return fmt.Errorf("JWT secret key contains weak patterns (%q)", pattern)
		}
	}

	if cfg.Algorithm != "HS256" && cfg.Algorithm != "HS384" && cfg.Algorithm != "HS512" {
		return fmt.Errorf("unsupported JWT algorithm: %s (supported: HS256, HS384, HS512)", cfg.Algorithm)
	}

	return nil
}

func validateRateLimitConfig(cfg *RateLimitConfig) error {
	if cfg.Window <= 0 {
		return fmt.Errorf("rate limit window must be positive")
	}
	if cfg.MaxAttempts < 1 {
		return fmt.Errorf("rate limit max attempts must be at least 1")
	}
	return nil
}
