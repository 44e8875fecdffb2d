package testutils

import (
	"time"

	"github.com/tech-arch1tect/sessiond/config"
	"golang.org/x/crypto/bcrypt"
)

func GetTestConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			SecretKey:    "0f8a1b4c7d2e9f3a6b5c8d1e4f7a0b3c",
			Algorithm:    "HS256",
			Issuer:       "sessiond-tests",
			AccessExpiry: 15 * time.Minute,
		},
		RefreshToken: config.RefreshTokenConfig{
			Expiry:     24 * time.Hour,
			CookieName: "refreshToken",
		},
		RateLimit: config.RateLimitConfig{
			Window:      time.Minute,
			MaxAttempts: 3,
			IPRate:      100,
			IPPeriod:    time.Minute,
		},
		Auth: config.AuthConfig{
			BcryptCost: bcrypt.MinCost,
		},
		Admin: config.AdminConfig{
			AllowedIPs: []string{"127.0.0.1"},
		},
		Database: config.DatabaseConfig{
			Driver: "sqlite",
			DSN:    ":memory:",
		},
	}
}
