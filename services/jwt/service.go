package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/tech-arch1tect/sessiond/config"
	"github.com/tech-arch1tect/sessiond/services/logging"
	"go.uber.org/zap"
)

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrMalformedToken   = errors.New("malformed token")
	ErrInvalidSignature = errors.New("invalid token signature")
)

type Claims struct {
	UserID uint   `json:"user_id"`
	JTI    string `json:"jti"`
	jwt.RegisteredClaims
}

// ExpiresAtTime returns the embedded expiry, zero if absent.
func (c *Claims) ExpiresAtTime() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

type Service struct {
	config *config.Config
	logger *logging.Service
	parser *jwt.Parser
}

func NewService(cfg *config.Config, logger *logging.Service) *Service {
	return &Service{
		config: cfg,
		logger: logger,
		// Expiry is policy, not structure: the session manager decides what an
		// expired token means, so the parser leaves claims unvalidated.
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{cfg.JWT.Algorithm}),
			jwt.WithoutClaimsValidation(),
		),
	}
}

func (s *Service) AccessExpiry() time.Duration {
	return s.config.JWT.AccessExpiry
}

func (s *Service) RefreshExpiry() time.Duration {
	return s.config.RefreshToken.Expiry
}

// IssueAccessToken signs a short-lived access token for the given identity.
func (s *Service) IssueAccessToken(userID uint, subject string) (string, error) {
	return s.issue(userID, subject, s.config.JWT.AccessExpiry)
}

// IssueRefreshToken signs a long-lived refresh token. The JTI claim makes every
// issued token value unique, even for the same identity and expiry second.
func (s *Service) IssueRefreshToken(userID uint, subject string) (string, error) {
	return s.issue(userID, subject, s.config.RefreshToken.Expiry)
}

func (s *Service) issue(userID uint, subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	jti := uuid.New().String()
	claims := Claims{
		UserID: userID,
		JTI:    jti,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    s.config.JWT.Issuer,
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	method := jwt.GetSigningMethod(s.config.JWT.Algorithm)
	token := jwt.NewWithClaims(method, claims)
	tokenString, err := token.SignedString([]byte(s.config.JWT.SecretKey))
	if err != nil {
		if s.logger != nil {
			s.logger.Error("failed to sign token", zap.Error(err))
		}
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// Decode verifies signature and structure only. The embedded expiry is returned
// in the claims for the caller to check against its own clock.
func (s *Service) Decode(tokenString string) (*Claims, error) {
	token, err := s.parser.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		return []byte(s.config.JWT.SecretKey), nil
	})

	if err != nil {
		if s.logger != nil {
			s.logger.Warn("token decode failed", zap.Error(err))
		}

		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrMalformedToken
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrInvalidSignature
		default:
			return nil, ErrInvalidToken
		}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
