package auth

import (
	"errors"

	"github.com/tech-arch1tect/sessiond/config"
	"github.com/tech-arch1tect/sessiond/services/logging"
	"github.com/tech-arch1tect/sessiond/services/user"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrPasswordHashingFailed = errors.New("failed to hash password")
	ErrInvalidCredentials    = errors.New("invalid credentials")
)

// dummyHash keeps the unknown-user path doing the same bcrypt work as the
// wrong-password path, so response timing does not reveal which one happened.
var dummyHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

type UserStore interface {
	GetByEmail(email string) (*user.User, error)
}

type Service struct {
	config *config.Config
	users  UserStore
	logger *logging.Service
}

func NewService(cfg *config.Config, logger *logging.Service) *Service {
	if cfg.Auth.BcryptCost < bcrypt.MinCost || cfg.Auth.BcryptCost > bcrypt.MaxCost {
		cfg.Auth.BcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		config: cfg,
		logger: logger,
	}
}

// SetUserStore wires the user lookup after construction; the user service
// itself depends on this service for password hashing.
func (s *Service) SetUserStore(users UserStore) {
	s.users = users
}

func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.config.Auth.BcryptCost)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("password hashing failed", zap.Error(err))
		}
		return "", ErrPasswordHashingFailed
	}
	return string(hash), nil
}

func (s *Service) VerifyPassword(hashedPassword, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// Authenticate resolves a username/password pair to a user. Unknown users and
// wrong passwords fail identically with ErrInvalidCredentials.
func (s *Service) Authenticate(username, password string) (*user.User, error) {
	u, err := s.users.GetByEmail(username)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			if s.logger != nil {
				s.logger.Warn("authentication failed - unknown user")
			}
			return nil, ErrInvalidCredentials
		}
		if s.logger != nil {
			s.logger.Error("authentication failed - user lookup error", zap.Error(err))
		}
		return nil, err
	}

	if err := s.VerifyPassword(u.HashedPassword, password); err != nil {
		if s.logger != nil {
			s.logger.Warn("authentication failed - password mismatch",
				zap.Uint("user_id", u.ID))
		}
		return nil, ErrInvalidCredentials
	}

	if s.logger != nil {
		s.logger.Debug("authentication successful", zap.Uint("user_id", u.ID))
	}

	return u, nil
}
