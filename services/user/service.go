package user

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tech-arch1tect/sessiond/services/logging"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrDuplicateUser = errors.New("user already exists")
)

type PasswordHasher interface {
	HashPassword(password string) (string, error)
}

type Service struct {
	db     *gorm.DB
	hasher PasswordHasher
	logger *logging.Service
}

func NewService(db *gorm.DB, hasher PasswordHasher, logger *logging.Service) *Service {
	return &Service{
		db:     db,
		hasher: hasher,
		logger: logger,
	}
}

type CreateUserInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

func (s *Service) Create(input CreateUserInput) (*User, error) {
	hash, err := s.hasher.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	u := User{
		FirstName:      strings.ToLower(input.FirstName),
		LastName:       strings.ToLower(input.LastName),
		Email:          strings.ToLower(input.Email),
		HashedPassword: hash,
	}

	if err := s.db.Create(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if s.logger != nil {
				s.logger.Warn("user creation rejected - duplicate email",
					zap.String("email", u.Email))
			}
			return nil, ErrDuplicateUser
		}
		if s.logger != nil {
			s.logger.Error("failed to create user", zap.Error(err))
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("user created",
			zap.Uint("user_id", u.ID),
			zap.String("email", u.Email))
	}

	return &u, nil
}

func (s *Service) GetByEmail(email string) (*User, error) {
	var u User
	err := s.db.Where("email = ?", strings.ToLower(email)).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &u, nil
}

func (s *Service) GetByID(id uint) (*User, error) {
	var u User
	err := s.db.First(&u, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &u, nil
}

func (s *Service) List() ([]User, error) {
	var users []User
	if err := s.db.Order("id").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return users, nil
}
