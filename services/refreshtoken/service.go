package refreshtoken

import (
	"errors"
	"fmt"
	"time"

	"github.com/mileusna/useragent"
	"github.com/tech-arch1tect/sessiond/services/logging"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrRefreshTokenNotFound = errors.New("refresh token not found")

type Service struct {
	db     *gorm.DB
	logger *logging.Service
}

func NewService(db *gorm.DB, logger *logging.Service) *Service {
	return &Service{
		db:     db,
		logger: logger,
	}
}

// Tx returns a copy of the store bound to the given transaction handle, so
// callers can group token mutations with their own updates.
func (s *Service) Tx(tx *gorm.DB) *Service {
	return &Service{
		db:     tx,
		logger: s.logger,
	}
}

func (s *Service) Create(userID uint, token string, ttl time.Duration, deviceInfo string) (*RefreshToken, error) {
	record := RefreshToken{
		UserID:     userID,
		Token:      token,
		CreatedAt:  time.Now(),
		ExpiresAt:  time.Now().Add(ttl),
		Revoked:    false,
		DeviceInfo: deviceInfo,
	}

	if err := s.db.Create(&record).Error; err != nil {
		if s.logger != nil {
			s.logger.Error("failed to store refresh token", zap.Error(err))
		}
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	if s.logger != nil {
		s.logger.Debug("refresh token stored",
			zap.Uint("user_id", userID),
			zap.Uint("token_id", record.ID),
			zap.Time("expires_at", record.ExpiresAt))
	}

	return &record, nil
}

// FindActive looks up an unrevoked record by token value and owning user.
func (s *Service) FindActive(token string, userID uint) (*RefreshToken, error) {
	var record RefreshToken
	err := s.db.Where("token = ? AND user_id = ? AND revoked = ?", token, userID, false).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRefreshTokenNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &record, nil
}

// Revoke flips revoked false->true for the matching record and reports whether
// the flip happened. The single conditional UPDATE is what makes concurrent
// callers disagree: exactly one sees true, every other sees false. A false
// return means the record is absent or was already consumed.
func (s *Service) Revoke(token string, userID uint) (bool, error) {
	result := s.db.Model(&RefreshToken{}).
		Where("token = ? AND user_id = ? AND revoked = ?", token, userID, false).
		Update("revoked", true)

	if result.Error != nil {
		if s.logger != nil {
			s.logger.Error("failed to revoke refresh token", zap.Error(result.Error))
		}
		return false, fmt.Errorf("failed to revoke refresh token: %w", result.Error)
	}

	revoked := result.RowsAffected > 0
	if s.logger != nil {
		s.logger.Debug("refresh token revoke attempted",
			zap.Uint("user_id", userID),
			zap.Bool("revoked", revoked))
	}

	return revoked, nil
}

// DeleteAllForUser removes every stored record for the user, revoked or not.
// Called at login to enforce the single-active-session policy; it also bounds
// table growth to roughly one live record per user.
func (s *Service) DeleteAllForUser(userID uint) error {
	result := s.db.Where("user_id = ?", userID).Delete(&RefreshToken{})

	if result.Error != nil {
		if s.logger != nil {
			s.logger.Error("failed to delete user refresh tokens",
				zap.Error(result.Error),
				zap.Uint("user_id", userID))
		}
		return fmt.Errorf("failed to delete user refresh tokens: %w", result.Error)
	}

	if s.logger != nil && result.RowsAffected > 0 {
		s.logger.Info("cleaned up prior refresh tokens",
			zap.Uint("user_id", userID),
			zap.Int64("count", result.RowsAffected))
	}

	return nil
}

// DeviceInfoFromUserAgent condenses a raw User-Agent header into a short
// human-readable label stored alongside the token record.
func DeviceInfoFromUserAgent(rawUA string) string {
	if rawUA == "" {
		return ""
	}

	ua := useragent.Parse(rawUA)
	if ua.Name == "" {
		return ""
	}

	label := ua.Name
	if ua.Version != "" {
		label += " " + ua.Version
	}
	if ua.OS != "" {
		label += " on " + ua.OS
	}
	return label
}
