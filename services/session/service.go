package session

import (
	"errors"
	"time"

	"github.com/tech-arch1tect/sessiond/config"
	"github.com/tech-arch1tect/sessiond/services/auth"
	"github.com/tech-arch1tect/sessiond/services/jwt"
	"github.com/tech-arch1tect/sessiond/services/logging"
	"github.com/tech-arch1tect/sessiond/services/refreshtoken"
	"github.com/tech-arch1tect/sessiond/services/user"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrMissingToken = errors.New("refresh token missing")
	ErrTokenExpired = errors.New("refresh token expired")
	// ErrTokenReuse covers a token presented after it was already consumed:
	// either a stale client replaying after legitimate rotation, or theft.
	ErrTokenReuse = errors.New("refresh token reuse detected")
)

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Manager drives the session lifecycle. It keeps no in-process mutable state;
// everything mutable lives in the store and is touched through transactions.
type Manager struct {
	db       *gorm.DB
	config   *config.Config
	verifier *auth.Service
	codec    *jwt.Service
	tokens   *refreshtoken.Service
	logger   *logging.Service
}

func NewManager(db *gorm.DB, cfg *config.Config, verifier *auth.Service, codec *jwt.Service, tokens *refreshtoken.Service, logger *logging.Service) *Manager {
	return &Manager{
		db:       db,
		config:   cfg,
		verifier: verifier,
		codec:    codec,
		tokens:   tokens,
		logger:   logger,
	}
}

// Login verifies credentials, applies the rate limit, drops any prior session
// for the user and issues a fresh access/refresh pair. The rate limit check,
// the cleanup and the new record share one transaction.
func (m *Manager) Login(username, password, userAgent string) (*TokenPair, error) {
	u, err := m.verifier.Authenticate(username, password)
	if err != nil {
		return nil, err
	}

	var pair *TokenPair
	err = m.db.Transaction(func(tx *gorm.DB) error {
		fresh, err := m.loadUser(tx, u.ID)
		if err != nil {
			return err
		}

		if err := m.applyRateLimit(tx, fresh, time.Now()); err != nil {
			return err
		}

		// Single-active-session policy: logging in invalidates everything
		// issued before, revoked or not.
		if err := m.tokens.Tx(tx).DeleteAllForUser(fresh.ID); err != nil {
			return err
		}

		pair, err = m.issuePair(tx, fresh, userAgent)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrRateLimited) && m.logger != nil {
			m.logger.Warn("login rate limited", zap.Uint("user_id", u.ID))
		}
		return nil, err
	}

	if m.logger != nil {
		m.logger.Info("login successful", zap.Uint("user_id", u.ID))
	}

	return pair, nil
}

// Refresh rotates a refresh token: the presented token is consumed exactly
// once and a new pair is issued in its place. The rate limit is evaluated
// before the old token is revoked, so a rate-limited caller keeps a usable
// token instead of being stranded.
func (m *Manager) Refresh(oldToken, userAgent string) (*TokenPair, error) {
	if oldToken == "" {
		return nil, ErrMissingToken
	}

	claims, err := m.codec.Decode(oldToken)
	if err != nil {
		return nil, err
	}

	if time.Now().After(claims.ExpiresAtTime()) {
		// The record is dead either way; revoking it keeps the store honest.
		if _, revokeErr := m.tokens.Revoke(oldToken, claims.UserID); revokeErr != nil && m.logger != nil {
			m.logger.Warn("failed to revoke expired refresh token", zap.Error(revokeErr))
		}
		return nil, ErrTokenExpired
	}

	var pair *TokenPair
	err = m.db.Transaction(func(tx *gorm.DB) error {
		u, err := m.loadUser(tx, claims.UserID)
		if err != nil {
			if errors.Is(err, user.ErrUserNotFound) {
				// A token for a vanished user is indistinguishable from theft.
				return ErrTokenReuse
			}
			return err
		}

		if err := m.applyRateLimit(tx, u, time.Now()); err != nil {
			return err
		}

		revoked, err := m.tokens.Tx(tx).Revoke(oldToken, u.ID)
		if err != nil {
			return err
		}
		if !revoked {
			return ErrTokenReuse
		}

		pair, err = m.issuePair(tx, u, userAgent)
		return err
	})
	if err != nil {
		if m.logger != nil {
			switch {
			case errors.Is(err, ErrTokenReuse):
				m.logger.Warn("refresh token reuse detected", zap.Uint("user_id", claims.UserID))
			case errors.Is(err, ErrRateLimited):
				m.logger.Warn("refresh rate limited", zap.Uint("user_id", claims.UserID))
			}
		}
		return nil, err
	}

	if m.logger != nil {
		m.logger.Info("refresh token rotated", zap.Uint("user_id", claims.UserID))
	}

	return pair, nil
}

// Logout revokes the presented token. A token that is already revoked or was
// never stored is a success: the caller wanted it dead and it is.
func (m *Manager) Logout(token string) (uint, error) {
	if token == "" {
		return 0, ErrMissingToken
	}

	claims, err := m.codec.Decode(token)
	if err != nil {
		return 0, err
	}

	revoked, err := m.tokens.Revoke(token, claims.UserID)
	if err != nil {
		return 0, err
	}

	if m.logger != nil {
		m.logger.Info("logout processed",
			zap.Uint("user_id", claims.UserID),
			zap.Bool("token_was_active", revoked))
	}

	return claims.UserID, nil
}

func (m *Manager) RefreshExpiry() time.Duration {
	return m.config.RefreshToken.Expiry
}

func (m *Manager) loadUser(tx *gorm.DB, id uint) (*user.User, error) {
	var u user.User
	if err := tx.First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (m *Manager) issuePair(tx *gorm.DB, u *user.User, userAgent string) (*TokenPair, error) {
	accessToken, err := m.codec.IssueAccessToken(u.ID, u.Email)
	if err != nil {
		return nil, err
	}

	refreshToken, err := m.codec.IssueRefreshToken(u.ID, u.Email)
	if err != nil {
		return nil, err
	}

	deviceInfo := refreshtoken.DeviceInfoFromUserAgent(userAgent)
	if _, err := m.tokens.Tx(tx).Create(u.ID, refreshToken, m.config.RefreshToken.Expiry, deviceInfo); err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
