package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/tech-arch1tect/sessiond/services/user"
	"gorm.io/gorm"
)

var ErrRateLimited = errors.New("rate limit exceeded")

// applyRateLimit advances the per-user access counter inside the caller's
// transaction. Both login and refresh count as account-access events.
//
// Cold path: the window has elapsed since last_accessed, so the counter resets
// to 1. Warm path: a conditional increment guarded by "refresh_limit < max" in
// a single UPDATE, so concurrent attempts cannot overshoot the limit; zero rows
// affected means the incremented value would exceed the max and the attempt is
// rejected without advancing last_accessed.
func (m *Manager) applyRateLimit(tx *gorm.DB, u *user.User, now time.Time) error {
	if now.Sub(u.LastAccessed) > m.config.RateLimit.Window {
		err := tx.Model(&user.User{}).Where("id = ?", u.ID).
			Updates(map[string]any{"refresh_limit": 1, "last_accessed": now}).Error
		if err != nil {
			return fmt.Errorf("failed to reset rate limit counter: %w", err)
		}
		return nil
	}

	result := tx.Model(&user.User{}).
		Where("id = ? AND refresh_limit < ?", u.ID, m.config.RateLimit.MaxAttempts).
		Updates(map[string]any{
			"refresh_limit": gorm.Expr("refresh_limit + 1"),
			"last_accessed": now,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to advance rate limit counter: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRateLimited
	}
	return nil
}
