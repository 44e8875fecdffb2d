package refreshtoken

import (
	"time"
)

type RefreshToken struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     uint      `json:"user_id" gorm:"not null;index"`
	Token      string    `json:"-" gorm:"uniqueIndex;size:512;not null"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at" gorm:"not null;index"`
	Revoked    bool      `json:"revoked" gorm:"not null;default:false"`
	DeviceInfo string    `json:"device_info" gorm:"size:255"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}
