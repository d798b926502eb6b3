package models

import "time"

// PasswordResetToken rows are never deleted; a consumed token keeps Used=true.
type PasswordResetToken struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	UserID    uint64    `gorm:"index;not null"`
	Token     string    `gorm:"type:varchar(64);uniqueIndex;not null"`
	Used      bool      `gorm:"not null;default:false"`
	CreatedAt time.Time `gorm:"not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
}

func (PasswordResetToken) TableName() string { return "password_reset_tokens" }
