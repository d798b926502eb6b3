// Package passwordreset issues and redeems single-use password reset tokens.
package passwordreset

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/suPer8Hu/luna-backend/internal/models"
	"gorm.io/gorm"
)

const DefaultTTL = time.Hour

// ErrInvalidToken covers unknown, expired and already used tokens, and tokens
// whose user no longer exists.
var ErrInvalidToken = errors.New("invalid or expired token")

type Hasher interface {
	Hash(plaintext string) (string, error)
}

type Ledger struct {
	db     *gorm.DB
	hasher Hasher
	ttl    time.Duration
	now    func() time.Time
}

func NewLedger(db *gorm.DB, hasher Hasher, ttl time.Duration) *Ledger {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Ledger{db: db, hasher: hasher, ttl: ttl, now: time.Now}
}

func (l *Ledger) TTL() time.Duration { return l.ttl }

// Issue stores a new unused token for userID and returns it.
func (l *Ledger) Issue(ctx context.Context, userID uint64) (string, error) {
	token, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	now := l.now().UTC()
	row := &models.PasswordResetToken{
		UserID:    userID,
		Token:     token.String(),
		CreatedAt: now,
		ExpiresAt: now.Add(l.ttl),
	}
	if err := l.db.WithContext(ctx).Create(row).Error; err != nil {
		return "", fmt.Errorf("store reset token: %w", err)
	}
	return row.Token, nil
}

// Redeem consumes token and sets the owner's password in one transaction.
// The token is claimed with a conditional update, so of two concurrent
// redemptions at most one succeeds.
func (l *Ledger) Redeem(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return ErrInvalidToken
	}
	hash, err := l.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	now := l.now().UTC()

	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.PasswordResetToken{}).
			Where("token = ? AND used = ? AND expires_at > ?", token, false, now).
			Update("used", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return ErrInvalidToken
		}

		var row models.PasswordResetToken
		if err := tx.Where("token = ?", token).First(&row).Error; err != nil {
			return err
		}

		res = tx.Model(&models.User{}).
			Where("id = ?", row.UserID).
			Update("password_hash", hash)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInvalidToken
		}
		return nil
	})
}
