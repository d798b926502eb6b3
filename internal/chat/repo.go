package chat

import (
	"context"

	"gorm.io/gorm"
)

const DefaultWindow = 20

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Append(ctx context.Context, role Role, content string) error {
	return r.db.WithContext(ctx).Create(&Message{Role: string(role), Content: content}).Error
}

// AppendTurn stores the user message and the reply in one transaction, user first.
func (r *Repo) AppendTurn(ctx context.Context, userContent, reply string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&Message{Role: string(RoleUser), Content: userContent}).Error; err != nil {
			return err
		}
		return tx.Create(&Message{Role: string(RoleBot), Content: reply}).Error
	})
}

// ListRecentMessagesDesc returns the most recent messages in DESC id order (newest -> oldest).
func (r *Repo) ListRecentMessagesDesc(ctx context.Context, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = DefaultWindow
	}
	var msgs []Message
	if err := r.db.WithContext(ctx).
		Order("id DESC").
		Limit(limit).
		Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

// RecentWindow returns up to limit of the newest messages, oldest first, with
// roles normalized. Rows with an unrecognized role are dropped.
func (r *Repo) RecentWindow(ctx context.Context, limit int) ([]Entry, error) {
	recentDesc, err := r.ListRecentMessagesDesc(ctx, limit)
	if err != nil {
		return nil, err
	}

	// reverse to ASC (oldest -> newest)
	out := make([]Entry, 0, len(recentDesc))
	for i := len(recentDesc) - 1; i >= 0; i-- {
		m := recentDesc[i]
		role, ok := NormalizeRole(m.Role)
		if !ok {
			continue
		}
		out = append(out, Entry{Role: role, Content: m.Content})
	}
	return out, nil
}
