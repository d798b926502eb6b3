package chat

import "time"

// Message is one row of the shared chat history. Rows are append-only.
type Message struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Role      string    `gorm:"type:varchar(16);index;not null" json:"role"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (Message) TableName() string { return "chat_history" }

// Entry is a normalized history item as fed to the model.
type Entry struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}
