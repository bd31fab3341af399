package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Chat is a direct conversation between two users. At most one chat exists
// per unordered (sender, receiver) pair; creation deduplicates both
// directions.
type Chat struct {
	ID         string `gorm:"type:varchar(36);primaryKey" json:"id"`
	SenderID   string `gorm:"type:varchar(36);not null;index" json:"sender_id"`
	ReceiverID string `gorm:"type:varchar(36);not null;index" json:"receiver_id"`
	Audit

	Sender   *User     `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	Receiver *User     `gorm:"foreignKey:ReceiverID" json:"receiver,omitempty"`
	Messages []Message `gorm:"foreignKey:ChatID" json:"messages,omitempty"`
}

func (c *Chat) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

type Message struct {
	ID       string `gorm:"type:varchar(36);primaryKey" json:"id"`
	Content  string `gorm:"type:text;not null" json:"content"`
	SenderID string `gorm:"type:varchar(36);not null;index" json:"sender_id"`
	ChatID   string `gorm:"type:varchar(36);not null;index" json:"chat_id"`
	Audit

	Sender *User `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	Chat   *Chat `gorm:"foreignKey:ChatID" json:"chat,omitempty"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}
