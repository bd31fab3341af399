package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notification is created unread, optionally marked read later, never
// deleted. Every creation is paired with a publish on the realtime channel.
type Notification struct {
	ID      string `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name    string `gorm:"not null" json:"name"`
	Message string `gorm:"not null" json:"message"`
	IsRead  bool   `gorm:"default:false;index" json:"is_read"`
	UserID  string `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Audit

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	return nil
}
