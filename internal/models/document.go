package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Document is a file reference owned by either a User or a FormSubmission;
// creation paths set exactly one of the two.
type Document struct {
	ID               string `gorm:"type:varchar(36);primaryKey" json:"id"`
	Title            string `json:"title"`
	FileName         string `gorm:"not null" json:"file_name"`
	FileType         string `json:"file_type"`
	FilePath         string `gorm:"not null" json:"file_path"`
	Description      string `json:"description,omitempty"`
	UserID           string `gorm:"type:varchar(36);index" json:"user_id,omitempty"`
	FormSubmissionID string `gorm:"type:varchar(36);index" json:"form_submission_id,omitempty"`
	ApplicationID    string `gorm:"type:varchar(36);index" json:"application_id,omitempty"`
	Audit

	User           *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	FormSubmission *FormSubmission `gorm:"foreignKey:FormSubmissionID" json:"form_submission,omitempty"`
}

func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	return nil
}
