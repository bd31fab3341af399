package models

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AttributeType determines the answer shape a form field expects.
type AttributeType string

const (
	AttributeField       AttributeType = "FIELD"
	AttributeDocument    AttributeType = "DOCUMENT"
	AttributeInput       AttributeType = "INPUT"
	AttributeTextarea    AttributeType = "TEXTAREA"
	AttributePhone       AttributeType = "PHONE"
	AttributeFile        AttributeType = "FILE"
	AttributeDropdown    AttributeType = "DROPDOWN"
	AttributeCollapsible AttributeType = "COLLAPSIBLE_SECTION"
	AttributeDate        AttributeType = "DATE"
	AttributeCheckBox    AttributeType = "CHECK_BOX"
)

var attributeTypes = map[AttributeType]bool{
	AttributeField:       true,
	AttributeDocument:    true,
	AttributeInput:       true,
	AttributeTextarea:    true,
	AttributePhone:       true,
	AttributeFile:        true,
	AttributeDropdown:    true,
	AttributeCollapsible: true,
	AttributeDate:        true,
	AttributeCheckBox:    true,
}

// ParseAttributeType normalizes case and falls back to FIELD for anything
// unrecognized. The permissive default is part of the createForm contract.
func ParseAttributeType(s string) AttributeType {
	t := AttributeType(strings.ToUpper(strings.TrimSpace(s)))
	if attributeTypes[t] {
		return t
	}
	return AttributeField
}

// Form is an ordered tree of input-field definitions attached to exactly one
// Visa or one Category. Both references exist in the schema; in practice only
// one is set.
type Form struct {
	ID         string `gorm:"type:varchar(36);primaryKey" json:"id"`
	VisaID     string `gorm:"type:varchar(36);index" json:"visa_id,omitempty"`
	CategoryID string `gorm:"type:varchar(36);index" json:"category_id,omitempty"`
	Audit

	Visa        *Visa            `gorm:"foreignKey:VisaID" json:"visa,omitempty"`
	Category    *Category        `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Attributes  []FormAttribute  `gorm:"foreignKey:FormID" json:"attributes,omitempty"`
	Submissions []FormSubmission `gorm:"foreignKey:FormID" json:"submissions,omitempty"`
}

func (f *Form) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	return nil
}

// FormAttribute is one node of a form's field tree. The primary key is an
// auto-increment integer so ascending id doubles as insertion order, which
// the read-side ordering contract relies on.
type FormAttribute struct {
	ID           uint          `gorm:"primaryKey" json:"id"`
	Name         string        `json:"name"`
	Type         AttributeType `gorm:"type:varchar(30);not null;default:'INPUT'" json:"type"`
	Label        string        `gorm:"not null" json:"label"`
	Placeholder  string        `json:"placeholder,omitempty"`
	Options      StringList    `gorm:"type:json" json:"options,omitempty"`
	Required     bool          `gorm:"default:false" json:"required"`
	Multiple     bool          `gorm:"default:false" json:"multiple"`
	IsChild      bool          `gorm:"default:false" json:"is_child"`
	StepperLabel string        `json:"stepper_label,omitempty"`
	FormID       string        `gorm:"type:varchar(36);not null;index" json:"form_id"`
	ParentID     *uint         `gorm:"index" json:"parent_id,omitempty"`
	Audit

	Parent   *FormAttribute  `gorm:"foreignKey:ParentID" json:"-"`
	Children []FormAttribute `gorm:"foreignKey:ParentID" json:"children,omitempty"`
}
