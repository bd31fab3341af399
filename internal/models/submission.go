package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FormStatus is the submission processing status. Transitions run
// PAYMENT_PENDING -> UNDER_PROGRESS -> COMPLETED | REJECTED |
// RETURN_MODIFICATION, with RETURN_MODIFICATION cycling back to
// UNDER_PROGRESS after the applicant amends.
type FormStatus string

const (
	StatusPaymentPending     FormStatus = "PAYMENT_PENDING"
	StatusUnderProgress      FormStatus = "UNDER_PROGRESS"
	StatusCompleted          FormStatus = "COMPLETED"
	StatusRejected           FormStatus = "REJECTED"
	StatusReturnModification FormStatus = "RETURN_MODIFICATION"
)

// FormStatuses lists every status in declaration order; the status graph
// reports a percentage for each of them, zero counts included.
var FormStatuses = []FormStatus{
	StatusPaymentPending,
	StatusUnderProgress,
	StatusCompleted,
	StatusRejected,
	StatusReturnModification,
}

// FormAnswer mirrors one FormAttribute node: a name/value pair with nested
// children for composite attributes.
type FormAnswer struct {
	Name     string          `json:"name"`
	Value    json.RawMessage `json:"value"`
	Children []FormAnswer    `json:"children,omitempty"`
}

// FormAnswerList stores the answer tree as a JSON column.
type FormAnswerList []FormAnswer

func (l FormAnswerList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

func (l *FormAnswerList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("cannot scan %T into FormAnswerList", value)
	}
}

type FormSubmission struct {
	ID                 string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	FormID             string         `gorm:"type:varchar(36);not null;index" json:"form_id"`
	Answers            FormAnswerList `gorm:"type:jsonb" json:"answers"`
	Status             FormStatus     `gorm:"type:varchar(30);index" json:"status"`
	ReasonForReturn    string         `json:"reason_for_return,omitempty"`
	ReasonForRejection string         `json:"reason_for_rejection,omitempty"`
	CategoryID         string         `gorm:"type:varchar(36);index" json:"category_id,omitempty"`
	VisaID             string         `gorm:"type:varchar(36);index" json:"visa_id,omitempty"`
	PaymentID          string         `gorm:"type:varchar(36);index" json:"payment_id,omitempty"`
	Audit

	Form      *Form      `gorm:"foreignKey:FormID" json:"form,omitempty"`
	Category  *Category  `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Visa      *Visa      `gorm:"foreignKey:VisaID" json:"visa,omitempty"`
	Payment   *Payment   `gorm:"foreignKey:PaymentID" json:"payment,omitempty"`
	Documents []Document `gorm:"foreignKey:FormSubmissionID" json:"documents,omitempty"`
}

func (s *FormSubmission) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}
