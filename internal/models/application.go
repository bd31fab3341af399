package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VisaType classifies a legacy visa application.
type VisaType string

const (
	VisaEmiratesID  VisaType = "EMIRATESID"
	VisaGoldenVisa  VisaType = "GOLDENVISA"
	VisaMedicalTest VisaType = "MEDICALTEST"
	VisaInsurance   VisaType = "INSURANCE"
	VisaResidence   VisaType = "RESIDENCE"
	VisaTourist     VisaType = "TOURIST"
)

type ApplicationPriority string

const (
	PriorityLow    ApplicationPriority = "LOW"
	PriorityMedium ApplicationPriority = "MEDIUM"
	PriorityHigh   ApplicationPriority = "HIGH"
	PriorityUrgent ApplicationPriority = "URGENT"
)

type ApplicationType string

const (
	ApplicationNew          ApplicationType = "NEW"
	ApplicationRenewal      ApplicationType = "RENEWAL"
	ApplicationCancellation ApplicationType = "CANCELLATION"
	ApplicationModification ApplicationType = "MODIFICATION"
)

// Application is the legacy direct visa application, kept alongside the
// form-based submission flow.
type Application struct {
	ID                  string              `gorm:"type:varchar(36);primaryKey" json:"id"`
	ApplicantID         string              `gorm:"type:varchar(36);not null;index" json:"applicant_id"`
	VisaType            VisaType            `gorm:"type:varchar(30);not null" json:"visa_type"`
	SponsorName         string              `json:"sponsor_name"`
	SponsorNumber       string              `json:"sponsor_number"`
	WhatsappNumber      string              `json:"whatsapp_number"`
	EmiratesID          string              `json:"emirates_id"`
	Emirate             string              `json:"emirate"`
	UIDNumber           string              `json:"uid_number"`
	Address             string              `json:"address"`
	Comments            string              `gorm:"type:text" json:"comments,omitempty"`
	AccountNumber       string              `json:"account_number"`
	ApplicationPriority ApplicationPriority `gorm:"type:varchar(20);default:'MEDIUM'" json:"application_priority"`
	ApplicationType     ApplicationType     `gorm:"type:varchar(20);not null" json:"application_type"`
	ServiceID           string              `gorm:"type:varchar(36);index" json:"service_id,omitempty"`
	Audit

	Applicant *User      `gorm:"foreignKey:ApplicantID" json:"applicant,omitempty"`
	Files     []Document `gorm:"foreignKey:ApplicationID" json:"files,omitempty"`
	Service   *Service   `gorm:"foreignKey:ServiceID" json:"service,omitempty"`
}

func (a *Application) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}
