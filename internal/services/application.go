package services

import (
	"errors"
	"fmt"

	"AE-VISA/internal/models"

	"gorm.io/gorm"
)

type CreateApplicationInput struct {
	VisaType            models.VisaType            `json:"visa_type" binding:"required"`
	ApplicationType     models.ApplicationType     `json:"application_type" binding:"required"`
	ApplicationPriority models.ApplicationPriority `json:"application_priority"`
	SponsorName         string                     `json:"sponsor_name"`
	SponsorNumber       string                     `json:"sponsor_number"`
	WhatsappNumber      string                     `json:"whatsapp_number"`
	EmiratesID          string                     `json:"emirates_id"`
	Emirate             string                     `json:"emirate"`
	UIDNumber           string                     `json:"uid_number"`
	Address             string                     `json:"address"`
	Comments            string                     `json:"comments"`
	AccountNumber       string                     `json:"account_number"`
	ServiceID           string                     `json:"service_id"`
	Files               []DocumentInput            `json:"files"`
}

// ApplicationService covers the legacy direct application flow that predates
// form-based submissions.
type ApplicationService struct {
	db *gorm.DB
}

func NewApplicationService(db *gorm.DB) *ApplicationService {
	return &ApplicationService{db: db}
}

// Create stores an application and its file records in one transaction.
func (s *ApplicationService) Create(userID string, input CreateApplicationInput) (*models.Application, error) {
	var applicant models.User
	if err := s.db.First(&applicant, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("applicant not found")
		}
		return nil, fmt.Errorf("failed to load applicant: %w", err)
	}

	priority := input.ApplicationPriority
	if priority == "" {
		priority = models.PriorityMedium
	}

	application := &models.Application{
		ApplicantID:         applicant.ID,
		VisaType:            input.VisaType,
		ApplicationType:     input.ApplicationType,
		ApplicationPriority: priority,
		SponsorName:         input.SponsorName,
		SponsorNumber:       input.SponsorNumber,
		WhatsappNumber:      input.WhatsappNumber,
		EmiratesID:          input.EmiratesID,
		Emirate:             input.Emirate,
		UIDNumber:           input.UIDNumber,
		Address:             input.Address,
		Comments:            input.Comments,
		AccountNumber:       input.AccountNumber,
		ServiceID:           input.ServiceID,
	}
	application.CreatedBy = applicant.ID

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(application).Error; err != nil {
			return fmt.Errorf("failed to create application: %w", err)
		}
		for _, file := range input.Files {
			document := &models.Document{
				Title:         file.Title,
				FileName:      file.FileName,
				FileType:      file.FileType,
				FilePath:      file.FilePath,
				Description:   file.Description,
				ApplicationID: application.ID,
			}
			document.CreatedBy = applicant.ID
			if err := tx.Create(document).Error; err != nil {
				return fmt.Errorf("failed to create file %q: %w", file.FileName, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.ApplicationByID(application.ID)
}

// UserApplications pages through the caller's applications, newest first.
func (s *ApplicationService) UserApplications(userID string, take, skip int) ([]models.Application, error) {
	var applications []models.Application
	err := s.db.
		Preload("Applicant").
		Preload("Files").
		Preload("Service").
		Where("applicant_id = ?", userID).
		Order("created_at DESC").
		Limit(take).
		Offset(skip).
		Find(&applications).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	return applications, nil
}

func (s *ApplicationService) ApplicationByID(id string) (*models.Application, error) {
	var application models.Application
	err := s.db.
		Preload("Applicant").
		Preload("Files").
		Preload("Service").
		First(&application, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("application not found")
		}
		return nil, fmt.Errorf("failed to load application: %w", err)
	}
	return &application, nil
}

func (s *ApplicationService) Delete(userID, id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Application{}).Where("id = ?", id).Update("deleted_by", userID)
		if res.Error != nil {
			return fmt.Errorf("failed to delete application: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("application not found")
		}
		if err := tx.Where("id = ?", id).Delete(&models.Application{}).Error; err != nil {
			return fmt.Errorf("failed to delete application: %w", err)
		}
		return nil
	})
}
