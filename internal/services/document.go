package services

import (
	"errors"
	"fmt"

	"AE-VISA/internal/models"

	"gorm.io/gorm"
)

type UpdateDocumentInput struct {
	Title       *string `json:"title"`
	FileName    *string `json:"file_name"`
	FileType    *string `json:"file_type"`
	FilePath    *string `json:"file_path"`
	Description *string `json:"description"`
}

type DocumentService struct {
	db *gorm.DB
}

func NewDocumentService(db *gorm.DB) *DocumentService {
	return &DocumentService{db: db}
}

// Create records an uploaded file against its owning user.
func (s *DocumentService) Create(userID string, input DocumentInput) (*models.Document, error) {
	if input.FileName == "" || input.FilePath == "" {
		return nil, validationf("document must have fileName and filePath")
	}

	var uploader models.User
	if err := s.db.First(&uploader, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("uploader not found")
		}
		return nil, fmt.Errorf("failed to load uploader: %w", err)
	}

	document := &models.Document{
		Title:       input.Title,
		FileName:    input.FileName,
		FileType:    input.FileType,
		FilePath:    input.FilePath,
		Description: input.Description,
		UserID:      uploader.ID,
	}
	document.CreatedBy = uploader.ID

	if err := s.db.Create(document).Error; err != nil {
		return nil, fmt.Errorf("failed to create document: %w", err)
	}
	return document, nil
}

func (s *DocumentService) Documents(limit, offset int) ([]models.Document, error) {
	var documents []models.Document
	err := s.db.
		Preload("User").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&documents).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return documents, nil
}

func (s *DocumentService) DocumentByID(id string) (*models.Document, error) {
	var document models.Document
	err := s.db.Preload("User").First(&document, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("document not found")
		}
		return nil, fmt.Errorf("failed to load document: %w", err)
	}
	return &document, nil
}

func (s *DocumentService) Update(userID, id string, input UpdateDocumentInput) (*models.Document, error) {
	var document models.Document
	if err := s.db.First(&document, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("document not found")
		}
		return nil, fmt.Errorf("failed to load document: %w", err)
	}

	if input.Title != nil {
		document.Title = *input.Title
	}
	if input.FileName != nil {
		document.FileName = *input.FileName
	}
	if input.FileType != nil {
		document.FileType = *input.FileType
	}
	if input.FilePath != nil {
		document.FilePath = *input.FilePath
	}
	if input.Description != nil {
		document.Description = *input.Description
	}
	document.UpdatedBy = userID

	if err := s.db.Save(&document).Error; err != nil {
		return nil, fmt.Errorf("failed to update document: %w", err)
	}
	return &document, nil
}

func (s *DocumentService) Delete(userID, id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Document{}).Where("id = ?", id).Update("deleted_by", userID)
		if res.Error != nil {
			return fmt.Errorf("failed to delete document: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("document not found")
		}
		if err := tx.Where("id = ?", id).Delete(&models.Document{}).Error; err != nil {
			return fmt.Errorf("failed to delete document: %w", err)
		}
		return nil
	})
}
