package services

import (
	"errors"
	"fmt"
	"strings"

	"AE-VISA/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type CreateServiceInput struct {
	Title       string `json:"title" binding:"required"`
	IsForSale   bool   `json:"is_for_sale"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
}

type UpdateServiceInput struct {
	Title       *string `json:"title"`
	IsForSale   *bool   `json:"is_for_sale"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url"`
}

type CreateCategoryInput struct {
	Title       string   `json:"title" binding:"required"`
	IsForSale   bool     `json:"is_for_sale"`
	ServiceID   string   `json:"service_id" binding:"required"`
	NormalPrice float64  `json:"normal_price"`
	VIPPrice    float64  `json:"vip_price"`
	VVIPPrice   float64  `json:"vvip_price"`
	Description []string `json:"description"`
	Info        []string `json:"info"`
}

type UpdateCategoryInput struct {
	Title       *string  `json:"title"`
	IsForSale   *bool    `json:"is_for_sale"`
	ServiceID   *string  `json:"service_id"`
	NormalPrice *float64 `json:"normal_price"`
	VIPPrice    *float64 `json:"vip_price"`
	VVIPPrice   *float64 `json:"vvip_price"`
	Description []string `json:"description"`
	Info        []string `json:"info"`
}

type UpdateCategoryAttributeInput struct {
	Name  *string `json:"name"`
	Value *string `json:"value"`
}

type CreateVisaInput struct {
	Title       string   `json:"title" binding:"required"`
	CategoryID  string   `json:"category_id" binding:"required"`
	NormalPrice float64  `json:"normal_price"`
	VIPPrice    float64  `json:"vip_price"`
	VVIPPrice   float64  `json:"vvip_price"`
	Description []string `json:"description"`
	Info        []string `json:"info"`
}

type UpdateVisaInput struct {
	Title       *string  `json:"title"`
	CategoryID  *string  `json:"category_id"`
	NormalPrice *float64 `json:"normal_price"`
	VIPPrice    *float64 `json:"vip_price"`
	VVIPPrice   *float64 `json:"vvip_price"`
	Description []string `json:"description"`
	Info        []string `json:"info"`
}

// ServiceOverview pairs a service with submission totals rolled up from its
// categories.
type ServiceOverview struct {
	Service             models.Service `json:"service"`
	Total               int            `json:"total"`
	PendingSubmission   int            `json:"pending_submission"`
	CompletedSubmission int            `json:"completed_submission"`
}

type CatalogService struct {
	db  *gorm.DB
	log *logrus.Logger
}

func NewCatalogService(db *gorm.DB, log *logrus.Logger) *CatalogService {
	return &CatalogService{db: db, log: log}
}

// Services lists all services with their full category/visa trees and
// submission counts. The keyword filter runs in memory over the loaded tree
// so a match on a category or visa title surfaces the owning service.
func (s *CatalogService) Services(search string) ([]ServiceOverview, error) {
	var services []models.Service
	err := s.db.
		Preload("Categories").
		Preload("Categories.Submissions").
		Preload("Categories.Visas").
		Preload("Categories.Visas.Form").
		Find(&services).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}

	keyword := strings.ToLower(strings.TrimSpace(search))

	overviews := make([]ServiceOverview, 0, len(services))
	for _, svc := range services {
		if keyword != "" && !serviceMatches(&svc, keyword) {
			continue
		}

		var total, pending, completed int
		for _, cat := range svc.Categories {
			for _, sub := range cat.Submissions {
				total++
				switch sub.Status {
				case models.StatusUnderProgress:
					pending++
				case models.StatusCompleted:
					completed++
				}
			}
		}
		overviews = append(overviews, ServiceOverview{
			Service:             svc,
			Total:               total,
			PendingSubmission:   pending,
			CompletedSubmission: completed,
		})
	}
	return overviews, nil
}

func serviceMatches(svc *models.Service, keyword string) bool {
	if strings.Contains(strings.ToLower(svc.Title), keyword) {
		return true
	}
	for _, cat := range svc.Categories {
		if strings.Contains(strings.ToLower(cat.Title), keyword) {
			return true
		}
		for _, visa := range cat.Visas {
			if strings.Contains(strings.ToLower(visa.Title), keyword) {
				return true
			}
		}
	}
	return false
}

func (s *CatalogService) ServiceByID(id string) (*models.Service, error) {
	var service models.Service
	err := s.db.
		Preload("Categories").
		Preload("Categories.Visas").
		First(&service, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("service not found")
		}
		return nil, fmt.Errorf("failed to load service: %w", err)
	}
	return &service, nil
}

func (s *CatalogService) CreateService(userID string, input CreateServiceInput) (*models.Service, error) {
	service := &models.Service{
		Title:       input.Title,
		IsForSale:   input.IsForSale,
		Description: input.Description,
		ImageURL:    input.ImageURL,
	}
	service.CreatedBy = userID

	if err := s.db.Create(service).Error; err != nil {
		return nil, fmt.Errorf("failed to create service: %w", err)
	}
	s.log.WithField("service_id", service.ID).Info("service created")
	return service, nil
}

func (s *CatalogService) UpdateService(userID, id string, input UpdateServiceInput) (*models.Service, error) {
	var service models.Service
	if err := s.db.Preload("Categories").First(&service, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("service not found")
		}
		return nil, fmt.Errorf("failed to load service: %w", err)
	}

	if input.Title != nil {
		service.Title = *input.Title
	}
	if input.IsForSale != nil {
		service.IsForSale = *input.IsForSale
	}
	if input.Description != nil {
		service.Description = *input.Description
	}
	if input.ImageURL != nil {
		service.ImageURL = *input.ImageURL
	}
	service.UpdatedBy = userID

	if err := s.db.Save(&service).Error; err != nil {
		return nil, fmt.Errorf("failed to update service: %w", err)
	}
	return &service, nil
}

// DeleteService soft-deletes a service; its categories stay reachable by id
// but disappear from the service tree.
func (s *CatalogService) DeleteService(userID, id string) error {
	return s.softDelete(userID, id, &models.Service{}, "service")
}

func (s *CatalogService) Categories(serviceID string) ([]models.Category, error) {
	query := s.db.Preload("Service")
	if serviceID != "" {
		query = query.Where("service_id = ?", serviceID)
	}
	var categories []models.Category
	if err := query.Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// CategoryByID loads a category with its visas; a search keyword narrows the
// visa list in memory.
func (s *CatalogService) CategoryByID(id, search string) (*models.Category, error) {
	var category models.Category
	err := s.db.
		Preload("Service").
		Preload("Visas").
		Preload("Attributes").
		First(&category, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("category not found")
		}
		return nil, fmt.Errorf("failed to load category: %w", err)
	}

	if keyword := strings.ToLower(strings.TrimSpace(search)); keyword != "" {
		filtered := category.Visas[:0]
		for _, visa := range category.Visas {
			if strings.Contains(strings.ToLower(visa.Title), keyword) {
				filtered = append(filtered, visa)
			}
		}
		category.Visas = filtered
	}
	return &category, nil
}

func (s *CatalogService) CreateCategory(userID string, input CreateCategoryInput) (*models.Category, error) {
	var service models.Service
	if err := s.db.First(&service, "id = ?", input.ServiceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("service not found")
		}
		return nil, fmt.Errorf("failed to load service: %w", err)
	}

	category := &models.Category{
		Title:       input.Title,
		IsForSale:   input.IsForSale,
		ServiceID:   service.ID,
		NormalPrice: input.NormalPrice,
		VIPPrice:    input.VIPPrice,
		VVIPPrice:   input.VVIPPrice,
		Description: models.StringList(input.Description),
		Info:        models.StringList(input.Info),
	}
	category.CreatedBy = userID

	if err := s.db.Create(category).Error; err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return category, nil
}

func (s *CatalogService) UpdateCategory(userID, id string, input UpdateCategoryInput) (*models.Category, error) {
	var category models.Category
	if err := s.db.Preload("Service").First(&category, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("category not found")
		}
		return nil, fmt.Errorf("failed to load category: %w", err)
	}

	if input.Title != nil {
		category.Title = *input.Title
	}
	if input.IsForSale != nil {
		category.IsForSale = *input.IsForSale
	}
	if input.ServiceID != nil {
		var service models.Service
		if err := s.db.First(&service, "id = ?", *input.ServiceID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("service not found")
			}
			return nil, fmt.Errorf("failed to load service: %w", err)
		}
		category.ServiceID = service.ID
		category.Service = nil
	}
	if input.NormalPrice != nil {
		category.NormalPrice = *input.NormalPrice
	}
	if input.VIPPrice != nil {
		category.VIPPrice = *input.VIPPrice
	}
	if input.VVIPPrice != nil {
		category.VVIPPrice = *input.VVIPPrice
	}
	if input.Description != nil {
		category.Description = models.StringList(input.Description)
	}
	if input.Info != nil {
		category.Info = models.StringList(input.Info)
	}
	category.UpdatedBy = userID

	if err := s.db.Save(&category).Error; err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}
	return &category, nil
}

func (s *CatalogService) DeleteCategory(userID, id string) error {
	return s.softDelete(userID, id, &models.Category{}, "category")
}

func (s *CatalogService) UpdateCategoryAttribute(userID, id string, input UpdateCategoryAttributeInput) (*models.CategoryAttribute, error) {
	var attr models.CategoryAttribute
	if err := s.db.First(&attr, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("category attribute not found")
		}
		return nil, fmt.Errorf("failed to load category attribute: %w", err)
	}

	if input.Name != nil {
		attr.Name = *input.Name
	}
	if input.Value != nil {
		attr.Value = *input.Value
	}
	attr.UpdatedBy = userID

	if err := s.db.Save(&attr).Error; err != nil {
		return nil, fmt.Errorf("failed to update category attribute: %w", err)
	}
	return &attr, nil
}

// Visas lists visas, optionally filtered by a case-insensitive title match.
func (s *CatalogService) Visas(title string) ([]models.Visa, error) {
	query := s.db.
		Preload("Category").
		Preload("Form").
		Preload("Form.Attributes")
	if keyword := strings.TrimSpace(title); keyword != "" {
		query = query.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(keyword)+"%")
	}

	var visas []models.Visa
	if err := query.Find(&visas).Error; err != nil {
		return nil, fmt.Errorf("failed to list visas: %w", err)
	}
	return visas, nil
}

// VisaByID loads a visa with its form's root attributes in presentation order
// (FILE fields after everything else, ascending id within a tier) and each
// root's immediate children by ascending id.
func (s *CatalogService) VisaByID(id string) (*models.Visa, error) {
	var visa models.Visa
	err := s.db.
		Preload("Category").
		Preload("Form").
		Preload("Form.Attributes", func(db *gorm.DB) *gorm.DB {
			return db.Where("parent_id IS NULL").Order(attributeOrder)
		}).
		Preload("Form.Attributes.Children", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		First(&visa, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("visa not found")
		}
		return nil, fmt.Errorf("failed to load visa: %w", err)
	}
	return &visa, nil
}

func (s *CatalogService) CreateVisa(userID string, input CreateVisaInput) (*models.Visa, error) {
	var category models.Category
	if err := s.db.First(&category, "id = ?", input.CategoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("category not found")
		}
		return nil, fmt.Errorf("failed to load category: %w", err)
	}

	visa := &models.Visa{
		Title:       input.Title,
		CategoryID:  category.ID,
		NormalPrice: input.NormalPrice,
		VIPPrice:    input.VIPPrice,
		VVIPPrice:   input.VVIPPrice,
		Description: models.StringList(input.Description),
		Info:        models.StringList(input.Info),
	}
	visa.CreatedBy = userID

	if err := s.db.Create(visa).Error; err != nil {
		return nil, fmt.Errorf("failed to create visa: %w", err)
	}
	return visa, nil
}

func (s *CatalogService) UpdateVisa(userID, id string, input UpdateVisaInput) (*models.Visa, error) {
	var visa models.Visa
	if err := s.db.Preload("Category").First(&visa, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("visa not found")
		}
		return nil, fmt.Errorf("failed to load visa: %w", err)
	}

	if input.Title != nil {
		visa.Title = *input.Title
	}
	if input.CategoryID != nil {
		var category models.Category
		if err := s.db.First(&category, "id = ?", *input.CategoryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("category not found")
			}
			return nil, fmt.Errorf("failed to load category: %w", err)
		}
		visa.CategoryID = category.ID
		visa.Category = nil
	}
	if input.NormalPrice != nil {
		visa.NormalPrice = *input.NormalPrice
	}
	if input.VIPPrice != nil {
		visa.VIPPrice = *input.VIPPrice
	}
	if input.VVIPPrice != nil {
		visa.VVIPPrice = *input.VVIPPrice
	}
	if input.Description != nil {
		visa.Description = models.StringList(input.Description)
	}
	if input.Info != nil {
		visa.Info = models.StringList(input.Info)
	}
	visa.UpdatedBy = userID

	if err := s.db.Save(&visa).Error; err != nil {
		return nil, fmt.Errorf("failed to update visa: %w", err)
	}
	return &visa, nil
}

func (s *CatalogService) DeleteVisa(userID, id string) error {
	return s.softDelete(userID, id, &models.Visa{}, "visa")
}

// softDelete stamps the deleting user and then issues the soft delete, so
// every catalog removal goes through the same path.
func (s *CatalogService) softDelete(userID, id string, model interface{}, name string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(model).Where("id = ?", id).Update("deleted_by", userID)
		if res.Error != nil {
			return fmt.Errorf("failed to delete %s: %w", name, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%s not found", name)
		}
		if err := tx.Where("id = ?", id).Delete(model).Error; err != nil {
			return fmt.Errorf("failed to delete %s: %w", name, err)
		}
		return nil
	})
}
