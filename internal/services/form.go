package services

import (
	"errors"
	"fmt"

	"AE-VISA/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// maxAttributeDepth bounds form trees from untrusted input. The deepest
// observed production form is three levels.
const maxAttributeDepth = 32

// attributeOrder is the presentation contract for root attributes: FILE
// fields render last, ties break by ascending id (insertion order).
const attributeOrder = "CASE WHEN type = 'FILE' THEN 1 ELSE 0 END, id ASC"

type FormAttributeInput struct {
	Name         string               `json:"name"`
	Label        string               `json:"label" binding:"required"`
	Type         string               `json:"type" binding:"required"`
	Placeholder  string               `json:"placeholder"`
	Required     bool                 `json:"required"`
	Multiple     bool                 `json:"multiple"`
	Options      []string             `json:"options"`
	StepperLabel string               `json:"stepper_label"`
	Children     []FormAttributeInput `json:"children"`
}

type CreateFormInput struct {
	CategoryID string               `json:"category_id" binding:"required"`
	Attributes []FormAttributeInput `json:"attributes" binding:"required"`
}

type FormService struct {
	db  *gorm.DB
	log *logrus.Logger
}

func NewFormService(db *gorm.DB, log *logrus.Logger) *FormService {
	return &FormService{db: db, log: log}
}

type attributeFrame struct {
	input    *FormAttributeInput
	parentID *uint
	depth    int
}

// CreateForm creates a Form for a category and materializes its attribute
// forest depth-first: each node is persisted before its children so children
// reference a valid parent id. The traversal is iterative with an explicit
// stack; children are pushed in reverse so sibling insertion order survives.
func (s *FormService) CreateForm(userID string, input CreateFormInput) (*models.Form, error) {
	var category models.Category
	if err := s.db.First(&category, "id = ?", input.CategoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("category not found")
		}
		return nil, fmt.Errorf("failed to load category: %w", err)
	}

	form := &models.Form{CategoryID: category.ID}
	form.CreatedBy = userID

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(form).Error; err != nil {
			return fmt.Errorf("failed to create form: %w", err)
		}

		stack := make([]attributeFrame, 0, len(input.Attributes))
		for i := len(input.Attributes) - 1; i >= 0; i-- {
			stack = append(stack, attributeFrame{input: &input.Attributes[i]})
		}

		for len(stack) > 0 {
			frame := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			if frame.depth >= maxAttributeDepth {
				return validationf("attribute tree exceeds maximum depth %d", maxAttributeDepth)
			}

			attr := &models.FormAttribute{
				Name:         frame.input.Name,
				Type:         models.ParseAttributeType(frame.input.Type),
				Label:        frame.input.Label,
				Placeholder:  frame.input.Placeholder,
				Options:      models.StringList(frame.input.Options),
				Required:     frame.input.Required,
				Multiple:     frame.input.Multiple,
				IsChild:      frame.parentID != nil,
				StepperLabel: frame.input.StepperLabel,
				FormID:       form.ID,
				ParentID:     frame.parentID,
			}
			attr.CreatedBy = userID

			if err := tx.Create(attr).Error; err != nil {
				return fmt.Errorf("failed to create form attribute %q: %w", frame.input.Label, err)
			}

			parentID := attr.ID
			for i := len(frame.input.Children) - 1; i >= 0; i-- {
				stack = append(stack, attributeFrame{
					input:    &frame.input.Children[i],
					parentID: &parentID,
					depth:    frame.depth + 1,
				})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"form_id": form.ID, "category_id": category.ID}).Info("form created")

	return s.FormByID(form.ID)
}

// FormByID loads a form with its root attributes (immediate children
// attached) in presentation order.
func (s *FormService) FormByID(id string) (*models.Form, error) {
	var form models.Form
	err := s.rootAttributeScope(s.db).First(&form, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("form not found")
		}
		return nil, fmt.Errorf("failed to load form: %w", err)
	}
	return &form, nil
}

// FormByVisaID returns the single form attached to a visa.
func (s *FormService) FormByVisaID(visaID string) (*models.Form, error) {
	var form models.Form
	err := s.rootAttributeScope(s.db).First(&form, "visa_id = ?", visaID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("form not found")
		}
		return nil, fmt.Errorf("failed to load form: %w", err)
	}
	return &form, nil
}

// FormByCategoryID returns the single form attached to a category.
func (s *FormService) FormByCategoryID(categoryID string) (*models.Form, error) {
	var form models.Form
	err := s.rootAttributeScope(s.db).Preload("Category").First(&form, "category_id = ?", categoryID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("form not found")
		}
		return nil, fmt.Errorf("failed to load form: %w", err)
	}
	return &form, nil
}

// Forms lists every form with ordered root attributes.
func (s *FormService) Forms() ([]models.Form, error) {
	var forms []models.Form
	if err := s.rootAttributeScope(s.db).Order("created_at ASC").Find(&forms).Error; err != nil {
		return nil, fmt.Errorf("failed to list forms: %w", err)
	}
	return forms, nil
}

func (s *FormService) rootAttributeScope(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Attributes", func(db *gorm.DB) *gorm.DB {
			return db.Where("parent_id IS NULL").Order(attributeOrder)
		}).
		Preload("Attributes.Children", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		})
}
