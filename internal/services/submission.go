package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"AE-VISA/internal/models"
	"AE-VISA/internal/realtime"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type DocumentInput struct {
	Title       string `json:"title"`
	FileName    string `json:"file_name"`
	FileType    string `json:"file_type"`
	FilePath    string `json:"file_path"`
	Description string `json:"description"`
}

type SubmitFormInput struct {
	FormID     string              `json:"form_id" binding:"required"`
	CategoryID string              `json:"category_id" binding:"required"`
	VisaID     string              `json:"visa_id"`
	Answers    []models.FormAnswer `json:"answers" binding:"required"`
	Documents  []DocumentInput     `json:"documents"`
}

type UpdateSubmissionStatusInput struct {
	Status             models.FormStatus `json:"status"`
	PaymentID          string            `json:"payment_id"`
	ReasonForReturn    string            `json:"reason_for_return"`
	ReasonForRejection string            `json:"reason_for_rejection"`
}

type SubmissionFilter struct {
	Status    models.FormStatus `json:"status"`
	ServiceID string            `json:"service_id"`
	StartDate string            `json:"start_date"`
	EndDate   string            `json:"end_date"`
	Search    string            `json:"search"`
}

type SubmissionPage struct {
	Submissions []models.FormSubmission `json:"submissions"`
	Total       int64                   `json:"total"`
}

type SubmissionService struct {
	db   *gorm.DB
	hub  realtime.Publisher
	push PushClient
	log  *logrus.Logger
}

func NewSubmissionService(db *gorm.DB, hub realtime.Publisher, push PushClient, log *logrus.Logger) *SubmissionService {
	return &SubmissionService{db: db, hub: hub, push: push, log: log}
}

// SubmitForm validates the input up front and then creates the submission,
// its documents, and the submitter's notification in one transaction; a bad
// document descriptor leaves no submission row behind. The realtime publish
// happens after commit.
func (s *SubmissionService) SubmitForm(userID string, input SubmitFormInput) (*models.FormSubmission, error) {
	for _, doc := range input.Documents {
		if doc.FileName == "" || doc.FilePath == "" {
			return nil, validationf("document must have fileName and filePath")
		}
	}

	var form models.Form
	if err := s.db.First(&form, "id = ?", input.FormID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("form not found")
		}
		return nil, fmt.Errorf("failed to load form: %w", err)
	}

	var category models.Category
	if err := s.db.First(&category, "id = ?", input.CategoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("category not found")
		}
		return nil, fmt.Errorf("failed to load category: %w", err)
	}

	if err := s.validateAnswers(form.ID, input.Answers); err != nil {
		return nil, err
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	submission := &models.FormSubmission{
		FormID:     form.ID,
		CategoryID: category.ID,
		VisaID:     input.VisaID,
		Answers:    models.FormAnswerList(input.Answers),
		Status:     models.StatusPaymentPending,
	}
	submission.CreatedBy = userID

	notification := &models.Notification{
		Name:    "Form Submission",
		Message: "Your form has been submitted successfully",
		UserID:  user.ID,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(submission).Error; err != nil {
			return fmt.Errorf("failed to create submission: %w", err)
		}
		for _, doc := range input.Documents {
			document := &models.Document{
				Title:            doc.Title,
				FileName:         doc.FileName,
				FileType:         doc.FileType,
				FilePath:         doc.FilePath,
				Description:      doc.Description,
				FormSubmissionID: submission.ID,
			}
			document.CreatedBy = userID
			if err := tx.Create(document).Error; err != nil {
				return fmt.Errorf("failed to create document %q: %w", doc.FileName, err)
			}
		}
		if err := tx.Create(notification).Error; err != nil {
			return fmt.Errorf("failed to create notification: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.hub.Publish(notification)
	s.log.WithFields(logrus.Fields{"submission_id": submission.ID, "user_id": userID}).Info("form submitted")

	return submission, nil
}

// validateAnswers checks the answer tree against the stored attribute tree:
// every required attribute must carry an answer at its level.
func (s *SubmissionService) validateAnswers(formID string, answers []models.FormAnswer) error {
	var roots []models.FormAttribute
	err := s.db.
		Preload("Children").
		Where("form_id = ? AND parent_id IS NULL", formID).
		Find(&roots).Error
	if err != nil {
		return fmt.Errorf("failed to load form attributes: %w", err)
	}
	return matchAnswers(roots, answers)
}

func matchAnswers(attrs []models.FormAttribute, answers []models.FormAnswer) error {
	byName := make(map[string]*models.FormAnswer, len(answers))
	for i := range answers {
		byName[answers[i].Name] = &answers[i]
	}
	for i := range attrs {
		attr := &attrs[i]
		answer, ok := byName[attr.Name]
		if !ok {
			if attr.Required {
				return validationf("missing answer for required field %q", attr.Name)
			}
			continue
		}
		if len(attr.Children) > 0 {
			if err := matchAnswers(attr.Children, answer.Children); err != nil {
				return err
			}
		}
	}
	return nil
}

// UpdateStatus applies any subset of status, paymentId and reason fields;
// each applied field stamps updatedBy. Legal-transition checking is
// deliberately absent: any status may be set over any prior one.
func (s *SubmissionService) UpdateStatus(userID, id string, input UpdateSubmissionStatusInput) (*models.FormSubmission, error) {
	var submission models.FormSubmission
	if err := s.db.First(&submission, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("submission not found")
		}
		return nil, fmt.Errorf("failed to load submission: %w", err)
	}

	if input.Status != "" {
		submission.Status = input.Status
		submission.UpdatedBy = userID
	}
	if input.PaymentID != "" {
		submission.PaymentID = input.PaymentID
		submission.UpdatedBy = userID
	}
	if input.ReasonForReturn != "" {
		submission.ReasonForReturn = input.ReasonForReturn
		submission.UpdatedBy = userID
	}
	if input.ReasonForRejection != "" {
		submission.ReasonForRejection = input.ReasonForRejection
		submission.UpdatedBy = userID
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", submission.CreatedBy).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	// submission.Status already reflects the update, so a paymentId-only or
	// reason-only change reports the current status rather than a blank.
	notification := &models.Notification{
		Name:    "Application Status",
		Message: fmt.Sprintf("Your application status has been updated to %s", submission.Status),
		UserID:  user.ID,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&submission).Error; err != nil {
			return fmt.Errorf("failed to update submission: %w", err)
		}
		if err := tx.Create(notification).Error; err != nil {
			return fmt.Errorf("failed to create notification: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.hub.Publish(notification)
	return &submission, nil
}

// CompleteApplication is the legacy status update: forces COMPLETED, notifies
// the applicant and attempts a push when a device token is registered. A
// missing token is logged, not an error.
func (s *SubmissionService) CompleteApplication(userID, applicationID string) (*models.FormSubmission, error) {
	var submission models.FormSubmission
	if err := s.db.First(&submission, "id = ?", applicationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("application not found")
		}
		return nil, fmt.Errorf("failed to load application: %w", err)
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", submission.CreatedBy).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	submission.Status = models.StatusCompleted
	submission.UpdatedBy = userID

	notification := &models.Notification{
		Name:    "Application Status",
		Message: "Your application has been updated",
		UserID:  user.ID,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&submission).Error; err != nil {
			return fmt.Errorf("failed to update application: %w", err)
		}
		if err := tx.Create(notification).Error; err != nil {
			return fmt.Errorf("failed to create notification: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.hub.Publish(notification)

	if user.FCMToken != "" {
		if err := s.push.Send(user.FCMToken, "Application Status Updated", "Your application has been marked as completed."); err != nil {
			s.log.WithError(err).WithField("user_id", user.ID).Warn("push notification failed")
		}
	} else {
		s.log.WithField("user_id", user.ID).Warn("user does not have an FCM token")
	}

	return &submission, nil
}

// Submissions lists submissions newest first with pagination and filters.
func (s *SubmissionService) Submissions(limit, offset int, filter *SubmissionFilter) (*SubmissionPage, error) {
	if limit <= 0 {
		return nil, validationf("limit must be greater than 0")
	}
	if offset < 0 {
		return nil, validationf("offset cannot be negative")
	}

	query := s.db.Model(&models.FormSubmission{})

	if filter != nil {
		if filter.Status != "" {
			query = query.Where("form_submissions.status = ?", filter.Status)
		}
		if filter.ServiceID != "" {
			query = query.
				Joins("LEFT JOIN categories ON categories.id = form_submissions.category_id").
				Where("categories.service_id = ?", filter.ServiceID)
		}
		if filter.StartDate != "" || filter.EndDate != "" {
			start := time.Unix(0, 0)
			end := time.Now()
			var err error
			if filter.StartDate != "" {
				if start, err = time.Parse(time.RFC3339, filter.StartDate); err != nil {
					return nil, validationf("invalid start date: %v", err)
				}
			}
			if filter.EndDate != "" {
				if end, err = time.Parse(time.RFC3339, filter.EndDate); err != nil {
					return nil, validationf("invalid end date: %v", err)
				}
			}
			query = query.Where("form_submissions.created_at >= ? AND form_submissions.created_at <= ?", start, end)
		}
		if search := strings.TrimSpace(filter.Search); search != "" {
			pattern := "%" + strings.ToLower(search) + "%"
			query = query.
				Joins("LEFT JOIN visas ON visas.id = form_submissions.visa_id").
				Where("LOWER(form_submissions.id) LIKE ? OR LOWER(visas.title) LIKE ?", pattern, pattern)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count submissions: %w", err)
	}

	var submissions []models.FormSubmission
	err := query.
		Preload("Form").
		Preload("Visa").
		Preload("Visa.Category").
		Preload("Category").
		Preload("Payment").
		Preload("Documents").
		Order("form_submissions.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&submissions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}

	return &SubmissionPage{Submissions: submissions, Total: total}, nil
}

// UserSubmissions lists everything a user submitted, newest first.
func (s *SubmissionService) UserSubmissions(userID string) ([]models.FormSubmission, error) {
	var submissions []models.FormSubmission
	err := s.db.
		Preload("Form").
		Preload("Category").
		Preload("Category.Service").
		Preload("Documents").
		Where("created_by = ?", userID).
		Order("created_at DESC").
		Find(&submissions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list user submissions: %w", err)
	}
	return submissions, nil
}

// UserPendingSubmissions narrows UserSubmissions to UNDER_PROGRESS.
func (s *SubmissionService) UserPendingSubmissions(userID string) ([]models.FormSubmission, error) {
	var submissions []models.FormSubmission
	err := s.db.
		Preload("Form").
		Preload("Category").
		Preload("Category.Service").
		Preload("Documents").
		Where("created_by = ? AND status = ?", userID, models.StatusUnderProgress).
		Order("created_at DESC").
		Find(&submissions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pending submissions: %w", err)
	}
	return submissions, nil
}

// SubmissionByID loads one submission with its full relation set.
func (s *SubmissionService) SubmissionByID(id string) (*models.FormSubmission, error) {
	var submission models.FormSubmission
	err := s.db.
		Preload("Form").
		Preload("Visa").
		Preload("Visa.Category").
		Preload("Visa.Category.Service").
		Preload("Category").
		Preload("Payment").
		Preload("Documents").
		First(&submission, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("submission not found")
		}
		return nil, fmt.Errorf("failed to load submission: %w", err)
	}
	return &submission, nil
}
