package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"AE-VISA/internal/models"
	"AE-VISA/internal/realtime"

	"gorm.io/gorm"
)

type NotificationFilter struct {
	Search    string `json:"search"`
	IsRead    *bool  `json:"is_read"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type NotificationPage struct {
	Notifications []models.Notification `json:"notifications"`
	Total         int64                 `json:"total"`
}

type NotificationService struct {
	db  *gorm.DB
	hub realtime.Publisher
}

func NewNotificationService(db *gorm.DB, hub realtime.Publisher) *NotificationService {
	return &NotificationService{db: db, hub: hub}
}

// Create saves a notification and publishes it. Creation and publish are
// always paired; subscribers filter by addressee on their side.
func (s *NotificationService) Create(name, message, userID string) (*models.Notification, error) {
	notification := &models.Notification{Name: name, Message: message, UserID: userID}
	if err := s.db.Create(notification).Error; err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	s.hub.Publish(notification)
	return notification, nil
}

// UserNotifications lists a user's notifications newest first.
func (s *NotificationService) UserNotifications(userID string) (*NotificationPage, error) {
	query := s.db.Model(&models.Notification{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count notifications: %w", err)
	}

	var notifications []models.Notification
	err := query.
		Preload("User").
		Order("created_at DESC").
		Find(&notifications).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return &NotificationPage{Notifications: notifications, Total: total}, nil
}

// AdminNotifications lists notifications across all users with search, read
// state and date range filters.
func (s *NotificationService) AdminNotifications(filter *NotificationFilter) (*NotificationPage, error) {
	query := s.db.Model(&models.Notification{})

	if filter != nil {
		if search := strings.TrimSpace(filter.Search); search != "" {
			pattern := "%" + strings.ToLower(search) + "%"
			query = query.
				Joins("LEFT JOIN users ON users.id = notifications.user_id").
				Where("LOWER(notifications.message) LIKE ? OR LOWER(users.name) LIKE ? OR LOWER(users.email) LIKE ?",
					pattern, pattern, pattern)
		}
		if filter.IsRead != nil {
			query = query.Where("notifications.is_read = ?", *filter.IsRead)
		}
		if filter.StartDate != "" {
			start, err := time.Parse(time.RFC3339, filter.StartDate)
			if err != nil {
				return nil, fmt.Errorf("invalid start date: %w", err)
			}
			query = query.Where("notifications.created_at >= ?", start)
		}
		if filter.EndDate != "" {
			end, err := time.Parse(time.RFC3339, filter.EndDate)
			if err != nil {
				return nil, fmt.Errorf("invalid end date: %w", err)
			}
			query = query.Where("notifications.created_at <= ?", end)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count notifications: %w", err)
	}

	var notifications []models.Notification
	err := query.
		Preload("User").
		Order("notifications.created_at DESC").
		Find(&notifications).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return &NotificationPage{Notifications: notifications, Total: total}, nil
}

func (s *NotificationService) NotificationByID(id string) (*models.Notification, error) {
	var notification models.Notification
	err := s.db.Preload("User").First(&notification, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("notification not found")
		}
		return nil, fmt.Errorf("failed to load notification: %w", err)
	}
	return &notification, nil
}

// MarkRead flips one notification to read.
func (s *NotificationService) MarkRead(id string) (*models.Notification, error) {
	var notification models.Notification
	if err := s.db.First(&notification, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("notification not found")
		}
		return nil, fmt.Errorf("failed to load notification: %w", err)
	}
	notification.IsRead = true
	if err := s.db.Save(&notification).Error; err != nil {
		return nil, fmt.Errorf("failed to update notification: %w", err)
	}
	return &notification, nil
}

// MarkAllRead flips every unread notification for a user. No unread rows is
// not an error.
func (s *NotificationService) MarkAllRead(userID string) error {
	err := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
	if err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}
