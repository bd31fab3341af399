package services

import (
	"errors"
	"fmt"

	"AE-VISA/internal/models"
	"AE-VISA/internal/realtime"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// adminRoleNames are the roles whose holders get a copy of every chat
// notification, like a shared agent inbox.
var adminRoleNames = []string{"super admin", "admin"}

type ChatService struct {
	db  *gorm.DB
	hub realtime.Publisher
	log *logrus.Logger
}

func NewChatService(db *gorm.DB, hub realtime.Publisher, log *logrus.Logger) *ChatService {
	return &ChatService{db: db, hub: hub, log: log}
}

// CreateChat opens a conversation between the caller and a receiver. Chats
// are deduplicated in both directions: an existing chat between the pair is
// returned regardless of who opened it. A genuinely new chat notifies every
// admin that is not one of the two participants.
func (s *ChatService) CreateChat(senderID, receiverID string) (*models.Chat, error) {
	var receiver models.User
	if err := s.db.First(&receiver, "id = ?", receiverID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("receiver not found")
		}
		return nil, fmt.Errorf("failed to load receiver: %w", err)
	}
	var sender models.User
	if err := s.db.Preload("Role").First(&sender, "id = ?", senderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("sender not found")
		}
		return nil, fmt.Errorf("failed to load sender: %w", err)
	}

	var existing models.Chat
	err := s.db.
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			sender.ID, receiver.ID, receiver.ID, sender.ID).
		First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up chat: %w", err)
	}

	chat := &models.Chat{SenderID: sender.ID, ReceiverID: receiver.ID}
	chat.CreatedBy = sender.ID

	admins, err := s.adminUsers()
	if err != nil {
		return nil, err
	}

	var notifications []*models.Notification
	for _, admin := range admins {
		if admin.ID == sender.ID || admin.ID == receiver.ID {
			continue
		}
		notifications = append(notifications, &models.Notification{
			Name:    "New Chat",
			Message: fmt.Sprintf("%s started a chat with %s", sender.Name, receiver.Name),
			UserID:  admin.ID,
		})
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(chat).Error; err != nil {
			return fmt.Errorf("failed to create chat: %w", err)
		}
		for _, n := range notifications {
			if err := tx.Create(n).Error; err != nil {
				return fmt.Errorf("failed to create notification: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, n := range notifications {
		s.hub.Publish(n)
	}
	return chat, nil
}

func (s *ChatService) adminUsers() ([]models.User, error) {
	var admins []models.User
	err := s.db.
		Joins("JOIN roles ON roles.id = users.role_id").
		Where("roles.name IN ?", adminRoleNames).
		Find(&admins).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load admins: %w", err)
	}
	return admins, nil
}

// SendMessage appends a message to a chat the caller belongs to, notifies the
// counterpart, then fans a copy out to every admin that is not already the
// sender or receiver. All rows commit together; publishes follow the commit.
func (s *ChatService) SendMessage(senderID, chatID, content string) (*models.Message, error) {
	var chat models.Chat
	err := s.db.Preload("Sender").Preload("Receiver").First(&chat, "id = ?", chatID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("chat not found")
		}
		return nil, fmt.Errorf("failed to load chat: %w", err)
	}

	var sender models.User
	if err := s.db.First(&sender, "id = ?", senderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("sender not found")
		}
		return nil, fmt.Errorf("failed to load sender: %w", err)
	}

	var receiver *models.User
	switch sender.ID {
	case chat.SenderID:
		receiver = chat.Receiver
	case chat.ReceiverID:
		receiver = chat.Sender
	default:
		return nil, fmt.Errorf("you are not part of this chat")
	}
	if receiver == nil {
		return nil, fmt.Errorf("chat counterpart not found")
	}

	message := &models.Message{Content: content, SenderID: sender.ID, ChatID: chat.ID}
	message.CreatedBy = sender.ID

	admins, err := s.adminUsers()
	if err != nil {
		return nil, err
	}

	notifications := []*models.Notification{{
		Name:    "New Message",
		Message: fmt.Sprintf("You have a new message from %s", sender.Name),
		UserID:  receiver.ID,
	}}

	notified := map[string]struct{}{receiver.ID: {}, sender.ID: {}}
	for _, admin := range admins {
		if _, seen := notified[admin.ID]; seen {
			continue
		}
		notified[admin.ID] = struct{}{}
		notifications = append(notifications, &models.Notification{
			Name:    "New Chat Message",
			Message: fmt.Sprintf("New message from %s to %s", sender.Name, receiver.Name),
			UserID:  admin.ID,
		})
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(message).Error; err != nil {
			return fmt.Errorf("failed to create message: %w", err)
		}
		for _, n := range notifications {
			if err := tx.Create(n).Error; err != nil {
				return fmt.Errorf("failed to create notification: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, n := range notifications {
		s.hub.Publish(n)
	}

	s.log.WithFields(logrus.Fields{"chat_id": chat.ID, "sender_id": sender.ID}).Info("message sent")
	return message, nil
}

// ChatByID loads one chat with its participants and message history.
func (s *ChatService) ChatByID(id string) (*models.Chat, error) {
	var chat models.Chat
	err := s.db.
		Preload("Sender").
		Preload("Receiver").
		Preload("Messages").
		Preload("Messages.Sender").
		First(&chat, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("chat not found")
		}
		return nil, fmt.Errorf("failed to load chat: %w", err)
	}
	return &chat, nil
}

// UserChats lists every chat the user takes part in, most recently active
// first.
func (s *ChatService) UserChats(userID string) ([]models.Chat, error) {
	var chats []models.Chat
	err := s.db.
		Preload("Sender").
		Preload("Receiver").
		Preload("Messages").
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Order("updated_at DESC").
		Find(&chats).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}
	return chats, nil
}
