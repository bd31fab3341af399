package handlers

import (
	"net/http"

	"AE-VISA/internal/middleware"
	"AE-VISA/internal/services"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	chatService *services.ChatService
}

func NewChatHandler(chatService *services.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// CreateChat opens (or returns the existing) conversation with a receiver
// POST /api/v1/chats
func (h *ChatHandler) CreateChat(c *gin.Context) {
	var input struct {
		ReceiverID string `json:"receiver_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	chat, err := h.chatService.CreateChat(middleware.UserID(c), input.ReceiverID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"chat": chat})
}

// SendMessage appends a message to a chat the caller belongs to
// POST /api/v1/chats/:id/messages
func (h *ChatHandler) SendMessage(c *gin.Context) {
	var input struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	message, err := h.chatService.SendMessage(middleware.UserID(c), c.Param("id"), input.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": message})
}

// GetChat returns one chat with its message history
// GET /api/v1/chats/:id
func (h *ChatHandler) GetChat(c *gin.Context) {
	chat, err := h.chatService.ChatByID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"chat": chat})
}

// ListChats returns the caller's chats, most recently active first
// GET /api/v1/chats
func (h *ChatHandler) ListChats(c *gin.Context) {
	chats, err := h.chatService.UserChats(middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"chats": chats})
}
