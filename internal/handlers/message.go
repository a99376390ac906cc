package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/thereayou/duochat/internal/database"
	"github.com/thereayou/duochat/internal/handlers/dto"
	"github.com/thereayou/duochat/internal/middleware"
	"github.com/thereayou/duochat/internal/models"
)

type MessageHandler struct {
	db *database.Database
}

func NewMessageHandler(db *database.Database) *MessageHandler {
	return &MessageHandler{db: db}
}

// ListMessages возвращает сообщения диалога по возрастанию времени.
// Чужой и несуществующий диалог дают одинаковый 403.
func (h *MessageHandler) ListMessages(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	conversationID := c.Query("conversationId")
	if conversationID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing conversationId"})
		return
	}

	if _, err := uuid.Parse(conversationID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
		return
	}

	if _, err := h.db.GetConversationForUser(conversationID, userID); err != nil {
		if errors.Is(err, database.ErrNotParticipant) {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get messages"})
		return
	}

	messages, err := h.db.GetConversationMessages(conversationID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get messages"})
		return
	}

	result := make([]dto.MessageResponse, len(messages))
	for i := range messages {
		result[i] = dto.NewMessageResponse(&messages[i])
	}

	c.JSON(http.StatusOK, gin.H{"messages": result})
}

// SendMessage сохраняет сообщение в диалоге текущего пользователя
func (h *MessageHandler) SendMessage(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	var req dto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required fields"})
		return
	}

	if strings.TrimSpace(req.Content) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "content must not be empty"})
		return
	}

	conversationID, err := uuid.Parse(req.ConversationID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
		return
	}

	var clientKey *uuid.UUID
	if req.ClientKey != "" {
		key, err := uuid.Parse(req.ClientKey)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client key"})
			return
		}
		clientKey = &key
	}

	if _, err := h.db.GetConversationForUser(conversationID.String(), userID); err != nil {
		if errors.Is(err, database.ErrNotParticipant) {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send message"})
		return
	}

	message := &models.Message{
		ConversationID: conversationID,
		SenderID:       userID,
		Content:        req.Content,
		ClientKey:      clientKey,
		CreatedAt:      time.Now(),
	}

	if err := h.db.SaveMessage(message); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send message"})
		return
	}

	// Подтягиваем отправителя для ответа
	full, err := h.db.GetMessage(message.ID.String())
	if err == nil {
		if sender, serr := h.db.GetUser(full.SenderID.String()); serr == nil {
			full.Sender = *sender
		}
		message = full
	}

	c.JSON(http.StatusCreated, gin.H{"message": dto.NewMessageResponse(message)})
}
