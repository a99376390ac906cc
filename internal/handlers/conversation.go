package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/thereayou/duochat/internal/database"
	"github.com/thereayou/duochat/internal/handlers/dto"
	"github.com/thereayou/duochat/internal/middleware"
)

type ConversationHandler struct {
	db *database.Database
}

func NewConversationHandler(db *database.Database) *ConversationHandler {
	return &ConversationHandler{db: db}
}

// CreateConversation находит или создает диалог с другим пользователем.
// Повторные вызовы с той же парой возвращают один и тот же диалог.
func (h *ConversationHandler) CreateConversation(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	var req dto.CreateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing otherUserId"})
		return
	}

	otherUserID, err := uuid.Parse(req.OtherUserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	if userID == otherUserID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot start a conversation with yourself"})
		return
	}

	if _, err := h.db.GetUser(otherUserID.String()); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	conv, err := h.db.GetOrCreateConversation(userID, otherUserID)
	if err != nil {
		if errors.Is(err, database.ErrSelfConversation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot start a conversation with yourself"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create conversation"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"conversation": dto.NewConversationResponse(conv)})
}

// ListConversations возвращает диалоги пользователя с участниками и
// последним сообщением, самые активные первыми
func (h *ConversationHandler) ListConversations(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	conversations, err := h.db.GetUserConversations(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get conversations"})
		return
	}

	result := make([]dto.ConversationResponse, len(conversations))
	for i := range conversations {
		resp := dto.NewConversationResponse(&conversations[i])

		last, err := h.db.GetLastMessage(conversations[i].ID.String())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get conversations"})
			return
		}
		if last != nil {
			lastResp := dto.NewMessageResponse(last)
			resp.LastMessage = &lastResp
		}

		result[i] = resp
	}

	c.JSON(http.StatusOK, gin.H{"conversations": result})
}
