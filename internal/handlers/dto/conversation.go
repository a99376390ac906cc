package dto

import (
	"github.com/google/uuid"
	"time"

	"github.com/thereayou/duochat/internal/models"
)

type CreateConversationRequest struct {
	OtherUserID string `json:"otherUserId" binding:"required"`
}

type ConversationResponse struct {
	ID             uuid.UUID        `json:"id"`
	Participants   []UserInfo       `json:"participants"`
	LastActivityAt time.Time        `json:"last_activity_at"`
	CreatedAt      time.Time        `json:"created_at"`
	LastMessage    *MessageResponse `json:"last_message,omitempty"`
}

func NewConversationResponse(c *models.Conversation) ConversationResponse {
	participants := make([]UserInfo, 0, 2)
	for _, p := range c.Participants() {
		participants = append(participants, NewUserInfo(&p))
	}

	return ConversationResponse{
		ID:             c.ID,
		Participants:   participants,
		LastActivityAt: c.LastActivityAt,
		CreatedAt:      c.CreatedAt,
	}
}
