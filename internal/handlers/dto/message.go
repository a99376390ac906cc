package dto

import (
	"github.com/google/uuid"
	"time"

	"github.com/thereayou/duochat/internal/models"
)

// SendMessageRequest структура для отправки сообщения; ClientKey — необязательный
// клиентский ключ идемпотентности (uuid)
type SendMessageRequest struct {
	ConversationID string `json:"conversationId" binding:"required"`
	Content        string `json:"content" binding:"required"`
	ClientKey      string `json:"clientKey,omitempty"`
}

type MessageResponse struct {
	ID             uuid.UUID  `json:"id"`
	ConversationID uuid.UUID  `json:"conversation_id"`
	SenderID       uuid.UUID  `json:"sender_id"`
	Content        string     `json:"content"`
	ClientKey      *uuid.UUID `json:"client_key,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	Sender         UserInfo   `json:"sender"`
}

func NewMessageResponse(m *models.Message) MessageResponse {
	resp := MessageResponse{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		Content:        m.Content,
		ClientKey:      m.ClientKey,
		CreatedAt:      m.CreatedAt,
	}
	if m.Sender.ID != uuid.Nil {
		resp.Sender = NewUserInfo(&m.Sender)
	}
	return resp
}
