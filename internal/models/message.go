package models

import (
	"github.com/google/uuid"
	"time"
)

// Message — неизменяемое сообщение диалога. Порядок выдачи: created_at,
// при равенстве — id. ClientKey — клиентский ключ идемпотентности,
// уникальный в пределах диалога.
type Message struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ConversationID uuid.UUID  `gorm:"type:uuid;not null;index;uniqueIndex:ux_message_client_key,priority:1"`
	SenderID       uuid.UUID  `gorm:"type:uuid;not null"`
	Content        string     `gorm:"not null"`
	ClientKey      *uuid.UUID `gorm:"type:uuid;uniqueIndex:ux_message_client_key,priority:2"`
	CreatedAt      time.Time

	// Связи
	Sender       User         `gorm:"foreignKey:SenderID"`
	Conversation Conversation `gorm:"foreignKey:ConversationID"`
}
