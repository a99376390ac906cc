package models

import (
	"github.com/google/uuid"
	"time"
)

// Conversation — диалог ровно между двумя пользователями.
// Пара участников нормализована: UserAID < UserBID (лексикографически),
// уникальный индекс по паре гарантирует не больше одного диалога на пару.
type Conversation struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserAID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_conversation_pair,priority:1"`
	UserBID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_conversation_pair,priority:2"`
	LastActivityAt time.Time `gorm:"index;not null"`
	CreatedAt      time.Time

	// Связи
	UserA    User      `gorm:"foreignKey:UserAID"`
	UserB    User      `gorm:"foreignKey:UserBID"`
	Messages []Message `gorm:"foreignKey:ConversationID"`
}

// NormalizePair приводит пару ID к каноническому порядку (min, max).
func NormalizePair(x, y uuid.UUID) (uuid.UUID, uuid.UUID) {
	if x.String() > y.String() {
		return y, x
	}
	return x, y
}

// HasParticipant проверяет, что userID входит в пару участников.
func (c *Conversation) HasParticipant(userID uuid.UUID) bool {
	return c.UserAID == userID || c.UserBID == userID
}

// Participants возвращает загруженных участников в порядке (A, B).
func (c *Conversation) Participants() []User {
	return []User{c.UserA, c.UserB}
}
