package database

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/duochat/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetOrCreateConversation атомарно находит или создает диалог для пары.
// Вставка идет с ON CONFLICT DO NOTHING по нормализованной паре, затем
// строка перечитывается: N одновременных вызовов сходятся к одной записи.
func (d *Database) GetOrCreateConversation(user1ID, user2ID uuid.UUID) (*models.Conversation, error) {
	if user1ID == user2ID {
		return nil, ErrSelfConversation
	}

	aID, bID := models.NormalizePair(user1ID, user2ID)

	var conv models.Conversation
	err := d.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		candidate := models.Conversation{
			UserAID:        aID,
			UserBID:        bID,
			LastActivityAt: now,
			CreatedAt:      now,
		}

		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_a_id"}, {Name: "user_b_id"}},
			DoNothing: true,
		}).Create(&candidate).Error
		if err != nil {
			return err
		}

		return tx.
			Preload("UserA").
			Preload("UserB").
			Where("user_a_id = ? AND user_b_id = ?", aID, bID).
			First(&conv).Error
	})
	if err != nil {
		return nil, err
	}

	return &conv, nil
}

// GetConversationForUser загружает диалог и проверяет участие пользователя.
// Отсутствующий диалог и чужой диалог неразличимы для вызывающего.
func (d *Database) GetConversationForUser(conversationID string, userID uuid.UUID) (*models.Conversation, error) {
	var conv models.Conversation
	err := d.db.Preload("UserA").Preload("UserB").First(&conv, "id = ?", conversationID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotParticipant
		}
		return nil, err
	}

	if !conv.HasParticipant(userID) {
		return nil, ErrNotParticipant
	}

	return &conv, nil
}

// GetUserConversations возвращает диалоги пользователя, самые активные первыми.
func (d *Database) GetUserConversations(userID uuid.UUID) ([]models.Conversation, error) {
	var conversations []models.Conversation
	err := d.db.
		Where("user_a_id = ? OR user_b_id = ?", userID, userID).
		Order("last_activity_at DESC").
		Preload("UserA").
		Preload("UserB").
		Find(&conversations).Error
	if err != nil {
		return nil, err
	}

	return conversations, nil
}
