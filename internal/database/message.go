package database

import (
	"errors"

	"github.com/thereayou/duochat/internal/models"
	"gorm.io/gorm"
)

// SaveMessage сохраняет сообщение и продвигает last_activity_at диалога
// одной транзакцией. Повторная отправка с тем же ClientKey возвращает
// ранее записанное сообщение вместо дубликата.
func (d *Database) SaveMessage(message *models.Message) error {
	err := d.db.Transaction(func(tx *gorm.DB) error {
		if message.ClientKey != nil {
			var existing models.Message
			err := tx.
				Where("conversation_id = ? AND client_key = ?", message.ConversationID, *message.ClientKey).
				First(&existing).Error
			if err == nil {
				*message = existing
				return nil
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}

		if err := tx.Create(message).Error; err != nil {
			return err
		}

		return tx.Model(&models.Conversation{}).
			Where("id = ?", message.ConversationID).
			Update("last_activity_at", message.CreatedAt).Error
	})

	// Гонка двух отправок с одним ключом: проигравшая вставка упирается
	// в уникальный индекс, перечитываем выигравшую запись.
	if err != nil && message.ClientKey != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		var existing models.Message
		ferr := d.db.
			Where("conversation_id = ? AND client_key = ?", message.ConversationID, *message.ClientKey).
			First(&existing).Error
		if ferr == nil {
			*message = existing
			return nil
		}
	}

	return err
}

func (d *Database) GetMessage(id string) (*models.Message, error) {
	var message models.Message
	if err := d.db.First(&message, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &message, nil
}

// GetConversationMessages возвращает сообщения диалога по возрастанию
// created_at, при равенстве — по id.
func (d *Database) GetConversationMessages(conversationID string) ([]models.Message, error) {
	var messages []models.Message
	err := d.db.
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC, id ASC").
		Preload("Sender").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	return messages, nil
}

// GetLastMessage возвращает последнее сообщение диалога, nil если их нет.
func (d *Database) GetLastMessage(conversationID string) (*models.Message, error) {
	var message models.Message
	err := d.db.
		Where("conversation_id = ?", conversationID).
		Order("created_at DESC, id DESC").
		Preload("Sender").
		First(&message).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &message, nil
}
