package database

import (
	"errors"

	"github.com/thereayou/duochat/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connect открывает пул соединений к Postgres и прогоняет миграции.
// TranslateError нужен, чтобы нарушение уникальности приходило как
// gorm.ErrDuplicatedKey вне зависимости от драйвера.
func (d *Database) Connect(dsn string) error {
	if dsn == "" {
		return errors.New("DATABASE_URL is not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return err
	}

	if err := db.AutoMigrate(&models.User{}, &models.Conversation{}, &models.Message{}); err != nil {
		return err
	}

	d.db = db

	return nil
}

// Migrate прогоняет миграции на уже открытом соединении (для тестов).
func (d *Database) Migrate() error {
	return d.db.AutoMigrate(&models.User{}, &models.Conversation{}, &models.Message{})
}
