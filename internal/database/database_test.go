package database

import (
	"testing"
	"time"

	"github.com/thereayou/duochat/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB поднимает in-memory SQLite с одним соединением в пуле:
// все обращения сериализуются, а :memory: остаётся одной базой.
func newTestDB(t *testing.T) *Database {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	d := NewDatabase(db)
	if err := d.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return d
}

func createTestUser(t *testing.T, d *Database, name, email string) *models.User {
	t.Helper()

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: "x",
		CreatedAt:    time.Now(),
	}
	if err := d.SaveUser(user); err != nil {
		t.Fatalf("save user %s: %v", email, err)
	}
	return user
}
