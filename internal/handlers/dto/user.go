package dto

import (
	"github.com/google/uuid"
	"time"

	"github.com/thereayou/duochat/internal/models"
)

type UserInfo struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	LastSeenAt time.Time `json:"last_seen_at"`
}

func NewUserInfo(u *models.User) UserInfo {
	return UserInfo{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		LastSeenAt: u.LastSeenAt,
	}
}
