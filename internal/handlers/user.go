package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/thereayou/duochat/internal/database"
	"github.com/thereayou/duochat/internal/handlers/dto"
	"github.com/thereayou/duochat/internal/middleware"
)

type UserHandler struct {
	db *database.Database
}

func NewUserHandler(db *database.Database) *UserHandler {
	return &UserHandler{db: db}
}

// ListUsers возвращает всех пользователей, кроме текущего
func (h *UserHandler) ListUsers(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	users, err := h.db.ListUsersExcept(userID.String())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list users"})
		return
	}

	result := make([]dto.UserInfo, len(users))
	for i := range users {
		result[i] = dto.NewUserInfo(&users[i])
	}

	c.JSON(http.StatusOK, gin.H{"users": result})
}

// GetMe возвращает информацию о текущем пользователе
func (h *UserHandler) GetMe(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	user, err := h.db.GetUser(userID.String())
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": dto.NewUserInfo(user)})
}
