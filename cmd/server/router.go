package server

import (
	"github.com/gin-gonic/gin"
	"github.com/thereayou/duochat/internal/handlers"
)

func APIEndpoints(
	r *gin.Engine,
	authMW gin.HandlerFunc,
	authH *handlers.AuthHandler,
	userH *handlers.UserHandler,
	convH *handlers.ConversationHandler,
	msgH *handlers.MessageHandler,
) {
	// Auth endpoints
	auth := r.Group("/auth")
	{
		auth.POST("/register", authH.Register)
		auth.POST("/login", authH.Login)
		auth.POST("/logout", authMW, authH.Logout)
	}

	// API endpoints
	api := r.Group("/", authMW)
	{
		api.GET("/users", userH.ListUsers)
		api.GET("/me", userH.GetMe)
		api.GET("/conversations", convH.ListConversations)
		api.POST("/conversations", convH.CreateConversation)
		api.GET("/messages", msgH.ListMessages)
		api.POST("/messages", msgH.SendMessage)
	}
}
