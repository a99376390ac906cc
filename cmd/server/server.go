package server

import (
	"context"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/thereayou/duochat/internal/config"
	"github.com/thereayou/duochat/internal/database"
	"github.com/thereayou/duochat/internal/handlers"
	"github.com/thereayou/duochat/internal/middleware"
	"github.com/thereayou/duochat/pkg/auth"
)

type Server struct {
	Router       *gin.Engine
	DB           *database.Database
	Redis        *redis.Client
	TokenManager *auth.TokenManager
	Config       config.Config
}

func NewServer() *Server {
	if err := godotenv.Load(".env.local"); err != nil {
		if err := godotenv.Load(); err != nil {
			log.Println(".env not found, using environment variables")
		}
	}

	cfg := config.Load()

	dbConn := &database.Database{}
	if err := dbConn.Connect(cfg.DatabaseURL); err != nil {
		log.Fatalf("Postgres connect failed: %v", err)
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("invalid REDIS_URL: %v", err)
	}
	rdb := redis.NewClient(redisOpts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("Redis connect failed: %v", err)
	}

	tokenMgr := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)

	authH := handlers.NewAuthHandler(dbConn, tokenMgr, rdb)
	userH := handlers.NewUserHandler(dbConn)
	convH := handlers.NewConversationHandler(dbConn)
	msgH := handlers.NewMessageHandler(dbConn)

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	authMW := middleware.AuthMiddleware(tokenMgr, rdb)
	APIEndpoints(router, authMW, authH, userH, convH, msgH)

	return &Server{
		Router:       router,
		DB:           dbConn,
		Redis:        rdb,
		TokenManager: tokenMgr,
		Config:       cfg,
	}
}

func (s *Server) Run() {
	log.Printf("Server starting on port %s", s.Config.ServerPort)
	if err := s.Router.Run(":" + s.Config.ServerPort); err != nil {
		log.Fatalf("Server run error: %v", err)
	}
}

func (s *Server) Close() {
	if err := s.Redis.Close(); err != nil {
		log.Printf("Redis close error: %v", err)
	}
}
