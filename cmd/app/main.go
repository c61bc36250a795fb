package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"bountyhunter/internal/api"
	"bountyhunter/internal/cache"
	"bountyhunter/internal/repository"
	"bountyhunter/internal/service"
	"bountyhunter/pkg/auth"
	"bountyhunter/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	err = logger.Initialize(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	zapLogger := logger.Logger()

	repo, err := repository.New(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to initialize repository", zap.Error(err))
	}
	defer repo.Close()

	leaderboardCache, err := cache.New(cfg.Redis)
	if err != nil {
		zapLogger.Fatal("Failed to initialize redis cache", zap.Error(err))
	}
	defer leaderboardCache.Close()

	verifier, err := service.NewBotVerifier(cfg.Telegram.BotToken, cfg.Telegram.Debug)
	if err != nil {
		zapLogger.Fatal("Failed to initialize telegram bot", zap.Error(err))
	}

	eventHub := service.NewEventHub()

	userService := service.NewUserService(repo, eventHub)
	referralService := service.NewReferralService(repo, repo, eventHub)
	taskService := service.NewTaskService(repo, repo, referralService, verifier, eventHub)
	socialService := service.NewSocialService(repo, taskService, cfg.Telegram.BotToken, cfg.Telegram.Debug)
	leaderboardService := service.NewLeaderboardService(repo, leaderboardCache)

	walletAuth := auth.NewWalletAuth(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLHours)*time.Hour)

	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{
		http.MethodHead,
		http.MethodGet,
		http.MethodPost,
		http.MethodPut,
		http.MethodPatch,
		http.MethodDelete,
	}
	corsConfig.AllowHeaders = []string{"*"}
	corsConfig.AllowCredentials = true
	corsConfig.MaxAge = 12 * time.Hour

	router.Use(cors.New(corsConfig))

	a := router.Group("/api/v1")
	api.NewUserRoutes(a, userService, leaderboardService, walletAuth)
	api.NewReferralRoutes(a, referralService, walletAuth)
	api.NewSocialRoutes(a, socialService, walletAuth)
	api.NewTaskRoutes(a, taskService, walletAuth)
	api.NewLeaderboardRoutes(a, leaderboardService, walletAuth)
	api.NewEventRoutes(a, eventHub, walletAuth)
	api.NewAdminRoutes(a, userService, walletAuth)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	zapLogger.Info("Starting server", zap.String("addr", addr))
	if err := router.Run(addr); err != nil {
		zapLogger.Fatal("Failed to start server", zap.Error(err))
	}
}
