package main

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/authlink/backend/internal/client"
	"github.com/authlink/backend/internal/config"
	"github.com/authlink/backend/internal/db"
	"github.com/authlink/backend/internal/handler"
	"github.com/authlink/backend/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

// @title Auth Backend API
// @version 1.0
// @description Email/password and Google authentication with rotated refresh tokens.
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	cfg := config.Load()
	ctx := context.Background()

	database, err := db.NewPostgres(ctx, cfg.Postgres)
	if err != nil {
		log.Fatalf("Failed to connect to postgres: %v", err)
	}
	defer database.Close()

	if err := database.EnsureAuthSchema(ctx); err != nil {
		log.Fatalf("Failed to ensure auth schema: %v", err)
	}

	tokens, err := service.NewTokenService(cfg.Auth)
	if err != nil {
		log.Fatalf("Failed to configure token service: %v", err)
	}

	verifier, err := client.NewGoogleVerifier(ctx, cfg.Google)
	if err != nil {
		log.Fatalf("Failed to configure google verifier: %v", err)
	}

	identity := client.NewIdentityClient(cfg.Identity)
	refreshTokens := service.NewRefreshTokenService(database, tokens)
	authService := service.NewAuthService(database, identity, verifier, tokens, refreshTokens)

	// Stale refresh-token rows accumulate from rotation; sweep them off the
	// hot path.
	go func() {
		ticker := time.NewTicker(12 * time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			count, err := refreshTokens.CleanupExpired(context.Background())
			if err != nil {
				log.Printf("Failed to clean up stale refresh tokens: %v", err)
				continue
			}
			if count > 0 {
				log.Printf("Removed %d stale refresh tokens", count)
			}
		}
	}()

	router := gin.Default()
	router.Use(handler.CORSMiddleware(
		strings.Split(cfg.Server.AllowedOrigins, ","),
		cfg.Server.AllowCredentials == "true",
	))

	router.GET("/ping", handler.Ping)
	router.GET("/", handler.Root)
	router.GET("/openapi.json", handler.OpenAPIDoc)

	authHandler := handler.NewAuthHandler(authService)
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/google", authHandler.GoogleAuth)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", authHandler.Logout)
		auth.POST("/send-password-reset", authHandler.SendPasswordReset)
	}

	protected := router.Group("/api/v1/auth")
	protected.Use(handler.AuthMiddleware(authService))
	{
		protected.POST("/change-password", authHandler.ChangePassword)
		protected.GET("/me", authHandler.Me)
	}

	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
