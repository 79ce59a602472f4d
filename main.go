package main

import (
	api "github.com/mrxception/MailMind/cmd/api"
	authdomain "github.com/mrxception/MailMind/internal/auth/domain"
	authDelivery "github.com/mrxception/MailMind/internal/auth/delivery"
	authRepo "github.com/mrxception/MailMind/internal/auth/repository"
	authUsecase "github.com/mrxception/MailMind/internal/auth/usecase"
	chatdomain "github.com/mrxception/MailMind/internal/chat/domain"
	chatDelivery "github.com/mrxception/MailMind/internal/chat/delivery"
	chatRepo "github.com/mrxception/MailMind/internal/chat/repository"
	chatUsecase "github.com/mrxception/MailMind/internal/chat/usecase"
	maildomain "github.com/mrxception/MailMind/internal/mail/domain"
	mailDelivery "github.com/mrxception/MailMind/internal/mail/delivery"
	mailRepo "github.com/mrxception/MailMind/internal/mail/repository"
	mailUsecase "github.com/mrxception/MailMind/internal/mail/usecase"
	"github.com/mrxception/MailMind/internal/mail/scheduler"
	"github.com/mrxception/MailMind/pkg/ai"
	"github.com/mrxception/MailMind/pkg/config"
	"github.com/mrxception/MailMind/pkg/database"
	"github.com/mrxception/MailMind/pkg/gmail"
	"github.com/mrxception/MailMind/pkg/logger"
	"github.com/mrxception/MailMind/pkg/ratelimit"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel)

	db, err := database.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	if err := db.AutoMigrate(
		&authdomain.User{},
		&maildomain.GmailConnection{},
		&maildomain.Email{},
		&chatdomain.ChatSession{},
		&chatdomain.ChatTurn{},
	); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}
	if err := database.EnsureSearchIndex(db); err != nil {
		log.Fatal().Err(err).Msg("failed to create search index")
	}

	// Repositories
	userRepository := authRepo.NewUserRepository(db)
	connectionRepository := mailRepo.NewConnectionRepository(db)
	emailRepository := mailRepo.NewEmailRepository(db)
	sessionRepository := chatRepo.NewSessionRepository(db)
	turnRepository := chatRepo.NewTurnRepository(db)

	// Services
	gmailService := gmail.NewService(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURI)
	aiClient := ai.NewClient(cfg.AIAPIURL, cfg.AIAPIKey, cfg.AIModel)

	// Use cases
	authUc := authUsecase.NewAuthUsecase(userRepository, cfg.JWTSecret, cfg.JWTExpiry)
	tokenManager := mailUsecase.NewTokenManager(connectionRepository, gmailService, log)
	syncUc := mailUsecase.NewSyncUsecase(tokenManager, emailRepository, log)
	searchUc := chatUsecase.NewSearchUsecase(emailRepository, log)
	chatUc := chatUsecase.NewChatUsecase(connectionRepository, searchUc, aiClient, sessionRepository, turnRepository, log)

	// Optional per-user chat quota, enabled when Redis is configured
	var chatLimiter *ratelimit.FixedWindowLimiter
	if cfg.RedisAddr != "" {
		chatLimiter, err = ratelimit.NewFixedWindowLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.ChatRateLimit, cfg.ChatRateWindow)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize rate limiter")
		}
	}

	// Background mailbox refresh
	syncScheduler := scheduler.NewSyncScheduler(syncUc, connectionRepository, cfg.SyncInterval, cfg.SyncMaxMessages, log)
	syncScheduler.Start()
	defer syncScheduler.Stop()

	// HTTP delivery
	authHandler := authDelivery.NewAuthHandler(authUc, log)
	mailHandler := mailDelivery.NewMailHandler(tokenManager, syncUc, connectionRepository, emailRepository, cfg.AppURL, cfg.SyncMaxMessages, log)
	chatHandler := chatDelivery.NewChatHandler(chatUc, log)

	handler := api.NewHandler(authUc, authHandler, mailHandler, chatHandler, chatLimiter)

	log.Info().Str("port", cfg.Port).Msg("server starting")
	if err := handler.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
