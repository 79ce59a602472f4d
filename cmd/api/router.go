package api

import (
	"net/http"

	authDelivery "github.com/mrxception/MailMind/internal/auth/delivery"
	authUsecase "github.com/mrxception/MailMind/internal/auth/usecase"
	chatDelivery "github.com/mrxception/MailMind/internal/chat/delivery"
	mailDelivery "github.com/mrxception/MailMind/internal/mail/delivery"
	"github.com/mrxception/MailMind/pkg/ratelimit"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	r *gin.Engine,
	authUc authUsecase.AuthUsecase,
	authHandler *authDelivery.AuthHandler,
	mailHandler *mailDelivery.MailHandler,
	chatHandler *chatDelivery.ChatHandler,
	chatLimiter *ratelimit.FixedWindowLimiter,
) {
	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.GET("/me", authDelivery.AuthMiddleware(authUc), authHandler.Me)
		}

		// Gmail routes. The OAuth callback is hit by Google's redirect, so it
		// carries no Bearer token; the user id travels in the state parameter.
		gmail := api.Group("/gmail")
		{
			gmail.GET("/callback", mailHandler.Callback)

			protected := gmail.Group("")
			protected.Use(authDelivery.AuthMiddleware(authUc))
			{
				protected.GET("/auth", mailHandler.GetAuthURL)
				protected.POST("/sync", mailHandler.Sync)
				protected.POST("/disconnect", mailHandler.Disconnect)
				protected.GET("/status", mailHandler.Status)
			}
		}

		// Email listing (protected)
		emails := api.Group("/emails")
		emails.Use(authDelivery.AuthMiddleware(authUc))
		{
			emails.GET("/list", mailHandler.ListEmails)
		}

		// Chat routes (protected)
		chat := api.Group("/chat")
		chat.Use(authDelivery.AuthMiddleware(authUc))
		{
			chat.POST("", RateLimitMiddleware(chatLimiter), chatHandler.Chat)
			chat.GET("/history", chatHandler.History)
			chat.POST("/clear", chatHandler.Clear)
			chat.GET("/sessions", chatHandler.ListSessions)
			chat.GET("/sessions/:id", chatHandler.GetSession)
			chat.DELETE("/sessions/:id", chatHandler.DeleteSession)
		}
	}
}

// RateLimitMiddleware rejects requests over the per-user quota. A nil
// limiter disables limiting.
func RateLimitMiddleware(limiter *ratelimit.FixedWindowLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter != nil && !limiter.Allow(c.GetString("userID")) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests, slow down"})
			c.Abort()
			return
		}
		c.Next()
	}
}
