package api

import (
	authDelivery "github.com/mrxception/MailMind/internal/auth/delivery"
	authUsecase "github.com/mrxception/MailMind/internal/auth/usecase"
	chatDelivery "github.com/mrxception/MailMind/internal/chat/delivery"
	mailDelivery "github.com/mrxception/MailMind/internal/mail/delivery"
	"github.com/mrxception/MailMind/pkg/ratelimit"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	authUsecase authUsecase.AuthUsecase
	authHandler *authDelivery.AuthHandler
	mailHandler *mailDelivery.MailHandler
	chatHandler *chatDelivery.ChatHandler
	chatLimiter *ratelimit.FixedWindowLimiter
}

func NewHandler(
	authUc authUsecase.AuthUsecase,
	authHandler *authDelivery.AuthHandler,
	mailHandler *mailDelivery.MailHandler,
	chatHandler *chatDelivery.ChatHandler,
	chatLimiter *ratelimit.FixedWindowLimiter,
) *Handler {
	return &Handler{
		authUsecase: authUc,
		authHandler: authHandler,
		mailHandler: mailHandler,
		chatHandler: chatHandler,
		chatLimiter: chatLimiter,
	}
}

func (h *Handler) Start(addr string) error {
	gin.SetMode(gin.ReleaseMode)
	r := gin.Default()

	// CORS middleware
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	SetupRoutes(r, h.authUsecase, h.authHandler, h.mailHandler, h.chatHandler, h.chatLimiter)

	return r.Run(addr)
}
