package delivery

import (
	"context"
	"errors"
	"net/http"

	maildomain "github.com/mrxception/MailMind/internal/mail/domain"
	"github.com/mrxception/MailMind/internal/mail/repository"
	"github.com/mrxception/MailMind/internal/mail/usecase"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type MailHandler struct {
	tokens      *usecase.TokenManager
	sync        *usecase.SyncUsecase
	connections repository.ConnectionRepository
	emails      repository.EmailRepository
	appURL      string
	maxMessages int
	log         zerolog.Logger
}

func NewMailHandler(
	tokens *usecase.TokenManager,
	sync *usecase.SyncUsecase,
	connections repository.ConnectionRepository,
	emails repository.EmailRepository,
	appURL string,
	maxMessages int,
	log zerolog.Logger,
) *MailHandler {
	return &MailHandler{
		tokens:      tokens,
		sync:        sync,
		connections: connections,
		emails:      emails,
		appURL:      appURL,
		maxMessages: maxMessages,
		log:         log.With().Str("component", "mail-handler").Logger(),
	}
}

// GetAuthURL returns the Google consent URL for the authenticated user.
func (h *MailHandler) GetAuthURL(c *gin.Context) {
	userID := c.GetString("userID")
	c.JSON(http.StatusOK, gin.H{"authUrl": h.tokens.AuthURL(userID)})
}

// Callback handles the OAuth redirect from Google. state carries the user id
// set by GetAuthURL. On success the user's mailbox is synced in the
// background and the browser is sent back to the frontend.
func (h *MailHandler) Callback(c *gin.Context) {
	code := c.Query("code")
	state := c.Query("state")
	if code == "" || state == "" {
		c.Redirect(http.StatusTemporaryRedirect, h.appURL+"/dashboard?error=missing_params")
		return
	}

	token, err := h.tokens.ExchangeCode(c.Request.Context(), code)
	if err != nil {
		h.log.Error().Err(err).Msg("code exchange failed")
		c.Redirect(http.StatusTemporaryRedirect, h.appURL+"/dashboard?error=token_error")
		return
	}

	userID := state
	if _, err := h.tokens.Connect(c.Request.Context(), userID, token); err != nil {
		h.log.Error().Err(err).Msg("storing connection failed")
		c.Redirect(http.StatusTemporaryRedirect, h.appURL+"/dashboard?error=callback_failed")
		return
	}

	// Initial ingestion runs detached so the redirect is not held up.
	go func() {
		if _, err := h.sync.SyncEmails(context.Background(), userID, h.maxMessages); err != nil {
			h.log.Error().Err(err).Str("user_id", userID).Msg("initial sync failed")
		}
	}()

	c.Redirect(http.StatusTemporaryRedirect, h.appURL+"/connect?success=true")
}

// Sync runs the ingestion pipeline for the authenticated user.
func (h *MailHandler) Sync(c *gin.Context) {
	userID := c.GetString("userID")

	count, err := h.sync.SyncEmails(c.Request.Context(), userID, h.maxMessages)
	if err != nil {
		switch {
		case maildomain.NeedsReauth(err):
			c.JSON(http.StatusForbidden, gin.H{
				"error":       "Insufficient permissions. Please reconnect your Gmail account.",
				"needsReauth": true,
			})
		case errors.Is(err, maildomain.ErrNoConnection):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Please connect your Gmail account first"})
		default:
			h.log.Error().Err(err).Str("user_id", userID).Msg("sync failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sync emails"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "count": count})
}

// Disconnect removes the user's Gmail connection; repeating it is harmless.
func (h *MailHandler) Disconnect(c *gin.Context) {
	userID := c.GetString("userID")
	if err := h.tokens.Revoke(userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to disconnect Gmail"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Status reports whether the user has a connection and how many messages are stored.
func (h *MailHandler) Status(c *gin.Context) {
	userID := c.GetString("userID")

	conn, err := h.connections.FindLatestByUser(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if conn == nil {
		c.JSON(http.StatusOK, gin.H{"connected": false})
		return
	}

	count, err := h.emails.CountByUser(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"connected":   true,
		"email":       conn.GmailEmail,
		"connectedAt": conn.CreatedAt,
		"emailCount":  count,
	})
}

// ListEmails returns lightweight rows for the 50 most recent messages.
func (h *MailHandler) ListEmails(c *gin.Context) {
	userID := c.GetString("userID")

	emails, err := h.emails.FindRecent(userID, 50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	items := make([]gin.H, 0, len(emails))
	for _, e := range emails {
		items = append(items, gin.H{
			"id":          e.ID,
			"subject":     e.Subject,
			"sender":      e.Sender,
			"received_at": e.ReceivedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"emails": items})
}
