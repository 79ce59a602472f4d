package delivery

import (
	"errors"
	"net/http"

	"github.com/mrxception/MailMind/internal/chat/usecase"
	maildomain "github.com/mrxception/MailMind/internal/mail/domain"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type ChatHandler struct {
	chat *usecase.ChatUsecase
	log  zerolog.Logger
}

func NewChatHandler(chat *usecase.ChatUsecase, log zerolog.Logger) *ChatHandler {
	return &ChatHandler{
		chat: chat,
		log:  log.With().Str("component", "chat-handler").Logger(),
	}
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
}

// Chat answers one question about the user's mailbox.
func (h *ChatHandler) Chat(c *gin.Context) {
	userID := c.GetString("userID")

	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message is required"})
		return
	}

	result, err := h.chat.HandleTurn(c.Request.Context(), userID, req.SessionID, req.Message)
	if err != nil {
		if errors.Is(err, maildomain.ErrNoConnection) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Please connect your Gmail account first"})
			return
		}
		h.log.Error().Err(err).Str("user_id", userID).Msg("chat turn failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// History returns the user's latest exchanges across all sessions.
func (h *ChatHandler) History(c *gin.Context) {
	userID := c.GetString("userID")

	history, err := h.chat.History(userID, 50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": history})
}

// ListSessions returns the user's sessions, most recently active first.
func (h *ChatHandler) ListSessions(c *gin.Context) {
	userID := c.GetString("userID")

	sessions, err := h.chat.Sessions(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch sessions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

// GetSession returns one session's turns in chronological order.
func (h *ChatHandler) GetSession(c *gin.Context) {
	userID := c.GetString("userID")
	sessionID := c.Param("id")

	messages, err := h.chat.SessionTurns(userID, sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// DeleteSession removes a session and its turns.
func (h *ChatHandler) DeleteSession(c *gin.Context) {
	userID := c.GetString("userID")
	sessionID := c.Param("id")

	if err := h.chat.DeleteSession(userID, sessionID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Clear wipes the user's entire chat history.
func (h *ChatHandler) Clear(c *gin.Context) {
	userID := c.GetString("userID")

	if err := h.chat.ClearHistory(userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
