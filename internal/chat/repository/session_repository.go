package repository

import (
	"errors"
	"time"

	chatdomain "github.com/mrxception/MailMind/internal/chat/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SessionRepository persists chat sessions and their listing rows.
type SessionRepository interface {
	Create(session *chatdomain.ChatSession) error
	// FindByUser returns the session if it exists and belongs to the user,
	// nil otherwise.
	FindByUser(userID, sessionID string) (*chatdomain.ChatSession, error)
	// Touch bumps updated_at so the session sorts to the top of the list.
	Touch(sessionID string) error
	// ListByUser returns up to limit sessions, most recently active first,
	// with the turn count joined in.
	ListByUser(userID string, limit int) ([]chatdomain.SessionSummary, error)
	// Delete removes the session and every turn recorded under it.
	Delete(userID, sessionID string) error
}

type sessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(session *chatdomain.ChatSession) error {
	session.ID = uuid.New().String()
	now := time.Now()
	session.CreatedAt = now
	session.UpdatedAt = now
	return r.db.Create(session).Error
}

func (r *sessionRepository) FindByUser(userID, sessionID string) (*chatdomain.ChatSession, error) {
	var session chatdomain.ChatSession
	err := r.db.Where("id = ? AND user_id = ?", sessionID, userID).First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) Touch(sessionID string) error {
	return r.db.Model(&chatdomain.ChatSession{}).
		Where("id = ?", sessionID).
		Update("updated_at", time.Now()).Error
}

func (r *sessionRepository) ListByUser(userID string, limit int) ([]chatdomain.SessionSummary, error) {
	var sessions []chatdomain.SessionSummary
	err := r.db.Model(&chatdomain.ChatSession{}).
		Select("chat_sessions.id, chat_sessions.title, chat_sessions.created_at, chat_sessions.updated_at, COUNT(chat_turns.id) AS message_count").
		Joins("LEFT JOIN chat_turns ON chat_turns.session_id = chat_sessions.id").
		Where("chat_sessions.user_id = ?", userID).
		Group("chat_sessions.id").
		Order("chat_sessions.updated_at DESC").
		Limit(limit).
		Scan(&sessions).Error
	return sessions, err
}

func (r *sessionRepository) Delete(userID, sessionID string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ? AND user_id = ?", sessionID, userID).
			Delete(&chatdomain.ChatTurn{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ? AND user_id = ?", sessionID, userID).
			Delete(&chatdomain.ChatSession{}).Error
	})
}
