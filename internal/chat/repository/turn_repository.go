package repository

import (
	"time"

	chatdomain "github.com/mrxception/MailMind/internal/chat/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TurnRepository persists individual chat exchanges.
type TurnRepository interface {
	Create(turn *chatdomain.ChatTurn) error
	// FindBySession returns the turns of a session in chronological order.
	FindBySession(userID, sessionID string) ([]chatdomain.ChatTurn, error)
	// FindRecentByUser returns the latest turns across all sessions.
	FindRecentByUser(userID string, limit int) ([]chatdomain.ChatTurn, error)
	// DeleteByUser wipes the user's entire chat history.
	DeleteByUser(userID string) error
}

type turnRepository struct {
	db *gorm.DB
}

func NewTurnRepository(db *gorm.DB) TurnRepository {
	return &turnRepository{db: db}
}

func (r *turnRepository) Create(turn *chatdomain.ChatTurn) error {
	turn.ID = uuid.New().String()
	turn.CreatedAt = time.Now()
	return r.db.Create(turn).Error
}

func (r *turnRepository) FindBySession(userID, sessionID string) ([]chatdomain.ChatTurn, error) {
	var turns []chatdomain.ChatTurn
	err := r.db.Where("session_id = ? AND user_id = ?", sessionID, userID).
		Order("created_at ASC").
		Find(&turns).Error
	return turns, err
}

func (r *turnRepository) FindRecentByUser(userID string, limit int) ([]chatdomain.ChatTurn, error) {
	var turns []chatdomain.ChatTurn
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&turns).Error
	return turns, err
}

func (r *turnRepository) DeleteByUser(userID string) error {
	return r.db.Where("user_id = ?", userID).Delete(&chatdomain.ChatTurn{}).Error
}
