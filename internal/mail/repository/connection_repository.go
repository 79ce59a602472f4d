package repository

import (
	"errors"
	"time"

	maildomain "github.com/mrxception/MailMind/internal/mail/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ConnectionRepository persists per-user Gmail credential state.
type ConnectionRepository interface {
	Create(conn *maildomain.GmailConnection) error
	// FindLatestByUser returns the authoritative (most recently created)
	// connection, or nil when the user never connected.
	FindLatestByUser(userID string) (*maildomain.GmailConnection, error)
	UpdateToken(id, accessToken string, expiresAt time.Time) error
	// DeleteByUser removes all connection rows for the user; no-op if absent.
	DeleteByUser(userID string) error
	// ConnectedUserIDs lists every user with at least one connection.
	ConnectedUserIDs() ([]string, error)
}

type connectionRepository struct {
	db *gorm.DB
}

func NewConnectionRepository(db *gorm.DB) ConnectionRepository {
	return &connectionRepository{db: db}
}

func (r *connectionRepository) Create(conn *maildomain.GmailConnection) error {
	conn.ID = uuid.New().String()
	conn.CreatedAt = time.Now()
	return r.db.Create(conn).Error
}

func (r *connectionRepository) FindLatestByUser(userID string) (*maildomain.GmailConnection, error) {
	var conn maildomain.GmailConnection
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").First(&conn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &conn, nil
}

func (r *connectionRepository) UpdateToken(id, accessToken string, expiresAt time.Time) error {
	return r.db.Model(&maildomain.GmailConnection{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"access_token":     accessToken,
			"token_expires_at": expiresAt,
		}).Error
}

func (r *connectionRepository) DeleteByUser(userID string) error {
	return r.db.Where("user_id = ?", userID).Delete(&maildomain.GmailConnection{}).Error
}

func (r *connectionRepository) ConnectedUserIDs() ([]string, error) {
	var ids []string
	err := r.db.Model(&maildomain.GmailConnection{}).Distinct().Pluck("user_id", &ids).Error
	return ids, err
}
