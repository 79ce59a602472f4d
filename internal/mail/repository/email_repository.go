package repository

import (
	"strings"
	"time"

	maildomain "github.com/mrxception/MailMind/internal/mail/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EmailRepository owns the stored message rows. Writes come exclusively from
// the ingestion pipeline; the search engine only reads.
type EmailRepository interface {
	// Upsert inserts the message or, when (user_id, gmail_id) already
	// exists, overwrites every non-key field.
	Upsert(email *maildomain.Email) error
	FindRecent(userID string, limit int) ([]maildomain.Email, error)
	// SearchRanked runs the natural-language relevance query over
	// subject+sender+body. It requires the full-text index; callers fall
	// back to SearchContaining on error or empty result.
	SearchRanked(userID, query string, limit int) ([]maildomain.Email, error)
	// SearchContaining matches any keyword as a case-insensitive substring
	// of subject, sender, or body, newest first.
	SearchContaining(userID string, keywords []string, limit int) ([]maildomain.Email, error)
	CountByUser(userID string) (int64, error)
}

type emailRepository struct {
	db *gorm.DB
}

func NewEmailRepository(db *gorm.DB) EmailRepository {
	return &emailRepository{db: db}
}

func (r *emailRepository) Upsert(email *maildomain.Email) error {
	now := time.Now()
	if email.ID == "" {
		email.ID = uuid.New().String()
	}
	email.CreatedAt = now
	email.UpdatedAt = now

	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "gmail_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"subject", "sender", "recipient", "body", "received_at", "updated_at",
		}),
	}).Create(email).Error
}

func (r *emailRepository) FindRecent(userID string, limit int) ([]maildomain.Email, error) {
	var emails []maildomain.Email
	err := r.db.Where("user_id = ?", userID).
		Order("received_at DESC").
		Limit(limit).
		Find(&emails).Error
	return emails, err
}

const searchVector = "to_tsvector('english', coalesce(subject, '') || ' ' || coalesce(sender, '') || ' ' || coalesce(body, ''))"

func (r *emailRepository) SearchRanked(userID, query string, limit int) ([]maildomain.Email, error) {
	var emails []maildomain.Email
	err := r.db.Raw(`SELECT *, ts_rank(`+searchVector+`, plainto_tsquery('english', ?)) AS relevance
		FROM emails
		WHERE user_id = ? AND `+searchVector+` @@ plainto_tsquery('english', ?)
		ORDER BY relevance DESC
		LIMIT ?`, query, userID, query, limit).Scan(&emails).Error
	return emails, err
}

func (r *emailRepository) SearchContaining(userID string, keywords []string, limit int) ([]maildomain.Email, error) {
	if len(keywords) == 0 {
		return r.FindRecent(userID, limit)
	}

	cond, args := containmentClause(keywords)
	var emails []maildomain.Email
	err := r.db.Where("user_id = ?", userID).
		Where(cond, args...).
		Order("received_at DESC").
		Limit(limit).
		Find(&emails).Error
	return emails, err
}

func (r *emailRepository) CountByUser(userID string) (int64, error) {
	var count int64
	err := r.db.Model(&maildomain.Email{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// containmentClause builds the fallback predicate as an explicit list of
// per-keyword terms joined with OR, each matching subject, sender, or body.
func containmentClause(keywords []string) (string, []interface{}) {
	terms := make([]string, 0, len(keywords))
	args := make([]interface{}, 0, len(keywords)*3)
	for _, kw := range keywords {
		terms = append(terms, "(subject ILIKE ? OR sender ILIKE ? OR body ILIKE ?)")
		pattern := "%" + kw + "%"
		args = append(args, pattern, pattern, pattern)
	}
	return strings.Join(terms, " OR "), args
}
