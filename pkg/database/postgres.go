package database

import (
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func NewPostgresConnection(databaseURL string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(databaseURL), &gorm.Config{})
}

// EnsureSearchIndex creates the GIN index backing ranked email search.
// The expression must match the one used by SearchRanked or Postgres will
// fall back to a sequential scan.
func EnsureSearchIndex(db *gorm.DB) error {
	return db.Exec(`CREATE INDEX IF NOT EXISTS idx_emails_fulltext
		ON emails USING GIN (
			to_tsvector('english', coalesce(subject, '') || ' ' || coalesce(sender, '') || ' ' || coalesce(body, ''))
		)`).Error
}
