package domain

import "time"

// GmailConnection holds the OAuth credential state for one user's mailbox.
// A user normally has a single row; when more than one exists the most
// recently created one is authoritative.
type GmailConnection struct {
	ID             string    `gorm:"primaryKey" json:"id"`
	UserID         string    `gorm:"index" json:"user_id"`
	GmailEmail     string    `json:"gmail_email"`
	AccessToken    string    `json:"-"`
	RefreshToken   string    `json:"-"`
	TokenExpiresAt time.Time `json:"token_expires_at"`
	CreatedAt      time.Time `json:"created_at"`
}
