package domain

import "time"

// MaxBodyLength caps stored bodies (in runes) to bound row size.
const MaxBodyLength = 5000

// Email is a normalized Gmail message as stored locally.
// (user_id, gmail_id) is unique; re-ingestion overwrites instead of duplicating.
type Email struct {
	ID         string    `gorm:"primaryKey" json:"id"`
	UserID     string    `gorm:"uniqueIndex:idx_emails_user_gmail;index" json:"user_id"`
	GmailID    string    `gorm:"uniqueIndex:idx_emails_user_gmail" json:"gmail_id"`
	Subject    string    `json:"subject"`
	Sender     string    `json:"sender"`
	Recipient  string    `json:"recipient"`
	Body       string    `json:"body"`
	ReceivedAt time.Time `gorm:"index" json:"received_at"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ParsedEmail is the provider-independent result of parsing one raw Gmail
// message, before it is attached to a user and persisted.
type ParsedEmail struct {
	GmailID    string
	Subject    string
	Sender     string
	Recipient  string
	Body       string
	ReceivedAt time.Time
}
