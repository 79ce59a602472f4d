package domain

import (
	"time"

	"gorm.io/datatypes"
)

// TitleMaxLength caps session titles derived from the opening message.
const TitleMaxLength = 50

type ChatSession struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string    `gorm:"type:uuid;not null;index" json:"user_id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ChatTurn is one exchange inside a session: the user message, the
// assistant response, and the ids of the stored emails the response
// was grounded on.
type ChatTurn struct {
	ID        string         `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string         `gorm:"type:uuid;not null;index" json:"user_id"`
	SessionID string         `gorm:"type:uuid;not null;index" json:"session_id"`
	Message   string         `gorm:"type:text;not null" json:"message"`
	Response  string         `gorm:"type:text;not null" json:"response"`
	EmailIDs  datatypes.JSON `json:"email_ids"`
	CreatedAt time.Time      `json:"created_at"`
}

// SessionSummary is a listing row with the turn count joined in.
type SessionSummary struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	MessageCount int64     `json:"messageCount"`
}

// SessionTitle derives a session title from the opening message,
// truncating to TitleMaxLength runes with a trailing ellipsis.
func SessionTitle(message string) string {
	runes := []rune(message)
	if len(runes) <= TitleMaxLength {
		return message
	}
	return string(runes[:TitleMaxLength]) + "..."
}
