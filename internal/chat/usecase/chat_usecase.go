package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	chatdomain "github.com/mrxception/MailMind/internal/chat/domain"
	"github.com/mrxception/MailMind/internal/chat/repository"
	maildomain "github.com/mrxception/MailMind/internal/mail/domain"
	mailrepo "github.com/mrxception/MailMind/internal/mail/repository"
	"github.com/mrxception/MailMind/pkg/ai"

	"github.com/rs/zerolog"
)

const searchLimit = 5

const systemPromptFormat = `You are a helpful AI assistant that analyzes Gmail emails. The user has asked a question about their emails.

Here are the most relevant emails found based on their query:

%s

Please answer the user's question based on the email content provided above. If the emails don't contain relevant information, let the user know politely. Be concise and helpful.`

// Completer produces an assistant response for an ordered message list.
type Completer interface {
	Complete(ctx context.Context, messages []ai.Message) (string, error)
}

// EmailRef is the metadata surfaced about each email the answer drew on.
// Bodies never leave the server through the chat API.
type EmailRef struct {
	ID         string    `json:"id"`
	Subject    string    `json:"subject"`
	Sender     string    `json:"sender"`
	ReceivedAt time.Time `json:"received_at"`
}

// TurnResult is the outcome of one chat exchange.
type TurnResult struct {
	Response    string     `json:"response"`
	SessionID   string     `json:"sessionId"`
	EmailsFound int        `json:"emailsFound"`
	Emails      []EmailRef `json:"emails"`
}

// ChatUsecase orchestrates a chat turn: search the mailbox, ask the
// model, and record the exchange.
type ChatUsecase struct {
	connections mailrepo.ConnectionRepository
	search      *SearchUsecase
	completer   Completer
	sessions    repository.SessionRepository
	turns       repository.TurnRepository
	log         zerolog.Logger
}

func NewChatUsecase(
	connections mailrepo.ConnectionRepository,
	search *SearchUsecase,
	completer Completer,
	sessions repository.SessionRepository,
	turns repository.TurnRepository,
	log zerolog.Logger,
) *ChatUsecase {
	return &ChatUsecase{
		connections: connections,
		search:      search,
		completer:   completer,
		sessions:    sessions,
		turns:       turns,
		log:         log.With().Str("component", "chat").Logger(),
	}
}

// HandleTurn answers one user message. sessionID may be empty, in which
// case a new session is created and titled after the message. The turn is
// recorded even when the answer drew on no emails.
func (u *ChatUsecase) HandleTurn(ctx context.Context, userID, sessionID, message string) (*TurnResult, error) {
	conn, err := u.connections.FindLatestByUser(userID)
	if err != nil {
		return nil, err
	}
	if conn == nil {
		return nil, maildomain.ErrNoConnection
	}

	emails, err := u.search.Search(userID, message, searchLimit)
	if err != nil {
		return nil, fmt.Errorf("email search: %w", err)
	}

	response, err := u.completer.Complete(ctx, []ai.Message{
		{Role: ai.RoleUser, Content: fmt.Sprintf(systemPromptFormat, FormatContext(emails))},
		{Role: ai.RoleUser, Content: message},
	})
	if err != nil {
		return nil, err
	}

	if sessionID == "" {
		session := &chatdomain.ChatSession{
			UserID: userID,
			Title:  chatdomain.SessionTitle(message),
		}
		if err := u.sessions.Create(session); err != nil {
			return nil, fmt.Errorf("create session: %w", err)
		}
		sessionID = session.ID
	} else {
		if err := u.sessions.Touch(sessionID); err != nil {
			return nil, fmt.Errorf("touch session: %w", err)
		}
	}

	emailIDs := make([]string, 0, len(emails))
	refs := make([]EmailRef, 0, len(emails))
	for _, e := range emails {
		emailIDs = append(emailIDs, e.ID)
		refs = append(refs, EmailRef{
			ID:         e.ID,
			Subject:    e.Subject,
			Sender:     e.Sender,
			ReceivedAt: e.ReceivedAt,
		})
	}

	idsJSON, err := json.Marshal(emailIDs)
	if err != nil {
		return nil, err
	}
	turn := &chatdomain.ChatTurn{
		UserID:    userID,
		SessionID: sessionID,
		Message:   message,
		Response:  response,
		EmailIDs:  idsJSON,
	}
	if err := u.turns.Create(turn); err != nil {
		return nil, fmt.Errorf("record turn: %w", err)
	}

	return &TurnResult{
		Response:    response,
		SessionID:   sessionID,
		EmailsFound: len(emails),
		Emails:      refs,
	}, nil
}

// History returns the user's latest turns across all sessions.
func (u *ChatUsecase) History(userID string, limit int) ([]chatdomain.ChatTurn, error) {
	return u.turns.FindRecentByUser(userID, limit)
}

// Sessions lists the user's sessions, most recently active first.
func (u *ChatUsecase) Sessions(userID string) ([]chatdomain.SessionSummary, error) {
	return u.sessions.ListByUser(userID, 50)
}

// SessionTurns returns one session's turns in chronological order.
func (u *ChatUsecase) SessionTurns(userID, sessionID string) ([]chatdomain.ChatTurn, error) {
	return u.turns.FindBySession(userID, sessionID)
}

// DeleteSession removes a session and its turns.
func (u *ChatUsecase) DeleteSession(userID, sessionID string) error {
	return u.sessions.Delete(userID, sessionID)
}

// ClearHistory wipes every turn the user has recorded.
func (u *ChatUsecase) ClearHistory(userID string) error {
	return u.turns.DeleteByUser(userID)
}
