package usecase

import (
	"context"
	"fmt"
	"time"

	chatdomain "github.com/mrxception/MailMind/internal/chat/domain"
	maildomain "github.com/mrxception/MailMind/internal/mail/domain"
	"github.com/mrxception/MailMind/pkg/ai"
)

type fakeEmailRepo struct {
	recent     []maildomain.Email
	ranked     []maildomain.Email
	rankedErr  error
	containing []maildomain.Email

	recentCalls     int
	rankedQueries   []string
	containingCalls [][]string
}

func (f *fakeEmailRepo) Upsert(email *maildomain.Email) error { return nil }

func (f *fakeEmailRepo) FindRecent(userID string, limit int) ([]maildomain.Email, error) {
	f.recentCalls++
	return f.recent, nil
}

func (f *fakeEmailRepo) SearchRanked(userID, query string, limit int) ([]maildomain.Email, error) {
	f.rankedQueries = append(f.rankedQueries, query)
	if f.rankedErr != nil {
		return nil, f.rankedErr
	}
	return f.ranked, nil
}

func (f *fakeEmailRepo) SearchContaining(userID string, keywords []string, limit int) ([]maildomain.Email, error) {
	f.containingCalls = append(f.containingCalls, keywords)
	return f.containing, nil
}

func (f *fakeEmailRepo) CountByUser(userID string) (int64, error) { return 0, nil }

type fakeConnectionRepo struct {
	conn *maildomain.GmailConnection
}

func (f *fakeConnectionRepo) Create(conn *maildomain.GmailConnection) error { return nil }

func (f *fakeConnectionRepo) FindLatestByUser(userID string) (*maildomain.GmailConnection, error) {
	return f.conn, nil
}

func (f *fakeConnectionRepo) UpdateToken(id, accessToken string, expiresAt time.Time) error {
	return nil
}

func (f *fakeConnectionRepo) DeleteByUser(userID string) error    { return nil }
func (f *fakeConnectionRepo) ConnectedUserIDs() ([]string, error) { return nil, nil }

type fakeCompleter struct {
	response string
	err      error
	prompts  [][]ai.Message
}

func (f *fakeCompleter) Complete(ctx context.Context, messages []ai.Message) (string, error) {
	f.prompts = append(f.prompts, messages)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

type fakeSessionRepo struct {
	sessions []*chatdomain.ChatSession
	touched  []string
}

func (f *fakeSessionRepo) Create(session *chatdomain.ChatSession) error {
	session.ID = fmt.Sprintf("session-%d", len(f.sessions)+1)
	now := time.Now()
	session.CreatedAt = now
	session.UpdatedAt = now
	f.sessions = append(f.sessions, session)
	return nil
}

func (f *fakeSessionRepo) FindByUser(userID, sessionID string) (*chatdomain.ChatSession, error) {
	for _, s := range f.sessions {
		if s.ID == sessionID && s.UserID == userID {
			return s, nil
		}
	}
	return nil, nil
}

func (f *fakeSessionRepo) Touch(sessionID string) error {
	f.touched = append(f.touched, sessionID)
	return nil
}

func (f *fakeSessionRepo) ListByUser(userID string, limit int) ([]chatdomain.SessionSummary, error) {
	return nil, nil
}

func (f *fakeSessionRepo) Delete(userID, sessionID string) error { return nil }

type fakeTurnRepo struct {
	turns []*chatdomain.ChatTurn
}

func (f *fakeTurnRepo) Create(turn *chatdomain.ChatTurn) error {
	turn.ID = fmt.Sprintf("turn-%d", len(f.turns)+1)
	turn.CreatedAt = time.Now()
	f.turns = append(f.turns, turn)
	return nil
}

func (f *fakeTurnRepo) FindBySession(userID, sessionID string) ([]chatdomain.ChatTurn, error) {
	return nil, nil
}

func (f *fakeTurnRepo) FindRecentByUser(userID string, limit int) ([]chatdomain.ChatTurn, error) {
	return nil, nil
}

func (f *fakeTurnRepo) DeleteByUser(userID string) error { return nil }
