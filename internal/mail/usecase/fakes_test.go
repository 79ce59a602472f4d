package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	maildomain "github.com/mrxception/MailMind/internal/mail/domain"

	"golang.org/x/oauth2"
)

type fakeConnectionRepo struct {
	mu    sync.Mutex
	conns []*maildomain.GmailConnection
	calls []string
}

func (f *fakeConnectionRepo) Create(conn *maildomain.GmailConnection) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	conn.ID = fmt.Sprintf("conn-%d", len(f.conns)+1)
	conn.CreatedAt = time.Now()
	f.conns = append(f.conns, conn)
	f.calls = append(f.calls, "create")
	return nil
}

func (f *fakeConnectionRepo) FindLatestByUser(userID string) (*maildomain.GmailConnection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *maildomain.GmailConnection
	for _, c := range f.conns {
		if c.UserID == userID && (latest == nil || c.CreatedAt.After(latest.CreatedAt)) {
			latest = c
		}
	}
	return latest, nil
}

func (f *fakeConnectionRepo) UpdateToken(id, accessToken string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "update-token")
	for _, c := range f.conns {
		if c.ID == id {
			c.AccessToken = accessToken
			c.TokenExpiresAt = expiresAt
		}
	}
	return nil
}

func (f *fakeConnectionRepo) DeleteByUser(userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.conns[:0]
	for _, c := range f.conns {
		if c.UserID != userID {
			kept = append(kept, c)
		}
	}
	f.conns = kept
	return nil
}

func (f *fakeConnectionRepo) ConnectedUserIDs() ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := map[string]bool{}
	var ids []string
	for _, c := range f.conns {
		if !seen[c.UserID] {
			seen[c.UserID] = true
			ids = append(ids, c.UserID)
		}
	}
	return ids, nil
}

type fakeProvider struct {
	refreshCalls int
	refreshErr   error
	refreshToken *oauth2.Token

	profileEmail string

	client       maildomain.MailboxClient
	clientTokens []*oauth2.Token
	calls        []string
}

func (f *fakeProvider) AuthURL(state string) string {
	return "https://accounts.example/consent?state=" + state
}

func (f *fakeProvider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return &oauth2.Token{AccessToken: "access-" + code, RefreshToken: "refresh-" + code}, nil
}

func (f *fakeProvider) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	f.refreshCalls++
	f.calls = append(f.calls, "refresh")
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	if f.refreshToken != nil {
		return f.refreshToken, nil
	}
	return &oauth2.Token{AccessToken: "refreshed-access", Expiry: time.Now().Add(time.Hour)}, nil
}

func (f *fakeProvider) ProfileEmail(ctx context.Context, token *oauth2.Token) (string, error) {
	if f.profileEmail == "" {
		return "user@gmail.com", nil
	}
	return f.profileEmail, nil
}

func (f *fakeProvider) Client(ctx context.Context, token *oauth2.Token) (maildomain.MailboxClient, error) {
	f.calls = append(f.calls, "client")
	f.clientTokens = append(f.clientTokens, token)
	if f.client != nil {
		return f.client, nil
	}
	return &fakeMailbox{}, nil
}

type fakeMailbox struct {
	ids      []string
	listErr  error
	messages map[string]*maildomain.ParsedEmail
	fetchErr map[string]error
}

func (f *fakeMailbox) ListMessageIDs(ctx context.Context, max int) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if len(f.ids) > max {
		return f.ids[:max], nil
	}
	return f.ids, nil
}

func (f *fakeMailbox) FetchMessage(ctx context.Context, id string) (*maildomain.ParsedEmail, error) {
	if err, ok := f.fetchErr[id]; ok {
		return nil, err
	}
	if msg, ok := f.messages[id]; ok {
		return msg, nil
	}
	return &maildomain.ParsedEmail{GmailID: id, Subject: "subject " + id}, nil
}

type fakeEmailRepo struct {
	mu        sync.Mutex
	upserts   int
	upsertErr map[string]error
	stored    map[string]*maildomain.Email
}

func newFakeEmailRepo() *fakeEmailRepo {
	return &fakeEmailRepo{stored: make(map[string]*maildomain.Email)}
}

func (f *fakeEmailRepo) Upsert(email *maildomain.Email) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts++
	if err, ok := f.upsertErr[email.GmailID]; ok {
		return err
	}
	key := email.UserID + "/" + email.GmailID
	f.stored[key] = email
	return nil
}

func (f *fakeEmailRepo) FindRecent(userID string, limit int) ([]maildomain.Email, error) {
	return nil, nil
}

func (f *fakeEmailRepo) SearchRanked(userID, query string, limit int) ([]maildomain.Email, error) {
	return nil, nil
}

func (f *fakeEmailRepo) SearchContaining(userID string, keywords []string, limit int) ([]maildomain.Email, error) {
	return nil, nil
}

func (f *fakeEmailRepo) CountByUser(userID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.stored)), nil
}
