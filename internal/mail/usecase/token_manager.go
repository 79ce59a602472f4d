package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	maildomain "github.com/mrxception/MailMind/internal/mail/domain"
	"github.com/mrxception/MailMind/internal/mail/repository"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

// Provider abstracts the Gmail OAuth and API surface used by the mail usecases.
// Implemented by pkg/gmail.Service.
type Provider interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error)
	ProfileEmail(ctx context.Context, token *oauth2.Token) (string, error)
	Client(ctx context.Context, token *oauth2.Token) (maildomain.MailboxClient, error)
}

// TokenManager owns the access/refresh token lifecycle for every user's
// Gmail connection. Refresh is lazy: tokens are checked on each ActiveClient
// call rather than proactively, since the only consumer is sync-triggered
// ingestion. Refresh-then-persist runs under a per-user mutex so concurrent
// calls never race a second refresh against the same refresh token.
type TokenManager struct {
	connections repository.ConnectionRepository
	provider    Provider
	log         zerolog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewTokenManager(connections repository.ConnectionRepository, provider Provider, log zerolog.Logger) *TokenManager {
	return &TokenManager{
		connections: connections,
		provider:    provider,
		log:         log.With().Str("component", "token-manager").Logger(),
		locks:       make(map[string]*sync.Mutex),
	}
}

// AuthURL builds the consent URL with the user id as opaque state.
func (m *TokenManager) AuthURL(userID string) string {
	return m.provider.AuthURL(userID)
}

// ExchangeCode performs the one-shot authorization code exchange.
func (m *TokenManager) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	return m.provider.Exchange(ctx, code)
}

// Connect resolves the mailbox address for the freshly exchanged token and
// stores a new connection row for the user.
func (m *TokenManager) Connect(ctx context.Context, userID string, token *oauth2.Token) (*maildomain.GmailConnection, error) {
	email, err := m.provider.ProfileEmail(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", maildomain.ErrAuthExchange, err)
	}

	conn := &maildomain.GmailConnection{
		UserID:         userID,
		GmailEmail:     email,
		AccessToken:    token.AccessToken,
		RefreshToken:   token.RefreshToken,
		TokenExpiresAt: tokenExpiry(token),
	}
	if err := m.connections.Create(conn); err != nil {
		return nil, err
	}

	m.log.Info().Str("user_id", userID).Str("gmail_email", email).Msg("gmail connected")
	return conn, nil
}

// ActiveClient returns a mailbox client carrying valid credentials. When the
// stored access token has expired it performs a refresh exchange, persists
// the new token and expiry, and only then builds the client. A provider
// rejection of the refresh token maps to ErrReauthRequired; network failures
// stay retryable.
func (m *TokenManager) ActiveClient(ctx context.Context, userID string) (maildomain.MailboxClient, error) {
	lock := m.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	conn, err := m.connections.FindLatestByUser(userID)
	if err != nil {
		return nil, err
	}
	if conn == nil {
		return nil, maildomain.ErrNoConnection
	}

	token := &oauth2.Token{
		AccessToken:  conn.AccessToken,
		RefreshToken: conn.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       conn.TokenExpiresAt,
	}

	if !conn.TokenExpiresAt.After(time.Now()) {
		fresh, err := m.provider.Refresh(ctx, conn.RefreshToken)
		if err != nil {
			var retrieveErr *oauth2.RetrieveError
			if errors.As(err, &retrieveErr) {
				return nil, fmt.Errorf("%w: %v", maildomain.ErrReauthRequired, err)
			}
			return nil, fmt.Errorf("%w: %v", maildomain.ErrTransientFetch, err)
		}

		expiry := tokenExpiry(fresh)
		if err := m.connections.UpdateToken(conn.ID, fresh.AccessToken, expiry); err != nil {
			return nil, err
		}

		token.AccessToken = fresh.AccessToken
		token.Expiry = expiry
		if fresh.RefreshToken != "" {
			token.RefreshToken = fresh.RefreshToken
		}
		m.log.Debug().Str("user_id", userID).Time("expires_at", expiry).Msg("access token refreshed")
	}

	return m.provider.Client(ctx, token)
}

// Revoke deletes the user's connection rows; calling it without a
// connection is a no-op.
func (m *TokenManager) Revoke(userID string) error {
	return m.connections.DeleteByUser(userID)
}

func (m *TokenManager) userLock(userID string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()

	lock, ok := m.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[userID] = lock
	}
	return lock
}

func tokenExpiry(token *oauth2.Token) time.Time {
	if token.Expiry.IsZero() {
		return time.Now().Add(time.Hour)
	}
	return token.Expiry
}
