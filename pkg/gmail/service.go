package gmail

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	maildomain "github.com/mrxception/MailMind/internal/mail/domain"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	goauth2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

// Service wraps the Google OAuth configuration shared by all users.
// Per-user API access goes through Client.
type Service struct {
	config *oauth2.Config
}

func NewService(clientID, clientSecret, redirectURI string) *Service {
	return &Service{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Scopes: []string{
				gmail.GmailReadonlyScope,
				"https://www.googleapis.com/auth/userinfo.email",
			},
			Endpoint: google.Endpoint,
		},
	}
}

// AuthURL builds the consent URL. state carries the user id through the
// round-trip; offline access + forced consent guarantee a refresh token.
func (s *Service) AuthURL(state string) string {
	return s.config.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}

// Exchange swaps an authorization code for tokens. A response without a
// refresh token is treated as a failed exchange: long-lived sync is
// impossible without one.
func (s *Service) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := s.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", maildomain.ErrAuthExchange, err)
	}
	if token.AccessToken == "" || token.RefreshToken == "" {
		return nil, fmt.Errorf("%w: provider response missing refresh token", maildomain.ErrAuthExchange)
	}
	return token, nil
}

// Refresh performs a refresh-token exchange. The raw error is returned so
// the caller can distinguish a provider rejection from a network failure.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	source := s.config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	return source.Token()
}

// ProfileEmail returns the Gmail address the token belongs to.
func (s *Service) ProfileEmail(ctx context.Context, token *oauth2.Token) (string, error) {
	svc, err := goauth2.NewService(ctx, option.WithTokenSource(s.config.TokenSource(ctx, token)))
	if err != nil {
		return "", fmt.Errorf("unable to create oauth2 service: %v", err)
	}

	info, err := svc.Userinfo.Get().Do()
	if err != nil {
		return "", fmt.Errorf("unable to fetch user profile: %v", err)
	}
	return info.Email, nil
}

// Client returns an authorized mailbox client for the given token.
func (s *Service) Client(ctx context.Context, token *oauth2.Token) (maildomain.MailboxClient, error) {
	srv, err := gmail.NewService(ctx, option.WithTokenSource(s.config.TokenSource(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("unable to create Gmail service: %v", err)
	}
	return &Client{srv: srv}, nil
}

// Client is a per-user authorized view of the Gmail API.
type Client struct {
	srv *gmail.Service
}

// ListMessageIDs returns up to max message ids in Gmail's native order
// (most recent first).
func (c *Client) ListMessageIDs(ctx context.Context, max int) ([]string, error) {
	resp, err := c.srv.Users.Messages.List("me").MaxResults(int64(max)).Context(ctx).Do()
	if err != nil {
		return nil, wrapAPIError(err)
	}

	ids := make([]string, 0, len(resp.Messages))
	for _, msg := range resp.Messages {
		ids = append(ids, msg.Id)
	}
	return ids, nil
}

// FetchMessage retrieves one full message and parses it into a normalized record.
func (c *Client) FetchMessage(ctx context.Context, id string) (*maildomain.ParsedEmail, error) {
	msg, err := c.srv.Users.Messages.Get("me", id).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, wrapAPIError(err)
	}
	return ParseMessage(msg), nil
}

// wrapAPIError maps a Gmail API failure onto the mail error taxonomy:
// 403s (revoked or narrowed scope) require the user to reconnect, anything
// else is retryable.
func wrapAPIError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusForbidden {
		return fmt.Errorf("%w: %v", maildomain.ErrInsufficientScope, err)
	}
	if strings.Contains(err.Error(), "insufficient authentication scopes") {
		return fmt.Errorf("%w: %v", maildomain.ErrInsufficientScope, err)
	}
	return fmt.Errorf("%w: %v", maildomain.ErrTransientFetch, err)
}
