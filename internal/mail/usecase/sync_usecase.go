package usecase

import (
	"context"

	maildomain "github.com/mrxception/MailMind/internal/mail/domain"
	"github.com/mrxception/MailMind/internal/mail/repository"

	"github.com/rs/zerolog"
)

// fetchConcurrency bounds parallel message fetches per sync.
const fetchConcurrency = 10

// SyncUsecase is the ingestion pipeline: list message ids, fetch and parse
// each in parallel, and upsert the results keyed on (user_id, gmail_id).
type SyncUsecase struct {
	tokens *TokenManager
	emails repository.EmailRepository
	log    zerolog.Logger
}

func NewSyncUsecase(tokens *TokenManager, emails repository.EmailRepository, log zerolog.Logger) *SyncUsecase {
	return &SyncUsecase{
		tokens: tokens,
		emails: emails,
		log:    log.With().Str("component", "sync").Logger(),
	}
}

// SyncEmails pulls up to maxMessages of the user's most recent mail into
// storage and returns the number of messages fetched and parsed. The batch
// is best-effort per message: a single fetch or upsert failure is logged and
// skipped. Scope failures are the exception; they abort with
// ErrInsufficientScope so the caller can prompt a reconnect.
func (u *SyncUsecase) SyncEmails(ctx context.Context, userID string, maxMessages int) (int, error) {
	client, err := u.tokens.ActiveClient(ctx, userID)
	if err != nil {
		return 0, err
	}

	ids, err := client.ListMessageIDs(ctx, maxMessages)
	if err != nil {
		return 0, err
	}

	type fetchResult struct {
		parsed *maildomain.ParsedEmail
		err    error
	}

	results := make(chan fetchResult, len(ids))
	semaphore := make(chan struct{}, fetchConcurrency)

	for _, id := range ids {
		go func(msgID string) {
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			parsed, err := client.FetchMessage(ctx, msgID)
			results <- fetchResult{parsed, err}
		}(id)
	}

	count := 0
	var scopeErr error
	for range ids {
		res := <-results
		if res.err != nil {
			if maildomain.NeedsReauth(res.err) {
				scopeErr = res.err
			} else {
				u.log.Warn().Err(res.err).Str("user_id", userID).Msg("skipping message fetch")
			}
			continue
		}

		count++
		email := &maildomain.Email{
			UserID:     userID,
			GmailID:    res.parsed.GmailID,
			Subject:    res.parsed.Subject,
			Sender:     res.parsed.Sender,
			Recipient:  res.parsed.Recipient,
			Body:       res.parsed.Body,
			ReceivedAt: res.parsed.ReceivedAt,
		}
		if err := u.emails.Upsert(email); err != nil {
			u.log.Error().Err(err).Str("user_id", userID).Str("gmail_id", res.parsed.GmailID).Msg("failed to store email")
		}
	}

	if scopeErr != nil {
		return count, scopeErr
	}

	u.log.Info().Str("user_id", userID).Int("count", count).Msg("sync finished")
	return count, nil
}
