package domain

import "context"

// MailboxClient is an authorized, single-user view of the provider mailbox.
// Implemented by pkg/gmail; faked in usecase tests.
type MailboxClient interface {
	ListMessageIDs(ctx context.Context, max int) ([]string, error)
	FetchMessage(ctx context.Context, id string) (*ParsedEmail, error)
}
