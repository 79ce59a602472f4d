package domain

import "errors"

// Error taxonomy for the mail integration. Callers branch on these with
// errors.Is to decide between prompting a reconnect and plain retry.
var (
	// ErrNoConnection means the user never authorized Gmail access.
	ErrNoConnection = errors.New("no gmail connection found")

	// ErrReauthRequired means the stored refresh token was rejected
	// (expired or revoked); the user must go through consent again.
	ErrReauthRequired = errors.New("gmail authorization expired, please reconnect")

	// ErrInsufficientScope means the provider refused a call because the
	// granted scopes no longer cover it.
	ErrInsufficientScope = errors.New("insufficient gmail permissions, please reconnect")

	// ErrAuthExchange means the one-shot authorization code exchange failed
	// or the provider omitted a refresh token.
	ErrAuthExchange = errors.New("authorization code exchange failed")

	// ErrTransientFetch covers provider failures the caller may retry as-is.
	ErrTransientFetch = errors.New("temporary gmail fetch failure")
)

// NeedsReauth reports whether err can only be resolved by the user
// re-authorizing the Gmail connection.
func NeedsReauth(err error) bool {
	return errors.Is(err, ErrReauthRequired) || errors.Is(err, ErrInsufficientScope)
}
