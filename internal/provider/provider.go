// Package provider defines the MailProvider interface the Content-Fetcher
// stage depends on, plus the concrete Gmail implementation
// (internal/provider/google) grounded in the platform's OAuth2 client
// config pattern (internal/auth/auth.go's oauth2.Config + google.Endpoint).
package provider

import (
	"context"
	"time"
)

// MessageRef is a provider message identifier paired with the user it
// belongs to, as produced by List and consumed by BatchGet.
type MessageRef struct {
	ProviderMessageID string
	UserID            string
}

// ListPage is one page of message ids returned by List.
type ListPage struct {
	Refs          []MessageRef
	NextPageToken string
}

// FetchOutcome classifies the result of fetching a single message in a
// batch, mirroring spec §4.2's 404/410 -> SKIP, 429/5xx -> RETRY,
// other-error -> SKIP-with-warning, no-error -> SUCCESS table.
type FetchOutcome int

const (
	FetchSuccess FetchOutcome = iota
	FetchSkip
	FetchRetry
)

// FetchResult is one message's batch-get outcome.
type FetchResult struct {
	ProviderMessageID string
	Outcome           FetchOutcome
	Subject           string
	Sender            string
	Body              string
	ReceivedAt        time.Time
	Warning           string
}

// Credential is the provider credential needed to act on behalf of one
// user: a long-lived refresh token that is exchanged for short-lived access
// tokens on demand. Storage/encryption of this value at rest is the
// caller's responsibility (internal/cryptox); this package only ever holds
// it in memory for the duration of a call.
type Credential struct {
	UserID       string
	RefreshToken string
}

// MailProvider is the interface the pipeline depends on for listing and
// fetching a user's mailbox content. Errors returned by List/BatchGet that
// wrap domain.ErrTransientProvider are safe to retry; anything else is permanent for that
// call.
type MailProvider interface {
	// List returns up to maxResults message refs newer than since, paging
	// via pageToken ("" for the first page).
	List(ctx context.Context, cred Credential, since time.Time, pageToken string, maxResults int) (ListPage, error)
	// BatchGet fetches full message content for the given ids, returning
	// one FetchResult per id (in any order) classified per-message.
	BatchGet(ctx context.Context, cred Credential, ids []string) ([]FetchResult, error)
}
