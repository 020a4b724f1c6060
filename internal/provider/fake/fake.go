// Package fake implements a deterministic provider.MailProvider for tests,
// so Dispatcher/Fetcher stage tests don't depend on network access.
package fake

import (
	"context"
	"time"

	"github.com/ignite/careertrack/internal/provider"
)

// Message is one canned message a Provider will serve.
type Message struct {
	ID         string
	Subject    string
	Sender     string
	Body       string
	ReceivedAt time.Time
	Outcome    provider.FetchOutcome
}

// Provider serves a fixed set of messages per user, useful for exercising
// the Dispatcher/Fetcher stages without a live Gmail account.
type Provider struct {
	ByUser map[string][]Message
}

// New builds an empty fake provider; populate ByUser before use.
func New() *Provider {
	return &Provider{ByUser: make(map[string][]Message)}
}

func (p *Provider) List(ctx context.Context, cred provider.Credential, since time.Time, pageToken string, maxResults int) (provider.ListPage, error) {
	msgs := p.ByUser[cred.UserID]
	refs := make([]provider.MessageRef, 0, len(msgs))
	for _, m := range msgs {
		if m.ReceivedAt.Before(since) {
			continue
		}
		refs = append(refs, provider.MessageRef{ProviderMessageID: m.ID, UserID: cred.UserID})
	}
	return provider.ListPage{Refs: refs}, nil
}

func (p *Provider) BatchGet(ctx context.Context, cred provider.Credential, ids []string) ([]provider.FetchResult, error) {
	byID := make(map[string]Message, len(p.ByUser[cred.UserID]))
	for _, m := range p.ByUser[cred.UserID] {
		byID[m.ID] = m
	}

	results := make([]provider.FetchResult, 0, len(ids))
	for _, id := range ids {
		m, ok := byID[id]
		if !ok {
			results = append(results, provider.FetchResult{ProviderMessageID: id, Outcome: provider.FetchSkip})
			continue
		}
		if m.Outcome == provider.FetchRetry || m.Outcome == provider.FetchSkip {
			results = append(results, provider.FetchResult{ProviderMessageID: id, Outcome: m.Outcome})
			continue
		}
		results = append(results, provider.FetchResult{
			ProviderMessageID: id,
			Outcome:           provider.FetchSuccess,
			Subject:           m.Subject,
			Sender:            m.Sender,
			Body:              m.Body,
			ReceivedAt:        m.ReceivedAt,
		})
	}
	return results, nil
}
