package fake

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/careertrack/internal/provider"
)

func TestProvider_ListFiltersBySince(t *testing.T) {
	p := New()
	old := time.Now().Add(-48 * time.Hour)
	recent := time.Now()
	p.ByUser["u1"] = []Message{
		{ID: "m1", ReceivedAt: old},
		{ID: "m2", ReceivedAt: recent},
	}

	page, err := p.List(context.Background(), provider.Credential{UserID: "u1"}, recent.Add(-time.Hour), "", 10)
	require.NoError(t, err)
	require.Len(t, page.Refs, 1)
	assert.Equal(t, "m2", page.Refs[0].ProviderMessageID)
}

func TestProvider_BatchGetClassifiesOutcomes(t *testing.T) {
	p := New()
	p.ByUser["u1"] = []Message{
		{ID: "ok", Subject: "hi", Outcome: provider.FetchSuccess},
		{ID: "gone", Outcome: provider.FetchSkip},
		{ID: "flaky", Outcome: provider.FetchRetry},
	}

	results, err := p.BatchGet(context.Background(), provider.Credential{UserID: "u1"}, []string{"ok", "gone", "flaky", "missing"})
	require.NoError(t, err)
	require.Len(t, results, 4)

	byID := map[string]provider.FetchResult{}
	for _, r := range results {
		byID[r.ProviderMessageID] = r
	}
	assert.Equal(t, provider.FetchSuccess, byID["ok"].Outcome)
	assert.Equal(t, provider.FetchSkip, byID["gone"].Outcome)
	assert.Equal(t, provider.FetchRetry, byID["flaky"].Outcome)
	assert.Equal(t, provider.FetchSkip, byID["missing"].Outcome)
}
