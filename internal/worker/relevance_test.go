package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ignite/careertrack/internal/domain"
	"github.com/ignite/careertrack/internal/model"
	"github.com/ignite/careertrack/internal/pii"
	"github.com/ignite/careertrack/internal/queue"
)

func TestRelevance_PurgesBelowThreshold(t *testing.T) {
	cipher := newTestCipher(t)
	staging := newFakeStagingRepo()
	broker := queue.NewFakeBroker()

	bodyEnc, err := cipher.Encrypt("not job related at all")
	require.NoError(t, err)
	ids, err := staging.InsertBatch(context.Background(), []domain.StagingRow{
		{BodyEnc: bodyEnc, Provider: "google", ProviderMessageID: "m1", Status: domain.StatusAwaitRelevance},
	})
	require.NoError(t, err)

	stage := &Relevance{
		Staging:   staging,
		Cipher:    cipher,
		Redactor:  pii.New(pii.NewHeuristicTagger()),
		Scorer:    model.NewFakeRelevanceScorer(0.02),
		Broker:    broker,
		Threshold: 0.1,
	}

	err = stage.Run(context.Background(), domain.TaskEnvelope{TraceID: "t1", RowIDs: ids, Attempt: 1})
	require.NoError(t, err)

	row, ok := staging.get(ids[0])
	require.True(t, ok)
	require.Equal(t, domain.StatusPurge, row.Status)
	require.Equal(t, 0, broker.Len(domain.QueueClassification))
}

func TestRelevance_AdvancesRelevantRows(t *testing.T) {
	cipher := newTestCipher(t)
	staging := newFakeStagingRepo()
	broker := queue.NewFakeBroker()

	bodyEnc, err := cipher.Encrypt("application received for Software Engineer role")
	require.NoError(t, err)
	ids, err := staging.InsertBatch(context.Background(), []domain.StagingRow{
		{BodyEnc: bodyEnc, Provider: "google", ProviderMessageID: "m2", Status: domain.StatusAwaitRelevance},
	})
	require.NoError(t, err)

	stage := &Relevance{
		Staging:   staging,
		Cipher:    cipher,
		Redactor:  pii.New(pii.NewHeuristicTagger()),
		Scorer:    model.NewFakeRelevanceScorer(0.9),
		Broker:    broker,
		Threshold: 0.1,
	}

	err = stage.Run(context.Background(), domain.TaskEnvelope{TraceID: "t1", RowIDs: ids, Attempt: 1})
	require.NoError(t, err)

	row, ok := staging.get(ids[0])
	require.True(t, ok)
	require.Equal(t, domain.StatusAwaitClassification, row.Status)
	require.Equal(t, 1, broker.Len(domain.QueueClassification))
}

// erroringScorer always fails inference, putting every row it sees into
// the stage's retry set (spec §4.3 op 5).
type erroringScorer struct{}

func (erroringScorer) Score(context.Context, string, string) (float64, error) {
	return 0, errors.New("model backend unavailable")
}

func TestRelevance_InferenceErrorRetriesThenFails(t *testing.T) {
	cipher := newTestCipher(t)
	staging := newFakeStagingRepo()
	broker := queue.NewFakeBroker()

	bodyEnc, err := cipher.Encrypt("anything")
	require.NoError(t, err)
	ids, err := staging.InsertBatch(context.Background(), []domain.StagingRow{
		{BodyEnc: bodyEnc, Provider: "google", ProviderMessageID: "m3", Status: domain.StatusAwaitRelevance},
	})
	require.NoError(t, err)

	stage := &Relevance{
		Staging:   staging,
		Cipher:    cipher,
		Redactor:  pii.New(pii.NewHeuristicTagger()),
		Scorer:    erroringScorer{},
		Broker:    broker,
		Threshold: 0.1,
	}

	// Attempt > MaxRetries: retries-exhausted path marks FAILED_PERMANENTLY
	// directly instead of rescheduling (spec §8 scenario 6).
	err = stage.Run(context.Background(), domain.TaskEnvelope{TraceID: "t1", RowIDs: ids, Attempt: domain.MaxRetries + 1})
	require.NoError(t, err)

	row, ok := staging.get(ids[0])
	require.True(t, ok)
	require.Equal(t, domain.StatusFailedPermanently, row.Status)
	require.Equal(t, 0, broker.Len(domain.QueueRelevanceModel))
}

func TestRelevance_InferenceErrorReschedulesWithinBudget(t *testing.T) {
	cipher := newTestCipher(t)
	staging := newFakeStagingRepo()
	broker := queue.NewFakeBroker()

	bodyEnc, err := cipher.Encrypt("anything")
	require.NoError(t, err)
	ids, err := staging.InsertBatch(context.Background(), []domain.StagingRow{
		{BodyEnc: bodyEnc, Provider: "google", ProviderMessageID: "m4", Status: domain.StatusAwaitRelevance},
	})
	require.NoError(t, err)

	stage := &Relevance{
		Staging:   staging,
		Cipher:    cipher,
		Redactor:  pii.New(pii.NewHeuristicTagger()),
		Scorer:    erroringScorer{},
		Broker:    broker,
		Threshold: 0.1,
	}

	err = stage.Run(context.Background(), domain.TaskEnvelope{TraceID: "t1", RowIDs: ids, Attempt: 1})
	require.NoError(t, err)

	row, ok := staging.get(ids[0])
	require.True(t, ok)
	require.Equal(t, domain.StatusRetry, row.Status)
	require.Equal(t, 1, broker.Len(domain.QueueRelevanceModel))
}
