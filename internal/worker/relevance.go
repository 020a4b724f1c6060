package worker

import (
	"context"
	"fmt"

	"github.com/ignite/careertrack/internal/cryptox"
	"github.com/ignite/careertrack/internal/domain"
	"github.com/ignite/careertrack/internal/model"
	applog "github.com/ignite/careertrack/internal/pkg/logger"
	"github.com/ignite/careertrack/internal/pii"
	"github.com/ignite/careertrack/internal/queue"
	"github.com/ignite/careertrack/internal/repository"
)

const relevanceInputCap = 200

// Relevance implements the Relevance stage (spec §4.3): decrypts bodies,
// redacts PII, scores job-relatedness, and partitions rows into
// relevant/purge/retry buckets.
type Relevance struct {
	Staging   repository.StagingRepository
	Cipher    *cryptox.Cipher
	Redactor  *pii.Redactor
	Scorer    model.RelevanceScorer
	Broker    queue.Broker
	Threshold float64
}

func (r *Relevance) Run(ctx context.Context, env domain.TaskEnvelope) error {
	if env.Attempt > 1 {
		if err := r.Staging.UpdateStatusBatch(ctx, env.RowIDs, domain.StatusRetry, domain.StatusAwaitRelevance); err != nil {
			return fmt.Errorf("relevance: re-admit retry batch: %w", err)
		}
	}

	rows, err := r.Staging.ReadBatch(ctx, env.RowIDs)
	if err != nil {
		return fmt.Errorf("relevance: read batch: %w", err)
	}

	var relevant, purge, retry []string
	for _, row := range rows {
		body, err := r.Cipher.Decrypt(row.BodyEnc)
		if err != nil {
			applog.Trace(env.TraceID).Warn("relevance: decrypt failed, leaving row in place",
				"row_id", row.ID)
			continue
		}

		cleaned := r.Redactor.Redact(body).Text
		if len(cleaned) > relevanceInputCap {
			cleaned = cleaned[:relevanceInputCap]
		}

		score, err := r.Scorer.Score(ctx, "", cleaned)
		if err != nil {
			retry = append(retry, row.ID)
			continue
		}

		if score >= r.Threshold {
			relevant = append(relevant, row.ID)
		} else {
			purge = append(purge, row.ID)
		}
	}

	if len(relevant) > 0 {
		if err := r.Staging.UpdateStatusBatch(ctx, relevant, domain.StatusAwaitRelevance, domain.StatusAwaitClassification); err != nil {
			return fmt.Errorf("relevance: update relevant batch: %w", err)
		}
		classifyEnv := domain.TaskEnvelope{TraceID: env.TraceID, RowIDs: relevant, Attempt: 1}
		if err := r.Broker.Enqueue(ctx, domain.QueueClassification, classifyEnv); err != nil {
			return fmt.Errorf("relevance: enqueue classifier task: %w", err)
		}
	}

	if len(purge) > 0 {
		if err := r.Staging.UpdateStatusBatch(ctx, purge, domain.StatusAwaitRelevance, domain.StatusPurge); err != nil {
			return fmt.Errorf("relevance: update purge batch: %w", err)
		}
	}

	if len(retry) > 0 {
		if env.Attempt > domain.MaxRetries {
			if err := r.Staging.UpdateStatusBatch(ctx, retry, domain.StatusAwaitRelevance, domain.StatusFailedPermanently); err != nil {
				return fmt.Errorf("relevance: update failed-permanently batch: %w", err)
			}
			return nil
		}
		if err := r.Staging.UpdateStatusBatch(ctx, retry, domain.StatusAwaitRelevance, domain.StatusRetry); err != nil {
			return fmt.Errorf("relevance: update retry batch: %w", err)
		}
		retryEnv := domain.TaskEnvelope{TraceID: env.TraceID, RowIDs: retry, Attempt: env.Attempt + 1}
		if err := r.Broker.EnqueueDelayed(ctx, domain.QueueRelevanceModel, retryEnv, stageRetryBackoff(env.Attempt)); err != nil {
			return fmt.Errorf("relevance: enqueue retry task: %w", err)
		}
	}

	return nil
}
