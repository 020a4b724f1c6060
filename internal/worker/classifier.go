package worker

import (
	"context"
	"fmt"
	"math"

	"github.com/ignite/careertrack/internal/cryptox"
	"github.com/ignite/careertrack/internal/domain"
	"github.com/ignite/careertrack/internal/model"
	applog "github.com/ignite/careertrack/internal/pkg/logger"
	"github.com/ignite/careertrack/internal/normalize"
	"github.com/ignite/careertrack/internal/queue"
	"github.com/ignite/careertrack/internal/repository"
)

// Classifier implements the Classifier stage (spec §4.5): normalizes
// subject/sender/body, runs zero-shot classification against the fixed
// five-stage taxonomy, applies the heuristic overlay, and writes the
// result onto the staging row.
type Classifier struct {
	Staging    repository.StagingRepository
	Cipher     *cryptox.Cipher
	Classifier model.ZeroShotClassifier
	Broker     queue.Broker
	Threshold  float64
}

func (c *Classifier) Run(ctx context.Context, env domain.TaskEnvelope) error {
	if env.Attempt > 1 {
		if err := c.Staging.UpdateStatusBatch(ctx, env.RowIDs, domain.StatusRetry, domain.StatusAwaitClassification); err != nil {
			return fmt.Errorf("classifier: re-admit retry batch: %w", err)
		}
	}

	rows, err := c.Staging.ReadBatch(ctx, env.RowIDs)
	if err != nil {
		return fmt.Errorf("classifier: read batch: %w", err)
	}

	var updates []repository.ClassificationUpdate
	var retry []string

	for _, row := range rows {
		subject, sender, body, err := c.decryptFields(row)
		if err != nil {
			applog.Trace(env.TraceID).Warn("classifier: decrypt failed, leaving row in place", "row_id", row.ID)
			continue
		}

		text := fmt.Sprintf("Subject: %s\nFrom: %s\nBody: %s",
			normalize.ForClassifier(subject), normalize.ForClassifier(sender), normalize.ForClassifier(body))

		scores, err := c.Classifier.Classify(ctx, text)
		if err != nil || len(scores) < 2 {
			retry = append(retry, row.ID)
			continue
		}

		updates = append(updates, c.decide(row.ID, text, scores))
	}

	if len(updates) > 0 {
		if err := c.Staging.ApplyClassifications(ctx, updates); err != nil {
			return fmt.Errorf("classifier: apply classifications: %w", err)
		}
		ids := make([]string, len(updates))
		for i, u := range updates {
			ids[i] = u.ID
		}
		transferEnv := domain.TaskEnvelope{TraceID: env.TraceID, RowIDs: ids, Attempt: 1}
		if err := c.Broker.Enqueue(ctx, domain.QueueStagingToJobApps, transferEnv); err != nil {
			return fmt.Errorf("classifier: enqueue transfer task: %w", err)
		}
	}

	if len(retry) > 0 {
		if env.Attempt > domain.MaxRetries {
			if err := c.Staging.UpdateStatusBatch(ctx, retry, domain.StatusAwaitClassification, domain.StatusFailedPermanently); err != nil {
				return fmt.Errorf("classifier: update failed-permanently batch: %w", err)
			}
			return nil
		}
		if err := c.Staging.UpdateStatusBatch(ctx, retry, domain.StatusAwaitClassification, domain.StatusRetry); err != nil {
			return fmt.Errorf("classifier: update retry batch: %w", err)
		}
		retryEnv := domain.TaskEnvelope{TraceID: env.TraceID, RowIDs: retry, Attempt: env.Attempt + 1}
		if err := c.Broker.EnqueueDelayed(ctx, domain.QueueClassification, retryEnv, stageRetryBackoff(env.Attempt)); err != nil {
			return fmt.Errorf("classifier: enqueue retry task: %w", err)
		}
	}

	return nil
}

func (c *Classifier) decryptFields(row domain.StagingRow) (subject, sender, body string, err error) {
	subject, err = c.Cipher.Decrypt(row.SubjectEnc)
	if err != nil {
		return "", "", "", err
	}
	sender, err = c.Cipher.Decrypt(row.SenderEnc)
	if err != nil {
		return "", "", "", err
	}
	body, err = c.Cipher.Decrypt(row.BodyEnc)
	if err != nil {
		return "", "", "", err
	}
	return subject, sender, body, nil
}

// decide applies the heuristic overlay decision table (spec §4.5 op 6) to
// one row's top-two zero-shot scores.
func (c *Classifier) decide(rowID, text string, scores []model.LabelScore) repository.ClassificationUpdate {
	l1, l2 := scores[0], scores[1]
	l1Stage, l2Stage := normalizeStageLabel(l1.Label), normalizeStageLabel(l2.Label)
	heuristic := matchHeuristic(text)

	gapBelowMargin := (l1.Confidence - l2.Confidence) < 0.1
	lowConfidence := l1.Confidence < c.Threshold

	var final domain.Stage
	var finalScore float64
	var secondary domain.Stage
	var secondaryScore float64
	var needsReview bool

	switch {
	case heuristic == "" || heuristic == l1Stage:
		final, finalScore = l1Stage, l1.Confidence
		secondary, secondaryScore = l2Stage, l2.Confidence
		needsReview = lowConfidence || gapBelowMargin
	case heuristic == l2Stage:
		final, finalScore = l2Stage, l2.Confidence
		secondary, secondaryScore = l1Stage, l1.Confidence
		needsReview = true
	default:
		final, finalScore = l1Stage, l1.Confidence
		secondary, secondaryScore = l2Stage, l2.Confidence
		needsReview = true
	}

	secondaryConfidence := pct(secondaryScore)
	return repository.ClassificationUpdate{
		ID:                       rowID,
		AppStage:                 final,
		ConfidenceScore:          pct(finalScore),
		AppStageSecondary:        &secondary,
		ConfidenceScoreSecondary: &secondaryConfidence,
		NeedsReview:              needsReview,
	}
}

func pct(score float64) int {
	return int(math.Round(score * 100))
}
