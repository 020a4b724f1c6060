package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/ignite/careertrack/internal/cryptox"
	"github.com/ignite/careertrack/internal/domain"
	applog "github.com/ignite/careertrack/internal/pkg/logger"
	"github.com/ignite/careertrack/internal/repository"
)

// Transfer implements the Transfer stage (spec §4.6): moves classified
// staging rows into the canonical application table and marks them PURGE.
// Per the open question in spec §9, this implementation commits to the
// Transfer-stage path: ApplicationRow creation happens here, never in
// Relevance or Classifier.
type Transfer struct {
	Staging     repository.StagingRepository
	Application repository.ApplicationRepository
	Cipher      *cryptox.Cipher
	Clock       func() time.Time
}

func (t *Transfer) Run(ctx context.Context, env domain.TaskEnvelope) error {
	rows, err := t.Staging.ReadBatch(ctx, env.RowIDs)
	if err != nil {
		return fmt.Errorf("transfer: read batch: %w", err)
	}

	var appRows []domain.ApplicationRow
	var transferredIDs []string
	for _, row := range rows {
		if row.AppStage == nil || row.ConfidenceScore == nil {
			applog.Trace(env.TraceID).Warn("transfer: row has no classification, skipping",
				"row_id", row.ID)
			continue
		}

		userUID, err := t.Cipher.Decrypt(row.UserIDEnc)
		if err != nil {
			applog.Trace(env.TraceID).Warn("transfer: decrypt failed, leaving row in place",
				"row_id", row.ID)
			continue
		}

		receivedAt := t.decryptReceivedAt(row)

		appRow := domain.ApplicationRow{
			ProviderMessageID: row.ProviderMessageID,
			UserUID:           userUID,
			AppStage:          domain.Stage(*row.AppStage),
			StageConfidence:   *row.ConfidenceScore,
			NeedsReview:       row.NeedsReview,
			ProviderSource:    row.Provider,
			ReceivedAt:        receivedAt,
			UpdatedAt:         t.now(),
		}
		if row.AppStageSecondary != nil {
			secondary := domain.Stage(*row.AppStageSecondary)
			appRow.AppStageSecondary = &secondary
		}
		if row.ConfidenceScoreSecondary != nil {
			secondary := *row.ConfidenceScoreSecondary
			appRow.StageConfidenceSecondary = &secondary
		}

		appRows = append(appRows, appRow)
		transferredIDs = append(transferredIDs, row.ID)
	}

	if len(appRows) == 0 {
		return nil
	}

	if err := t.Application.InsertBatch(ctx, appRows); err != nil {
		return fmt.Errorf("transfer: insert application batch: %w", err)
	}

	if err := t.Staging.UpdateStatusBatch(ctx, transferredIDs, domain.StatusAwaitTransfer, domain.StatusPurge); err != nil {
		return fmt.Errorf("transfer: mark purged: %w", err)
	}

	return nil
}

// decryptReceivedAt decrypts the RFC3339-encoded received_at field written
// by the Fetcher (internal/worker/fetcher.go encryptRow); a decrypt or
// parse failure falls back to the transfer time rather than failing the
// whole batch, matching the stage's per-row tolerance for bad ciphertext.
func (t *Transfer) decryptReceivedAt(row domain.StagingRow) time.Time {
	plain, err := t.Cipher.Decrypt(row.ReceivedAtEnc)
	if err != nil {
		return t.now()
	}
	parsed, err := time.Parse(time.RFC3339, plain)
	if err != nil {
		return t.now()
	}
	return parsed
}

func (t *Transfer) now() time.Time {
	if t.Clock != nil {
		return t.Clock()
	}
	return time.Now().UTC()
}
