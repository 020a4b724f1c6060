package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ignite/careertrack/internal/domain"
)

// ApplicationRepo implements repository.ApplicationRepository against the
// public.job_applications table (spec §6). InsertBatch runs the whole batch
// in one transaction, matching the Transfer stage's "no partial commits"
// requirement: a failure anywhere rolls back the entire batch so retry is
// safe under the provider_message_id idempotency constraint.
type ApplicationRepo struct{ db *sql.DB }

// NewApplicationRepo builds a Postgres-backed application repository.
func NewApplicationRepo(db *sql.DB) *ApplicationRepo { return &ApplicationRepo{db: db} }

func (r *ApplicationRepo) InsertBatch(ctx context.Context, rows []domain.ApplicationRow) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert application batch: begin: %w", err)
	}
	defer tx.Rollback()

	for _, row := range rows {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO public.job_applications
				(provider_message_id, user_uid, app_stage, stage_confidence,
				 app_stage_secondary, stage_confidence_secondary, needs_review,
				 provider_source, relevance_model_confidence, received_at, updated_at,
				 is_archived, is_deleted)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), $11, $12)
			ON CONFLICT (provider_message_id) DO NOTHING
		`, row.ProviderMessageID, row.UserUID, string(row.AppStage), row.StageConfidence,
			stagePtrToString(row.AppStageSecondary), row.StageConfidenceSecondary, row.NeedsReview,
			row.ProviderSource, row.RelevanceModelConfidence, row.ReceivedAt,
			row.IsArchived, row.IsDeleted,
		)
		if err != nil {
			return fmt.Errorf("insert application row %s: %w", row.ProviderMessageID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert application batch: commit: %w", err)
	}
	return nil
}
