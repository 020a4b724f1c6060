package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/ignite/careertrack/internal/domain"
	"github.com/ignite/careertrack/internal/repository"
)

// StagingRepo implements repository.StagingRepository against the
// internal_staging.email_staging table (spec §6). Every status change is
// scoped by an explicit from-status predicate so two stages never race on
// the same row, matching the "single-row conditional update" discipline
// documented in internal/domain/staging.go.
type StagingRepo struct{ db *sql.DB }

// NewStagingRepo builds a Postgres-backed staging repository.
func NewStagingRepo(db *sql.DB) *StagingRepo { return &StagingRepo{db: db} }

func (r *StagingRepo) InsertBatch(ctx context.Context, rows []domain.StagingRow) ([]string, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("insert staging batch: begin: %w", err)
	}
	defer tx.Rollback()

	var inserted []string
	for _, row := range rows {
		if row.ID == "" {
			row.ID = uuid.New().String()
		}
		var id string
		err := tx.QueryRowContext(ctx, `
			INSERT INTO internal_staging.email_staging
				(id, user_id_enc, trace_id, provider, provider_message_id,
				 subject_enc, sender_enc, received_at_enc, body_enc, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (provider, provider_message_id) DO NOTHING
			RETURNING id
		`, row.ID, row.UserIDEnc, row.TraceID, row.Provider, row.ProviderMessageID,
			row.SubjectEnc, row.SenderEnc, row.ReceivedAtEnc, row.BodyEnc, domain.StatusAwaitRelevance,
		).Scan(&id)
		if err == sql.ErrNoRows {
			continue // already staged for this provider message id
		}
		if err != nil {
			return nil, fmt.Errorf("insert staging row: %w", err)
		}
		inserted = append(inserted, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("insert staging batch: commit: %w", err)
	}
	return inserted, nil
}

func (r *StagingRepo) ReadBatch(ctx context.Context, ids []string) ([]domain.StagingRow, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id_enc, subject_enc, sender_enc, body_enc, received_at_enc,
		       trace_id, provider, provider_message_id, status,
		       app_stage, app_stage_secondary, confidence_score, confidence_score_secondary,
		       needs_review, created_at
		FROM internal_staging.email_staging
		WHERE id = ANY($1)
	`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("read staging batch: %w", err)
	}
	defer rows.Close()

	var out []domain.StagingRow
	for rows.Next() {
		var row domain.StagingRow
		if err := rows.Scan(
			&row.ID, &row.UserIDEnc, &row.SubjectEnc, &row.SenderEnc, &row.BodyEnc, &row.ReceivedAtEnc,
			&row.TraceID, &row.Provider, &row.ProviderMessageID, &row.Status,
			&row.AppStage, &row.AppStageSecondary, &row.ConfidenceScore, &row.ConfidenceScoreSecondary,
			&row.NeedsReview, &row.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan staging row: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *StagingRepo) UpdateStatusBatch(ctx context.Context, ids []string, from, to domain.Status) error {
	if len(ids) == 0 {
		return nil
	}
	if !domain.CanTransition(from, to) {
		return fmt.Errorf("update staging status: invalid transition %s -> %s", from, to)
	}

	_, err := r.db.ExecContext(ctx, `
		UPDATE internal_staging.email_staging
		SET status = $1
		WHERE id = ANY($2) AND status = $3
	`, to, pq.Array(ids), from)
	if err != nil {
		return fmt.Errorf("update staging status: %w", err)
	}
	return nil
}

func (r *StagingRepo) ApplyClassifications(ctx context.Context, updates []repository.ClassificationUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("apply classifications: begin: %w", err)
	}
	defer tx.Rollback()

	for _, u := range updates {
		_, err := tx.ExecContext(ctx, `
			UPDATE internal_staging.email_staging
			SET app_stage = $1, confidence_score = $2,
			    app_stage_secondary = $3, confidence_score_secondary = $4,
			    needs_review = $5, status = $6
			WHERE id = $7 AND status = $8
		`, string(u.AppStage), u.ConfidenceScore, stagePtrToString(u.AppStageSecondary), u.ConfidenceScoreSecondary,
			u.NeedsReview, domain.StatusAwaitTransfer, u.ID, domain.StatusAwaitClassification,
		)
		if err != nil {
			return fmt.Errorf("apply classification for row %s: %w", u.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("apply classifications: commit: %w", err)
	}
	return nil
}

func stagePtrToString(s *domain.Stage) *string {
	if s == nil {
		return nil
	}
	v := string(*s)
	return &v
}
