// Package repository defines the persistence interfaces the pipeline stages
// depend on. Concrete implementations live in internal/repository/postgres;
// stages depend on these interfaces so tests can substitute sqlmock-backed
// fakes without a live database.
package repository

import (
	"context"
	"time"

	"github.com/ignite/careertrack/internal/domain"
)

// StoredCredential is one user's encrypted provider refresh token.
type StoredCredential struct {
	UserID          string
	RefreshTokenEnc []byte
}

// CredentialRepository resolves a user's stored provider credential.
type CredentialRepository interface {
	// HasCredential reports whether a credential is on file for userID,
	// matching the original source's can_fetch_emails gate.
	HasCredential(ctx context.Context, userID string) (bool, error)
	Get(ctx context.Context, userID string) (*StoredCredential, error)
}

// ClassificationUpdate is one row's Classifier output, applied to the
// staging table's app_stage/confidence columns.
type ClassificationUpdate struct {
	ID                       string
	AppStage                 domain.Stage
	ConfidenceScore          int
	AppStageSecondary        *domain.Stage
	ConfidenceScoreSecondary *int
	NeedsReview              bool
}

// StagingRepository persists and reads StagingRow records.
type StagingRepository interface {
	// InsertBatch inserts rows, skipping any whose (provider,
	// provider_message_id) already exists, and returns the ids actually
	// assigned (new inserts only, in the same order as input where matched).
	InsertBatch(ctx context.Context, rows []domain.StagingRow) ([]string, error)

	// ReadBatch loads the given staging rows by id, in no particular order.
	ReadBatch(ctx context.Context, ids []string) ([]domain.StagingRow, error)

	// UpdateStatusBatch conditionally moves every row in ids from "from" to
	// "to", matching the spec's single-row conditional update discipline;
	// rows not currently at "from" are left untouched.
	UpdateStatusBatch(ctx context.Context, ids []string, from, to domain.Status) error

	// ApplyClassifications writes the Classifier's per-row outputs and
	// advances status to AWAIT_TRANSFER in one transaction.
	ApplyClassifications(ctx context.Context, updates []ClassificationUpdate) error
}

// ApplicationRepository persists ApplicationRow records.
type ApplicationRepository interface {
	// InsertBatch idempotently inserts every row in one transaction; rows
	// whose provider_message_id already exists are no-ops. A failure rolls
	// back the whole batch so the caller can safely retry it in full.
	InsertBatch(ctx context.Context, rows []domain.ApplicationRow) error
}

// Clock abstracts time.Now for repository code that stamps UpdatedAt, so
// tests can assert on deterministic timestamps.
type Clock func() time.Time
