package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ignite/careertrack/internal/repository"
)

// CredentialRepo implements repository.CredentialRepository against
// Postgres, grounded in the same query shape as the platform's other
// repositories: plain database/sql, positional placeholders, sql.ErrNoRows
// mapped to a nil result rather than a sentinel error (the Dispatcher
// aborts silently on a missing credential per spec).
type CredentialRepo struct{ db *sql.DB }

// NewCredentialRepo builds a Postgres-backed credential repository.
func NewCredentialRepo(db *sql.DB) *CredentialRepo { return &CredentialRepo{db: db} }

func (r *CredentialRepo) HasCredential(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM internal_staging.provider_credentials WHERE user_id = $1)
	`, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check credential: %w", err)
	}
	return exists, nil
}

func (r *CredentialRepo) Get(ctx context.Context, userID string) (*repository.StoredCredential, error) {
	cred := &repository.StoredCredential{UserID: userID}
	err := r.db.QueryRowContext(ctx, `
		SELECT refresh_token_enc FROM internal_staging.provider_credentials WHERE user_id = $1
	`, userID).Scan(&cred.RefreshTokenEnc)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get credential: %w", err)
	}
	return cred, nil
}
