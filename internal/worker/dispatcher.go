package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/ignite/careertrack/internal/cryptox"
	"github.com/ignite/careertrack/internal/domain"
	applog "github.com/ignite/careertrack/internal/pkg/logger"
	"github.com/ignite/careertrack/internal/provider"
	"github.com/ignite/careertrack/internal/queue"
	"github.com/ignite/careertrack/internal/repository"
)

const maxListPage = 500

// Dispatcher implements the Ingest-Dispatcher stage (spec §4.1): resolves a
// user's credential, lists candidate message ids since a start date, and
// enqueues Fetcher tasks in fixed-size batches.
type Dispatcher struct {
	Credentials    repository.CredentialRepository
	Cipher         *cryptox.Cipher
	Provider       provider.MailProvider
	Broker         queue.Broker
	EmailsPerBatch int
}

// Run processes one Dispatcher task envelope. env.Args must carry
// "user_id" and "start_date" (RFC3339). A user with no credential on file
// aborts silently, matching the original can_fetch_emails gate.
func (d *Dispatcher) Run(ctx context.Context, env domain.TaskEnvelope) error {
	userID, err := argString(env.Args, "user_id")
	if err != nil {
		return err
	}
	startDateStr, err := argString(env.Args, "start_date")
	if err != nil {
		return err
	}
	startDate, err := time.Parse(time.RFC3339, startDateStr)
	if err != nil {
		return fmt.Errorf("dispatcher: parse start_date: %w", err)
	}

	has, err := d.Credentials.HasCredential(ctx, userID)
	if err != nil {
		return fmt.Errorf("dispatcher: check credential: %w", err)
	}
	if !has {
		applog.Trace(env.TraceID).Info("dispatcher: no credential on file, skipping", "user_id", userID)
		return nil
	}

	stored, err := d.Credentials.Get(ctx, userID)
	if err != nil {
		return fmt.Errorf("dispatcher: get credential: %w", err)
	}
	if stored == nil {
		return nil
	}

	refreshToken, err := d.Cipher.Decrypt(stored.RefreshTokenEnc)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrDecryptFailed, err)
	}
	cred := provider.Credential{UserID: userID, RefreshToken: refreshToken}

	var allRefs []provider.MessageRef
	pageToken := ""
	for {
		page, err := d.Provider.List(ctx, cred, startDate, pageToken, maxListPage)
		if err != nil {
			return fmt.Errorf("dispatcher: list messages: %w", err)
		}
		allRefs = append(allRefs, page.Refs...)
		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}

	refreshTokenEnc, err := d.Cipher.EncryptToBase64(refreshToken)
	if err != nil {
		return fmt.Errorf("dispatcher: re-encrypt credential: %w", err)
	}

	batchSize := d.EmailsPerBatch
	if batchSize <= 0 {
		batchSize = 10
	}

	for start := 0; start < len(allRefs); start += batchSize {
		end := start + batchSize
		if end > len(allRefs) {
			end = len(allRefs)
		}
		ids := make([]string, 0, end-start)
		for _, ref := range allRefs[start:end] {
			ids = append(ids, ref.ProviderMessageID)
		}

		fetchEnv := domain.TaskEnvelope{
			TraceID: env.TraceID,
			Attempt: 1,
			Args: map[string]any{
				"message_ids":       ids,
				"user_id":           userID,
				"refresh_token_enc": refreshTokenEnc,
			},
		}
		if err := d.Broker.Enqueue(ctx, domain.QueueFetchContent, fetchEnv); err != nil {
			return fmt.Errorf("dispatcher: enqueue fetch task: %w", err)
		}
	}

	applog.Trace(env.TraceID).Info("dispatcher: enqueued fetch tasks",
		"user_id", userID, "message_count", len(allRefs))
	return nil
}
