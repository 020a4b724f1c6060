package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/careertrack/internal/cryptox"
	"github.com/ignite/careertrack/internal/domain"
	"github.com/ignite/careertrack/internal/pkg/distlock"
	applog "github.com/ignite/careertrack/internal/pkg/logger"
	"github.com/ignite/careertrack/internal/provider"
	"github.com/ignite/careertrack/internal/queue"
	"github.com/ignite/careertrack/internal/ratelimit"
	"github.com/ignite/careertrack/internal/repository"
)

// Fetcher implements the Content-Fetcher stage (spec §4.2): acquires a
// per-user concurrency slot, batch-fetches message content, encrypts and
// stages successes, and re-enqueues rate-limited ids.
type Fetcher struct {
	Redis       *redis.Client
	MaxSlots    int
	SlotTTL     time.Duration
	RateLimiter *ratelimit.Limiter

	Provider       provider.MailProvider
	Cipher         *cryptox.Cipher
	Staging        repository.StagingRepository
	Broker         queue.Broker
	PostBatchSleep time.Duration
}

func (f *Fetcher) Run(ctx context.Context, env domain.TaskEnvelope) error {
	ids, err := argStringSlice(env.Args, "message_ids")
	if err != nil {
		return err
	}
	userID, err := argString(env.Args, "user_id")
	if err != nil {
		return err
	}
	refreshTokenEnc, err := argString(env.Args, "refresh_token_enc")
	if err != nil {
		return err
	}

	slot := distlock.NewSlotLock(f.Redis, userID, f.MaxSlots)
	if err := slot.Acquire(ctx, f.SlotTTL); err != nil {
		if err == distlock.ErrNoSlotAvailable {
			return f.reschedule(ctx, env, slotBackoff(env.Attempt-1))
		}
		return fmt.Errorf("fetcher: acquire slot: %w", err)
	}
	defer slot.Release(ctx)

	allowed, waitFor, err := f.RateLimiter.Allow(ctx, userID, len(ids), ratelimit.DefaultProviderLimit)
	if err != nil {
		return fmt.Errorf("fetcher: rate limit check: %w", err)
	}
	if !allowed {
		return f.reschedule(ctx, env, waitFor)
	}

	refreshToken, err := f.Cipher.DecryptFromBase64(refreshTokenEnc)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrDecryptFailed, err)
	}
	cred := provider.Credential{UserID: userID, RefreshToken: refreshToken}

	results, err := f.Provider.BatchGet(ctx, cred, ids)
	if err != nil {
		return fmt.Errorf("fetcher: batch get: %w", err)
	}

	if f.PostBatchSleep > 0 {
		time.Sleep(f.PostBatchSleep)
	}

	var stagingRows []domain.StagingRow
	var retryIDs []string
	for _, res := range results {
		switch res.Outcome {
		case provider.FetchSuccess:
			row, err := f.encryptRow(env.TraceID, userID, res)
			if err != nil {
				applog.Trace(env.TraceID).Warn("fetcher: encrypt failed, skipping message",
					"provider_message_id", res.ProviderMessageID)
				continue
			}
			stagingRows = append(stagingRows, row)
		case provider.FetchRetry:
			retryIDs = append(retryIDs, res.ProviderMessageID)
		case provider.FetchSkip:
			applog.Trace(env.TraceID).Warn("fetcher: skipping message",
				"provider_message_id", res.ProviderMessageID, "warning", res.Warning)
		}
	}

	if len(stagingRows) > 0 {
		insertedIDs, err := f.Staging.InsertBatch(ctx, stagingRows)
		if err != nil {
			return fmt.Errorf("fetcher: insert staging batch: %w", err)
		}
		if len(insertedIDs) > 0 {
			relevanceEnv := domain.TaskEnvelope{TraceID: env.TraceID, RowIDs: insertedIDs, Attempt: 1}
			if err := f.Broker.Enqueue(ctx, domain.QueueRelevanceModel, relevanceEnv); err != nil {
				return fmt.Errorf("fetcher: enqueue relevance task: %w", err)
			}
		}
	}

	if len(retryIDs) > 0 {
		if env.Attempt >= domain.MaxRetries {
			applog.Trace(env.TraceID).Error("fetcher: retries exhausted for rate-limited messages",
				"user_id", userID, "count", len(retryIDs))
			return nil
		}
		retryEnv := domain.TaskEnvelope{
			TraceID: env.TraceID,
			Attempt: env.Attempt + 1,
			Args: map[string]any{
				"message_ids":       retryIDs,
				"user_id":           userID,
				"refresh_token_enc": refreshTokenEnc,
			},
		}
		if err := f.Broker.EnqueueDelayed(ctx, domain.QueueFetchContent, retryEnv, fetchRetryBackoff()); err != nil {
			return fmt.Errorf("fetcher: enqueue retry task: %w", err)
		}
	}

	return nil
}

func (f *Fetcher) reschedule(ctx context.Context, env domain.TaskEnvelope, delay time.Duration) error {
	if err := f.Broker.EnqueueDelayed(ctx, domain.QueueFetchContent, env, delay); err != nil {
		return fmt.Errorf("fetcher: reschedule: %w", err)
	}
	return nil
}

func (f *Fetcher) encryptRow(traceID, userID string, res provider.FetchResult) (domain.StagingRow, error) {
	userIDEnc, err := f.Cipher.Encrypt(userID)
	if err != nil {
		return domain.StagingRow{}, err
	}
	subjectEnc, err := f.Cipher.Encrypt(res.Subject)
	if err != nil {
		return domain.StagingRow{}, err
	}
	senderEnc, err := f.Cipher.Encrypt(res.Sender)
	if err != nil {
		return domain.StagingRow{}, err
	}
	bodyEnc, err := f.Cipher.Encrypt(res.Body)
	if err != nil {
		return domain.StagingRow{}, err
	}
	receivedAtEnc, err := f.Cipher.Encrypt(res.ReceivedAt.Format(time.RFC3339))
	if err != nil {
		return domain.StagingRow{}, err
	}

	return domain.StagingRow{
		UserIDEnc:         userIDEnc,
		SubjectEnc:        subjectEnc,
		SenderEnc:         senderEnc,
		BodyEnc:           bodyEnc,
		ReceivedAtEnc:     receivedAtEnc,
		TraceID:           traceID,
		Provider:          "google",
		ProviderMessageID: res.ProviderMessageID,
		Status:            domain.StatusAwaitRelevance,
	}, nil
}
