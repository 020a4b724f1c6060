package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/careertrack/internal/domain"
	"github.com/ignite/careertrack/internal/provider"
	"github.com/ignite/careertrack/internal/queue"
)

func TestDispatcher_NoCredentialSkipsSilently(t *testing.T) {
	cipher := newTestCipher(t)
	creds := newFakeCredentialRepo()
	mailProvider := newFakeMailProvider()
	broker := queue.NewFakeBroker()

	d := &Dispatcher{
		Credentials:    creds,
		Cipher:         cipher,
		Provider:       mailProvider,
		Broker:         broker,
		EmailsPerBatch: 10,
	}

	env := domain.TaskEnvelope{
		TraceID: "trace-1",
		Attempt: 1,
		Args: map[string]any{
			"user_id":    "user-without-credential",
			"start_date": time.Now().Add(-24 * time.Hour).Format(time.RFC3339),
		},
	}

	require.NoError(t, d.Run(context.Background(), env))
	assert.Equal(t, 0, broker.Len(domain.QueueFetchContent))
	assert.Equal(t, 0, mailProvider.listCalls)
}

func TestDispatcher_EnqueuesFixedSizeBatches(t *testing.T) {
	cipher := newTestCipher(t)
	creds := newFakeCredentialRepo()
	mailProvider := newFakeMailProvider()
	broker := queue.NewFakeBroker()

	refreshTokenEnc, err := cipher.Encrypt("refresh-token-xyz")
	require.NoError(t, err)
	creds.set("user-1", refreshTokenEnc)

	refs := make([]provider.MessageRef, 0, 25)
	for i := 0; i < 25; i++ {
		refs = append(refs, provider.MessageRef{ProviderMessageID: "msg-" + string(rune('a'+i)), UserID: "user-1"})
	}
	mailProvider.pages[""] = provider.ListPage{Refs: refs}

	d := &Dispatcher{
		Credentials:    creds,
		Cipher:         cipher,
		Provider:       mailProvider,
		Broker:         broker,
		EmailsPerBatch: 10,
	}

	env := domain.TaskEnvelope{
		TraceID: "trace-2",
		Attempt: 1,
		Args: map[string]any{
			"user_id":    "user-1",
			"start_date": time.Now().Add(-24 * time.Hour).Format(time.RFC3339),
		},
	}

	require.NoError(t, d.Run(context.Background(), env))
	// 25 refs at batch size 10 -> 3 fetch tasks (10, 10, 5).
	assert.Equal(t, 3, broker.Len(domain.QueueFetchContent))
}

func TestDispatcher_FollowsPagination(t *testing.T) {
	cipher := newTestCipher(t)
	creds := newFakeCredentialRepo()
	mailProvider := newFakeMailProvider()
	broker := queue.NewFakeBroker()

	refreshTokenEnc, err := cipher.Encrypt("refresh-token-xyz")
	require.NoError(t, err)
	creds.set("user-2", refreshTokenEnc)

	mailProvider.pages[""] = provider.ListPage{
		Refs:          []provider.MessageRef{{ProviderMessageID: "m1", UserID: "user-2"}},
		NextPageToken: "page-2",
	}
	mailProvider.pages["page-2"] = provider.ListPage{
		Refs: []provider.MessageRef{{ProviderMessageID: "m2", UserID: "user-2"}},
	}

	d := &Dispatcher{
		Credentials:    creds,
		Cipher:         cipher,
		Provider:       mailProvider,
		Broker:         broker,
		EmailsPerBatch: 10,
	}

	env := domain.TaskEnvelope{
		TraceID: "trace-3",
		Attempt: 1,
		Args: map[string]any{
			"user_id":    "user-2",
			"start_date": time.Now().Add(-24 * time.Hour).Format(time.RFC3339),
		},
	}

	require.NoError(t, d.Run(context.Background(), env))
	assert.Equal(t, 2, mailProvider.listCalls)
	assert.Equal(t, 1, broker.Len(domain.QueueFetchContent))

	msgs, err := broker.Receive(context.Background(), domain.QueueFetchContent, 1)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	ids, err := argStringSlice(msgs[0].Envelope.Args, "message_ids")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"m1", "m2"}, ids)
}

func TestDispatcher_ListErrorIsPropagated(t *testing.T) {
	cipher := newTestCipher(t)
	creds := newFakeCredentialRepo()
	mailProvider := newFakeMailProvider()
	broker := queue.NewFakeBroker()

	refreshTokenEnc, err := cipher.Encrypt("refresh-token-xyz")
	require.NoError(t, err)
	creds.set("user-3", refreshTokenEnc)
	mailProvider.listErr = errors.New("provider unavailable")

	d := &Dispatcher{
		Credentials:    creds,
		Cipher:         cipher,
		Provider:       mailProvider,
		Broker:         broker,
		EmailsPerBatch: 10,
	}

	env := domain.TaskEnvelope{
		TraceID: "trace-4",
		Attempt: 1,
		Args: map[string]any{
			"user_id":    "user-3",
			"start_date": time.Now().Add(-24 * time.Hour).Format(time.RFC3339),
		},
	}

	err = d.Run(context.Background(), env)
	assert.Error(t, err)
	assert.Equal(t, 0, broker.Len(domain.QueueFetchContent))
}
