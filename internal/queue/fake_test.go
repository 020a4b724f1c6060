package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/careertrack/internal/domain"
)

func TestFakeBroker_EnqueueReceiveDelete(t *testing.T) {
	b := NewFakeBroker()
	ctx := context.Background()

	env := domain.TaskEnvelope{TraceID: "t1", RowIDs: []string{"row-1"}, Attempt: 1}
	require.NoError(t, b.Enqueue(ctx, domain.QueueFetchContent, env))

	msgs, err := b.Receive(ctx, domain.QueueFetchContent, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "t1", msgs[0].Envelope.TraceID)

	require.NoError(t, b.Delete(ctx, domain.QueueFetchContent, msgs[0].Handle))
	assert.Equal(t, 0, b.Len(domain.QueueFetchContent))
}

func TestFakeBroker_DelayedNotVisibleImmediately(t *testing.T) {
	b := NewFakeBroker()
	ctx := context.Background()

	env := domain.TaskEnvelope{TraceID: "t2", Attempt: 1}
	require.NoError(t, b.EnqueueDelayed(ctx, domain.QueueRelevanceModel, env, 50*time.Millisecond))

	msgs, err := b.Receive(ctx, domain.QueueRelevanceModel, 10)
	require.NoError(t, err)
	assert.Empty(t, msgs)

	time.Sleep(60 * time.Millisecond)
	msgs, err = b.Receive(ctx, domain.QueueRelevanceModel, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
}

func TestFakeBroker_QueuesIndependent(t *testing.T) {
	b := NewFakeBroker()
	ctx := context.Background()

	require.NoError(t, b.Enqueue(ctx, domain.QueueFetchContent, domain.TaskEnvelope{TraceID: "a"}))
	require.NoError(t, b.Enqueue(ctx, domain.QueueClassification, domain.TaskEnvelope{TraceID: "b"}))

	fetchMsgs, err := b.Receive(ctx, domain.QueueFetchContent, 10)
	require.NoError(t, err)
	require.Len(t, fetchMsgs, 1)
	assert.Equal(t, "a", fetchMsgs[0].Envelope.TraceID)

	classifyMsgs, err := b.Receive(ctx, domain.QueueClassification, 10)
	require.NoError(t, err)
	require.Len(t, classifyMsgs, 1)
	assert.Equal(t, "b", classifyMsgs[0].Envelope.TraceID)
}
