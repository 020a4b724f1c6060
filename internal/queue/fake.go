package queue

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ignite/careertrack/internal/domain"
)

type fakeItem struct {
	handle  string
	env     domain.TaskEnvelope
	visible time.Time
}

// FakeBroker is an in-memory Broker for tests. It honors EnqueueDelayed's
// visibility semantics (a delayed message isn't returned by Receive until
// its delay elapses) without talking to AWS.
type FakeBroker struct {
	mu      sync.Mutex
	queues  map[domain.QueueName][]*fakeItem
	nextID  int
}

// NewFakeBroker builds an empty fake broker.
func NewFakeBroker() *FakeBroker {
	return &FakeBroker{queues: make(map[domain.QueueName][]*fakeItem)}
}

func (b *FakeBroker) Enqueue(ctx context.Context, queue domain.QueueName, env domain.TaskEnvelope) error {
	return b.EnqueueDelayed(ctx, queue, env, 0)
}

func (b *FakeBroker) EnqueueDelayed(ctx context.Context, queue domain.QueueName, env domain.TaskEnvelope, delay time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	item := &fakeItem{
		handle:  fmt.Sprintf("fake-%d", b.nextID),
		env:     env,
		visible: time.Now().Add(delay),
	}
	b.queues[queue] = append(b.queues[queue], item)
	return nil
}

func (b *FakeBroker) Receive(ctx context.Context, queue domain.QueueName, max int32) ([]Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	items := b.queues[queue]
	sort.SliceStable(items, func(i, j int) bool { return items[i].visible.Before(items[j].visible) })

	var out []Message
	for _, it := range items {
		if len(out) >= int(max) {
			break
		}
		if it.visible.After(now) {
			continue
		}
		out = append(out, Message{Envelope: it.env, Handle: it.handle})
	}
	return out, nil
}

func (b *FakeBroker) Delete(ctx context.Context, queue domain.QueueName, handle string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	items := b.queues[queue]
	for i, it := range items {
		if it.handle == handle {
			b.queues[queue] = append(items[:i], items[i+1:]...)
			return nil
		}
	}
	return nil
}

// Len reports how many messages (visible or not) currently sit in queue.
// Test helper only.
func (b *FakeBroker) Len(queue domain.QueueName) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queues[queue])
}
