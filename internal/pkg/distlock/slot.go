package distlock

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SlotLock caps concurrent work per user at N slots using Redis keys
// "lock:user:{uid}:{slot}", each created with SET NX EX. If no slot is free
// the caller should reschedule its task rather than block (spec §4.2, §9):
// this is a rescheduling signal, not an error, so Acquire returns
// ErrNoSlotAvailable as a plain error the caller checks for, not a fatal one.
type SlotLock struct {
	client  *redis.Client
	userID  string
	slots   int
	held    *RedisLock
}

// NewSlotLock builds a slot lock for the given user with the configured
// number of named slots.
func NewSlotLock(client *redis.Client, userID string, slots int) *SlotLock {
	return &SlotLock{client: client, userID: userID, slots: slots}
}

// ErrNoSlotAvailable is returned by Acquire when every slot is currently
// held by some other in-flight task for this user.
var ErrNoSlotAvailable = fmt.Errorf("distlock: no slot available")

// Acquire tries each of the user's N slots in order, holding the first free
// one for ttl. Returns ErrNoSlotAvailable if none are free.
func (s *SlotLock) Acquire(ctx context.Context, ttl time.Duration) error {
	for slot := 0; slot < s.slots; slot++ {
		key := fmt.Sprintf("lock:user:%s:%d", s.userID, slot)
		lock := NewRedisLock(s.client, key, ttl)
		ok, err := lock.Acquire(ctx)
		if err != nil {
			return err
		}
		if ok {
			s.held = lock
			return nil
		}
	}
	return ErrNoSlotAvailable
}

// Release releases whichever slot this SlotLock currently holds, if any.
// Safe to call even if Acquire never succeeded.
func (s *SlotLock) Release(ctx context.Context) error {
	if s.held == nil {
		return nil
	}
	err := s.held.Release(ctx)
	s.held = nil
	return err
}
