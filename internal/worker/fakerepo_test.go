package worker

import (
	"context"
	"fmt"
	"sync"

	"github.com/ignite/careertrack/internal/domain"
	"github.com/ignite/careertrack/internal/repository"
)

// fakeStagingRepo is an in-memory repository.StagingRepository for stage
// tests, mirroring queue.FakeBroker's role for the broker side.
type fakeStagingRepo struct {
	mu      sync.Mutex
	rows    map[string]domain.StagingRow
	nextID  int
	seen    map[string]string // provider|provider_message_id -> id
}

func newFakeStagingRepo() *fakeStagingRepo {
	return &fakeStagingRepo{
		rows: make(map[string]domain.StagingRow),
		seen: make(map[string]string),
	}
}

func (f *fakeStagingRepo) InsertBatch(_ context.Context, rows []domain.StagingRow) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var inserted []string
	for _, row := range rows {
		key := row.Provider + "|" + row.ProviderMessageID
		if _, dup := f.seen[key]; dup {
			continue
		}
		f.nextID++
		row.ID = fmt.Sprintf("row-%d", f.nextID)
		f.rows[row.ID] = row
		f.seen[key] = row.ID
		inserted = append(inserted, row.ID)
	}
	return inserted, nil
}

func (f *fakeStagingRepo) ReadBatch(_ context.Context, ids []string) ([]domain.StagingRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]domain.StagingRow, 0, len(ids))
	for _, id := range ids {
		if row, ok := f.rows[id]; ok {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeStagingRepo) UpdateStatusBatch(_ context.Context, ids []string, from, to domain.Status) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, id := range ids {
		row, ok := f.rows[id]
		if !ok || row.Status != from {
			continue
		}
		row.Status = to
		f.rows[id] = row
	}
	return nil
}

func (f *fakeStagingRepo) ApplyClassifications(_ context.Context, updates []repository.ClassificationUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range updates {
		row, ok := f.rows[u.ID]
		if !ok {
			continue
		}
		stage := string(u.AppStage)
		row.AppStage = &stage
		score := u.ConfidenceScore
		row.ConfidenceScore = &score
		if u.AppStageSecondary != nil {
			secondary := string(*u.AppStageSecondary)
			row.AppStageSecondary = &secondary
		}
		row.ConfidenceScoreSecondary = u.ConfidenceScoreSecondary
		row.NeedsReview = u.NeedsReview
		row.Status = domain.StatusAwaitTransfer
		f.rows[u.ID] = row
	}
	return nil
}

func (f *fakeStagingRepo) get(id string) (domain.StagingRow, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	return row, ok
}

// fakeApplicationRepo is an in-memory repository.ApplicationRepository
// honoring the provider_message_id uniqueness constraint spec §6 requires.
type fakeApplicationRepo struct {
	mu       sync.Mutex
	rows     map[string]domain.ApplicationRow
	failNext bool
}

func newFakeApplicationRepo() *fakeApplicationRepo {
	return &fakeApplicationRepo{rows: make(map[string]domain.ApplicationRow)}
}

func (f *fakeApplicationRepo) InsertBatch(_ context.Context, rows []domain.ApplicationRow) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failNext {
		f.failNext = false
		return fmt.Errorf("fakeApplicationRepo: forced failure")
	}

	for _, row := range rows {
		if _, dup := f.rows[row.ProviderMessageID]; dup {
			continue
		}
		f.rows[row.ProviderMessageID] = row
	}
	return nil
}

func (f *fakeApplicationRepo) byProviderMessageID(id string) (domain.ApplicationRow, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	return row, ok
}

func (f *fakeApplicationRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}
