package worker

import (
	"context"
	"sync"
	"time"

	"github.com/ignite/careertrack/internal/provider"
	"github.com/ignite/careertrack/internal/repository"
)

// fakeMailProvider is an in-memory provider.MailProvider for Dispatcher and
// Fetcher tests, mirroring fakeStagingRepo's role on the repository side.
type fakeMailProvider struct {
	mu sync.Mutex

	pages       map[string]provider.ListPage // pageToken -> page
	listErr     error
	listCalls   int
	batchErr    error
	results     map[string]provider.FetchResult
}

func newFakeMailProvider() *fakeMailProvider {
	return &fakeMailProvider{
		pages:   make(map[string]provider.ListPage),
		results: make(map[string]provider.FetchResult),
	}
}

func (f *fakeMailProvider) List(_ context.Context, _ provider.Credential, _ time.Time, pageToken string, _ int) (provider.ListPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return provider.ListPage{}, f.listErr
	}
	return f.pages[pageToken], nil
}

func (f *fakeMailProvider) BatchGet(_ context.Context, _ provider.Credential, ids []string) ([]provider.FetchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.batchErr != nil {
		return nil, f.batchErr
	}
	out := make([]provider.FetchResult, 0, len(ids))
	for _, id := range ids {
		if res, ok := f.results[id]; ok {
			out = append(out, res)
			continue
		}
		out = append(out, provider.FetchResult{ProviderMessageID: id, Outcome: provider.FetchSuccess})
	}
	return out, nil
}

// fakeCredentialRepo is an in-memory repository.CredentialRepository.
type fakeCredentialRepo struct {
	mu    sync.Mutex
	creds map[string][]byte
}

func newFakeCredentialRepo() *fakeCredentialRepo {
	return &fakeCredentialRepo{creds: make(map[string][]byte)}
}

func (f *fakeCredentialRepo) HasCredential(_ context.Context, userID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.creds[userID]
	return ok, nil
}

func (f *fakeCredentialRepo) Get(_ context.Context, userID string) (*repository.StoredCredential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	enc, ok := f.creds[userID]
	if !ok {
		return nil, nil
	}
	return &repository.StoredCredential{UserID: userID, RefreshTokenEnc: enc}, nil
}

func (f *fakeCredentialRepo) set(userID string, refreshTokenEnc []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creds[userID] = refreshTokenEnc
}
