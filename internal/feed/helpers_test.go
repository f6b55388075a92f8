package feed

import (
	"context"
	"errors"
	"sync"

	"todayiwatched/internal/models"
	"todayiwatched/internal/services"
	"todayiwatched/internal/store"
)

var errBoom = errors.New("boom")

// fakeStore 包装内存存储，可注入错误和阻塞
type fakeStore struct {
	*store.Memory

	mu           sync.Mutex
	selects      int
	inserts      int
	increments   int
	selectErr    error
	insertErr    error
	incrementErr error
	// selectHook runs before Select returns; used to block a specific query.
	selectHook func(q store.Query)
	insertHook func()
	voteHook   func()
}

func newFakeStore(rows ...models.Recommendation) *fakeStore {
	return &fakeStore{Memory: store.NewMemory(rows...)}
}

func (f *fakeStore) Select(ctx context.Context, q store.Query) ([]models.Recommendation, error) {
	f.mu.Lock()
	f.selects++
	hook, err := f.selectHook, f.selectErr
	f.mu.Unlock()
	if hook != nil {
		hook(q)
	}
	if err != nil {
		return nil, err
	}
	return f.Memory.Select(ctx, q)
}

func (f *fakeStore) Insert(ctx context.Context, rec models.Recommendation) (models.Recommendation, error) {
	f.mu.Lock()
	f.inserts++
	hook, err := f.insertHook, f.insertErr
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	if err != nil {
		return models.Recommendation{}, err
	}
	return f.Memory.Insert(ctx, rec)
}

func (f *fakeStore) Increment(ctx context.Context, id int64, c models.Counter) (models.Recommendation, error) {
	f.mu.Lock()
	f.increments++
	hook, err := f.voteHook, f.incrementErr
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	if err != nil {
		return models.Recommendation{}, err
	}
	return f.Memory.Increment(ctx, id, c)
}

func (f *fakeStore) counts() (selects, inserts, increments int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.selects, f.inserts, f.increments
}

// fakeLookup 记录被查询的 IMDb 编号
type fakeLookup struct {
	mu      sync.Mutex
	calls   []string
	posters map[string]string
	err     error
}

func (l *fakeLookup) Poster(_ context.Context, imdbID string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, imdbID)
	if l.err != nil {
		return "", l.err
	}
	if p, ok := l.posters[imdbID]; ok {
		return p, nil
	}
	return "", services.ErrPosterNotFound
}

func (l *fakeLookup) callCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.calls)
}

func sampleRows() []models.Recommendation {
	return []models.Recommendation{
		{ID: 1, Text: "The Shawshank Redemption", Source: "https://www.imdb.com/title/tt0111161/", Category: "top rated", VotesLove: 12, VotesUp: 3},
		{ID: 2, Text: "Donnie Darko", Source: "https://www.imdb.com/title/tt0246578/", Category: "cult classics", VotesLove: 7},
		{ID: 3, Text: "The Room", Source: "https://www.imdb.com/title/tt0368226/", Category: "cult classics", VotesLove: 2, VotesDown: 9},
		{ID: 4, Text: "Primer", Source: "https://example.com/primer", Category: "indie films", VotesLove: 7},
		{ID: 5, Text: "Oppenheimer", Source: "https://www.imdb.com/title/tt15398776/", Category: "blockbusters", VotesLove: 20},
	}
}
