package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"todayiwatched/internal/metrics"
	"todayiwatched/internal/models"
)

// Memory keeps recommendations in process memory.
type Memory struct {
	mu     sync.Mutex
	rows   []models.Recommendation
	nextID int64
	now    func() time.Time
}

func NewMemory(seed ...models.Recommendation) *Memory {
	m := &Memory{nextID: 1, now: time.Now}
	for _, r := range seed {
		if r.ID == 0 {
			r.ID = m.nextID
		}
		if r.ID >= m.nextID {
			m.nextID = r.ID + 1
		}
		m.rows = append(m.rows, r)
	}
	return m
}

func (m *Memory) Select(ctx context.Context, q Query) ([]models.Recommendation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.Recommendation, 0, len(m.rows))
	for _, r := range m.rows {
		if q.Category == "" || r.Category == q.Category {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].VotesLove != out[j].VotesLove {
			return out[i].VotesLove > out[j].VotesLove
		}
		return out[i].ID > out[j].ID
	})
	if len(out) > q.limit() {
		out = out[:q.limit()]
	}

	metrics.StoreRequests.WithLabelValues("memory", "select", "ok").Inc()
	return out, nil
}

func (m *Memory) Insert(ctx context.Context, rec models.Recommendation) (models.Recommendation, error) {
	if err := ctx.Err(); err != nil {
		return models.Recommendation{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	row := models.Recommendation{
		ID:        m.nextID,
		Text:      rec.Text,
		Source:    rec.Source,
		Category:  rec.Category,
		CreatedAt: m.now(),
	}
	m.nextID++
	m.rows = append(m.rows, row)

	metrics.StoreRequests.WithLabelValues("memory", "insert", "ok").Inc()
	return row, nil
}

func (m *Memory) Increment(ctx context.Context, id int64, counter models.Counter) (models.Recommendation, error) {
	if err := ctx.Err(); err != nil {
		return models.Recommendation{}, err
	}
	if !counter.Valid() {
		return models.Recommendation{}, fmt.Errorf("%w: %q", models.ErrUnknownCounter, counter)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.rows {
		if m.rows[i].ID == id {
			counter.Increment(&m.rows[i])
			metrics.StoreRequests.WithLabelValues("memory", "increment", "ok").Inc()
			return m.rows[i], nil
		}
	}
	metrics.StoreRequests.WithLabelValues("memory", "increment", "not_found").Inc()
	return models.Recommendation{}, ErrNotFound
}
