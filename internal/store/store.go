// Package store is the remote table of recommendations. The feed only sees the
// Store interface; backends are gorm/Postgres, a PostgREST (Supabase) endpoint,
// or process memory.
package store

import (
	"context"
	"errors"

	"todayiwatched/internal/models"
)

// MaxLimit caps how many rows a single Select returns.
const MaxLimit = 1000

var (
	ErrNotFound = errors.New("recommendation not found")
	// ErrConflict 并发投票导致条件更新未命中
	ErrConflict = errors.New("recommendation was modified concurrently")
)

// Query selects recommendations. An empty Category means every category.
type Query struct {
	Category string
	Limit    int
}

func (q Query) limit() int {
	if q.Limit <= 0 || q.Limit > MaxLimit {
		return MaxLimit
	}
	return q.Limit
}

// Store 远端推荐表的三种操作
type Store interface {
	// Select returns rows ordered by votesLove descending, newest id first on ties.
	Select(ctx context.Context, q Query) ([]models.Recommendation, error)
	// Insert writes text, source and category; the store assigns id and zero counters.
	Insert(ctx context.Context, rec models.Recommendation) (models.Recommendation, error)
	// Increment adds one to a single counter and returns the stored row.
	Increment(ctx context.Context, id int64, counter models.Counter) (models.Recommendation, error)
}
