package feed

import (
	"context"
	"fmt"
	"sync"

	"todayiwatched/internal/logging"
	"todayiwatched/internal/metrics"
	"todayiwatched/internal/models"
	"todayiwatched/internal/store"
)

// Voter 投票控制，每条推荐同一时间最多一个未完成的投票
type Voter struct {
	store store.Store
	feed  *Controller

	mu      sync.Mutex
	pending map[int64]bool
}

func NewVoter(st store.Store, feed *Controller) *Voter {
	return &Voter{store: st, feed: feed, pending: make(map[int64]bool)}
}

// Pending reports whether a vote for id is in flight.
func (v *Voter) Pending(id int64) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.pending[id]
}

// PendingIDs returns the items with a vote in flight.
func (v *Voter) PendingIDs() map[int64]bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make(map[int64]bool, len(v.pending))
	for id := range v.pending {
		out[id] = true
	}
	return out
}

// Vote increments counter on the row and replaces the feed's copy with the
// row the store returns.
func (v *Voter) Vote(ctx context.Context, id int64, counter models.Counter) (models.Recommendation, error) {
	if !counter.Valid() {
		return models.Recommendation{}, fmt.Errorf("%w: %q", models.ErrUnknownCounter, counter)
	}

	v.mu.Lock()
	if v.pending[id] {
		v.mu.Unlock()
		metrics.Votes.WithLabelValues(string(counter), "busy").Inc()
		return models.Recommendation{}, ErrVoteInFlight
	}
	v.pending[id] = true
	v.mu.Unlock()

	defer func() {
		v.mu.Lock()
		delete(v.pending, id)
		v.mu.Unlock()
	}()

	rec, err := v.store.Increment(ctx, id, counter)
	if err != nil {
		logging.Error().Err(err).Int64("id", id).Str("counter", string(counter)).Msg("failed to record vote")
		metrics.Votes.WithLabelValues(string(counter), "failed").Inc()
		return models.Recommendation{}, fmt.Errorf("%w: %w", ErrWrite, err)
	}

	v.feed.Replace(rec)
	metrics.Votes.WithLabelValues(string(counter), "ok").Inc()
	return rec, nil
}
