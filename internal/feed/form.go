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

// Form 分享推荐的表单，同一时间只允许一次提交
type Form struct {
	store store.Store
	feed  *Controller

	mu         sync.Mutex
	submitting bool
	values     Submission
}

func NewForm(st store.Store, feed *Controller) *Form {
	return &Form{store: st, feed: feed}
}

// Values returns what the visitor last typed; cleared after a successful submit.
func (f *Form) Values() Submission {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values
}

// Submitting reports whether an insert is in flight; inputs render disabled meanwhile.
func (f *Form) Submitting() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitting
}

// Submit validates in and inserts it. On success the new row is prepended to
// the feed, the fields are cleared and the form closes. Validation failures
// return *ValidationError without touching the store; store failures return
// an error wrapping ErrWrite and leave the form as it was.
func (f *Form) Submit(ctx context.Context, in Submission) (models.Recommendation, error) {
	in = in.Normalize()

	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		metrics.Submissions.WithLabelValues("busy").Inc()
		return models.Recommendation{}, ErrSubmitInFlight
	}
	f.values = in
	if err := Validate(in); err != nil {
		f.mu.Unlock()
		metrics.Submissions.WithLabelValues("invalid").Inc()
		return models.Recommendation{}, err
	}
	f.submitting = true
	f.mu.Unlock()

	rec, err := f.store.Insert(ctx, models.Recommendation{
		Text:     in.Text,
		Source:   in.Source,
		Category: in.Category,
	})

	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitting = false

	if err != nil {
		logging.Error().Err(err).Str("category", in.Category).Msg("failed to submit recommendation")
		metrics.Submissions.WithLabelValues("failed").Inc()
		return models.Recommendation{}, fmt.Errorf("%w: %w", ErrWrite, err)
	}

	f.values = Submission{}
	f.feed.Prepend(rec)
	f.feed.SetShowForm(false)

	metrics.Submissions.WithLabelValues("created").Inc()
	logging.Info().Int64("id", rec.ID).Str("category", rec.Category).Msg("recommendation created")
	return rec, nil
}
