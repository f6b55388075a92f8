// Package feed holds the per-visitor state of the recommendation feed: the
// loaded list, the submission form and the vote guards.
package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"todayiwatched/internal/logging"
	"todayiwatched/internal/metrics"
	"todayiwatched/internal/models"
	"todayiwatched/internal/services"
	"todayiwatched/internal/store"
)

// FilterAll shows every category.
const FilterAll = "all"

// FetchAlert is shown to the visitor when a list load fails.
const FetchAlert = "There was a problem getting data"

var (
	// ErrFetch wraps a failed list load; the previous list stays in place.
	ErrFetch = errors.New("failed to fetch recommendations")
	// ErrStale 该次加载已被更新的请求取代，结果被丢弃
	ErrStale = errors.New("feed load superseded by a newer request")
	// ErrWrite wraps a failed insert or vote.
	ErrWrite          = errors.New("could not save to the recommendation store")
	ErrSubmitInFlight = errors.New("a submission is already in progress")
	ErrVoteInFlight   = errors.New("a vote for this recommendation is already in progress")
	ErrItemNotFound   = errors.New("recommendation is not in the current feed")
)

type posterState struct {
	source string
	url    string
}

// Controller 当前访客看到的推荐列表
type Controller struct {
	store  store.Store
	lookup services.PosterLookup

	mu         sync.Mutex
	category   string // last requested filter
	applied    string // filter the items were loaded with
	items      []models.Recommendation
	loading    bool
	loaded     bool
	generation uint64
	showForm   bool
	posters    map[int64]posterState
}

func NewController(st store.Store, lookup services.PosterLookup) *Controller {
	return &Controller{
		store:    st,
		lookup:   lookup,
		category: FilterAll,
		applied:  FilterAll,
		posters:  make(map[int64]posterState),
	}
}

// ParseFilter maps a filter to the store's category ("" for all).
func ParseFilter(filter string) (string, error) {
	if filter == "" || filter == FilterAll {
		return "", nil
	}
	if _, err := models.LookupCategory(filter); err != nil {
		return "", err
	}
	return filter, nil
}

// Load fetches the list for filter and replaces the in-memory copy. Only the
// most recently issued load may apply its result; older ones return ErrStale.
func (c *Controller) Load(ctx context.Context, filter string) ([]models.Recommendation, error) {
	if filter == "" {
		filter = FilterAll
	}
	category, err := ParseFilter(filter)
	if err != nil {
		return c.Items(), err
	}

	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.category = filter
	c.loading = true
	c.mu.Unlock()

	rows, err := c.store.Select(ctx, store.Query{Category: category, Limit: store.MaxLimit})

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		metrics.StaleLoads.Inc()
		logging.Debug().Str("category", filter).Uint64("generation", gen).Msg("dropping stale feed load")
		return c.snapshot(), ErrStale
	}

	c.loading = false
	if err != nil {
		// 列表没变，筛选也退回到列表实际对应的分类，重试时会重新请求
		c.category = c.applied
		logging.Error().Err(err).Str("category", filter).Msg("failed to load feed")
		return c.snapshot(), fmt.Errorf("%w: %w", ErrFetch, err)
	}

	c.items = rows
	c.applied = filter
	c.loaded = true
	c.posters = make(map[int64]posterState)
	return c.snapshot(), nil
}

// SelectCategory loads only when the filter differs from the current one or
// nothing has been loaded yet.
func (c *Controller) SelectCategory(ctx context.Context, filter string) ([]models.Recommendation, error) {
	if filter == "" {
		filter = FilterAll
	}
	c.mu.Lock()
	if c.loaded && !c.loading && c.applied == filter {
		items := c.snapshot()
		c.mu.Unlock()
		return items, nil
	}
	c.mu.Unlock()
	return c.Load(ctx, filter)
}

func (c *Controller) Items() []models.Recommendation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

func (c *Controller) Item(id int64) (models.Recommendation, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.find(id)
}

func (c *Controller) Category() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.category
}

func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

func (c *Controller) ShowForm() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.showForm
}

func (c *Controller) SetShowForm(show bool) {
	c.mu.Lock()
	c.showForm = show
	c.mu.Unlock()
}

// ToggleForm flips form visibility and returns the new state.
func (c *Controller) ToggleForm() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.showForm = !c.showForm
	return c.showForm
}

// Prepend puts a freshly created row at the head of the list.
func (c *Controller) Prepend(rec models.Recommendation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	items := make([]models.Recommendation, 0, len(c.items)+1)
	items = append(items, rec)
	c.items = append(items, c.items...)
}

// Replace swaps in the server's copy of a row. It reports false when the row
// is no longer in the list.
func (c *Controller) Replace(rec models.Recommendation) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].ID == rec.ID {
			c.items[i] = rec
			return true
		}
	}
	return false
}

// Poster returns the poster URL for an item in the list, looking it up at most
// once per item and source until the next Load. Sources without an IMDb id
// never trigger a lookup, and lookup failures yield "".
func (c *Controller) Poster(ctx context.Context, id int64) (string, error) {
	c.mu.Lock()
	item, ok := c.find(id)
	if !ok {
		c.mu.Unlock()
		return "", ErrItemNotFound
	}
	imdbID := services.ExtractIMDbID(item.Source)
	if imdbID == "" || c.lookup == nil {
		c.mu.Unlock()
		return "", nil
	}
	if st, ok := c.posters[id]; ok && st.source == item.Source {
		c.mu.Unlock()
		return st.url, nil
	}
	gen := c.generation
	c.mu.Unlock()

	poster, err := c.lookup.Poster(ctx, imdbID)
	if err != nil && !errors.Is(err, services.ErrPosterNotFound) {
		// 查询失败不缓存，下次渲染再试
		logging.Debug().Err(err).Str("imdb_id", imdbID).Msg("poster lookup failed")
		return "", nil
	}

	c.mu.Lock()
	if gen == c.generation {
		c.posters[id] = posterState{source: item.Source, url: poster}
	}
	c.mu.Unlock()
	return poster, nil
}

func (c *Controller) find(id int64) (models.Recommendation, bool) {
	for _, r := range c.items {
		if r.ID == id {
			return r, true
		}
	}
	return models.Recommendation{}, false
}

func (c *Controller) snapshot() []models.Recommendation {
	out := make([]models.Recommendation, len(c.items))
	copy(out, c.items)
	return out
}
