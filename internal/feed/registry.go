package feed

import (
	"sync"
	"time"

	"todayiwatched/internal/services"
	"todayiwatched/internal/store"
	"todayiwatched/internal/utils"
)

// Session bundles one visitor's feed, form and vote state.
type Session struct {
	Feed  *Controller
	Form  *Form
	Votes *Voter
}

func NewSession(st store.Store, lookup services.PosterLookup) *Session {
	ctrl := NewController(st, lookup)
	return &Session{
		Feed:  ctrl,
		Form:  NewForm(st, ctrl),
		Votes: NewVoter(st, ctrl),
	}
}

// Registry 按访客 ID 保存会话，LRU 淘汰 + 空闲过期
type Registry struct {
	store  store.Store
	lookup services.PosterLookup
	ttl    time.Duration

	mu    sync.Mutex
	cache *utils.Cache[*Session]
}

func NewRegistry(st store.Store, lookup services.PosterLookup, size int, ttl time.Duration) (*Registry, error) {
	cache, err := utils.NewCache[*Session](size)
	if err != nil {
		return nil, err
	}
	return &Registry{store: st, lookup: lookup, ttl: ttl, cache: cache}, nil
}

// Get returns the visitor's session, creating it on first use. Each access
// extends the idle timeout.
func (r *Registry) Get(visitorID string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.cache.Get(visitorID)
	if !ok {
		s = NewSession(r.store, r.lookup)
	}
	r.cache.Set(visitorID, s, r.ttl)
	return s
}
