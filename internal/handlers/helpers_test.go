package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"todayiwatched/internal/feed"
	"todayiwatched/internal/middleware"
	"todayiwatched/internal/models"
	"todayiwatched/internal/services"
	"todayiwatched/internal/store"
	"todayiwatched/web"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

var errBoom = errors.New("boom")

// flakyStore 在内存存储上注入写入/读取失败
type flakyStore struct {
	*store.Memory
	selectErr    error
	insertErr    error
	incrementErr error
	// incrementEntered/incrementGate, when set, hold Increment until the gate closes.
	incrementEntered chan struct{}
	incrementGate    chan struct{}
}

func (s *flakyStore) Select(ctx context.Context, q store.Query) ([]models.Recommendation, error) {
	if s.selectErr != nil {
		return nil, s.selectErr
	}
	return s.Memory.Select(ctx, q)
}

func (s *flakyStore) Insert(ctx context.Context, rec models.Recommendation) (models.Recommendation, error) {
	if s.insertErr != nil {
		return models.Recommendation{}, s.insertErr
	}
	return s.Memory.Insert(ctx, rec)
}

func (s *flakyStore) Increment(ctx context.Context, id int64, c models.Counter) (models.Recommendation, error) {
	if s.incrementGate != nil {
		close(s.incrementEntered)
		<-s.incrementGate
	}
	if s.incrementErr != nil {
		return models.Recommendation{}, s.incrementErr
	}
	return s.Memory.Increment(ctx, id, c)
}

type stubLookup struct {
	posters map[string]string
	err     error
}

func (l stubLookup) Poster(_ context.Context, imdbID string) (string, error) {
	if l.err != nil {
		return "", l.err
	}
	if p, ok := l.posters[imdbID]; ok {
		return p, nil
	}
	return "", services.ErrPosterNotFound
}

func seedRows() []models.Recommendation {
	return []models.Recommendation{
		{ID: 1, Text: "The Shawshank Redemption", Source: "https://www.imdb.com/title/tt0111161/", Category: "top rated", VotesLove: 12, VotesUp: 3},
		{ID: 2, Text: "Donnie Darko", Source: "https://www.imdb.com/title/tt0246578/", Category: "cult classics", VotesLove: 7},
		{ID: 3, Text: "The Room", Source: "https://www.imdb.com/title/tt0368226/", Category: "cult classics", VotesLove: 2, VotesDown: 9},
	}
}

func newFlakyStore() *flakyStore {
	return &flakyStore{Memory: store.NewMemory(seedRows()...)}
}

func setupRouter(t *testing.T, st store.Store, lookup services.PosterLookup) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	reg, err := feed.NewRegistry(st, lookup, 16, time.Hour)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	renderer, err := web.Renderer()
	if err != nil {
		t.Fatalf("Renderer: %v", err)
	}

	r := gin.New()
	r.HTMLRender = renderer

	api := NewAPIHandler(st, lookup)
	r.GET("/api/categories", api.Categories)
	r.GET("/api/recommendations", api.List)
	r.POST("/api/recommendations", api.Create)
	r.POST("/api/recommendations/:id/votes/:counter", api.Vote)
	r.GET("/api/posters/:imdbID", api.Poster)

	pages := r.Group("/")
	pages.Use(sessions.Sessions("test_session", cookie.NewStore([]byte("test-secret"))), middleware.LoadVisitor(reg))
	feedHandler := NewFeedHandler()
	recHandler := NewRecommendationHandler()
	pages.GET("/", feedHandler.Index)
	pages.GET("/feed", feedHandler.List)
	pages.POST("/form/toggle", feedHandler.ToggleForm)
	pages.POST("/recommendations", recHandler.Create)
	pages.POST("/recommendations/:id/votes/:counter", recHandler.Vote)
	pages.GET("/recommendations/:id/poster", recHandler.Poster)
	return r
}

// browser keeps the session cookie between requests like a real visitor.
type browser struct {
	t       *testing.T
	engine  *gin.Engine
	cookies map[string]*http.Cookie
}

func newBrowser(t *testing.T, engine *gin.Engine) *browser {
	return &browser{t: t, engine: engine, cookies: make(map[string]*http.Cookie)}
}

func (b *browser) do(method, path string, form url.Values, htmx bool) *httptest.ResponseRecorder {
	b.t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	for _, c := range b.cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	b.engine.ServeHTTP(w, req)
	for _, c := range w.Result().Cookies() {
		b.cookies[c.Name] = c
	}
	return w
}

func (b *browser) get(path string) *httptest.ResponseRecorder {
	return b.do(http.MethodGet, path, nil, false)
}

func (b *browser) htmx(method, path string, form url.Values) *httptest.ResponseRecorder {
	return b.do(method, path, form, true)
}
