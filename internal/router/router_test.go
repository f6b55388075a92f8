package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"todayiwatched/internal/feed"
	"todayiwatched/internal/models"
	"todayiwatched/internal/services"
	"todayiwatched/internal/store"

	"github.com/gin-gonic/gin"
)

type noPosters struct{}

func (noPosters) Poster(context.Context, string) (string, error) {
	return "", services.ErrPosterNotFound
}

func newTestEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := store.NewMemory(models.Recommendation{ID: 1, Text: "Paddington 2", Source: "https://www.imdb.com/title/tt4468740/", Category: "top rated", VotesLove: 4})
	reg, err := feed.NewRegistry(st, noPosters{}, 8, time.Hour)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	r, err := NewEngine(Options{
		Store:         st,
		Backend:       "memory",
		Lookup:        noPosters{},
		Registry:      reg,
		SessionSecret: "router-test-secret",
	})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return r
}

func TestRoutes(t *testing.T) {
	r := newTestEngine(t)

	tests := []struct {
		method, path string
		code         int
		contains     string
	}{
		{http.MethodGet, "/", http.StatusOK, "Paddington 2"},
		{http.MethodGet, "/healthz", http.StatusOK, `"store":"memory"`},
		{http.MethodGet, "/api/categories", http.StatusOK, "recently released"},
		{http.MethodGet, "/api/recommendations", http.StatusOK, "Paddington 2"},
		{http.MethodGet, "/static/style.css", http.StatusOK, ".recommendation"},
		{http.MethodGet, "/metrics", http.StatusOK, "go_goroutines"},
		{http.MethodGet, "/nope", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != tt.code {
			t.Errorf("%s %s: expected %d, got %d", tt.method, tt.path, tt.code, w.Code)
			continue
		}
		if tt.contains != "" && !strings.Contains(w.Body.String(), tt.contains) {
			t.Errorf("%s %s: body missing %q", tt.method, tt.path, tt.contains)
		}
	}
}

func TestPagesSetVisitorCookie(t *testing.T) {
	r := newTestEngine(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	found := false
	for _, c := range w.Result().Cookies() {
		if c.Name == sessionName {
			found = true
		}
	}
	if !found {
		t.Error("expected visitor session cookie")
	}
}

func TestAPIDoesNotSetCookie(t *testing.T) {
	r := newTestEngine(t)
	req := httptest.NewRequest(http.MethodGet, "/api/categories", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if len(w.Result().Cookies()) != 0 {
		t.Error("API should be stateless")
	}
}
