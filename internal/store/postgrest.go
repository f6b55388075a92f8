package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"todayiwatched/internal/metrics"
	"todayiwatched/internal/models"
	"todayiwatched/internal/utils"
)

const maxResponseBytes = 8 << 20

// APIError PostgREST 返回的错误体
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("postgrest %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("postgrest %d: %s", e.Status, e.Message)
}

// PostgREST talks to a Supabase-style REST endpoint at {baseURL}/rest/v1/recommendations.
type PostgREST struct {
	baseURL string
	apiKey  string
	table   string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
}

func NewPostgREST(baseURL, apiKey string, timeout time.Duration) *PostgREST {
	return &PostgREST{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		table:   "recommendations",
		client:  &http.Client{Timeout: timeout},
		breaker: utils.NewBreaker[[]byte]("postgrest", postgrestSuccessful),
	}
}

// 4xx 属于调用方问题，不计入熔断
func postgrestSuccessful(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError
}

type insertRow struct {
	Text     string `json:"text"`
	Source   string `json:"source"`
	Category string `json:"category"`
}

func (s *PostgREST) Select(ctx context.Context, q Query) ([]models.Recommendation, error) {
	params := url.Values{}
	params.Set("select", "*")
	if q.Category != "" {
		params.Set("category", "eq."+q.Category)
	}
	params.Set("order", models.CounterLove.Column()+".desc,id.desc")
	params.Set("limit", strconv.Itoa(q.limit()))

	var rows []models.Recommendation
	err := s.call(ctx, "select", http.MethodGet, params, nil, &rows)
	if err != nil {
		return nil, fmt.Errorf("select recommendations: %w", err)
	}
	return rows, nil
}

func (s *PostgREST) Insert(ctx context.Context, rec models.Recommendation) (models.Recommendation, error) {
	body := []insertRow{{Text: rec.Text, Source: rec.Source, Category: rec.Category}}

	var rows []models.Recommendation
	if err := s.call(ctx, "insert", http.MethodPost, nil, body, &rows); err != nil {
		return models.Recommendation{}, fmt.Errorf("insert recommendation: %w", err)
	}
	if len(rows) == 0 {
		return models.Recommendation{}, errors.New("insert recommendation: empty representation")
	}
	return rows[0], nil
}

// Increment reads the row and writes the counter back with the old value as a
// guard, so a vote that lost a race returns ErrConflict instead of being lost.
func (s *PostgREST) Increment(ctx context.Context, id int64, counter models.Counter) (models.Recommendation, error) {
	if !counter.Valid() {
		return models.Recommendation{}, fmt.Errorf("%w: %q", models.ErrUnknownCounter, counter)
	}

	current, err := s.get(ctx, id)
	if err != nil {
		return models.Recommendation{}, err
	}
	old := counter.Of(current)

	params := url.Values{}
	params.Set("id", "eq."+strconv.FormatInt(id, 10))
	params.Set(counter.Column(), "eq."+strconv.Itoa(old))
	body := map[string]int{counter.Column(): old + 1}

	var rows []models.Recommendation
	if err := s.call(ctx, "increment", http.MethodPatch, params, body, &rows); err != nil {
		return models.Recommendation{}, fmt.Errorf("increment %s: %w", counter, err)
	}
	if len(rows) == 0 {
		return models.Recommendation{}, ErrConflict
	}
	return rows[0], nil
}

func (s *PostgREST) get(ctx context.Context, id int64) (models.Recommendation, error) {
	params := url.Values{}
	params.Set("select", "*")
	params.Set("id", "eq."+strconv.FormatInt(id, 10))

	var rows []models.Recommendation
	if err := s.call(ctx, "get", http.MethodGet, params, nil, &rows); err != nil {
		return models.Recommendation{}, fmt.Errorf("get recommendation %d: %w", id, err)
	}
	if len(rows) == 0 {
		return models.Recommendation{}, ErrNotFound
	}
	return rows[0], nil
}

func (s *PostgREST) call(ctx context.Context, op, method string, params url.Values, body, out any) error {
	data, err := s.breaker.Execute(func() ([]byte, error) {
		return s.do(ctx, method, params, body)
	})
	metrics.StoreRequests.WithLabelValues("postgrest", op, metrics.Result(err)).Inc()
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (s *PostgREST) endpoint(params url.Values) string {
	u := s.baseURL + "/rest/v1/" + s.table
	if len(params) > 0 {
		// PostgREST 过滤值里的空格需要 %20
		u += "?" + strings.ReplaceAll(params.Encode(), "+", "%20")
	}
	return u
}

func (s *PostgREST) do(ctx context.Context, method string, params url.Values, body any) ([]byte, error) {
	var payload io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		payload = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.endpoint(params), payload)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("apikey", s.apiKey)
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Prefer", "return=representation")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= http.StatusMultipleChoices {
		apiErr := &APIError{Status: resp.StatusCode}
		_ = json.Unmarshal(data, apiErr)
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return nil, apiErr
	}
	return data, nil
}
