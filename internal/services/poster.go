package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"todayiwatched/internal/metrics"
	"todayiwatched/internal/utils"
)

// ErrPosterNotFound means the lookup answered but has no image for the id.
var ErrPosterNotFound = errors.New("poster not found")

var imdbIDPattern = regexp.MustCompile(`tt\d+`)

// ExtractIMDbID 从链接中提取 IMDb 编号（tt + 数字），没有则返回空串
func ExtractIMDbID(source string) string {
	return imdbIDPattern.FindString(source)
}

// PosterLookup resolves an IMDb id to a poster image URL.
type PosterLookup interface {
	Poster(ctx context.Context, imdbID string) (string, error)
}

// omdbResponse OMDb 响应里我们关心的字段
type omdbResponse struct {
	Poster   string `json:"Poster"`
	Response string `json:"Response"`
	Error    string `json:"Error"`
}

// OMDbService 海报查询服务
type OMDbService struct {
	baseURL string
	apiKey  string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[string]
}

// NewOMDbService 创建 OMDb 查询服务
func NewOMDbService(baseURL, apiKey string, timeout time.Duration) *OMDbService {
	return &OMDbService{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
		breaker: utils.NewBreaker[string]("omdb", func(err error) bool {
			return err == nil || errors.Is(err, ErrPosterNotFound) || errors.Is(err, context.Canceled)
		}),
	}
}

// Poster GET {base}?i=<imdbID>&apikey=<key>
func (s *OMDbService) Poster(ctx context.Context, imdbID string) (string, error) {
	if imdbID == "" {
		return "", ErrPosterNotFound
	}

	poster, err := s.breaker.Execute(func() (string, error) {
		return s.fetch(ctx, imdbID)
	})
	switch {
	case err == nil:
		metrics.PosterLookups.WithLabelValues("found").Inc()
	case errors.Is(err, ErrPosterNotFound):
		metrics.PosterLookups.WithLabelValues("not_found").Inc()
	default:
		metrics.PosterLookups.WithLabelValues("error").Inc()
	}
	return poster, err
}

func (s *OMDbService) fetch(ctx context.Context, imdbID string) (string, error) {
	u, err := url.Parse(s.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid OMDb base URL: %w", err)
	}
	q := u.Query()
	q.Set("i", imdbID)
	q.Set("apikey", s.apiKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", ErrPosterNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("omdb status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var data omdbResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if strings.EqualFold(data.Response, "False") || data.Poster == "" || data.Poster == "N/A" {
		return "", ErrPosterNotFound
	}
	return data.Poster, nil
}
