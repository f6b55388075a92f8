package utils

import (
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"todayiwatched/internal/logging"
	"todayiwatched/internal/metrics"
)

// NewBreaker 为外部 HTTP 服务创建熔断器
// 连续 5 次失败后打开，30 秒后进入半开状态。
// isSuccessful 决定哪些错误不计入失败（例如 404 或校验错误）。
func NewBreaker[T any](name string, isSuccessful func(error) bool) *gobreaker.CircuitBreaker[T] {
	return gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
		IsSuccessful: isSuccessful,
	})
}
