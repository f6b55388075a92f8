package middleware

import (
	"time"

	"todayiwatched/internal/logging"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RequestLogger 用 zerolog 记录每个请求
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path += "?" + raw
		}

		c.Next()

		status := c.Writer.Status()
		var event *zerolog.Event
		switch {
		case status >= 500:
			event = logging.Error()
		case status >= 400:
			event = logging.Warn()
		default:
			event = logging.Debug()
		}
		if len(c.Errors) > 0 {
			event = event.Str("errors", c.Errors.ByType(gin.ErrorTypePrivate).String())
		}
		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Bool("htmx", c.GetHeader("HX-Request") == "true").
			Msg("request")
	}
}
