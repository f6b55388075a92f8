package middleware

import (
	"net/http"

	"todayiwatched/internal/feed"
	"todayiwatched/internal/logging"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// VisitorKey holds the visitor's *feed.Session in the gin context.
	VisitorKey   = "visitor"
	VisitorIDKey = "visitor_id"
)

// LoadVisitor 从 cookie 会话中取出访客 ID（没有则生成），并挂载对应的服务端状态
func LoadVisitor(reg *feed.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)

		id, _ := session.Get(VisitorIDKey).(string)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
			session.Set(VisitorIDKey, id)
			if err := session.Save(); err != nil {
				logging.Error().Err(err).Msg("failed to save visitor session")
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
		}

		c.Set(VisitorIDKey, id)
		c.Set(VisitorKey, reg.Get(id))
		c.Next()
	}
}

// Visitor returns the session loaded by LoadVisitor.
func Visitor(c *gin.Context) (*feed.Session, bool) {
	v, ok := c.Get(VisitorKey)
	if !ok {
		return nil, false
	}
	s, ok := v.(*feed.Session)
	return s, ok
}
