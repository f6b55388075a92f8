package handlers

import (
	"net/http"
	"net/url"

	"todayiwatched/internal/feed"
	"todayiwatched/internal/middleware"
	"todayiwatched/internal/models"

	"github.com/gin-gonic/gin"
)

// Render adds the category registry and request path to obj before rendering name.
func Render(c *gin.Context, code int, name string, obj gin.H) {
	if obj == nil {
		obj = gin.H{}
	}

	obj["Categories"] = models.Categories()
	obj["CurrentPath"] = c.Request.URL.Path

	c.HTML(code, name, obj)
}

// RenderError shows message on the error page, or as plain text for HTMX requests.
func RenderError(c *gin.Context, code int, message string) {
	if isHTMX(c) {
		// 局部请求只返回提示，避免整页替换进目标元素
		c.String(code, message)
		return
	}
	Render(c, code, "error.html", gin.H{"Error": message})
}

func isHTMX(c *gin.Context) bool {
	return c.GetHeader("HX-Request") == "true"
}

// redirectHome sends plain form posts back to the feed, keeping the filter.
func redirectHome(c *gin.Context, s *feed.Session) {
	c.Redirect(http.StatusSeeOther, "/?category="+url.QueryEscape(s.Feed.Category()))
}

func currentSession(c *gin.Context) *feed.Session {
	s, ok := middleware.Visitor(c)
	if !ok {
		RenderError(c, http.StatusInternalServerError, "Session unavailable")
		c.Abort()
		return nil
	}
	return s
}

// appData collects everything app.html needs from the visitor's session.
func appData(s *feed.Session) gin.H {
	form := s.Form.Values()
	return gin.H{
		"Items":      s.Feed.Items(),
		"Category":   s.Feed.Category(),
		"Loading":    s.Feed.Loading(),
		"ShowForm":   s.Feed.ShowForm(),
		"Form":       form,
		"Submitting": s.Form.Submitting(),
		"Pending":    s.Votes.PendingIDs(),
		"Errors":     map[string]string{},
		"Alert":      "",
		"FetchAlert": "",
	}
}
