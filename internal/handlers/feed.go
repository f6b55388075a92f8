package handlers

import (
	"errors"
	"net/http"

	"todayiwatched/internal/feed"
	"todayiwatched/internal/logging"
	"todayiwatched/internal/models"

	"github.com/gin-gonic/gin"
)

type FeedHandler struct{}

func NewFeedHandler() *FeedHandler {
	return &FeedHandler{}
}

// Index 首页，按 category 参数加载列表
func (h *FeedHandler) Index(c *gin.Context) {
	s := currentSession(c)
	if s == nil {
		return
	}

	category := c.DefaultQuery("category", feed.FilterAll)
	_, err := s.Feed.Load(c.Request.Context(), category)
	if errors.Is(err, models.ErrUnknownCategory) {
		RenderError(c, http.StatusBadRequest, "Unknown category")
		return
	}

	data := appData(s)
	if err != nil && !errors.Is(err, feed.ErrStale) {
		logging.Warn().Err(err).Str("category", category).Msg("feed load failed")
		data["FetchAlert"] = feed.FetchAlert
	}
	Render(c, http.StatusOK, "index.html", data)
}

// List 切换分类，只在分类变化时重新加载
func (h *FeedHandler) List(c *gin.Context) {
	s := currentSession(c)
	if s == nil {
		return
	}

	category := c.DefaultQuery("category", feed.FilterAll)
	_, err := s.Feed.SelectCategory(c.Request.Context(), category)
	if errors.Is(err, models.ErrUnknownCategory) {
		RenderError(c, http.StatusBadRequest, "Unknown category")
		return
	}

	if errors.Is(err, feed.ErrStale) {
		// 已有更新的请求在途，本次响应不应覆盖它
		c.Status(http.StatusNoContent)
		return
	}

	data := appData(s)
	if err != nil {
		logging.Warn().Err(err).Str("category", category).Msg("feed load failed")
		data["FetchAlert"] = feed.FetchAlert
	}

	if !isHTMX(c) {
		Render(c, http.StatusOK, "index.html", data)
		return
	}
	Render(c, http.StatusOK, "partials/feed.html", data)
}

// ToggleForm opens or closes the share form.
func (h *FeedHandler) ToggleForm(c *gin.Context) {
	s := currentSession(c)
	if s == nil {
		return
	}

	s.Feed.ToggleForm()
	if !isHTMX(c) {
		redirectHome(c, s)
		return
	}
	Render(c, http.StatusOK, "partials/app.html", appData(s))
}
