package handlers

import (
	"errors"
	"net/http"

	"todayiwatched/internal/feed"
	"todayiwatched/internal/models"
	"todayiwatched/internal/store"
	"todayiwatched/internal/utils"

	"github.com/gin-gonic/gin"
)

const (
	writeFailedAlert = "Could not save your recommendation. Please try again."
	voteFailedAlert  = "Could not record your vote. Please try again."
	voteBusyAlert    = "Your vote is still being counted."
)

type RecommendationHandler struct{}

func NewRecommendationHandler() *RecommendationHandler {
	return &RecommendationHandler{}
}

// Create 提交新的推荐
func (h *RecommendationHandler) Create(c *gin.Context) {
	s := currentSession(c)
	if s == nil {
		return
	}

	var in feed.Submission
	if err := c.ShouldBind(&in); err != nil {
		RenderError(c, http.StatusBadRequest, "Invalid form data")
		return
	}

	_, err := s.Form.Submit(c.Request.Context(), in)
	if err == nil && !isHTMX(c) {
		redirectHome(c, s)
		return
	}

	data := appData(s)
	code := http.StatusOK

	var verr *feed.ValidationError
	switch {
	case err == nil:
	case errors.As(err, &verr):
		code = http.StatusUnprocessableEntity
		data["Errors"] = verr.Fields
	case errors.Is(err, feed.ErrSubmitInFlight):
		code = http.StatusConflict
		data["Alert"] = "Your recommendation is still being posted."
	default:
		code = http.StatusBadGateway
		data["Alert"] = writeFailedAlert
	}

	if isHTMX(c) {
		Render(c, code, "partials/app.html", data)
		return
	}
	Render(c, code, "index.html", data)
}

// Vote 给某条推荐的某个计数 +1
func (h *RecommendationHandler) Vote(c *gin.Context) {
	s := currentSession(c)
	if s == nil {
		return
	}

	id, err := utils.ParseID(c.Param("id"))
	if err != nil {
		RenderError(c, http.StatusBadRequest, "Invalid recommendation id")
		return
	}
	counter, err := models.ParseCounter(c.Param("counter"))
	if err != nil {
		RenderError(c, http.StatusBadRequest, "Unknown vote type")
		return
	}

	rec, err := s.Votes.Vote(c.Request.Context(), id, counter)
	if err == nil && !isHTMX(c) {
		redirectHome(c, s)
		return
	}

	code := http.StatusOK
	pending := false
	alert := ""
	switch {
	case err == nil:
	case errors.Is(err, store.ErrNotFound):
		RenderError(c, http.StatusNotFound, "Recommendation not found")
		return
	case errors.Is(err, feed.ErrVoteInFlight):
		code, pending, alert = http.StatusConflict, true, voteBusyAlert
	default:
		code, alert = http.StatusBadGateway, voteFailedAlert
	}

	if err != nil {
		// 失败时展示列表中原有的数据
		var ok bool
		if rec, ok = s.Feed.Item(id); !ok {
			RenderError(c, code, alert)
			return
		}
	}

	if !isHTMX(c) {
		RenderError(c, code, alert)
		return
	}
	Render(c, code, "partials/item.html", gin.H{"Item": rec, "Pending": pending, "Alert": alert})
}

// Poster 返回海报片段，没有海报时为空
func (h *RecommendationHandler) Poster(c *gin.Context) {
	s := currentSession(c)
	if s == nil {
		return
	}

	id, err := utils.ParseID(c.Param("id"))
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	poster, err := s.Feed.Poster(c.Request.Context(), id)
	if errors.Is(err, feed.ErrItemNotFound) {
		c.Status(http.StatusNotFound)
		return
	}

	rec, _ := s.Feed.Item(id)
	Render(c, http.StatusOK, "partials/poster.html", gin.H{"Poster": poster, "Text": rec.Text})
}
