package handlers

import (
	"errors"
	"net/http"

	"todayiwatched/internal/feed"
	"todayiwatched/internal/logging"
	"todayiwatched/internal/metrics"
	"todayiwatched/internal/models"
	"todayiwatched/internal/services"
	"todayiwatched/internal/store"
	"todayiwatched/internal/utils"

	"github.com/gin-gonic/gin"
)

// APIHandler serves the JSON API. It talks to the store directly and keeps
// no per-visitor state.
type APIHandler struct {
	store  store.Store
	lookup services.PosterLookup
}

func NewAPIHandler(st store.Store, lookup services.PosterLookup) *APIHandler {
	return &APIHandler{store: st, lookup: lookup}
}

type apiError struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func abortJSON(c *gin.Context, code int, msg string) {
	c.AbortWithStatusJSON(code, apiError{Error: msg})
}

// Categories GET /api/categories
func (h *APIHandler) Categories(c *gin.Context) {
	c.JSON(http.StatusOK, models.Categories())
}

// List GET /api/recommendations?category=
func (h *APIHandler) List(c *gin.Context) {
	category, err := feed.ParseFilter(c.DefaultQuery("category", feed.FilterAll))
	if err != nil {
		abortJSON(c, http.StatusBadRequest, err.Error())
		return
	}

	items, err := h.store.Select(c.Request.Context(), store.Query{Category: category, Limit: store.MaxLimit})
	if err != nil {
		logging.Error().Err(err).Str("category", category).Msg("api: list recommendations")
		abortJSON(c, http.StatusBadGateway, feed.FetchAlert)
		return
	}
	if items == nil {
		items = []models.Recommendation{}
	}
	c.JSON(http.StatusOK, items)
}

// Create POST /api/recommendations
func (h *APIHandler) Create(c *gin.Context) {
	var in feed.Submission
	if err := c.ShouldBindJSON(&in); err != nil {
		abortJSON(c, http.StatusBadRequest, "request body must be a JSON object")
		return
	}

	in = in.Normalize()
	if err := feed.Validate(in); err != nil {
		var verr *feed.ValidationError
		if errors.As(err, &verr) {
			metrics.Submissions.WithLabelValues("invalid").Inc()
			c.AbortWithStatusJSON(http.StatusUnprocessableEntity, apiError{Error: "invalid recommendation", Fields: verr.Fields})
			return
		}
		abortJSON(c, http.StatusBadRequest, err.Error())
		return
	}

	rec, err := h.store.Insert(c.Request.Context(), models.Recommendation{
		Text:     in.Text,
		Source:   in.Source,
		Category: in.Category,
	})
	if err != nil {
		logging.Error().Err(err).Str("category", in.Category).Msg("api: insert recommendation")
		metrics.Submissions.WithLabelValues("failed").Inc()
		abortJSON(c, http.StatusBadGateway, feed.ErrWrite.Error())
		return
	}

	metrics.Submissions.WithLabelValues("created").Inc()
	c.JSON(http.StatusCreated, rec)
}

// Vote POST /api/recommendations/:id/votes/:counter
func (h *APIHandler) Vote(c *gin.Context) {
	id, err := utils.ParseID(c.Param("id"))
	if err != nil {
		abortJSON(c, http.StatusBadRequest, "invalid recommendation id")
		return
	}
	counter, err := models.ParseCounter(c.Param("counter"))
	if err != nil {
		abortJSON(c, http.StatusBadRequest, err.Error())
		return
	}

	rec, err := h.store.Increment(c.Request.Context(), id, counter)
	switch {
	case err == nil:
		metrics.Votes.WithLabelValues(string(counter), "ok").Inc()
		c.JSON(http.StatusOK, rec)
	case errors.Is(err, store.ErrNotFound):
		abortJSON(c, http.StatusNotFound, "recommendation not found")
	case errors.Is(err, store.ErrConflict):
		metrics.Votes.WithLabelValues(string(counter), "conflict").Inc()
		abortJSON(c, http.StatusConflict, "concurrent vote, please retry")
	default:
		logging.Error().Err(err).Int64("id", id).Str("counter", string(counter)).Msg("api: record vote")
		metrics.Votes.WithLabelValues(string(counter), "failed").Inc()
		abortJSON(c, http.StatusBadGateway, feed.ErrWrite.Error())
	}
}

// Poster GET /api/posters/:imdbID
func (h *APIHandler) Poster(c *gin.Context) {
	imdbID := services.ExtractIMDbID(c.Param("imdbID"))
	if imdbID == "" || imdbID != c.Param("imdbID") {
		abortJSON(c, http.StatusBadRequest, "invalid IMDb id")
		return
	}

	poster, err := h.lookup.Poster(c.Request.Context(), imdbID)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"imdbID": imdbID, "poster": poster})
	case errors.Is(err, services.ErrPosterNotFound):
		abortJSON(c, http.StatusNotFound, "poster not found")
	default:
		logging.Warn().Err(err).Str("imdb_id", imdbID).Msg("api: poster lookup")
		abortJSON(c, http.StatusBadGateway, "poster lookup failed")
	}
}
