package router

import (
	"net/http"

	"todayiwatched/internal/feed"
	"todayiwatched/internal/handlers"
	"todayiwatched/internal/middleware"
	"todayiwatched/internal/services"
	"todayiwatched/internal/store"
	"todayiwatched/web"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const sessionName = "todayiwatched_session"

// Options 构建 gin 引擎所需的依赖
type Options struct {
	Store         store.Store
	Backend       string
	Lookup        services.PosterLookup
	Registry      *feed.Registry
	SessionSecret string
}

// NewEngine wires middleware, templates, static assets and routes.
func NewEngine(opts Options) (*gin.Engine, error) {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())

	renderer, err := web.Renderer()
	if err != nil {
		return nil, err
	}
	r.HTMLRender = renderer
	r.StaticFS("/static", http.FS(web.Static()))

	health := handlers.NewHealthHandler(opts.Backend)
	r.GET("/healthz", health.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := handlers.NewAPIHandler(opts.Store, opts.Lookup)
	RegisterAPIRoutes(r.Group("/api"), api)

	// 页面路由需要访客会话
	pages := r.Group("/")
	pages.Use(
		sessions.Sessions(sessionName, cookie.NewStore([]byte(opts.SessionSecret))),
		middleware.LoadVisitor(opts.Registry),
	)
	RegisterRoutes(pages)

	return r, nil
}

func RegisterRoutes(r *gin.RouterGroup) {
	feedHandler := handlers.NewFeedHandler()
	recHandler := handlers.NewRecommendationHandler()

	r.GET("/", feedHandler.Index)                                  // 首页
	r.GET("/feed", feedHandler.List)                               // 分类筛选
	r.POST("/form/toggle", feedHandler.ToggleForm)                 // 打开/关闭分享表单
	r.POST("/recommendations", recHandler.Create)                  // 提交推荐
	r.POST("/recommendations/:id/votes/:counter", recHandler.Vote) // 投票
	r.GET("/recommendations/:id/poster", recHandler.Poster)        // 海报片段
}

func RegisterAPIRoutes(r *gin.RouterGroup, h *handlers.APIHandler) {
	r.GET("/categories", h.Categories)
	r.GET("/recommendations", h.List)
	r.POST("/recommendations", h.Create)
	r.POST("/recommendations/:id/votes/:counter", h.Vote)
	r.GET("/posters/:imdbID", h.Poster)
}
