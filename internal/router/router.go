package router

import (
	"net/http"
	"strings"

	"github.com/dinelog/internal/handler"
	"github.com/dinelog/internal/logging"
	"github.com/dinelog/internal/view"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const sessionName = "dinelog_session"

// Options 描述路由层自身需要的配置。
type Options struct {
	SessionSecret  string
	AllowedOrigins []string
	// StaticDir 非空时在 StaticURLPath 下直接提供本地上传的文件。
	StaticDir     string
	StaticURLPath string
	Logger        *zap.Logger
}

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(api *handler.API, opts Options) (*gin.Engine, error) {
	if api == nil {
		return nil, errors.New("api handler is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if strings.TrimSpace(opts.SessionSecret) == "" {
		return nil, errors.New("session secret is required")
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logging.RequestLogger(logger))
	if corsMiddleware := buildCORS(opts.AllowedOrigins); corsMiddleware != nil {
		r.Use(corsMiddleware)
	}

	// 会话只保存博客分页游标，不含身份信息
	store := cookie.NewStore([]byte(opts.SessionSecret))
	store.Options(sessions.Options{Path: "/", MaxAge: 24 * 60 * 60, HttpOnly: true, SameSite: http.SameSiteLaxMode})
	r.Use(sessions.Sessions(sessionName, store))
	r.Use(api.LocaleMiddleware())

	tmpl, err := view.Load()
	if err != nil {
		return nil, errors.Wrap(err, "load templates")
	}
	r.SetHTMLTemplate(tmpl)

	if opts.StaticDir != "" && opts.StaticURLPath != "" {
		r.Static(opts.StaticURLPath, opts.StaticDir)
	}

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	// 公开页面
	r.GET("/blogs", api.ShowBlogList)
	r.GET("/blogs/:id", api.ShowBlogPost)

	public := r.Group("/api")
	{
		public.GET("/restaurants", api.SearchRestaurants)
		public.GET("/restaurants/:id", api.GetRestaurant)
		public.GET("/restaurants/:id/reviews", api.ListRestaurantReviews)
		public.GET("/reviews/:id", api.GetReview)
		public.GET("/users/:id", api.GetUserProfile)
		public.GET("/users/:id/reviews", api.ListUserReviews)
		public.GET("/blogs", api.ListBlogs)
		public.GET("/promotions", api.ListActivePromotions)
		public.POST("/auth/token", api.IssueToken)
	}

	// 需要登录的接口
	user := r.Group("/api")
	user.Use(api.RequireUser())
	{
		user.POST("/auth/session", api.CreateSession)
		user.GET("/me", api.GetMe)
		user.PUT("/me", api.UpdateMe)
		user.POST("/reviews", api.SubmitReview)
		user.POST("/uploads/review-images", api.UploadReviewImage)

		user.GET("/me/favorites", api.ListFavorites)
		user.PUT("/me/favorites", api.ReorderFavorites)
		user.POST("/me/favorites/:restaurantId", api.ToggleFavorite)

		user.GET("/me/drafts", api.ListDrafts)
		user.POST("/me/drafts", api.SaveDraft)
		user.GET("/me/drafts/:id", api.GetDraft)
		user.DELETE("/me/drafts/:id", api.DeleteDraft)
	}

	// 后台管理路由
	admin := r.Group("/api/admin")
	admin.Use(api.RequireUser(), api.RequireAdmin())
	{
		admin.GET("/restaurants", api.AdminListRestaurants)
		admin.POST("/restaurants", api.AdminCreateRestaurant)
		admin.GET("/restaurants/:id", api.GetRestaurant)
		admin.PUT("/restaurants/:id", api.AdminUpdateRestaurant)
		admin.DELETE("/restaurants/:id", api.AdminDeleteRestaurant)
		admin.POST("/restaurants/:id/photos", api.AdminUploadRestaurantPhoto)

		admin.GET("/blogs", api.AdminListBlogs)
		admin.POST("/blogs", api.AdminCreateBlog)
		admin.POST("/blogs/covers", api.AdminUploadBlogCover)
		admin.PUT("/blogs/:id", api.AdminUpdateBlog)
		admin.DELETE("/blogs/:id", api.AdminDeleteBlog)
		admin.POST("/blogs/:id/review", api.AdminReviewBlog)

		admin.GET("/promotions", api.AdminListPromotions)
		admin.POST("/promotions", api.AdminCreatePromotion)
		admin.PUT("/promotions/:id", api.AdminUpdatePromotion)
		admin.DELETE("/promotions/:id", api.AdminDeletePromotion)
	}

	return r, nil
}

func buildCORS(origins []string) gin.HandlerFunc {
	if len(origins) == 0 {
		return nil
	}
	cfg := cors.DefaultConfig()
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization", "X-Request-ID")
	cfg.ExposeHeaders = []string{"X-Request-ID", "Content-Language"}
	for _, origin := range origins {
		if origin == "*" {
			cfg.AllowAllOrigins = true
			return cors.New(cfg)
		}
	}
	cfg.AllowOrigins = origins
	return cors.New(cfg)
}
