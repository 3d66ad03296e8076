package routes

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"blog-cms/config"
	"blog-cms/handlers"
	"blog-cms/helper"
	"blog-cms/middleware"
	"blog-cms/models"
	"blog-cms/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

// Pinger reports whether a backing store is reachable.
type Pinger func(ctx context.Context) error

type Deps struct {
	Config          *config.AppConfig
	Logger          *slog.Logger
	ArticleService  services.ArticleService
	AuthService     services.AuthService
	TagService      services.TagService
	CategoryService services.CategoryService
	// RateLimiter is optional; when nil and rate limiting is enabled one is created.
	RateLimiter *middleware.RateLimiter
	// HealthChecks are run by /health, keyed by component name.
	HealthChecks map[string]Pinger
}

func SetupRouter(deps Deps) *gin.Engine {
	conf := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	httpHelper := helper.NewHTTPHelper()

	authHandler := handlers.NewAuthHandler(deps.AuthService, conf.JWT, httpHelper)
	articleHandler := handlers.NewArticleHandler(deps.ArticleService, httpHelper)
	tagHandler := handlers.NewTagHandler(deps.TagService, httpHelper)
	categoryHandler := handlers.NewCategoryHandler(deps.CategoryService, httpHelper)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(corsConfig(conf.Server.AllowOrigins)))
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.Authenticate(conf.JWT))

	limit := func(c *gin.Context) { c.Next() }
	if conf.RateLimit.Enabled {
		limiter := deps.RateLimiter
		if limiter == nil {
			limiter = middleware.NewRateLimiter(rate.Limit(conf.RateLimit.RPS), conf.RateLimit.Burst)
		}
		limit = limiter.Middleware()
	}

	router.GET("/health", healthHandler(deps.HealthChecks))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	account := router.Group("/Account")
	{
		account.POST("/Register", limit, authHandler.Register)
		account.POST("/Login", limit, authHandler.Login)
		account.POST("/Logout", authHandler.Logout)
		account.GET("/Profile", middleware.RequireAuth(), authHandler.GetProfile)
	}

	article := router.Group("/Article")
	{
		article.GET("", articleHandler.Index)
		article.GET("/List", articleHandler.List)
		article.GET("/Details", articleHandler.Details)
		article.GET("/Details/:id", articleHandler.Details)

		article.GET("/Create", middleware.RequireAuth(), articleHandler.CreateForm)
		article.POST("/Create", middleware.RequireAuth(), limit, articleHandler.Create)

		article.GET("/Edit", articleHandler.EditForm)
		article.GET("/Edit/:id", articleHandler.EditForm)
		article.POST("/Edit", limit, articleHandler.Edit)

		article.GET("/Delete", articleHandler.DeleteForm)
		article.GET("/Delete/:id", articleHandler.DeleteForm)
		article.POST("/Delete", limit, articleHandler.Delete)
		article.POST("/Delete/:id", limit, articleHandler.Delete)
	}

	category := router.Group("/Category")
	{
		category.GET("/List", categoryHandler.GetCategories)
		category.POST("/Create", middleware.RequireRole(models.RoleAdmin), categoryHandler.CreateCategory)
	}

	tag := router.Group("/Tag")
	{
		tag.GET("/List", tagHandler.GetTags)
		tag.GET("/Details/:id", tagHandler.GetTag)
	}

	return router
}

func healthHandler(checks map[string]Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		components := gin.H{}
		for name, ping := range checks {
			if err := ping(ctx); err != nil {
				status = http.StatusServiceUnavailable
				components[name] = err.Error()
				continue
			}
			components[name] = "ok"
		}

		overall := "healthy"
		if status != http.StatusOK {
			overall = "unhealthy"
		}
		c.JSON(status, gin.H{"status": overall, "components": components})
	}
}

func corsConfig(origins []string) cors.Config {
	corsConf := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			corsConf.AllowAllOrigins = true
			return corsConf
		}
	}
	corsConf.AllowOrigins = origins
	corsConf.AllowCredentials = true
	return corsConf
}
