package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"blog-cms/config"
	"blog-cms/helper"
	"blog-cms/logger"
	"blog-cms/middleware"
	"blog-cms/models"
	"blog-cms/repositories"
	"blog-cms/routes"
	"blog-cms/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"golang.org/x/time/rate"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found")
	}

	configPath := os.Getenv("BLOG_CONFIG")
	if configPath == "" {
		configPath = "config.yaml"
	}
	conf, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	log := logger.Init(conf.Log.Level, conf.Log.Format)
	gin.SetMode(conf.Server.Mode)

	if err := run(conf, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(conf *config.AppConfig, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := config.InitDB(conf.Database)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := models.RegisterJoinTables(db); err != nil {
		return err
	}
	if conf.Database.AutoMigrate {
		if err := models.AutoMigrate(db); err != nil {
			return err
		}
		log.Info("database schema migrated")
	}

	redisClient, err := config.InitRedis(ctx, conf.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	articleRepo := repositories.NewArticleRepository(db)
	tagRepo := repositories.NewTagRepository(db)
	categoryRepo := repositories.NewCachedCategoryRepository(
		repositories.NewCategoryRepository(db), redisClient, conf.Redis.CategoryTTL)
	tx := repositories.NewTransactor(db)

	// Initialize services
	authService := services.NewAuthService(userRepo, conf.JWT)
	articleService := services.NewArticleService(articleRepo, tagRepo, userRepo, categoryRepo, tx,
		helper.NewSanitizer(), services.ArticleServiceOptions{
			BestEffortViews: conf.Article.BestEffortViews,
			Logger:          log,
		})
	tagService := services.NewTagService(tagRepo, articleRepo)
	categoryService := services.NewCategoryService(categoryRepo, userRepo)

	if err := authService.EnsureAdmin(ctx, conf.Admin); err != nil {
		return err
	}

	var limiter *middleware.RateLimiter
	if conf.RateLimit.Enabled {
		limiter = middleware.NewRateLimiter(rate.Limit(conf.RateLimit.RPS), conf.RateLimit.Burst)
		go limiter.Run(ctx.Done())
	}

	healthChecks := map[string]routes.Pinger{"database": sqlDB.PingContext}
	if redisClient != nil {
		healthChecks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	router := routes.SetupRouter(routes.Deps{
		Config:          conf,
		Logger:          log,
		ArticleService:  articleService,
		AuthService:     authService,
		TagService:      tagService,
		CategoryService: categoryService,
		RateLimiter:     limiter,
		HealthChecks:    healthChecks,
	})

	srv := &http.Server{
		Addr:         conf.Server.Addr(),
		Handler:      router,
		ReadTimeout:  conf.Server.ReadTimeout,
		WriteTimeout: conf.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down server", "timeout", conf.Server.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
