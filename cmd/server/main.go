package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"movie-finder-service/internal/config"
	"movie-finder-service/internal/events"
	"movie-finder-service/internal/handler"
	"movie-finder-service/internal/metrics"
	"movie-finder-service/internal/middleware"
	"movie-finder-service/internal/pipeline"
	"movie-finder-service/internal/repository"
	"movie-finder-service/internal/service"
	"movie-finder-service/internal/trending"
	"movie-finder-service/pkg/httpclient"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	log.Info().
		Str("port", cfg.Port).
		Str("mode", cfg.GinMode).
		Str("trending_backend", cfg.TrendingBackend).
		Dur("debounce", cfg.DebounceWindow).
		Msg("🚀 Starting movie-finder-service")

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Trending document store
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	docs, err := repository.Open(ctx, repository.Options{
		Backend: cfg.TrendingBackend,
		Appwrite: repository.AppwriteConfig{
			Endpoint:     cfg.AppwriteEndpoint,
			ProjectID:    cfg.AppwriteProjectID,
			DatabaseID:   cfg.AppwriteDatabaseID,
			CollectionID: cfg.AppwriteCollectionID,
			APIKey:       cfg.AppwriteAPIKey,
		},
		MongoURI:      cfg.MongoDBURI,
		MongoDatabase: cfg.MongoDBName,
		SQLiteDSN:     cfg.SQLiteDSN,
		PostgresDSN:   cfg.PostgresDSN,
		RedisURL:      cfg.RedisURL,
	})
	cancel()
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.TrendingBackend).Msg("Failed to open trending store")
	}
	defer docs.Close()

	// Initialize services
	tmdbService := service.NewTMDBService(httpclient.NewClient(0, nil), cfg.TMDBAPIKeys, cfg.TMDBBaseURL, cfg.TMDBImageBase)
	if !tmdbService.IsConfigured() {
		log.Warn().Msg("⚠️  TMDB_API_KEY 未配置，请求可能被拒绝")
	}
	// 海报地址统一以 TMDB 服务为准
	imageBase := tmdbService.ImageBase()

	trendingService, err := trending.NewService(trending.NewStore(docs, imageBase), cfg.TrendingWorkers)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to start trending workers")
	}

	broker := events.NewBroker()
	sessions := pipeline.NewManager(tmdbService, trendingService, broker, pipeline.ManagerOptions{
		Controller: pipeline.Options{
			DebounceWindow: cfg.DebounceWindow,
			ImageBase:      imageBase,
		},
		IdleTTL: cfg.SessionIdleTTL,
	})
	if err := sessions.StartReaper(cfg.SessionReapSchedule); err != nil {
		log.Fatal().Err(err).Msg("Failed to start session reaper")
	}

	// Initialize handlers
	moviesHandler := handler.NewMoviesHandler(tmdbService, trendingService, imageBase)
	trendingHandler := handler.NewTrendingHandler(trendingService, cfg.TrendingBackend)
	homeHandler := handler.NewHomeHandler(tmdbService, trendingService, imageBase)
	sessionHandler := handler.NewSessionHandler(sessions, broker)
	adminHandler := handler.NewAdminHandler(tmdbService, sessions, cfg.TrendingBackend)

	// Setup router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logging())
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
			"time":   time.Now().Unix(),
		})
	})

	// API routes - 公开访问
	api := r.Group("/api/v1")
	{
		api.GET("/status", adminHandler.GetStatus)
		api.GET("/movies", moviesHandler.GetMovies)
		api.GET("/trending", trendingHandler.GetTrending)
		api.GET("/home", homeHandler.GetHome)

		api.POST("/sessions", sessionHandler.Create)
		api.GET("/sessions/:id", sessionHandler.Get)
		api.DELETE("/sessions/:id", sessionHandler.Delete)
		api.PUT("/sessions/:id/input", sessionHandler.SetInput)
		api.POST("/sessions/:id/next", sessionHandler.NextPage)
		api.POST("/sessions/:id/prev", sessionHandler.PrevPage)
		api.GET("/sessions/:id/events", sessionHandler.Events)
	}

	// Admin routes - 需要认证（如果配置了 ADMIN_API_KEY）
	admin := r.Group("/")
	admin.Use(middleware.AdminAuth(cfg.AdminAPIKey))
	{
		admin.GET("/metrics", gin.WrapH(metrics.Handler()))
		admin.POST("/api/v1/admin/sessions/reap", adminHandler.ReapSessions)
	}

	if cfg.AdminAPIKey != "" {
		log.Info().Msg("🔐 Admin API 认证已启用")
	} else {
		log.Warn().Msg("⚠️  Admin API 未配置认证，管理接口对外开放")
	}

	// Create HTTP server with graceful shutdown support
	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("🌐 Server listening")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("🛑 Shutting down server...")

	// SSE 连接在 session 关闭后结束，所以先关 session
	sessions.Shutdown()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	if err := trendingService.Close(); err != nil {
		log.Warn().Err(err).Msg("Trending workers did not stop in time")
	}

	log.Info().Msg("👋 Server exited")
}
