package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/AlexTsikhun/book-management-system/internal/auth"
	"github.com/AlexTsikhun/book-management-system/internal/config"
	"github.com/AlexTsikhun/book-management-system/internal/database"
	"github.com/AlexTsikhun/book-management-system/internal/exporters"
	http_controllers "github.com/AlexTsikhun/book-management-system/internal/http"
	"github.com/AlexTsikhun/book-management-system/internal/logging"
	"github.com/AlexTsikhun/book-management-system/internal/scheduler"
	"github.com/AlexTsikhun/book-management-system/internal/services"
	"github.com/AlexTsikhun/book-management-system/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("starting server")
		// service connections
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	// Graceful shutdown on SIGINT or SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Dur("timeout", timeout).Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Call shutdown callback first (e.g., to stop task queue)
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}

	log.Info().Msg("server exiting")
}

// newLimiter picks Redis when REDIS_URL is set and memory otherwise. A nil
// limiter disables rate limiting.
func newLimiter(cfg config.RateLimit) (auth.Limiter, func(), error) {
	if !cfg.Enabled {
		return nil, func() {}, nil
	}
	limits := auth.RateLimitConfig{Requests: cfg.Requests, Window: cfg.Window}
	if cfg.RedisURL == "" {
		limiter := auth.NewMemoryLimiter(limits)
		return limiter, limiter.Stop, nil
	}
	limiter, err := auth.NewRedisLimiter(cfg.RedisURL, limits)
	if err != nil {
		return nil, nil, err
	}
	return limiter, func() {
		if err := limiter.Close(); err != nil {
			log.Warn().Err(err).Msg("error closing redis limiter")
		}
	}, nil
}

func Run(cfg *config.Config, version string) {
	if err := logging.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		log.Fatal().Err(err).Msg("invalid logging configuration")
	}
	log.Info().Str("version", version).Msg("starting book management system")

	if cfg.Auth.SecretKey == "" {
		log.Fatal().Msg("AUTH_SECRET_KEY is not set")
	}

	// Initialize database
	db, err := database.NewDatabase(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error().Err(err).Msg("error closing database")
		}
	}()
	log.Info().Str("driver", cfg.Database.Driver).Msg("database ready")

	bookService := services.NewBookService(db, nil, exporters.DefaultRegistry(), cfg.Catalog)
	authorService := services.NewAuthorService(db)

	authService, err := auth.NewService(db, auth.NewTokenIssuer(cfg.Auth.SecretKey, cfg.Auth.TokenExpiry), cfg.Auth)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize auth service")
	}

	limiter, closeLimiter, err := newLimiter(cfg.RateLimit)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize rate limiter")
	}
	defer closeLimiter()

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskCfg := tasks.FromSettings(cfg.Tasks)

		taskClient, err = tasks.NewClient(cfg.Tasks.DBPath, taskCfg)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize task queue")
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Error().Err(err).Msg("error closing task client")
			}
		}()

		taskClient.Register(tasks.NewImportBooksQueue(bookService, taskCfg))

		// Start task workers in background
		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
	}

	// Initialize snapshot scheduler if enabled
	var snapshots *scheduler.ExportSnapshotScheduler
	var snapshotCancel context.CancelFunc
	if cfg.ExportSnapshot.Enabled {
		snapshots = scheduler.NewExportSnapshotScheduler(
			bookService,
			exporters.NewSnapshotWriter(cfg.ExportSnapshot.Dir),
			cfg.ExportSnapshot.Format,
			cfg.ExportSnapshot.Schedule,
		)
		var snapshotCtx context.Context
		snapshotCtx, snapshotCancel = context.WithCancel(context.Background())
		if err := snapshots.Start(snapshotCtx); err != nil {
			snapshotCancel()
			log.Fatal().Err(err).Msg("failed to start snapshot scheduler")
		}
	}

	// Build router configuration with all dependencies
	routerCfg := http_controllers.RouterConfig{
		Books:          bookService,
		Authors:        authorService,
		Auth:           authService,
		AuthMiddleware: auth.NewMiddleware(authService),
		RateLimiter:    limiter,
		Database:       db,
		MaxUploadBytes: cfg.Catalog.MaxUploadBytes,
		Version:        version,
	}
	if taskClient != nil {
		routerCfg.TaskQueue = taskClient
	}
	if snapshots != nil {
		routerCfg.Snapshots = snapshots
	}

	gin.SetMode(gin.ReleaseMode)
	router := http_controllers.NewRouter(routerCfg)

	// Shutdown callback for graceful cleanup
	onShutdown := func(ctx context.Context) {
		if snapshots != nil {
			snapshots.Stop()
			snapshotCancel()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
