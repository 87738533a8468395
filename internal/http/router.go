package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AlexTsikhun/book-management-system/internal/auth"
	"github.com/AlexTsikhun/book-management-system/internal/logging"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Uses RouterConfig to receive all dependencies, improving testability
// and reducing parameter count.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(logging.RequestID())
	router.Use(logging.Logger())
	router.Use(logging.Recovery())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())

	healthController := NewHealthController(cfg.Database, cfg.TaskQueue, cfg.Snapshots, cfg.Version)
	router.GET("/health", healthController.Status)

	api := router.Group("/api/v1")
	if cfg.RateLimiter != nil {
		api.Use(auth.RateLimitMiddleware(cfg.RateLimiter))
	}
	api.GET("/health", healthController.Status)

	// Write routes require a bearer token when auth is configured
	protected := func(h gin.HandlerFunc) []gin.HandlerFunc {
		if cfg.AuthMiddleware == nil {
			return []gin.HandlerFunc{h}
		}
		return []gin.HandlerFunc{cfg.AuthMiddleware.Required(), h}
	}

	// Books
	booksController := NewBooksController(cfg.Books, cfg.TaskQueue, cfg.MaxUploadBytes)
	api.GET("/books", booksController.List)
	api.GET("/books/export", booksController.Export)
	api.GET("/books/:id", booksController.Get)
	api.GET("/books/:id/recommendations", booksController.Recommendations)
	api.POST("/books", protected(booksController.Create)...)
	api.POST("/books/bulk-import", protected(booksController.BulkImport)...)
	api.PUT("/books/:id", protected(booksController.Update)...)
	api.DELETE("/books/:id", protected(booksController.Delete)...)

	// Authors
	authorsController := NewAuthorsController(cfg.Authors)
	api.GET("/authors", authorsController.List)
	api.GET("/authors/:id", authorsController.Get)

	// Auth
	if cfg.Auth != nil {
		authController := NewAuthController(cfg.Auth)
		api.POST("/auth/register", authController.Register)
		api.POST("/auth/token", authController.Token)
		api.GET("/auth/me", protected(authController.Me)...)
	}

	// Background tasks
	if cfg.TaskQueue != nil {
		tasksController := NewTasksController(cfg.TaskQueue)
		api.GET("/tasks/:id", tasksController.GetTaskStatus)
	}

	// Snapshots
	if cfg.Snapshots != nil {
		snapshotsController := NewSnapshotsController(cfg.Snapshots)
		api.GET("/exports/snapshots/status", snapshotsController.Status)
		api.POST("/exports/snapshots", protected(snapshotsController.RunNow)...)
	} else {
		disabled := func(c *gin.Context) {
			c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "snapshots are disabled", Code: "SNAPSHOTS_DISABLED"})
		}
		api.GET("/exports/snapshots/status", disabled)
		api.POST("/exports/snapshots", disabled)
	}

	return router
}
