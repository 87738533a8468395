package http

import (
	"context"
	"io"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/AlexTsikhun/book-management-system/internal/auth"
	"github.com/AlexTsikhun/book-management-system/internal/entities"
	"github.com/AlexTsikhun/book-management-system/internal/scheduler"
	"github.com/AlexTsikhun/book-management-system/internal/services"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Use cases
	Books   BookUseCases
	Authors AuthorUseCases
	Auth    AuthUseCases

	// AuthMiddleware guards write routes. Nil leaves them open.
	AuthMiddleware *auth.Middleware

	// RateLimiter applies to every /api route. Nil disables limiting.
	RateLimiter auth.Limiter

	// Background import queue, nil when tasks are disabled
	TaskQueue TaskQueue

	// Snapshot scheduler, nil when snapshots are disabled
	Snapshots SnapshotRunner

	// Health checks
	Database Pinger

	// MaxUploadBytes caps bulk import uploads. Zero means 10 MiB.
	MaxUploadBytes int64

	// Application info
	Version string
}

type BookUseCases interface {
	CreateBook(ctx context.Context, in services.BookInput) (*entities.Book, error)
	RetrieveBook(ctx context.Context, id uint) (*entities.Book, error)
	ListBooks(ctx context.Context, req services.BookListRequest) (*services.PageOf[entities.Book], error)
	UpdateBook(ctx context.Context, id uint, in services.BookInput) (*entities.Book, error)
	DeleteBook(ctx context.Context, id uint) error
	BulkImport(ctx context.Context, filename string, r io.Reader) (entities.ImportResult, error)
	ExportBooks(ctx context.Context, format string) (*services.Export, error)
	RecommendBooks(ctx context.Context, id uint, limit int) ([]entities.Book, error)
}

type AuthorUseCases interface {
	ListAuthors(ctx context.Context, req services.PageRequest) (*services.PageOf[entities.Author], error)
	RetrieveAuthor(ctx context.Context, id uint) (*entities.Author, error)
}

type AuthUseCases interface {
	Register(ctx context.Context, in auth.RegisterInput) (*entities.User, error)
	Authenticate(ctx context.Context, username, password string) (auth.Token, error)
}

// TaskQueue enqueues background work and reports its progress.
type TaskQueue interface {
	Enqueue(ctx context.Context, task backlite.Task) (string, error)
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}

// SnapshotRunner triggers and reports catalog snapshots.
type SnapshotRunner interface {
	RunNow(ctx context.Context) (string, error)
	LastRun() *scheduler.RunResult
	NextRun() *time.Time
	IsRunning() bool
}

type Pinger interface {
	Ping(ctx context.Context) error
}
