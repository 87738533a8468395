package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/AlexTsikhun/book-management-system/internal/auth"
	"github.com/AlexTsikhun/book-management-system/internal/config"
	"github.com/AlexTsikhun/book-management-system/internal/database"
	"github.com/AlexTsikhun/book-management-system/internal/entities"
	"github.com/AlexTsikhun/book-management-system/internal/exporters"
	"github.com/AlexTsikhun/book-management-system/internal/scheduler"
	"github.com/AlexTsikhun/book-management-system/internal/services"
	"github.com/AlexTsikhun/book-management-system/internal/tasks"
)

type fakeQueue struct {
	mu    sync.Mutex
	tasks map[string]backlite.Task
}

func (q *fakeQueue) Enqueue(_ context.Context, task backlite.Task) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.tasks == nil {
		q.tasks = make(map[string]backlite.Task)
	}
	id := fmt.Sprintf("task-%d", len(q.tasks)+1)
	q.tasks[id] = task
	return id, nil
}

func (q *fakeQueue) Status(_ context.Context, taskID string) (backlite.TaskStatus, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.tasks[taskID]; ok {
		return backlite.TaskStatusPending, nil
	}
	return backlite.TaskStatusNotFound, nil
}

type fakeSnapshots struct {
	runs int
}

func (s *fakeSnapshots) RunNow(context.Context) (string, error) {
	s.runs++
	return "/tmp/snapshots/catalog.json", nil
}

func (s *fakeSnapshots) LastRun() *scheduler.RunResult {
	if s.runs == 0 {
		return nil
	}
	return &scheduler.RunResult{Path: "/tmp/snapshots/catalog.json", Books: 3}
}

func (s *fakeSnapshots) NextRun() *time.Time { return nil }
func (s *fakeSnapshots) IsRunning() bool     { return true }

type testServer struct {
	router *gin.Engine
	db     *database.Database
	token  string
}

func setupServer(t *testing.T, mutate func(*RouterConfig)) *testServer {
	t.Helper()
	db, err := database.NewDatabase(config.Database{
		Driver: database.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "api.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	authService, err := auth.NewService(db, auth.NewTokenIssuer("test-secret", time.Hour), config.Auth{
		SecretKey:   "test-secret",
		TokenExpiry: time.Hour,
		BcryptCost:  bcrypt.MinCost,
	})
	require.NoError(t, err)

	cfg := RouterConfig{
		Books:          services.NewBookService(db, nil, exporters.DefaultRegistry(), config.Catalog{}),
		Authors:        services.NewAuthorService(db),
		Auth:           authService,
		AuthMiddleware: auth.NewMiddleware(authService),
		Database:       db,
		Version:        "test",
	}
	if mutate != nil {
		mutate(&cfg)
	}

	srv := &testServer{router: NewRouter(cfg), db: db}

	_, err = authService.Register(context.Background(), auth.RegisterInput{
		Username: "librarian", Email: "librarian@example.com", Password: "password123",
	})
	require.NoError(t, err)
	token, err := authService.Authenticate(context.Background(), "librarian", "password123")
	require.NoError(t, err)
	srv.token = token.AccessToken
	return srv
}

func (s *testServer) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) upload(t *testing.T, path, filename, content string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.token)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) createBook(t *testing.T, title, author, genre string, year int) entities.Book {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/v1/books", services.BookInput{
		Title: title, AuthorName: author, Genre: genre, PublishedYear: year,
	}, s.token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var book entities.Book
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &book))
	return book
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestRouter_BookLifecycle(t *testing.T) {
	srv := setupServer(t, nil)

	book := srv.createBook(t, "Dune", "Frank Herbert", "fiction", 1965)
	assert.Equal(t, "Frank Herbert", book.AuthorName)
	assert.Equal(t, entities.GenreFiction, book.Genre)

	w := srv.do(t, http.MethodGet, fmt.Sprintf("/api/v1/books/%d", book.ID), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Dune", decode[entities.Book](t, w).Title)

	srv.createBook(t, "Children of Dune", "Frank Herbert", "Fiction", 1976)
	w = srv.do(t, http.MethodPut, fmt.Sprintf("/api/v1/books/%d", book.ID), services.BookInput{
		Title: "Dune (Revised)", AuthorName: "Frank Herbert", Genre: "Science", PublishedYear: 1966,
	}, srv.token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[entities.Book](t, w)
	assert.Equal(t, "Dune (Revised)", updated.Title)
	assert.Equal(t, entities.GenreScience, updated.Genre)
	assert.Equal(t, 1966, updated.PublishedYear)

	w = srv.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/books/%d", book.ID), nil, srv.token)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = srv.do(t, http.MethodGet, fmt.Sprintf("/api/v1/books/%d", book.ID), nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", decode[ErrorResponse](t, w).Code)
}

func TestRouter_WriteRoutesRequireToken(t *testing.T) {
	srv := setupServer(t, nil)
	input := services.BookInput{Title: "Dune", AuthorName: "Frank Herbert", Genre: "Fiction", PublishedYear: 1965}

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/api/v1/books"},
		{http.MethodPut, "/api/v1/books/1"},
		{http.MethodDelete, "/api/v1/books/1"},
		{http.MethodPost, "/api/v1/books/bulk-import"},
	} {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			w := srv.do(t, tc.method, tc.path, input, "")
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))

			w = srv.do(t, tc.method, tc.path, input, "not-a-token")
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}

	w := srv.do(t, http.MethodGet, "/api/v1/books", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_CreateBookValidation(t *testing.T) {
	srv := setupServer(t, nil)

	w := srv.do(t, http.MethodPost, "/api/v1/books", services.BookInput{
		Title: "", AuthorName: "Someone", Genre: "Poetry", PublishedYear: 1500,
	}, srv.token)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var body struct {
		Code    string              `json:"code"`
		Details []map[string]string `json:"details"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "VALIDATION_FAILED", body.Code)
	assert.NotEmpty(t, body.Details)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/books", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+srv.token)
	w = httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_ListBooks(t *testing.T) {
	srv := setupServer(t, nil)
	srv.createBook(t, "Dune", "Frank Herbert", "Fiction", 1965)
	srv.createBook(t, "Cosmos", "Carl Sagan", "Science", 1980)
	srv.createBook(t, "Beloved", "Toni Morrison", "Fiction", 1987)

	w := srv.do(t, http.MethodGet, "/api/v1/books?per_page=2", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[services.PageOf[entities.Book]](t, w)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 2, page.PerPage)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Beloved", page.Items[0].Title)

	w = srv.do(t, http.MethodGet, "/api/v1/books?sort_by=published_year:desc", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	page = decode[services.PageOf[entities.Book]](t, w)
	assert.Equal(t, "Beloved", page.Items[0].Title)

	w = srv.do(t, http.MethodGet, "/api/v1/books?q=sagan", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	page = decode[services.PageOf[entities.Book]](t, w)
	assert.Equal(t, int64(1), page.Total)

	for _, query := range []string{"sort_by=price", "page=-1", "per_page=500", "page=abc"} {
		w = srv.do(t, http.MethodGet, "/api/v1/books?"+query, nil, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, query)
	}

	w = srv.do(t, http.MethodGet, "/api/v1/books/abc", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_BulkImport(t *testing.T) {
	srv := setupServer(t, nil)
	csv := "title,author_name,genre,published_year\n" +
		"Dune,Frank Herbert,Fiction,1965\n" +
		"Bad Year,Someone,History,1500\n"

	w := srv.upload(t, "/api/v1/books/bulk-import", "books.csv", csv)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result := decode[entities.ImportResult](t, w)
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 1, result.Successful)
	assert.Equal(t, 1, result.Failed)

	w = srv.upload(t, "/api/v1/books/bulk-import", "books.txt", "whatever")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_PARAMETER", decode[ErrorResponse](t, w).Code)

	w = srv.upload(t, "/api/v1/books/bulk-import", "books.json", `{"title": "not an array"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_FILE", decode[ErrorResponse](t, w).Code)

	w = srv.do(t, http.MethodPost, "/api/v1/books/bulk-import", nil, srv.token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_BulkImportTooLarge(t *testing.T) {
	srv := setupServer(t, func(cfg *RouterConfig) { cfg.MaxUploadBytes = 64 })

	w := srv.upload(t, "/api/v1/books/bulk-import", "books.csv",
		"title,author_name,genre,published_year\n"+strings.Repeat("Dune,Frank Herbert,Fiction,1965\n", 10))

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, "FILE_TOO_LARGE", decode[ErrorResponse](t, w).Code)
}

func TestRouter_BulkImportAsync(t *testing.T) {
	t.Run("queues the upload", func(t *testing.T) {
		queue := &fakeQueue{}
		srv := setupServer(t, func(cfg *RouterConfig) { cfg.TaskQueue = queue })

		w := srv.upload(t, "/api/v1/books/bulk-import?async=true", "books.csv", "title,author_name,genre,published_year\n")

		require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
		body := decode[map[string]string](t, w)
		assert.Equal(t, "task-1", body["task_id"])
		assert.Equal(t, "/api/v1/tasks/task-1", body["status_url"])

		task, ok := queue.tasks["task-1"].(tasks.ImportBooksTask)
		require.True(t, ok)
		assert.Equal(t, "books.csv", task.Filename)
		assert.Equal(t, "title,author_name,genre,published_year\n", string(task.Content))

		w = srv.do(t, http.MethodGet, "/api/v1/tasks/task-1", nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "pending", decode[map[string]string](t, w)["status"])

		w = srv.do(t, http.MethodGet, "/api/v1/tasks/missing", nil, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("unavailable without a queue", func(t *testing.T) {
		srv := setupServer(t, nil)

		w := srv.upload(t, "/api/v1/books/bulk-import?async=true", "books.csv", "title,author_name,genre,published_year\n")

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestRouter_Export(t *testing.T) {
	srv := setupServer(t, nil)
	srv.createBook(t, "Dune", "Frank Herbert", "Fiction", 1965)

	w := srv.do(t, http.MethodGet, "/api/v1/books/export?format=csv", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="books.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "id,title,author_name,genre,published_year\n1,Dune,Frank Herbert,Fiction,1965\n", w.Body.String())

	w = srv.do(t, http.MethodGet, "/api/v1/books/export", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")

	w = srv.do(t, http.MethodGet, "/api/v1/books/export?format=pdf", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_Recommendations(t *testing.T) {
	srv := setupServer(t, nil)
	dune := srv.createBook(t, "Dune", "Frank Herbert", "Fiction", 1965)
	srv.createBook(t, "Dune Messiah", "Frank Herbert", "Fiction", 1969)
	srv.createBook(t, "A Brief History of Time", "Stephen Hawking", "Science", 1988)

	w := srv.do(t, http.MethodGet, fmt.Sprintf("/api/v1/books/%d/recommendations?limit=1", dune.ID), nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	books := decode[[]entities.Book](t, w)
	require.Len(t, books, 1)
	assert.Equal(t, "Dune Messiah", books[0].Title)

	w = srv.do(t, http.MethodGet, "/api/v1/books/999/recommendations", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = srv.do(t, http.MethodGet, fmt.Sprintf("/api/v1/books/%d/recommendations?limit=1000", dune.ID), nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_Authors(t *testing.T) {
	srv := setupServer(t, nil)
	srv.createBook(t, "Dune", "Frank Herbert", "Fiction", 1965)
	srv.createBook(t, "Cosmos", "Carl Sagan", "Science", 1980)

	w := srv.do(t, http.MethodGet, "/api/v1/authors", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[services.PageOf[entities.Author]](t, w)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Carl Sagan", page.Items[0].Name)

	w = srv.do(t, http.MethodGet, fmt.Sprintf("/api/v1/authors/%d", page.Items[0].ID), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Carl Sagan", decode[entities.Author](t, w).Name)

	w = srv.do(t, http.MethodGet, "/api/v1/authors/999", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_Auth(t *testing.T) {
	srv := setupServer(t, nil)

	w := srv.do(t, http.MethodPost, "/api/v1/auth/register", auth.RegisterInput{
		Username: "reader", Email: "reader@example.com", Password: "password123",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "password")

	w = srv.do(t, http.MethodPost, "/api/v1/auth/register", auth.RegisterInput{
		Username: "reader", Email: "other@example.com", Password: "password123",
	}, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = srv.do(t, http.MethodPost, "/api/v1/auth/token", TokenRequest{Username: "reader", Password: "password123"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	token := decode[auth.Token](t, w)
	assert.Equal(t, "bearer", strings.ToLower(token.TokenType))

	form := url.Values{"username": {"reader"}, "password": {"password123"}}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w = httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = srv.do(t, http.MethodPost, "/api/v1/auth/token", TokenRequest{Username: "reader", Password: "wrong-password"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))

	w = srv.do(t, http.MethodPost, "/api/v1/auth/token", TokenRequest{Username: "reader"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = srv.do(t, http.MethodGet, "/api/v1/auth/me", nil, token.AccessToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "reader", decode[entities.User](t, w).Username)

	w = srv.do(t, http.MethodGet, "/api/v1/auth/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_RateLimit(t *testing.T) {
	limiter := auth.NewMemoryLimiter(auth.RateLimitConfig{Requests: 2, Window: time.Minute})
	t.Cleanup(limiter.Stop)
	srv := setupServer(t, func(cfg *RouterConfig) { cfg.RateLimiter = limiter })

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, srv.do(t, http.MethodGet, "/api/v1/books", nil, "").Code)
	}
	w := srv.do(t, http.MethodGet, "/api/v1/books", nil, "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	// Probes outside /api are not limited
	assert.Equal(t, http.StatusOK, srv.do(t, http.MethodGet, "/health", nil, "").Code)
}

func TestRouter_CommonHeaders(t *testing.T) {
	srv := setupServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestRouter_Snapshots(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		srv := setupServer(t, nil)

		assert.Equal(t, http.StatusServiceUnavailable,
			srv.do(t, http.MethodGet, "/api/v1/exports/snapshots/status", nil, "").Code)
		assert.Equal(t, http.StatusServiceUnavailable,
			srv.do(t, http.MethodPost, "/api/v1/exports/snapshots", nil, srv.token).Code)
	})

	t.Run("enabled", func(t *testing.T) {
		runner := &fakeSnapshots{}
		srv := setupServer(t, func(cfg *RouterConfig) { cfg.Snapshots = runner })

		assert.Equal(t, http.StatusUnauthorized,
			srv.do(t, http.MethodPost, "/api/v1/exports/snapshots", nil, "").Code)

		w := srv.do(t, http.MethodPost, "/api/v1/exports/snapshots", nil, srv.token)
		require.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "/tmp/snapshots/catalog.json", decode[map[string]string](t, w)["path"])
		assert.Equal(t, 1, runner.runs)

		w = srv.do(t, http.MethodGet, "/api/v1/exports/snapshots/status", nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		var status struct {
			Scheduled bool                 `json:"scheduled"`
			LastRun   *scheduler.RunResult `json:"last_run"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
		assert.True(t, status.Scheduled)
		require.NotNil(t, status.LastRun)
		assert.Equal(t, 3, status.LastRun.Books)
	})
}
