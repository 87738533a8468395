package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/AlexTsikhun/book-management-system/internal/importers"
	"github.com/AlexTsikhun/book-management-system/internal/services"
	"github.com/AlexTsikhun/book-management-system/internal/tasks"
)

const defaultMaxUploadBytes = 10 << 20

type BooksController struct {
	books          BookUseCases
	queue          TaskQueue
	maxUploadBytes int64
}

func NewBooksController(books BookUseCases, queue TaskQueue, maxUploadBytes int64) *BooksController {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	return &BooksController{
		books:          books,
		queue:          queue,
		maxUploadBytes: maxUploadBytes,
	}
}

// List handles GET /api/v1/books?page=&per_page=&sort_by=field:direction&q=
func (bc *BooksController) List(c *gin.Context) {
	page, ok := parseIntQuery(c, "page")
	if !ok {
		return
	}
	perPage, ok := parseIntQuery(c, "per_page")
	if !ok {
		return
	}

	result, err := bc.books.ListBooks(c.Request.Context(), services.BookListRequest{
		PageRequest: services.PageRequest{Page: page, PerPage: perPage, Sort: c.Query("sort_by")},
		Query:       c.Query("q"),
	})
	if err != nil {
		respondError(c, err, "list books")
		return
	}
	c.JSON(http.StatusOK, result)
}

// Create handles POST /api/v1/books
func (bc *BooksController) Create(c *gin.Context) {
	var in services.BookInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	book, err := bc.books.CreateBook(c.Request.Context(), in)
	if err != nil {
		respondError(c, err, "create book")
		return
	}
	c.JSON(http.StatusCreated, book)
}

// Get handles GET /api/v1/books/:id
func (bc *BooksController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := bc.books.RetrieveBook(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "retrieve book")
		return
	}
	c.JSON(http.StatusOK, book)
}

// Update handles PUT /api/v1/books/:id
func (bc *BooksController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var in services.BookInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	book, err := bc.books.UpdateBook(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, err, "update book")
		return
	}
	c.JSON(http.StatusOK, book)
}

// Delete handles DELETE /api/v1/books/:id
func (bc *BooksController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := bc.books.DeleteBook(c.Request.Context(), id); err != nil {
		respondError(c, err, "delete book")
		return
	}
	c.Status(http.StatusNoContent)
}

// BulkImport handles POST /api/v1/books/bulk-import with a multipart "file".
// With ?async=true the file is queued and 202 is returned with the task id.
func (bc *BooksController) BulkImport(c *gin.Context) {
	if c.Request.ContentLength > bc.maxUploadBytes {
		bc.respondTooLarge(c)
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, bc.maxUploadBytes)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			bc.respondTooLarge(c)
			return
		}
		respondBadRequest(c, "no file provided")
		return
	}
	defer file.Close()

	// Reject unsupported formats before reading or queueing anything.
	if _, err := importers.ParserFor(header.Filename); err != nil {
		respondError(c, err, "bulk import")
		return
	}

	async, _ := strconv.ParseBool(c.DefaultQuery("async", "false"))
	if async {
		bc.enqueueImport(c, header.Filename, file)
		return
	}

	result, err := bc.books.BulkImport(c.Request.Context(), header.Filename, file)
	if err != nil {
		respondError(c, err, "bulk import")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (bc *BooksController) respondTooLarge(c *gin.Context) {
	c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{
		Error: fmt.Sprintf("file exceeds %d bytes", bc.maxUploadBytes),
		Code:  "FILE_TOO_LARGE",
	})
}

func (bc *BooksController) enqueueImport(c *gin.Context, filename string, file io.Reader) {
	if bc.queue == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error: "background tasks are disabled",
			Code:  "TASKS_DISABLED",
		})
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		respondInternalError(c, err, "read upload")
		return
	}

	taskID, err := bc.queue.Enqueue(c.Request.Context(), tasks.ImportBooksTask{Filename: filename, Content: content})
	if err != nil {
		respondInternalError(c, err, "enqueue import")
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"task_id":    taskID,
		"status":     "pending",
		"status_url": "/api/v1/tasks/" + taskID,
	})
}

// Export handles GET /api/v1/books/export?format=json|csv|yaml|xlsx
func (bc *BooksController) Export(c *gin.Context) {
	export, err := bc.books.ExportBooks(c.Request.Context(), c.DefaultQuery("format", "json"))
	if err != nil {
		respondError(c, err, "export books")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="books%s"`, export.Extension))
	c.Data(http.StatusOK, export.ContentType, export.Data)
}

// Recommendations handles GET /api/v1/books/:id/recommendations?limit=
func (bc *BooksController) Recommendations(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	limit, ok := parseIntQuery(c, "limit")
	if !ok {
		return
	}

	books, err := bc.books.RecommendBooks(c.Request.Context(), id, limit)
	if err != nil {
		respondError(c, err, "recommend books")
		return
	}
	c.JSON(http.StatusOK, books)
}
