package tasks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/rs/zerolog/log"

	"github.com/AlexTsikhun/book-management-system/internal/apperrors"
	"github.com/AlexTsikhun/book-management-system/internal/importers"
	"github.com/AlexTsikhun/book-management-system/internal/services"
)

// ImportBooksQueue is the queue name for background bulk imports.
const ImportBooksQueue = "import_books"

// ImportBooksTask carries an uploaded file through the queue.
type ImportBooksTask struct {
	Filename string `json:"filename"`
	Content  []byte `json:"content"`
}

var (
	queueMu     sync.RWMutex
	queueConfig = DefaultConfig()
)

// Config returns the queue configuration for import tasks, taken from the
// Config passed to NewImportBooksQueue.
func (t ImportBooksTask) Config() backlite.QueueConfig {
	queueMu.RLock()
	cfg := queueConfig
	queueMu.RUnlock()

	return backlite.QueueConfig{
		Name:        ImportBooksQueue,
		MaxAttempts: cfg.MaxRetries,
		Backoff:     cfg.RetryDelay,
		Timeout:     cfg.TaskTimeout,
		Retention: &backlite.Retention{
			Duration:   cfg.RetentionDuration,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// ImportBooksProcessor runs the import. Errors that would fail again on retry
// (bad file, unsupported format) are logged and end the task; anything else
// is returned so backlite retries it. A failed import commits nothing, so a
// retry never duplicates books.
func ImportBooksProcessor(importer services.BulkImporter) backlite.QueueProcessor[ImportBooksTask] {
	return func(ctx context.Context, task ImportBooksTask) error {
		if importer == nil {
			return fmt.Errorf("importer not configured")
		}

		start := time.Now()
		result, err := importer.BulkImport(ctx, task.Filename, bytes.NewReader(task.Content))
		if err != nil {
			if permanent(err) {
				log.Warn().Err(err).Str("filename", task.Filename).Msg("import task rejected")
				return nil
			}
			return fmt.Errorf("import %s: %w", task.Filename, err)
		}

		log.Info().
			Str("filename", task.Filename).
			Int("total", result.Total).
			Int("successful", result.Successful).
			Int("failed", result.Failed).
			Dur("duration", time.Since(start)).
			Msg("import task finished")
		return nil
	}
}

func permanent(err error) bool {
	var parseErr *importers.ParseError
	return errors.As(err, &parseErr) ||
		errors.Is(err, apperrors.ErrInvalidParameter) ||
		errors.Is(err, apperrors.ErrValidationFailed)
}

// NewImportBooksQueue creates the backlite queue for bulk imports.
func NewImportBooksQueue(importer services.BulkImporter, cfg Config) backlite.Queue {
	queueMu.Lock()
	queueConfig = cfg
	queueMu.Unlock()

	return backlite.NewQueue(ImportBooksProcessor(importer))
}
