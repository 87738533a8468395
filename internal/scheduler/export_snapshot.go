package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/AlexTsikhun/book-management-system/internal/services"
)

// SnapshotStore persists serialized exports.
type SnapshotStore interface {
	WriteData(extension string, data []byte) (string, error)
}

// RunResult describes the last snapshot attempt.
type RunResult struct {
	Path     string        `json:"path,omitempty"`
	Books    int           `json:"books"`
	Started  time.Time     `json:"started"`
	Duration time.Duration `json:"duration"`
	Err      string        `json:"error,omitempty"`
}

// ExportSnapshotScheduler writes periodic catalog exports to disk.
type ExportSnapshotScheduler struct {
	exporter services.CatalogExporter
	store    SnapshotStore
	format   string
	schedule string

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc

	runMu   sync.Mutex
	lastRun *RunResult
}

// ValidateSchedule checks a standard five-field cron expression.
func ValidateSchedule(schedule string) error {
	_, err := cron.ParseStandard(schedule)
	return err
}

// NewExportSnapshotScheduler creates a new scheduler instance
func NewExportSnapshotScheduler(exporter services.CatalogExporter, store SnapshotStore, format, schedule string) *ExportSnapshotScheduler {
	return &ExportSnapshotScheduler{
		exporter: exporter,
		store:    store,
		format:   format,
		schedule: schedule,
		cron:     cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start schedules the snapshot job. It stops when ctx is cancelled.
func (s *ExportSnapshotScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if err := ValidateSchedule(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		if _, err := s.RunNow(context.Background()); err != nil {
			log.Error().Err(err).Msg("export snapshot failed")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule snapshot job: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.Info().
		Str("schedule", s.schedule).
		Str("format", s.format).
		Time("next_run", s.cron.Entry(entryID).Next).
		Msg("export snapshot scheduler started")

	// Monitor for context cancellation
	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop waits for a running snapshot and stops the scheduler.
func (s *ExportSnapshotScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	// Stop accepting new jobs and wait for running jobs to complete
	ctx := s.cron.Stop()
	<-ctx.Done()

	s.cron.Remove(s.entryID)
	if s.cancelFunc != nil {
		s.cancelFunc()
	}
	s.isRunning = false
	s.cancelFunc = nil

	log.Info().Msg("export snapshot scheduler stopped")
}

// RunNow writes one snapshot synchronously and returns its path. Runs never
// overlap; a call made while another is in progress waits for it.
func (s *ExportSnapshotScheduler) RunNow(ctx context.Context) (string, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	result := &RunResult{Started: time.Now()}
	defer func() {
		result.Duration = time.Since(result.Started)
		s.lastRun = result
	}()

	export, err := s.exporter.ExportBooks(ctx, s.format)
	if err != nil {
		result.Err = err.Error()
		return "", fmt.Errorf("export catalog: %w", err)
	}
	path, err := s.store.WriteData(export.Extension, export.Data)
	if err != nil {
		result.Err = err.Error()
		return "", err
	}

	result.Path = path
	result.Books = export.Count
	log.Info().Str("path", path).Int("books", export.Count).Msg("export snapshot written")
	return path, nil
}

// IsRunning returns whether the scheduler is active
func (s *ExportSnapshotScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRun returns when the next snapshot will be written, or nil when stopped.
func (s *ExportSnapshotScheduler) NextRun() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	next := s.cron.Entry(s.entryID).Next
	return &next
}

// LastRun returns the most recent snapshot attempt, or nil.
func (s *ExportSnapshotScheduler) LastRun() *RunResult {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	if s.lastRun == nil {
		return nil
	}
	r := *s.lastRun
	return &r
}
