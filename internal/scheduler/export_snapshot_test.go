package scheduler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlexTsikhun/book-management-system/internal/exporters"
	"github.com/AlexTsikhun/book-management-system/internal/services"
)

type stubExporter struct {
	export *services.Export
	err    error
	calls  int
}

func (s *stubExporter) ExportBooks(_ context.Context, format string) (*services.Export, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	out := *s.export
	out.Format = format
	return &out, nil
}

func TestExportSnapshotScheduler_RunNow(t *testing.T) {
	dir := t.TempDir()
	exporter := &stubExporter{export: &services.Export{Extension: ".json", Count: 2, Data: []byte(`[{"id":1},{"id":2}]`)}}
	s := NewExportSnapshotScheduler(exporter, exporters.NewSnapshotWriter(dir), "json", "0 3 * * *")

	path, err := s.RunNow(context.Background())

	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))
	assert.True(t, strings.HasPrefix(filepath.Base(path), "catalog-"))
	assert.True(t, strings.HasSuffix(path, ".json"))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":1},{"id":2}]`, string(data))

	last := s.LastRun()
	require.NotNil(t, last)
	assert.Equal(t, path, last.Path)
	assert.Equal(t, 2, last.Books)
	assert.Empty(t, last.Err)
}

func TestExportSnapshotScheduler_RunNowFailure(t *testing.T) {
	exporter := &stubExporter{err: errors.New("store unavailable")}
	s := NewExportSnapshotScheduler(exporter, exporters.NewSnapshotWriter(t.TempDir()), "json", "0 3 * * *")

	_, err := s.RunNow(context.Background())

	require.Error(t, err)
	require.NotNil(t, s.LastRun())
	assert.Equal(t, "store unavailable", s.LastRun().Err)
}

func TestExportSnapshotScheduler_StartStop(t *testing.T) {
	s := NewExportSnapshotScheduler(&stubExporter{}, exporters.NewSnapshotWriter(t.TempDir()), "json", "0 3 * * *")

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())
	require.NotNil(t, s.NextRun())
	assert.Equal(t, 3, s.NextRun().Hour())

	s.Stop()
	assert.False(t, s.IsRunning())
	assert.Nil(t, s.NextRun())
}

func TestExportSnapshotScheduler_StopsWithContext(t *testing.T) {
	s := NewExportSnapshotScheduler(&stubExporter{}, exporters.NewSnapshotWriter(t.TempDir()), "json", "*/5 * * * *")
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, s.Start(ctx))
	cancel()

	assert.Eventually(t, func() bool { return !s.IsRunning() }, time.Second, 10*time.Millisecond)
}

func TestExportSnapshotScheduler_InvalidSchedule(t *testing.T) {
	s := NewExportSnapshotScheduler(&stubExporter{}, exporters.NewSnapshotWriter(t.TempDir()), "json", "every day")

	assert.Error(t, s.Start(context.Background()))
	assert.False(t, s.IsRunning())
}
