package exporters

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/AlexTsikhun/book-management-system/internal/entities"
)

// SnapshotWriter stores serialized catalog exports in a directory.
type SnapshotWriter struct {
	Dir string
	Now func() time.Time
}

func NewSnapshotWriter(dir string) *SnapshotWriter {
	return &SnapshotWriter{Dir: dir, Now: time.Now}
}

// Write serializes records and stores them as
// catalog-<timestamp>-<id><ext>. It returns the written path.
func (w *SnapshotWriter) Write(s Serializer, records []entities.ExportRecord) (string, error) {
	data, err := s.Serialize(records)
	if err != nil {
		return "", fmt.Errorf("serialize %s snapshot: %w", s.Format(), err)
	}
	return w.WriteData(s.Extension(), data)
}

// WriteData stores already serialized data under a new snapshot name.
func (w *SnapshotWriter) WriteData(extension string, data []byte) (string, error) {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	name := fmt.Sprintf("catalog-%s-%s%s", w.Now().UTC().Format("20060102T150405Z"), uuid.NewString()[:8], extension)
	path := filepath.Join(w.Dir, name)

	// Renamed into place, readers never see a partial snapshot.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("finalize snapshot: %w", err)
	}
	return path, nil
}
