package exporters

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/AlexTsikhun/book-management-system/internal/apperrors"
	"github.com/AlexTsikhun/book-management-system/internal/entities"
)

var sampleRecords = []entities.ExportRecord{
	{ID: 1, Title: "Kindred", AuthorName: "Octavia E. Butler", Genre: "Fiction", PublishedYear: 1979},
	{ID: 2, Title: "Cosmos, Revised", AuthorName: "Carl Sagan", Genre: "Science", PublishedYear: 1980},
}

func TestRegistry_Get(t *testing.T) {
	r := DefaultRegistry()

	for _, format := range []string{"json", "CSV", "yaml", "xlsx"} {
		t.Run(format, func(t *testing.T) {
			s, err := r.Get(format)
			require.NoError(t, err)
			assert.Equal(t, strings.ToLower(format), s.Format())
		})
	}

	t.Run("unknown format", func(t *testing.T) {
		_, err := r.Get("toml")
		assert.True(t, errors.Is(err, apperrors.ErrInvalidParameter))
		assert.Contains(t, err.Error(), "csv, json, xlsx, yaml")
	})
}

func TestJSONSerializer(t *testing.T) {
	data, err := JSONSerializer{}.Serialize(sampleRecords)
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "Octavia E. Butler", decoded[0]["author_name"])
	assert.Equal(t, float64(1980), decoded[1]["published_year"])

	empty, err := JSONSerializer{}.Serialize(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(empty))
}

func TestCSVSerializer(t *testing.T) {
	data, err := CSVSerializer{}.Serialize(sampleRecords)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "id,title,author_name,genre,published_year", lines[0])
	assert.Equal(t, "1,Kindred,Octavia E. Butler,Fiction,1979", lines[1])
	assert.Equal(t, `2,"Cosmos, Revised",Carl Sagan,Science,1980`, lines[2])
}

func TestYAMLSerializer(t *testing.T) {
	data, err := YAMLSerializer{}.Serialize(sampleRecords)
	require.NoError(t, err)

	var decoded []entities.ExportRecord
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, sampleRecords, decoded)
	assert.Contains(t, string(data), "author_name: Carl Sagan")
}

func TestXLSXSerializer(t *testing.T) {
	data, err := XLSXSerializer{}.Serialize(sampleRecords)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(xlsxSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"id", "title", "author_name", "genre", "published_year"}, rows[0])
	assert.Equal(t, []string{"2", "Cosmos, Revised", "Carl Sagan", "Science", "1980"}, rows[2])
}

func TestSnapshotWriter_Write(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	w := &SnapshotWriter{
		Dir: dir,
		Now: func() time.Time { return time.Date(2024, 3, 9, 4, 5, 6, 0, time.UTC) },
	}

	path, err := w.Write(CSVSerializer{}, sampleRecords)

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filepath.Base(path), "catalog-20240309T040506Z-"))
	assert.Equal(t, ".csv", filepath.Ext(path))
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "Kindred")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}
