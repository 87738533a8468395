package importers

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/AlexTsikhun/book-management-system/internal/apperrors"
)

func TestParserFor(t *testing.T) {
	tests := []struct {
		filename string
		want     Parser
	}{
		{"books.json", JSONParser{}},
		{"books.CSV", CSVParser{}},
		{"catalog.xlsx", XLSXParser{}},
	}
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			p, err := ParserFor(tt.filename)
			require.NoError(t, err)
			assert.IsType(t, tt.want, p)
		})
	}

	t.Run("unsupported", func(t *testing.T) {
		_, err := ParserFor("books.txt")
		assert.True(t, errors.Is(err, apperrors.ErrInvalidParameter))
	})
}

func TestJSONParser(t *testing.T) {
	t.Run("array of objects", func(t *testing.T) {
		records, err := JSONParser{}.Parse(strings.NewReader(
			`[{"title":"Dune","author_name":"Frank Herbert","genre":"Fiction","published_year":1965}]`))

		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "Dune", records[0]["title"])
		assert.Equal(t, json.Number("1965"), records[0]["published_year"])
	})

	t.Run("not an array", func(t *testing.T) {
		_, err := JSONParser{}.Parse(strings.NewReader(`{"title":"Dune"}`))

		var perr *ParseError
		require.True(t, errors.As(err, &perr))
		assert.Contains(t, perr.Error(), "array of books")
	})

	t.Run("item not an object", func(t *testing.T) {
		_, err := JSONParser{}.Parse(strings.NewReader(`[1, 2]`))

		var perr *ParseError
		assert.True(t, errors.As(err, &perr))
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := JSONParser{}.Parse(strings.NewReader(`[{"title":`))

		var perr *ParseError
		assert.True(t, errors.As(err, &perr))
	})
}

func TestCSVParser(t *testing.T) {
	t.Run("converts years and skips blank rows", func(t *testing.T) {
		input := "title,author_name,genre,published_year\n" +
			"Bulk Book,Bulk Author,Fiction,2024\n" +
			",,,\n" +
			"Other,Someone,History,unknown\n"

		records, err := CSVParser{}.Parse(strings.NewReader(input))

		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "Bulk Book", records[0]["title"])
		assert.Equal(t, 2024, records[0]["published_year"])
		assert.Equal(t, "unknown", records[1]["published_year"])
	})

	t.Run("short rows leave fields out", func(t *testing.T) {
		input := "title,author_name,genre,published_year\nOnly Title,Someone\n"

		records, err := CSVParser{}.Parse(strings.NewReader(input))

		require.NoError(t, err)
		require.Len(t, records, 1)
		_, hasGenre := records[0]["genre"]
		assert.False(t, hasGenre)
	})

	t.Run("missing headers", func(t *testing.T) {
		_, err := CSVParser{}.Parse(strings.NewReader("title,author_name\nA,B\n"))

		var perr *ParseError
		require.True(t, errors.As(err, &perr))
		assert.Contains(t, perr.Reason, "missing genre, published_year")
	})

	t.Run("empty file", func(t *testing.T) {
		_, err := CSVParser{}.Parse(strings.NewReader(""))

		var perr *ParseError
		assert.True(t, errors.As(err, &perr))
	})
}

func TestXLSXParser(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"title", "author_name", "genre", "published_year"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"Cosmos", "Carl Sagan", "Science", 1980}))
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	records, err := XLSXParser{}.Parse(&buf)

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Cosmos", records[0]["title"])
	assert.Equal(t, "Carl Sagan", records[0]["author_name"])
	assert.Equal(t, 1980, records[0]["published_year"])
}

func TestXLSXParser_NotAWorkbook(t *testing.T) {
	_, err := XLSXParser{}.Parse(strings.NewReader("plain text"))

	var perr *ParseError
	assert.True(t, errors.As(err, &perr))
}
