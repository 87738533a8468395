package importers

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/AlexTsikhun/book-management-system/internal/apperrors"
	"github.com/AlexTsikhun/book-management-system/internal/entities"
)

// Parser turns an uploaded file into raw records. It judges structure only;
// field values are validated later by the Pipeline.
type Parser interface {
	Parse(r io.Reader) ([]entities.RawRecord, error)
}

// ParseError describes what was malformed in an uploaded file.
type ParseError struct {
	Format string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid %s file: %s: %v", e.Format, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid %s file: %s", e.Format, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ParserFor selects a parser by file extension.
func ParserFor(filename string) (Parser, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		return JSONParser{}, nil
	case ".csv":
		return CSVParser{}, nil
	case ".xlsx":
		return XLSXParser{}, nil
	default:
		return nil, apperrors.InvalidParameter("unsupported file format %q, use JSON, CSV or XLSX", filepath.Ext(filename))
	}
}

// JSONParser reads an array of objects. Numbers are kept as json.Number.
type JSONParser struct{}

func (JSONParser) Parse(r io.Reader) ([]entities.RawRecord, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, &ParseError{Format: "json", Reason: "malformed JSON", Err: err}
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, &ParseError{Format: "json", Reason: "content must be an array of books"}
	}

	records := make([]entities.RawRecord, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, &ParseError{Format: "json", Reason: fmt.Sprintf("item %d is not an object", i)}
		}
		records = append(records, entities.RawRecord(obj))
	}
	return records, nil
}

// CSVParser reads a header row followed by one book per row.
type CSVParser struct{}

func (CSVParser) Parse(r io.Reader) ([]entities.RawRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, &ParseError{Format: "csv", Reason: "file is empty"}
	}
	if err != nil {
		return nil, &ParseError{Format: "csv", Reason: "malformed header", Err: err}
	}

	var rows [][]string
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &ParseError{Format: "csv", Reason: "malformed row", Err: err}
		}
		rows = append(rows, row)
	}
	return recordsFromTable("csv", header, rows)
}

// XLSXParser reads the first sheet of a workbook laid out like the CSV format.
type XLSXParser struct{}

func (XLSXParser) Parse(r io.Reader) ([]entities.RawRecord, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &ParseError{Format: "xlsx", Reason: "unreadable workbook", Err: err}
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, &ParseError{Format: "xlsx", Reason: "workbook has no sheets"}
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, &ParseError{Format: "xlsx", Reason: "unreadable sheet", Err: err}
	}
	if len(rows) == 0 {
		return nil, &ParseError{Format: "xlsx", Reason: "sheet is empty"}
	}
	return recordsFromTable("xlsx", rows[0], rows[1:])
}

// recordsFromTable maps rows onto the header. Cells missing from a short row
// are left out of its record.
func recordsFromTable(format string, header []string, rows [][]string) ([]entities.RawRecord, error) {
	index := make(map[string]int, len(header))
	for i, col := range header {
		index[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(col, "\ufeff")))] = i
	}

	var missing []string
	for _, required := range entities.RequiredBookFields {
		if _, ok := index[required]; !ok {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return nil, &ParseError{
			Format: format,
			Reason: fmt.Sprintf("header must contain %s (missing %s)",
				strings.Join(entities.RequiredBookFields, ", "), strings.Join(missing, ", ")),
		}
	}

	records := make([]entities.RawRecord, 0, len(rows))
	for _, row := range rows {
		if isBlankRow(row) {
			continue
		}
		record := entities.RawRecord{}
		for name, i := range index {
			if i >= len(row) {
				continue
			}
			value := strings.TrimSpace(row[i])
			if name == "published_year" {
				if year, err := strconv.Atoi(value); err == nil {
					record[name] = year
					continue
				}
			}
			record[name] = value
		}
		records = append(records, record)
	}
	return records, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

var (
	_ Parser = JSONParser{}
	_ Parser = CSVParser{}
	_ Parser = XLSXParser{}
)
