package exporters

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/AlexTsikhun/book-management-system/internal/entities"
)

var exportHeader = []string{"id", "title", "author_name", "genre", "published_year"}

type JSONSerializer struct{}

func (JSONSerializer) Format() string      { return "json" }
func (JSONSerializer) ContentType() string { return "application/json" }
func (JSONSerializer) Extension() string   { return ".json" }

func (JSONSerializer) Serialize(records []entities.ExportRecord) ([]byte, error) {
	if records == nil {
		records = []entities.ExportRecord{}
	}
	return json.MarshalIndent(records, "", "  ")
}

type CSVSerializer struct{}

func (CSVSerializer) Format() string      { return "csv" }
func (CSVSerializer) ContentType() string { return "text/csv" }
func (CSVSerializer) Extension() string   { return ".csv" }

func (CSVSerializer) Serialize(records []entities.ExportRecord) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeader); err != nil {
		return nil, err
	}
	for _, r := range records {
		if err := w.Write(row(r)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type YAMLSerializer struct{}

func (YAMLSerializer) Format() string      { return "yaml" }
func (YAMLSerializer) ContentType() string { return "application/yaml" }
func (YAMLSerializer) Extension() string   { return ".yaml" }

func (YAMLSerializer) Serialize(records []entities.ExportRecord) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if records == nil {
		records = []entities.ExportRecord{}
	}
	if err := enc.Encode(records); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// XLSXSerializer writes a single "Books" sheet with a header row.
type XLSXSerializer struct{}

const xlsxSheet = "Books"

func (XLSXSerializer) Format() string { return "xlsx" }
func (XLSXSerializer) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}
func (XLSXSerializer) Extension() string { return ".xlsx" }

func (XLSXSerializer) Serialize(records []entities.ExportRecord) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), xlsxSheet); err != nil {
		return nil, err
	}
	header := make([]any, len(exportHeader))
	for i, h := range exportHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(xlsxSheet, "A1", &header); err != nil {
		return nil, err
	}
	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		values := []any{r.ID, r.Title, r.AuthorName, r.Genre, r.PublishedYear}
		if err := f.SetSheetRow(xlsxSheet, cell, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func row(r entities.ExportRecord) []string {
	return []string{
		strconv.FormatUint(uint64(r.ID), 10),
		r.Title,
		r.AuthorName,
		r.Genre,
		strconv.Itoa(r.PublishedYear),
	}
}

var (
	_ Serializer = JSONSerializer{}
	_ Serializer = CSVSerializer{}
	_ Serializer = YAMLSerializer{}
	_ Serializer = XLSXSerializer{}
)
