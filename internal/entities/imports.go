package entities

// RawRecord is one unvalidated book record as produced by a parser.
type RawRecord map[string]any

// RequiredBookFields must all be present in a RawRecord before it is validated.
var RequiredBookFields = []string{"title", "author_name", "genre", "published_year"}

// FailedRecord is a record excluded from an import together with the reason.
type FailedRecord struct {
	Record RawRecord `json:"record"`
	Reason string    `json:"reason"`
}

// ImportResult summarizes a bulk import.
type ImportResult struct {
	Total      int            `json:"total"`
	Successful int            `json:"successful"`
	Failed     int            `json:"failed"`
	FailedInfo []FailedRecord `json:"failed_info"`
}

// ExportRecord is the flat projection of a book used by every export format.
type ExportRecord struct {
	ID            uint   `json:"id" yaml:"id"`
	Title         string `json:"title" yaml:"title"`
	AuthorName    string `json:"author_name" yaml:"author_name"`
	Genre         string `json:"genre" yaml:"genre"`
	PublishedYear int    `json:"published_year" yaml:"published_year"`
}

// NewExportRecord projects a book read through the join view.
func NewExportRecord(b Book) ExportRecord {
	return ExportRecord{
		ID:            b.ID,
		Title:         b.Title,
		AuthorName:    b.AuthorName,
		Genre:         string(b.Genre),
		PublishedYear: b.PublishedYear,
	}
}
