// Package importers provides the bulk import pipeline for the book catalog.
//
// # Architecture
//
// The import pipeline follows a simple flow:
//
//	Upload → Parser → []RawRecord → Pipeline → (validated, rejected) → Unit of Work → Storage
//
// A Parser turns an uploaded file into raw field mappings without judging
// their content. The Pipeline then rejects records with missing fields,
// validates the rest, resolves every distinct author name with a single
// lookup and inserts the surviving books in one batch.
//
// # Supported Formats
//
//   - .json: an array of objects
//   - .csv: a header row containing title, author_name, genre, published_year
//   - .xlsx: the first sheet, with the same header row as CSV
//
// # Adding a New Format
//
//  1. Create a new file (e.g., ndjson.go)
//  2. Implement the Parser interface
//  3. Register the extension in ParserFor
//  4. Add a compile-time check: var _ Parser = (*NDJSONParser)(nil)
package importers
