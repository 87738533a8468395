package config

const (
	// DefaultDatabasePath is the default path for the catalog database
	DefaultDatabasePath = "./books.db"

	// DefaultTasksDatabasePath is the default path for the background task queue
	DefaultTasksDatabasePath = "./tasks.db"

	// DefaultExportLimit caps the rows read by a single export
	DefaultExportLimit = 1000

	// DefaultMinYear is the earliest accepted publication year
	DefaultMinYear = 1800
)
