package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/AlexTsikhun/book-management-system/internal/config"
	"github.com/AlexTsikhun/book-management-system/internal/database/authors"
	"github.com/AlexTsikhun/book-management-system/internal/database/books"
	"github.com/AlexTsikhun/book-management-system/internal/database/crud"
	"github.com/AlexTsikhun/book-management-system/internal/database/users"
	"github.com/AlexTsikhun/book-management-system/internal/entities"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// SortSettings holds the sort allow-list of every entity.
type SortSettings struct {
	Authors crud.SortFields
	Books   crud.SortFields
	Users   crud.SortFields
}

// DefaultSortSettings allows every sortable column of every entity.
func DefaultSortSettings() SortSettings {
	return SortSettings{
		Authors: authors.DefaultSortFields,
		Books:   books.DefaultSortFields,
		Users:   users.DefaultSortFields,
	}
}

// Database is the long-lived store handle. It is opened once at startup,
// shared by every unit of work and closed at shutdown.
type Database struct {
	DB    *gorm.DB
	Sorts SortSettings
}

func NewDatabase(cfg config.Database) (*Database, error) {
	sorts, err := sortSettings(cfg)
	if err != nil {
		return nil, err
	}

	level := logger.Silent
	if cfg.LogSQL {
		level = logger.Info
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "", DriverSQLite:
		dialector = sqlite.Open(sqliteDSN(cfg.Path))
	case DriverPostgres:
		if cfg.URL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for the %s driver", DriverPostgres)
		}
		dialector = postgres.Open(cfg.URL)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.Driver == "" || cfg.Driver == DriverSQLite {
		// SQLite allows a single writer; serialising connections avoids
		// SQLITE_BUSY between concurrent units of work.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	err = db.AutoMigrate(
		&entities.Author{},
		&entities.Book{},
		&entities.User{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Info().Str("driver", driverName(cfg.Driver)).Msg("database initialized")

	return &Database{DB: db, Sorts: sorts}, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks that the store is reachable.
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// NewUnitOfWork returns a fresh unit of work bound to this store.
func (d *Database) NewUnitOfWork() *UnitOfWork {
	return NewUnitOfWork(d.DB, d.Sorts)
}

// Run executes fn inside a new unit of work. See UnitOfWork.Do.
func (d *Database) Run(ctx context.Context, fn func(ctx context.Context, uow *UnitOfWork) error) error {
	return d.NewUnitOfWork().Do(ctx, fn)
}

func sqliteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on&_busy_timeout=5000"
}

func driverName(driver string) string {
	if driver == "" {
		return DriverSQLite
	}
	return driver
}

func sortSettings(cfg config.Database) (SortSettings, error) {
	defaults := DefaultSortSettings()
	var (
		out SortSettings
		err error
	)
	if out.Authors, err = defaults.Authors.Restrict(cfg.AuthorSortFields); err != nil {
		return out, fmt.Errorf("AUTHOR_SORT_FIELDS: %w", err)
	}
	if out.Books, err = defaults.Books.Restrict(cfg.BookSortFields); err != nil {
		return out, fmt.Errorf("BOOK_SORT_FIELDS: %w", err)
	}
	if out.Users, err = defaults.Users.Restrict(cfg.UserSortFields); err != nil {
		return out, fmt.Errorf("USER_SORT_FIELDS: %w", err)
	}
	return out, nil
}
