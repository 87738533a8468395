package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, int32(8000), cfg.HTTP.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, DefaultDatabasePath, cfg.Database.Path)
	assert.Empty(t, cfg.Database.BookSortFields)
	assert.Equal(t, 30*time.Minute, cfg.Auth.TokenExpiry)
	assert.Equal(t, DefaultExportLimit, cfg.Catalog.ExportLimit)
	assert.Equal(t, DefaultMinYear, cfg.Catalog.MinYear)
	assert.Equal(t, 5, cfg.RateLimit.Requests)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
}

func TestNewConfig_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9100")
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("BOOK_SORT_FIELDS", "title, published_year,")
	t.Setenv("AUTH_TOKEN_EXPIRY", "2h")
	t.Setenv("EXPORT_SNAPSHOT_ENABLED", "true")

	cfg := NewConfig()

	assert.Equal(t, int32(9100), cfg.HTTP.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, []string{"title", "published_year"}, cfg.Database.BookSortFields)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenExpiry)
	assert.True(t, cfg.ExportSnapshot.Enabled)
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, splitList(""))
	assert.Equal(t, []string{"a", "b"}, splitList(" a ,, b "))
}
