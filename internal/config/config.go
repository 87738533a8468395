package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Database
		Auth
		Catalog
		Tasks
		ExportSnapshot
		RateLimit
		Log
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Driver string // sqlite or postgres
		Path   string // SQLite file
		URL    string // Postgres DSN
		LogSQL bool

		// Sort allow-lists. Empty means every sortable column.
		AuthorSortFields []string
		BookSortFields   []string
		UserSortFields   []string
	}
	Auth struct {
		SecretKey   string
		TokenExpiry time.Duration
		BcryptCost  int
	}
	Catalog struct {
		ExportLimit         int
		MinYear             int
		RecommendationLimit int
		MaxUploadBytes      int64
	}
	Tasks struct {
		Enabled           bool
		DBPath            string
		Workers           int
		MaxRetries        int
		RetryDelay        time.Duration
		TaskTimeout       time.Duration
		ReleaseAfter      time.Duration
		CleanupInterval   time.Duration
		RetentionDuration time.Duration
	}
	ExportSnapshot struct {
		Enabled  bool
		Schedule string // Cron format: "0 3 * * *" = daily at 03:00
		Dir      string
		Format   string
	}
	RateLimit struct {
		Enabled  bool
		RedisURL string // Empty selects the in-memory limiter
		Requests int
		Window   time.Duration
	}
	Log struct {
		Level  string
		Format string // console or json
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8000)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 5)

	v.SetDefault("database_driver", "sqlite")
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("database_url", "")
	v.SetDefault("database_log_sql", false)
	v.SetDefault("author_sort_fields", "")
	v.SetDefault("book_sort_fields", "")
	v.SetDefault("user_sort_fields", "")

	// Auth defaults
	v.SetDefault("auth_secret_key", "")
	v.SetDefault("auth_token_expiry", "30m")
	v.SetDefault("auth_bcrypt_cost", 12)

	v.SetDefault("catalog_export_limit", DefaultExportLimit)
	v.SetDefault("catalog_min_year", DefaultMinYear)
	v.SetDefault("catalog_recommendation_limit", 5)
	v.SetDefault("catalog_max_upload_bytes", 10<<20)

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("tasks_db_path", DefaultTasksDatabasePath)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_max_retries", 3)
	v.SetDefault("task_retry_delay", "30s")
	v.SetDefault("task_timeout", "5m")
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_retention_duration", "24h")

	v.SetDefault("export_snapshot_enabled", false)
	v.SetDefault("export_snapshot_schedule", "0 3 * * *") // Daily at 03:00
	v.SetDefault("export_snapshot_dir", "./exports")
	v.SetDefault("export_snapshot_format", "json")

	v.SetDefault("rate_limit_enabled", true)
	v.SetDefault("redis_url", "")
	v.SetDefault("rate_limit_requests", 5)
	v.SetDefault("rate_limit_window", "60s")

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Driver:           v.GetString("DATABASE_DRIVER"),
			Path:             v.GetString("DATABASE_PATH"),
			URL:              v.GetString("DATABASE_URL"),
			LogSQL:           v.GetBool("DATABASE_LOG_SQL"),
			AuthorSortFields: splitList(v.GetString("AUTHOR_SORT_FIELDS")),
			BookSortFields:   splitList(v.GetString("BOOK_SORT_FIELDS")),
			UserSortFields:   splitList(v.GetString("USER_SORT_FIELDS")),
		},
		Auth: Auth{
			SecretKey:   v.GetString("AUTH_SECRET_KEY"),
			TokenExpiry: v.GetDuration("AUTH_TOKEN_EXPIRY"),
			BcryptCost:  v.GetInt("AUTH_BCRYPT_COST"),
		},
		Catalog: Catalog{
			ExportLimit:         v.GetInt("CATALOG_EXPORT_LIMIT"),
			MinYear:             v.GetInt("CATALOG_MIN_YEAR"),
			RecommendationLimit: v.GetInt("CATALOG_RECOMMENDATION_LIMIT"),
			MaxUploadBytes:      v.GetInt64("CATALOG_MAX_UPLOAD_BYTES"),
		},
		Tasks: Tasks{
			Enabled:           v.GetBool("TASKS_ENABLED"),
			DBPath:            v.GetString("TASKS_DB_PATH"),
			Workers:           v.GetInt("TASK_WORKERS"),
			MaxRetries:        v.GetInt("TASK_MAX_RETRIES"),
			RetryDelay:        v.GetDuration("TASK_RETRY_DELAY"),
			TaskTimeout:       v.GetDuration("TASK_TIMEOUT"),
			ReleaseAfter:      v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:   v.GetDuration("TASK_CLEANUP_INTERVAL"),
			RetentionDuration: v.GetDuration("TASK_RETENTION_DURATION"),
		},
		ExportSnapshot: ExportSnapshot{
			Enabled:  v.GetBool("EXPORT_SNAPSHOT_ENABLED"),
			Schedule: v.GetString("EXPORT_SNAPSHOT_SCHEDULE"),
			Dir:      v.GetString("EXPORT_SNAPSHOT_DIR"),
			Format:   v.GetString("EXPORT_SNAPSHOT_FORMAT"),
		},
		RateLimit: RateLimit{
			Enabled:  v.GetBool("RATE_LIMIT_ENABLED"),
			RedisURL: v.GetString("REDIS_URL"),
			Requests: v.GetInt("RATE_LIMIT_REQUESTS"),
			Window:   v.GetDuration("RATE_LIMIT_WINDOW"),
		},
		Log: Log{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
	}
}

// splitList parses a comma-separated env value, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
