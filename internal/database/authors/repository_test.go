package authors

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/AlexTsikhun/book-management-system/internal/apperrors"
	"github.com/AlexTsikhun/book-management-system/internal/database/crud"
	"github.com/AlexTsikhun/book-management-system/internal/entities"
)

func setupTestDB(t *testing.T) (*Repository, *gorm.DB) {
	dbPath := filepath.Join(t.TempDir(), "test_authors.db")

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.Author{})
	require.NoError(t, err)

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	return NewRepository(db, DefaultSortFields), db
}

func TestRepository_Create(t *testing.T) {
	repo, _ := setupTestDB(t)

	author, err := repo.Create(context.Background(), &entities.Author{Name: "Ursula K. Le Guin"})

	require.NoError(t, err)
	assert.NotZero(t, author.ID)
}

func TestRepository_Create_DuplicateName(t *testing.T) {
	repo, _ := setupTestDB(t)
	_, err := repo.Create(context.Background(), &entities.Author{Name: "Jane Doe"})
	require.NoError(t, err)

	_, err = repo.Create(context.Background(), &entities.Author{Name: "Jane Doe"})

	assert.True(t, errors.Is(err, apperrors.ErrConstraintViolation))
}

func TestRepository_NameIsCaseSensitive(t *testing.T) {
	repo, _ := setupTestDB(t)
	_, err := repo.Create(context.Background(), &entities.Author{Name: "Jane Doe"})
	require.NoError(t, err)

	_, err = repo.Create(context.Background(), &entities.Author{Name: "jane doe"})
	require.NoError(t, err)

	_, err = repo.RetrieveByName(context.Background(), "JANE DOE")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestRepository_RetrieveByName(t *testing.T) {
	repo, _ := setupTestDB(t)
	created, err := repo.Create(context.Background(), &entities.Author{Name: "Jane Doe"})
	require.NoError(t, err)

	author, err := repo.RetrieveByName(context.Background(), "Jane Doe")

	require.NoError(t, err)
	assert.Equal(t, created.ID, author.ID)
}

func TestRepository_RetrieveManyByNames(t *testing.T) {
	repo, _ := setupTestDB(t)
	_, err := repo.BulkCreate(context.Background(), []entities.Author{{Name: "A"}, {Name: "B"}, {Name: "C"}})
	require.NoError(t, err)

	t.Run("returns only existing names without duplicates", func(t *testing.T) {
		found, err := repo.RetrieveManyByNames(context.Background(), []string{"A", "A", "B", "Z"})

		require.NoError(t, err)
		require.Len(t, found, 2)
		names := []string{found[0].Name, found[1].Name}
		assert.ElementsMatch(t, []string{"A", "B"}, names)
	})

	t.Run("repeated lookups are identical", func(t *testing.T) {
		first, err := repo.RetrieveManyByNames(context.Background(), []string{"A", "B"})
		require.NoError(t, err)
		second, err := repo.RetrieveManyByNames(context.Background(), []string{"A", "B"})
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})

	t.Run("empty input", func(t *testing.T) {
		found, err := repo.RetrieveManyByNames(context.Background(), nil)

		require.NoError(t, err)
		assert.Empty(t, found)
	})
}

func TestRepository_BulkCreate_IsAtomic(t *testing.T) {
	repo, db := setupTestDB(t)
	_, err := repo.Create(context.Background(), &entities.Author{Name: "Existing"})
	require.NoError(t, err)

	_, err = repo.BulkCreate(context.Background(), []entities.Author{{Name: "New 1"}, {Name: "Existing"}, {Name: "New 2"}})

	assert.True(t, errors.Is(err, apperrors.ErrConstraintViolation))
	var count int64
	require.NoError(t, db.Model(&entities.Author{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRepository_BulkCreate_AssignsIDs(t *testing.T) {
	repo, _ := setupTestDB(t)

	created, err := repo.BulkCreate(context.Background(), []entities.Author{{Name: "A"}, {Name: "B"}})

	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.NotZero(t, created[0].ID)
	assert.NotZero(t, created[1].ID)
	assert.NotEqual(t, created[0].ID, created[1].ID)
}

func TestRepository_Update(t *testing.T) {
	repo, _ := setupTestDB(t)
	created, err := repo.Create(context.Background(), &entities.Author{Name: "Old"})
	require.NoError(t, err)
	name := "New"

	updated, err := repo.Update(context.Background(), created.ID, entities.AuthorPatch{Name: &name})

	require.NoError(t, err)
	assert.Equal(t, "New", updated.Name)
}

func TestRepository_List_TieBreakByID(t *testing.T) {
	repo, _ := setupTestDB(t)
	_, err := repo.BulkCreate(context.Background(), []entities.Author{{Name: "B"}, {Name: "A"}, {Name: "C"}})
	require.NoError(t, err)

	list, err := repo.List(context.Background(), crud.Page{Limit: 10})

	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "B", list[0].Name)
	assert.Equal(t, "A", list[1].Name)
	assert.Equal(t, "C", list[2].Name)
}
