package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecodocs/reportpipe/internal/model"
)

// Helper function to create test storage.
func createTestStorage(t *testing.T) (*SQLiteStorage, func()) {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err, "Failed to create storage")

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		t.Fatalf("Failed to migrate: %v", err)
	}

	return store, func() { _ = store.Close() }
}

// Helper function to insert a document with a controlled creation time.
func createTestDocument(t *testing.T, store *SQLiteStorage, title string, createdAt time.Time) *model.Document {
	t.Helper()
	ctx := context.Background()

	doc, err := store.CreateDocument(ctx, &model.Document{
		Title:     title,
		FilePath:  fmt.Sprintf("reports/%s.pdf", title),
		OwnerID:   1,
		CreatedAt: createdAt,
	})
	require.NoError(t, err, "Failed to create document")
	return doc
}

func TestNewSQLiteStorage(t *testing.T) {
	t.Run("creates database and parent directory", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "nested", "dir", "test.db")

		store, err := NewSQLiteStorage(dbPath)
		require.NoError(t, err)
		defer func() { _ = store.Close() }()

		require.NoError(t, store.Migrate(context.Background()))
	})

	t.Run("rejects empty path", func(t *testing.T) {
		_, err := NewSQLiteStorage("")
		assert.ErrorIs(t, err, ErrEmptyString)
	})
}

func TestMigrate(t *testing.T) {
	t.Run("fresh database reaches expected version", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		version, err := store.SchemaVersion(context.Background())
		require.NoError(t, err)
		assert.Equal(t, ExpectedSchemaVersion, version)
	})

	t.Run("migrate is idempotent", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		ctx := context.Background()
		require.NoError(t, store.Migrate(ctx))
		require.NoError(t, store.Migrate(ctx))

		version, err := store.SchemaVersion(ctx)
		require.NoError(t, err)
		assert.Equal(t, ExpectedSchemaVersion, version)
	})

	t.Run("seeds default categories", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		categories, err := store.GetCategories(context.Background())
		require.NoError(t, err)
		require.NotEmpty(t, categories)

		names := make(map[string]bool, len(categories))
		for _, cat := range categories {
			names[cat.Name] = true
		}
		for _, want := range []string{"Climate", "Water", "Energy", "Finance"} {
			assert.True(t, names[want], "expected seeded category %q", want)
		}
	})
}
