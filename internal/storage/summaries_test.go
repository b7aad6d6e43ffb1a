package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecodocs/reportpipe/internal/model"
)

func TestCreateSummaryIfAbsent(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	t.Run("creates and reads back", func(t *testing.T) {
		doc := createTestDocument(t, store, "summarized", time.Now())

		require.NoError(t, store.CreateSummaryIfAbsent(ctx, &model.Summary{
			DocumentID: doc.ID,
			Content:    "A report about river basins.",
			Confidence: 0.87,
		}))

		summary, err := store.GetSummaryByDocumentID(ctx, doc.ID)
		require.NoError(t, err)
		require.NotNil(t, summary)
		assert.Equal(t, doc.ID, summary.DocumentID)
		assert.Equal(t, "A report about river basins.", summary.Content)
		assert.InDelta(t, 0.87, summary.Confidence, 0.001)
		assert.False(t, summary.AnalyzedAt.IsZero())
	})

	t.Run("keeps the original on duplicate insert", func(t *testing.T) {
		doc := createTestDocument(t, store, "twice", time.Now())

		require.NoError(t, store.CreateSummaryIfAbsent(ctx, &model.Summary{
			DocumentID: doc.ID,
			Content:    "first",
			Confidence: 0.5,
		}))
		require.NoError(t, store.CreateSummaryIfAbsent(ctx, &model.Summary{
			DocumentID: doc.ID,
			Content:    "second",
			Confidence: 0.9,
		}))

		summary, err := store.GetSummaryByDocumentID(ctx, doc.ID)
		require.NoError(t, err)
		require.NotNil(t, summary)
		assert.Equal(t, "first", summary.Content)
	})

	t.Run("rejects empty content", func(t *testing.T) {
		doc := createTestDocument(t, store, "invalid", time.Now())

		err := store.CreateSummaryIfAbsent(ctx, &model.Summary{
			DocumentID: doc.ID,
			Content:    "   ",
			Confidence: 0.5,
		})
		assert.ErrorIs(t, err, ErrInvalidSummary)
	})

	t.Run("rejects out-of-range confidence", func(t *testing.T) {
		doc := createTestDocument(t, store, "confident", time.Now())

		err := store.CreateSummaryIfAbsent(ctx, &model.Summary{
			DocumentID: doc.ID,
			Content:    "fine",
			Confidence: 1.5,
		})
		assert.ErrorIs(t, err, ErrInvalidSummary)
	})
}

func TestGetSummaryByDocumentID_Missing(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	summary, err := store.GetSummaryByDocumentID(context.Background(), 12345)
	require.NoError(t, err)
	assert.Nil(t, summary)
}
