package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecodocs/reportpipe/internal/model"
)

func TestUpsertDataPoints(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	t.Run("inserts and reads back ordered by key", func(t *testing.T) {
		doc := createTestDocument(t, store, "points", time.Now())
		page := 12

		require.NoError(t, store.UpsertDataPoints(ctx, doc.ID, []model.DataPoint{
			{
				Key:               "total_emissions",
				Value:             "42000",
				Unit:              "tCO2e",
				Page:              &page,
				Confidence:        0.91,
				ChartType:         model.ChartTypeBar,
				IndicatorCategory: model.IndicatorClimateEmissions,
			},
			{
				Key:               "loan_amount",
				Value:             "1.2 billion",
				Confidence:        0.75,
				ChartType:         model.ChartTypeUnknown,
				IndicatorCategory: model.IndicatorFinanceLoan,
			},
		}))

		points, err := store.GetDataPointsByDocumentID(ctx, doc.ID)
		require.NoError(t, err)
		require.Len(t, points, 2)

		assert.Equal(t, "loan_amount", points[0].Key)
		assert.Equal(t, "1.2 billion", points[0].Value)
		assert.Empty(t, points[0].Unit)
		assert.Nil(t, points[0].Page)
		assert.Equal(t, model.IndicatorFinanceLoan, points[0].IndicatorCategory)

		assert.Equal(t, "total_emissions", points[1].Key)
		assert.Equal(t, "tCO2e", points[1].Unit)
		require.NotNil(t, points[1].Page)
		assert.Equal(t, 12, *points[1].Page)
		assert.Equal(t, model.ChartTypeBar, points[1].ChartType)
	})

	t.Run("rerun overwrites values for the same key", func(t *testing.T) {
		doc := createTestDocument(t, store, "rerun", time.Now())

		require.NoError(t, store.UpsertDataPoints(ctx, doc.ID, []model.DataPoint{
			{Key: "population", Value: "100000", Confidence: 0.6},
		}))
		require.NoError(t, store.UpsertDataPoints(ctx, doc.ID, []model.DataPoint{
			{Key: "population", Value: "105000", Unit: "people", Confidence: 0.95},
		}))

		points, err := store.GetDataPointsByDocumentID(ctx, doc.ID)
		require.NoError(t, err)
		require.Len(t, points, 1)
		assert.Equal(t, "105000", points[0].Value)
		assert.Equal(t, "people", points[0].Unit)
		assert.InDelta(t, 0.95, points[0].Confidence, 0.001)
	})

	t.Run("leaves other keys untouched", func(t *testing.T) {
		doc := createTestDocument(t, store, "partial", time.Now())

		require.NoError(t, store.UpsertDataPoints(ctx, doc.ID, []model.DataPoint{
			{Key: "a", Value: "1", Confidence: 0.5},
			{Key: "b", Value: "2", Confidence: 0.5},
		}))
		require.NoError(t, store.UpsertDataPoints(ctx, doc.ID, []model.DataPoint{
			{Key: "b", Value: "22", Confidence: 0.8},
		}))

		points, err := store.GetDataPointsByDocumentID(ctx, doc.ID)
		require.NoError(t, err)
		require.Len(t, points, 2)
		assert.Equal(t, "1", points[0].Value)
		assert.Equal(t, "22", points[1].Value)
	})

	t.Run("empty slice is a no-op", func(t *testing.T) {
		doc := createTestDocument(t, store, "nothing", time.Now())
		require.NoError(t, store.UpsertDataPoints(ctx, doc.ID, nil))

		points, err := store.GetDataPointsByDocumentID(ctx, doc.ID)
		require.NoError(t, err)
		assert.Empty(t, points)
	})

	t.Run("rejects missing key", func(t *testing.T) {
		doc := createTestDocument(t, store, "bad-point", time.Now())
		err := store.UpsertDataPoints(ctx, doc.ID, []model.DataPoint{
			{Key: "", Value: "1", Confidence: 0.5},
		})
		assert.ErrorIs(t, err, ErrInvalidPoint)
	})

	t.Run("points are scoped per document", func(t *testing.T) {
		first := createTestDocument(t, store, "first", time.Now())
		second := createTestDocument(t, store, "second", time.Now())

		require.NoError(t, store.UpsertDataPoints(ctx, first.ID, []model.DataPoint{
			{Key: "shared_key", Value: "one", Confidence: 0.5},
		}))
		require.NoError(t, store.UpsertDataPoints(ctx, second.ID, []model.DataPoint{
			{Key: "shared_key", Value: "two", Confidence: 0.5},
		}))

		points, err := store.GetDataPointsByDocumentID(ctx, first.ID)
		require.NoError(t, err)
		require.Len(t, points, 1)
		assert.Equal(t, "one", points[0].Value)
	})
}
