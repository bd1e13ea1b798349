package repository

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/models"
)

func TestGetGroupAggregates_FiltersOutOfStock(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCatalogRepository(db, nil)

	mock.ExpectQuery(`quantity > 0`).
		WillReturnRows(sqlmock.NewRows([]string{"group_id", "offer_count", "min_price", "max_price"}))

	aggregates, err := repo.GetGroupAggregates([]uuid.UUID{uuid.New()})
	require.NoError(t, err)
	assert.Empty(t, aggregates)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGroupSummariesCache_RoundTrip(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewCatalogRepository(nil, client)

	categoryID := uuid.New()
	summaries := []models.GroupSummary{
		{GroupID: uuid.New(), Name: "Combi Ovens", MinPrice: "1899.00", OfferCount: 4, MaxSavingsPct: 18.5},
	}

	_, _, ok := repo.GetCachedGroupSummaries(&categoryID, 1, 20)
	assert.False(t, ok)

	repo.CacheGroupSummaries(&categoryID, 1, 20, summaries, 1)

	cached, total, ok := repo.GetCachedGroupSummaries(&categoryID, 1, 20)
	require.True(t, ok)
	assert.Equal(t, int64(1), total)
	require.Len(t, cached, 1)
	assert.Equal(t, "Combi Ovens", cached[0].Name)
	assert.Equal(t, 18.5, cached[0].MaxSavingsPct)

	// A different page misses
	_, _, ok = repo.GetCachedGroupSummaries(&categoryID, 2, 20)
	assert.False(t, ok)
}
