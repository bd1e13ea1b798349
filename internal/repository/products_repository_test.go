package repository

import (
	"encoding/json"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/models"
)

// newTestRedis points a go-redis client at an in-process server
func newTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client, mr
}

func TestGetProducts_ServesFromCache(t *testing.T) {
	db, mock := newMockDB(t)
	client, mr := newTestRedis(t)
	repo := NewProductsRepository(db, client)

	req := &models.SearchProductsRequest{Page: 1, Limit: 20}
	cached := productListCacheEntry{
		Products: []models.Product{{ID: uuid.New(), Name: "Combi Oven", Price: "1999.00"}},
		Total:    1,
	}
	data, err := json.Marshal(cached)
	require.NoError(t, err)
	require.NoError(t, mr.Set(generateListCacheKey("list", req), string(data)))

	// No query expectations: a database roundtrip would fail the call
	products, total, err := repo.GetProducts(req)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, products, 1)
	assert.Equal(t, "Combi Oven", products[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetProducts_WritesCacheOnMiss(t *testing.T) {
	db, mock := newMockDB(t)
	client, _ := newTestRedis(t)
	repo := NewProductsRepository(db, client)

	req := &models.SearchProductsRequest{Page: 1, Limit: 20}

	// Exactly one database roundtrip backs both calls
	mock.ExpectQuery(`SELECT count\(\*\) FROM "products"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(1)))
	mock.ExpectQuery(`SELECT .* FROM "products"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price", "quantity"}).
			AddRow(uuid.New().String(), "Blast Chiller", "2499.00", 3))

	first, total, err := repo.GetProducts(req)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, first, 1)

	second, total, err := repo.GetProducts(req)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].Name, second[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetActiveOffersByGroup_FiltersOutOfStock(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductsRepository(db, nil)

	mock.ExpectQuery(`products\.quantity > 0`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	offers, err := repo.GetActiveOffersByGroup(uuid.New())
	require.NoError(t, err)
	assert.Empty(t, offers)
	assert.NoError(t, mock.ExpectationsWereMet())
}
