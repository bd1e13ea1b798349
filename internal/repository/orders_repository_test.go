package repository

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextOrderSequence_AdvancesPerCall(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrdersRepository(db)

	day := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	upsert := `(?s)INSERT INTO order_sequences.*ON CONFLICT \(day\) DO UPDATE.*RETURNING value`

	mock.ExpectQuery(upsert).
		WithArgs("2026-03-05").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(int64(1)))
	mock.ExpectQuery(upsert).
		WithArgs("2026-03-05").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(int64(2)))

	first, err := repo.NextOrderSequence(day)
	require.NoError(t, err)
	second, err := repo.NextOrderSequence(day)
	require.NoError(t, err)

	// The counter row hands out distinct values, never COUNT-based guesses
	assert.Equal(t, int64(1), first)
	assert.Equal(t, int64(2), second)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNextOrderSequence_PropagatesError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrdersRepository(db)

	mock.ExpectQuery(`INSERT INTO order_sequences`).
		WillReturnError(assert.AnError)

	_, err := repo.NextOrderSequence(time.Now())
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
