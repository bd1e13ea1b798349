package repository

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = gorm.ErrRecordNotFound

// ErrNegativeStock is returned when a stock adjustment would take the
// on-hand quantity below zero
var ErrNegativeStock = errors.New("stock adjustment below zero")

// IsNotFound reports whether err is a missing-record error
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// lockForUpdate returns a SELECT ... FOR UPDATE locking clause
func lockForUpdate() clause.Locking {
	return clause.Locking{Strength: "UPDATE"}
}
