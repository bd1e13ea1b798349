package services

import "gorm.io/gorm/clause"

// lockingClause returns a SELECT ... FOR UPDATE clause for stock re-checks
func lockingClause() clause.Locking {
	return clause.Locking{Strength: "UPDATE"}
}
