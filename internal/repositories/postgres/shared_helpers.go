package postgres

import (
	"fmt"

	"gorm.io/gorm"
)

// handleDBError wraps a database error with the failed operation. Sentinel
// errors (record not found, duplicated key) stay reachable through errors.Is.
func handleDBError(err error, operation string) error {
	return fmt.Errorf("%s: %w", operation, err)
}

// applyPagination applies limit/offset. A limit of 0 means unlimited, which
// the recommendation candidate listing relies on.
func applyPagination(query *gorm.DB, limit, offset int) *gorm.DB {
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	return query
}

// memberRankOrder sorts community members admin-first with a stable name
// tie-break. The CASE expression is fixed text, never user input.
const memberRankOrder = "CASE user_communities.role " +
	"WHEN 'admin' THEN 0 WHEN 'moderator' THEN 1 ELSE 2 END, users.name ASC"
