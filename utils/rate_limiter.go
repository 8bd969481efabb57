package utils

import (
	"database/sql"
	"fmt"
	"time"
)

// DailySentCount returns how many emails an account has sent since UTC
// midnight, counted from its sent-folder records. Used to enforce the
// optional per-account daily send cap.
func DailySentCount(db *sql.DB, accountEmail string) (int, error) {
	startOfDay := time.Now().UTC().Truncate(24 * time.Hour)

	var count int
	err := db.QueryRow(
		`SELECT COUNT(*) FROM emails WHERE account_id = $1 AND folder = 'sent' AND timestamp >= $2`,
		accountEmail, startOfDay,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get daily sent count: %w", err)
	}
	return count, nil
}
