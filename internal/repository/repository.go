package repository

import (
	"database/sql"
	"strings"
	"time"
)

func requireRow(result sql.Result, notFound error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return notFound
	}

	return nil
}

// isUniqueViolation works for both SQLite and PostgreSQL.
func isUniqueViolation(err error) bool {
	errStr := err.Error()
	return strings.Contains(errStr, "UNIQUE constraint failed") || strings.Contains(errStr, "duplicate key value")
}

func now() time.Time {
	return time.Now().UTC()
}
