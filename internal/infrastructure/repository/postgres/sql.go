package postgres

import (
	"database/sql"
	"errors"
	"strings"
	"time"
)

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func nullTimeToTime(v sql.NullTime) time.Time {
	if !v.Valid {
		return time.Time{}
	}
	return v.Time.UTC()
}

func timeOrNow(v time.Time) time.Time {
	if v.IsZero() {
		return time.Now().UTC()
	}
	return v.UTC()
}

func normalizeKey(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
