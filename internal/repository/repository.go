package repository

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrDuplicate is returned when an insert hits a unique index
var ErrDuplicate = errors.New("record already exists")

// emptyJSON matches the stored forms of an empty JSON list column
const emptyJSON = "('[]', 'null', '')"

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func newID() string {
	return uuid.NewString()
}

func now() time.Time {
	return time.Now().UTC()
}

// jsonText renders a JSON column value as text so every driver stores it as TEXT
func jsonText(v driver.Valuer) (string, error) {
	value, err := v.Value()
	if err != nil {
		return "", fmt.Errorf("failed to encode json column: %w", err)
	}
	switch b := value.(type) {
	case []byte:
		return string(b), nil
	case string:
		return b, nil
	case nil:
		return "[]", nil
	default:
		return "", fmt.Errorf("unexpected json column value %T", value)
	}
}

func nullString(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func changed(result sql.Result) (bool, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n > 0, nil
}
