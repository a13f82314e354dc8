package database

import (
	"database/sql"
	"database/sql/driver"
	"net"
	"strings"

	"github.com/pkg/errors"
	"github.com/uptrace/bun/driver/pgdriver"
)

// IsUniqueViolation reports whether err is a unique-constraint violation.
// Postgres reports SQLSTATE 23505; the SQLite test driver reports a
// "UNIQUE constraint failed" message.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('C') == "23505"
	}

	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// IsUnavailable reports whether err is a transport or connection failure,
// the one failure kind that is always safe to retry.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}

	// database/sql does not export its closed-pool error.
	if strings.Contains(err.Error(), "sql: database is closed") {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	// SQLSTATE class 08 is "connection exception".
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return strings.HasPrefix(pgErr.Field('C'), "08")
	}

	return false
}
