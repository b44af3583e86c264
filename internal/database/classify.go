package database

import (
	"errors"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/localnerve/medrecords/internal/types"
	"gorm.io/gorm"
)

// Driver error codes of unique and foreign key violations
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	mysqlDuplicateEntry   = 1062
	mysqlNoReferencedRow  = 1452
	mysqlRowIsReferenced  = 1451
)

// Classify marks constraint violations as integrity errors and leaves every
// other error untouched.
func Classify(err error) error {
	if err == nil || types.Integrity.Has(err) {
		return err
	}
	if IsConstraintViolation(err) {
		return types.Integrity.Wrap(err)
	}
	return err
}

// IsConstraintViolation reports whether err is a unique or foreign key
// violation from any supported driver
func IsConstraintViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation || pgErr.Code == pgForeignKeyViolation
	}

	var myErr *mysqldriver.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case mysqlDuplicateEntry, mysqlNoReferencedRow, mysqlRowIsReferenced:
			return true
		}
	}

	return false
}
