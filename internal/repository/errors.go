// Package repository provides MySQL-backed stores for principals and
// platforms.  Sentinel errors defined here let the service layer branch on
// outcome without inspecting driver errors: ErrNotFound signals that a
// looked-up record does not exist, and ErrConflict signals that an insert
// or update violated a uniqueness constraint (duplicate username, phone
// number, email or route).
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when a record cannot be resolved by id or by a
// unique identity field.  Lookups used for uniqueness pre-checks treat this
// as the happy path.
var ErrNotFound = errors.New("record not found")

// ErrConflict is returned when MySQL rejects a write with a duplicate-key
// error.  The unique indexes in the schema are the real guard against
// concurrent duplicate signups; service-level pre-checks only exist to give
// friendlier errors in the common case.
var ErrConflict = errors.New("duplicate unique field")

// isDuplicate reports whether err is a MySQL duplicate-key error (1062).
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
