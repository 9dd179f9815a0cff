package repositories

import (
	"errors"
	"regexp"

	"github.com/go-sql-driver/mysql"
)

const mysqlDuplicateEntry = 1062

// ErrDuplicateKey is returned when an insert or update violates a unique index.
var ErrDuplicateKey = errors.New("duplicate key")

// DuplicateKeyError names the unique index MySQL reported, e.g. "users.idx_users_email".
type DuplicateKeyError struct {
	Key string
	Err error
}

func (e *DuplicateKeyError) Error() string {
	return "duplicate key " + e.Key
}

func (e *DuplicateKeyError) Unwrap() error { return e.Err }

func (e *DuplicateKeyError) Is(target error) bool { return target == ErrDuplicateKey }

var duplicateKeyName = regexp.MustCompile(`for key '([^']+)'`)

// IsDuplicateKey reports whether err is a MySQL 1062 error.
func IsDuplicateKey(err error) bool {
	if errors.Is(err, ErrDuplicateKey) {
		return true
	}
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry
}

func translateDuplicate(err error) error {
	var myErr *mysql.MySQLError
	if !errors.As(err, &myErr) || myErr.Number != mysqlDuplicateEntry {
		return err
	}
	key := ""
	if m := duplicateKeyName.FindStringSubmatch(myErr.Message); len(m) == 2 {
		key = m[1]
	}
	return &DuplicateKeyError{Key: key, Err: err}
}
