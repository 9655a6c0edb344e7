package store

import (
	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

var (
	ErrNotFound          = errors.New("store: record not found")
	ErrDuplicateUsername = errors.New("store: username already exists")
	ErrUnknownAuthor     = errors.New("store: post author does not exist")
	ErrPasswordTooLong   = errors.New("store: password exceeds 72 bytes")
)

func constraintCode(err error) sqlite3.ErrNoExtended {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode
	}
	return 0
}

func isUniqueViolation(err error) bool {
	return constraintCode(err) == sqlite3.ErrConstraintUnique
}

func isForeignKeyViolation(err error) bool {
	return constraintCode(err) == sqlite3.ErrConstraintForeignKey
}
