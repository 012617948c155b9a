package rdb

import (
	"github.com/pkg/errors"
	"modernc.org/sqlite"
	sqlitelib "modernc.org/sqlite/lib"
)

var (
	ErrClosed           = errors.New("context is closed")
	ErrIdentityOverflow = errors.New("identity does not fit the auto increment field")
)

// IsConstraintError 是否为 SQLite 约束错误（唯一、非空、主键、外键、CHECK）
func IsConstraintError(err error) bool {
	if err == nil {
		return false
	}
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code()&0xff == sqlitelib.SQLITE_CONSTRAINT
	}
	return isCgoConstraintError(err)
}
