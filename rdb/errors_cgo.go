//go:build cgo

package rdb

import (
	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

func isCgoConstraintError(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.Code == sqlite3.ErrConstraint
	}
	return false
}
