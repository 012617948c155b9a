//go:build !cgo

package rdb

// 没有 cgo 时 sqlite3 驱动不可用
func isCgoConstraintError(err error) bool {
	return false
}
