package rdb

import (
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

const (
	// DriverSQLite 纯 Go 实现，不需要 cgo
	DriverSQLite = "sqlite"
	// DriverSQLite3 cgo 实现
	DriverSQLite3 = "sqlite3"

	// MemoryPath 内存数据库，只存在于上下文持有的连接上
	MemoryPath = ":memory:"
)
