package query

import "github.com/hatlonely/litemap/rdb/schema"

// Drop 删除表
func Drop(table *schema.Table) Statement {
	return Statement{SQL: "DROP TABLE IF EXISTS " + Escape(table.Name()) + ";"}
}

// Exists 在 sqlite_master 中按表名计数，结果为 0 或 1
func Exists(table *schema.Table) Statement {
	return Statement{
		SQL:    "SELECT COUNT(name) FROM sqlite_master WHERE type = 'table' AND name = @name;",
		Params: []Param{{Name: "name", Value: table.Name()}},
	}
}

// Count 统计行数
func Count(table *schema.Table) Statement {
	return Statement{SQL: "SELECT COUNT(*) FROM " + Escape(table.Name()) + ";"}
}

// LastInsertRowID 同一连接上最后一次插入的 rowid
func LastInsertRowID() Statement {
	return Statement{SQL: "SELECT last_insert_rowid();"}
}
