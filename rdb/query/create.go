package query

import (
	"fmt"
	"strings"

	"github.com/hatlonely/litemap/rdb/schema"
)

// CreateTable 返回建表语句和每个索引的建索引语句
//
// 自增列固定输出 INTEGER PRIMARY KEY AUTOINCREMENT，SQLite 只接受这种写法；
// 没有自增列时，主键列在末尾以 PRIMARY KEY(...) 输出
func CreateTable(table *schema.Table) []Statement {
	tableName := Escape(table.Name())

	var sb strings.Builder
	sb.WriteString("CREATE TABLE IF NOT EXISTS ")
	sb.WriteString(tableName)
	sb.WriteString("(\n")

	columns := table.Columns()
	definitions := make([]string, 0, len(columns)+1)
	for _, column := range columns {
		definitions = append(definitions, columnDefinition(column))
	}
	if !table.HasAutoIncrement() {
		if keys := table.PrimaryKeys(); len(keys) > 0 {
			definitions = append(definitions, fmt.Sprintf("PRIMARY KEY(%s)", joinColumns(keys)))
		}
	}
	sb.WriteString(strings.Join(definitions, ",\n"))
	sb.WriteString("\n);")

	statements := []Statement{{SQL: sb.String()}}
	for _, index := range table.Indexes() {
		statements = append(statements, createIndex(tableName, index))
	}
	return statements
}

func columnDefinition(column schema.Column) string {
	parts := []string{Escape(column.Name)}
	if column.IsPrimaryKey && column.IsAutoIncrement {
		parts = append(parts, "INTEGER", "PRIMARY KEY AUTOINCREMENT")
	} else {
		parts = append(parts, column.SQLType)
	}
	if !column.IsNullable {
		parts = append(parts, "NOT NULL")
	}
	if column.Collation != schema.CollationBinary {
		parts = append(parts, "COLLATE "+column.Collation.String())
	}
	return strings.Join(parts, " ")
}

func createIndex(tableName string, index schema.Index) Statement {
	kind := "INDEX"
	if index.IsUnique {
		kind = "UNIQUE INDEX"
	}
	return Statement{
		SQL: fmt.Sprintf("CREATE %s IF NOT EXISTS %s ON %s(%s);", kind, Escape(index.Name), tableName, joinColumns(index.Columns)),
	}
}

func joinColumns(columns []schema.Column) string {
	names := make([]string, 0, len(columns))
	for _, column := range columns {
		names = append(names, Escape(column.Name))
	}
	return strings.Join(names, ", ")
}
