package schema

import (
	"reflect"
	"strings"
)

// Collation 文本列的比较规则
type Collation int

const (
	// CollationBinary 引擎默认规则，建表时不输出 COLLATE
	CollationBinary Collation = iota
	CollationNoCase
	CollationRTrim
)

func (c Collation) String() string {
	switch c {
	case CollationNoCase:
		return "NOCASE"
	case CollationRTrim:
		return "RTRIM"
	default:
		return "BINARY"
	}
}

// ParseCollation 解析 binary/nocase/rtrim，大小写不敏感
func ParseCollation(s string) (Collation, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "binary":
		return CollationBinary, true
	case "nocase":
		return CollationNoCase, true
	case "rtrim":
		return CollationRTrim, true
	}
	return CollationBinary, false
}

// Column 列定义，由 Mapper 生成后不再修改
type Column struct {
	FieldName       string       // 结构体成员名
	FieldIndex      []int        // reflect.Value.FieldByIndex 使用的路径，支持嵌入结构体
	FieldType       reflect.Type // 成员声明类型
	Name            string       // 列名
	SQLType         string
	IsPrimaryKey    bool
	IsAutoIncrement bool
	IsNullable      bool
	Collation       Collation

	bind bindKind
}

// Index 索引定义，Columns 按注解中的 order 排序
type Index struct {
	Name     string
	Columns  []Column
	IsUnique bool
}

// Table 表结构，每个类型只构建一次
type Table struct {
	name    string
	typ     reflect.Type
	columns []Column
	indexes []Index
	autoInc int
}

// Name 表名（已按配置去除变音符号）
func (t *Table) Name() string {
	return t.name
}

// Type 映射的结构体类型
func (t *Table) Type() reflect.Type {
	return t.typ
}

// Columns 按声明顺序返回所有列
func (t *Table) Columns() []Column {
	columns := make([]Column, len(t.columns))
	copy(columns, t.columns)
	return columns
}

// Indexes 按索引名首次出现的顺序返回所有索引
func (t *Table) Indexes() []Index {
	indexes := make([]Index, len(t.indexes))
	for i, index := range t.indexes {
		indexes[i] = Index{
			Name:     index.Name,
			Columns:  append([]Column(nil), index.Columns...),
			IsUnique: index.IsUnique,
		}
	}
	return indexes
}

// HasAutoIncrement 是否存在自增列
func (t *Table) HasAutoIncrement() bool {
	return t.autoInc >= 0
}

// AutoIncrementColumn 返回自增列
func (t *Table) AutoIncrementColumn() (Column, bool) {
	if t.autoInc < 0 {
		return Column{}, false
	}
	return t.columns[t.autoInc], true
}

// InsertColumns 插入语句使用的列，排除由引擎赋值的自增列
func (t *Table) InsertColumns() []Column {
	columns := make([]Column, 0, len(t.columns))
	for _, column := range t.columns {
		if !column.IsAutoIncrement {
			columns = append(columns, column)
		}
	}
	return columns
}

// PrimaryKeys 按声明顺序返回主键列
func (t *Table) PrimaryKeys() []Column {
	var columns []Column
	for _, column := range t.columns {
		if column.IsPrimaryKey {
			columns = append(columns, column)
		}
	}
	return columns
}

// Column 根据列名查找列
func (t *Table) Column(name string) (Column, bool) {
	for _, column := range t.columns {
		if column.Name == name {
			return column, true
		}
	}
	return Column{}, false
}
