package schema

import (
	"strconv"
	"strings"
)

// TagName 列注解使用的 struct tag
//
// 格式：`orm:"column_name,notnull,maxlen=255,collate=nocase,pk,autoincrement,index=idx_name:1,unique=uk_name"`
//   - 第一段不含 "=" 时为列名，"-" 表示忽略该成员
//   - notnull/required/not_null 非空
//   - maxlen/size 字符串最大长度
//   - collate 取值 binary/nocase/rtrim
//   - pk/primary 主键，autoincrement/autoinc 自增主键
//   - index/unique 可写成 name 或 name:order，不带值时使用 idx_<列名>/uk_<列名>
const TagName = "orm"

// TableTagName 在任意字段（通常是 `_ struct{}`）上声明表名
const TableTagName = "table"

// TableNamer 自定义表名
type TableNamer interface {
	TableName() string
}

// Char 单字符类型，映射为 CHARACTER
type Char rune

func (c Char) String() string {
	return string(rune(c))
}

type indexTag struct {
	name     string // 为空时使用默认名
	order    int
	isUnique bool
}

type fieldTag struct {
	ignore        bool
	column        string
	notNull       bool
	maxLength     int
	collation     Collation
	primaryKey    bool
	autoIncrement bool
	indexes       []indexTag
}

func parseFieldTag(tag string) (*fieldTag, error) {
	ft := &fieldTag{}
	if tag == "" {
		return ft, nil
	}
	if tag == "-" {
		ft.ignore = true
		return ft, nil
	}

	parts := strings.Split(tag, ",")
	if first := strings.TrimSpace(parts[0]); !strings.Contains(first, "=") && !isFlag(first) {
		ft.column = first
		parts = parts[1:]
	}

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		key, value, hasValue := strings.Cut(part, "=")
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		switch key {
		case "notnull", "not_null", "required":
			ft.notNull = true
		case "pk", "primary":
			ft.primaryKey = true
		case "autoincrement", "autoinc":
			ft.primaryKey = true
			ft.autoIncrement = true
		case "maxlen", "size":
			n, err := strconv.Atoi(value)
			if err != nil || n <= 0 {
				return nil, newTagError(part, "max length must be a positive integer")
			}
			ft.maxLength = n
		case "collate":
			collation, ok := ParseCollation(value)
			if !ok {
				return nil, newTagError(part, "collation must be one of binary, nocase, rtrim")
			}
			ft.collation = collation
		case "index", "unique":
			index := indexTag{isUnique: key == "unique"}
			if hasValue {
				name, order, hasOrder := strings.Cut(value, ":")
				index.name = strings.TrimSpace(name)
				if hasOrder {
					n, err := strconv.Atoi(strings.TrimSpace(order))
					if err != nil {
						return nil, newTagError(part, "index order must be an integer")
					}
					index.order = n
				}
				if index.name == "" {
					return nil, newTagError(part, "index name is empty")
				}
			}
			ft.indexes = append(ft.indexes, index)
		default:
			return nil, newTagError(part, "unknown option")
		}
	}

	return ft, nil
}

// isFlag 第一段是选项而不是列名，比如 `orm:"pk"`
func isFlag(s string) bool {
	switch strings.ToLower(s) {
	case "notnull", "not_null", "required", "pk", "primary", "autoincrement", "autoinc", "index", "unique":
		return true
	}
	return false
}
