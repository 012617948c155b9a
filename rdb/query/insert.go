package query

import (
	"reflect"
	"strings"

	"github.com/hatlonely/litemap/rdb/schema"
	"github.com/pkg/errors"
)

// Insert 生成一条覆盖所有 items 的 INSERT 语句，items 为表对应的结构体或其指针
//
// 自增列不出现在列和值中。参数名为 p<item>_<column>，保证多行之间不冲突。
// 没有可插入列时只支持单行，生成 INSERT ... DEFAULT VALUES
func Insert(table *schema.Table, items ...any) (Statement, error) {
	if len(items) == 0 {
		return Statement{}, ErrNoItems
	}

	values := make([]reflect.Value, 0, len(items))
	for i, item := range items {
		v, err := itemValue(table, item)
		if err != nil {
			return Statement{}, errors.WithMessagef(err, "item %d", i)
		}
		values = append(values, v)
	}

	tableName := Escape(table.Name())
	columns := table.InsertColumns()
	if len(columns) == 0 {
		if len(items) > 1 {
			return Statement{}, errors.WithMessagef(ErrNoInsertableColumns, "table %s, %d items", table.Name(), len(items))
		}
		return Statement{SQL: "INSERT INTO " + tableName + " DEFAULT VALUES;"}, nil
	}

	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(tableName)
	sb.WriteString(" (")
	sb.WriteString(joinColumns(columns))
	sb.WriteString(") VALUES ")

	params := make([]Param, 0, len(items)*len(columns))
	for i, v := range values {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(")
		for j, column := range columns {
			if j > 0 {
				sb.WriteString(", ")
			}
			name := paramName(i, j)
			sb.WriteString("@")
			sb.WriteString(name)

			kind := ParamValue
			if column.IsBlob() {
				kind = ParamBlob
			}
			params = append(params, Param{Name: name, Value: column.Value(v), Kind: kind})
		}
		sb.WriteString(")")
	}
	sb.WriteString(";")

	return Statement{SQL: sb.String(), Params: params}, nil
}

func itemValue(table *schema.Table, item any) (reflect.Value, error) {
	v := reflect.ValueOf(item)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return reflect.Value{}, errors.WithMessage(ErrItemType, "nil item")
		}
		v = v.Elem()
	}
	if !v.IsValid() || v.Type() != table.Type() {
		return reflect.Value{}, errors.WithMessagef(ErrItemType, "want %s, got %T", table.Type(), item)
	}
	return v, nil
}
