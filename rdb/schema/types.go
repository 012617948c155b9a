package schema

import (
	"database/sql"
	"fmt"
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// bindKind 决定插入时如何把成员值转换成驱动参数
type bindKind int

const (
	bindDefault bindKind = iota
	bindChar
	bindEnum
	bindTicks
	bindNullTicks
	bindBlob
)

var (
	timeType        = reflect.TypeOf(time.Time{})
	durationType    = reflect.TypeOf(time.Duration(0))
	uuidType        = reflect.TypeOf(uuid.UUID{})
	decimalType     = reflect.TypeOf(decimal.Decimal{})
	charType        = reflect.TypeOf(Char(0))
	stringerType    = reflect.TypeOf((*fmt.Stringer)(nil)).Elem()
	nullTimeType    = reflect.TypeOf(sql.NullTime{})
	nullWrapperType = map[reflect.Type]reflect.Type{
		reflect.TypeOf(sql.NullString{}):      reflect.TypeOf(""),
		reflect.TypeOf(sql.NullInt64{}):       reflect.TypeOf(int64(0)),
		reflect.TypeOf(sql.NullInt32{}):       reflect.TypeOf(int32(0)),
		reflect.TypeOf(sql.NullInt16{}):       reflect.TypeOf(int16(0)),
		reflect.TypeOf(sql.NullByte{}):        reflect.TypeOf(byte(0)),
		reflect.TypeOf(sql.NullBool{}):        reflect.TypeOf(false),
		reflect.TypeOf(sql.NullFloat64{}):     reflect.TypeOf(float64(0)),
		nullTimeType:                          timeType,
		reflect.TypeOf(uuid.NullUUID{}):       uuidType,
		reflect.TypeOf(decimal.NullDecimal{}): decimalType,
	}
)

// unwrapNullable 去掉可空包装（指针、sql.Null* 等），只用于类型解析
func unwrapNullable(t reflect.Type) (reflect.Type, bool) {
	if t.Kind() == reflect.Pointer {
		return t.Elem(), true
	}
	if u, ok := nullWrapperType[t]; ok {
		return u, true
	}
	return t, false
}

// isValueType 可直接映射为一列的结构体类型，嵌入时不展开
func isValueType(t reflect.Type) bool {
	if _, ok := nullWrapperType[t]; ok {
		return true
	}
	return t == timeType || t == decimalType
}

func isIntegerKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

// isEnum 具名整数类型且实现 fmt.Stringer，即 stringer 生成的枚举
func isEnum(t reflect.Type) bool {
	if !isIntegerKind(t.Kind()) || t.PkgPath() == "" || t == charType || t == durationType {
		return false
	}
	return t.Implements(stringerType) || reflect.PointerTo(t).Implements(stringerType)
}

// isAutoIncrementType 自增列只允许普通整数类型
func isAutoIncrementType(t reflect.Type) bool {
	return isIntegerKind(t.Kind()) && !isEnum(t) && t != charType
}

func integerSQLType(bits int) string {
	switch bits {
	case 8:
		return "SMALLINT"
	case 16:
		return "MEDIUMINT"
	case 32:
		return "INTEGER"
	default:
		return "BIGINT"
	}
}

// resolveSQLType 按声明类型解析 SQL 类型，maxLength 只影响字符串
func (m *Mapper) resolveSQLType(declared reflect.Type, maxLength int) (string, bindKind, bool) {
	t, wrapped := unwrapNullable(declared)

	switch {
	case t == uuidType:
		return "CHAR(36)", bindDefault, true
	case t == decimalType:
		return "DECIMAL", bindDefault, true
	case t == timeType:
		if !m.options.StoreDateTimeAsTicks {
			return "DATETIME", bindDefault, true
		}
		if declared == nullTimeType {
			return "BIGINT", bindNullTicks, true
		}
		return "BIGINT", bindTicks, true
	case t == charType:
		return "CHARACTER", bindChar, true
	case t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8 && !wrapped:
		return "BLOB", bindBlob, true
	case isEnum(t):
		return "INTEGER", bindEnum, true
	case isIntegerKind(t.Kind()):
		return integerSQLType(t.Bits()), bindDefault, true
	}

	switch t.Kind() {
	case reflect.Bool:
		return "BOOLEAN", bindDefault, true
	case reflect.String:
		if maxLength > 0 {
			return fmt.Sprintf("VARCHAR(%d)", maxLength), bindDefault, true
		}
		return "VARCHAR", bindDefault, true
	case reflect.Float32:
		return "FLOAT", bindDefault, true
	case reflect.Float64:
		return "DOUBLE", bindDefault, true
	}

	return "", bindDefault, false
}

// defaultNullable 字符串和字节序列默认可空，其余类型只有包装后才可空
func defaultNullable(declared reflect.Type) bool {
	if _, wrapped := unwrapNullable(declared); wrapped {
		return true
	}
	if declared.Kind() == reflect.String {
		return true
	}
	return declared.Kind() == reflect.Slice && declared.Elem().Kind() == reflect.Uint8
}

// Value 取出 item 中该列的值并转换为驱动参数，item 必须是映射类型的结构体值
func (c Column) Value(item reflect.Value) any {
	v := item.FieldByIndex(c.FieldIndex)
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}

	switch c.bind {
	case bindChar:
		return string(rune(v.Int()))
	case bindEnum:
		if v.CanInt() {
			return v.Int()
		}
		return int64(v.Uint())
	case bindTicks:
		return v.Interface().(time.Time).UnixNano()
	case bindNullTicks:
		nt := v.Interface().(sql.NullTime)
		if !nt.Valid {
			return nil
		}
		return nt.Time.UnixNano()
	case bindBlob:
		if v.IsNil() {
			return nil
		}
		return v.Bytes()
	}
	return v.Interface()
}

// IsBlob 是否以二进制参数绑定
func (c Column) IsBlob() bool {
	return c.bind == bindBlob
}

// SetIdentity 把引擎分配的自增值写回 item，item 必须可寻址
//
// 目标宽度放不下 id 时返回 false，不修改成员
func (c Column) SetIdentity(item reflect.Value, id int64) bool {
	v := item.FieldByIndex(c.FieldIndex)
	switch {
	case v.CanInt():
		if v.OverflowInt(id) {
			return false
		}
		v.SetInt(id)
	case v.CanUint():
		if id < 0 || v.OverflowUint(uint64(id)) {
			return false
		}
		v.SetUint(uint64(id))
	default:
		return false
	}
	return true
}
