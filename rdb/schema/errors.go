package schema

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrNotStruct                     = errors.New("type is not a struct")
	ErrInvalidTag                    = errors.New("invalid orm tag")
	ErrUnsupportedType               = errors.New("type not supported")
	ErrAutoIncrementTypeNotSupported = errors.New("type not supported for auto increment")
	ErrMultipleAutoIncrementColumns  = errors.New("table has more than one auto increment column")
	ErrInconsistentIndexUniqueness   = errors.New("all columns of an index must have the same unique value")
)

// MappingError 构建表结构失败，Kind 为上面的某个哨兵错误
//
// Table 使用规范化之后的表名，与建表语句中的表名一致
type MappingError struct {
	Kind   error
	Table  string
	Field  string
	Type   string
	Index  string
	Detail string
}

func (e *MappingError) Error() string {
	msg := e.Kind.Error()
	if e.Table != "" {
		msg = fmt.Sprintf("%s: table %s", msg, e.Table)
	}
	if e.Field != "" {
		msg = fmt.Sprintf("%s, field %s", msg, e.Field)
	}
	if e.Type != "" {
		msg = fmt.Sprintf("%s, type %s", msg, e.Type)
	}
	if e.Index != "" {
		msg = fmt.Sprintf("%s, index %s", msg, e.Index)
	}
	if e.Detail != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Detail)
	}
	return msg
}

func (e *MappingError) Unwrap() error {
	return e.Kind
}

func newTagError(part string, detail string) *MappingError {
	return &MappingError{Kind: ErrInvalidTag, Detail: fmt.Sprintf("%q: %s", part, detail)}
}
