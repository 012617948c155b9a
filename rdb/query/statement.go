package query

import (
	"database/sql"
	"fmt"
	"strings"
)

// ParamKind 参数绑定方式
type ParamKind int

const (
	ParamValue ParamKind = iota
	// ParamBlob 字节序列，值为 []byte 或 nil，驱动按 BLOB 绑定
	ParamBlob
)

func (k ParamKind) String() string {
	if k == ParamBlob {
		return "blob"
	}
	return "value"
}

// Param 命名参数，Name 不带 "@" 前缀
type Param struct {
	Name  string
	Value any
	Kind  ParamKind
}

// Statement 一条 SQL 语句和它的参数
type Statement struct {
	SQL    string
	Params []Param
}

// Args 转换为 database/sql 的命名参数
func (s Statement) Args() []any {
	if len(s.Params) == 0 {
		return nil
	}
	args := make([]any, 0, len(s.Params))
	for _, p := range s.Params {
		args = append(args, sql.Named(p.Name, p.Value))
	}
	return args
}

func (s Statement) String() string {
	return s.SQL
}

// Escape 转义标识符，默认使用方括号，名字中包含 "]" 时改用双引号
func Escape(name string) string {
	if !strings.Contains(name, "]") {
		return "[" + name + "]"
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func paramName(item int, column int) string {
	return fmt.Sprintf("p%d_%d", item, column)
}
