package cfg

import (
	"os"
	"reflect"
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

// ApplyEnv 用环境变量覆盖配置
//
// 变量名为 prefix 加上 cfg 路径，驼峰转为下划线并大写，
// 比如 prefix 为 "LITEMAP"，monitor.enableMetrics 对应 LITEMAP_MONITOR_ENABLE_METRICS。
// 切片和 map 中的元素不支持覆盖
func ApplyEnv(prefix string, object any) error {
	return applyEnv(prefix, object, os.LookupEnv)
}

func applyEnv(prefix string, object any, lookup func(string) (string, bool)) error {
	rv := reflect.ValueOf(object)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return errors.New("object must be a non-nil pointer")
	}
	_, err := applyEnvValue(strings.TrimSuffix(strings.ToUpper(prefix), "_"), rv.Elem(), lookup)
	return err
}

// applyEnvValue 返回是否有环境变量生效，空指针只在有变量生效时才赋值
func applyEnvValue(name string, rv reflect.Value, lookup func(string) (string, bool)) (bool, error) {
	switch {
	case rv.Kind() == reflect.Pointer:
		if !rv.IsNil() {
			return applyEnvValue(name, rv.Elem(), lookup)
		}
		elem := reflect.New(rv.Type().Elem())
		applied, err := applyEnvValue(name, elem.Elem(), lookup)
		if err != nil || !applied {
			return false, err
		}
		rv.Set(elem)
		return true, nil

	case rv.Kind() == reflect.Struct && rv.Type() != timeType:
		applied := false
		rt := rv.Type()
		for i := 0; i < rt.NumField(); i++ {
			field := rt.Field(i)
			if !rv.Field(i).CanSet() {
				continue
			}
			key := fieldKey(field)
			if key == "-" {
				continue
			}
			child := envName(key)
			if name != "" {
				child = name + "_" + child
			}
			ok, err := applyEnvValue(child, rv.Field(i), lookup)
			if err != nil {
				return false, err
			}
			applied = applied || ok
		}
		return applied, nil

	case rv.Kind() == reflect.Map:
		return false, nil
	}

	value, ok := lookup(name)
	if !ok {
		return false, nil
	}
	if err := setEnv(name, rv, value); err != nil {
		return false, err
	}
	return true, nil
}

func setEnv(name string, rv reflect.Value, value string) error {
	if err := setString(rv, value); err != nil {
		return errors.WithMessagef(err, "env %s", name)
	}
	return nil
}

// envName busyTimeout -> BUSY_TIMEOUT
func envName(key string) string {
	var sb strings.Builder
	runes := []rune(key)
	for i, r := range runes {
		if unicode.IsUpper(r) && i > 0 && !unicode.IsUpper(runes[i-1]) && runes[i-1] != '_' {
			sb.WriteRune('_')
		}
		if r == '.' || r == '-' {
			sb.WriteRune('_')
			continue
		}
		sb.WriteRune(unicode.ToUpper(r))
	}
	return sb.String()
}
