package cfg

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Bind 把 Decode 得到的 map 树写入 object，字段名取 cfg tag，没有 tag 时使用字段名，匹配不区分大小写
func Bind(tree map[string]any, object any) error {
	rv := reflect.ValueOf(object)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return errors.New("object must be a non-nil pointer")
	}
	return bindValue(tree, rv.Elem(), "")
}

func bindValue(src any, dst reflect.Value, path string) error {
	if src == nil {
		return nil
	}

	if dst.Kind() == reflect.Pointer {
		if dst.IsNil() {
			dst.Set(reflect.New(dst.Type().Elem()))
		}
		return bindValue(src, dst.Elem(), path)
	}

	// 字符串统一按 def tag 的规则解析，ini 和环境变量只有字符串
	if s, ok := src.(string); ok && dst.Kind() != reflect.String {
		if err := setString(dst, s); err != nil {
			return errors.WithMessagef(err, "key %s", path)
		}
		return nil
	}

	srcValue := reflect.ValueOf(src)
	switch {
	case dst.Kind() == reflect.Struct && dst.Type() != timeType:
		m, ok := src.(map[string]any)
		if !ok {
			return errors.Errorf("key %s: expect a map, got %T", path, src)
		}
		return bindStruct(m, dst, path)

	case dst.Kind() == reflect.Slice && srcValue.Kind() == reflect.Slice:
		slice := reflect.MakeSlice(dst.Type(), srcValue.Len(), srcValue.Len())
		for i := 0; i < srcValue.Len(); i++ {
			// 新元素先填默认值
			if err := setDefaults(slice.Index(i)); err != nil {
				return errors.WithMessagef(err, "key %s[%d]", path, i)
			}
			if err := bindValue(srcValue.Index(i).Interface(), slice.Index(i), joinPath(path, "", i)); err != nil {
				return err
			}
		}
		dst.Set(slice)
		return nil

	case dst.Kind() == reflect.Map && srcValue.Kind() == reflect.Map:
		if dst.IsNil() {
			dst.Set(reflect.MakeMap(dst.Type()))
		}
		for _, key := range srcValue.MapKeys() {
			elem := reflect.New(dst.Type().Elem()).Elem()
			if err := bindValue(srcValue.MapIndex(key).Interface(), elem, joinPath(path, key.String(), -1)); err != nil {
				return err
			}
			dst.SetMapIndex(key.Convert(dst.Type().Key()), elem)
		}
		return nil

	case dst.Type() == durationType && srcValue.CanInt():
		// 数字按纳秒处理，与 def tag 一致
		dst.SetInt(srcValue.Int())
		return nil
	}

	if srcValue.Type().AssignableTo(dst.Type()) {
		dst.Set(srcValue)
		return nil
	}
	if isNumber(srcValue.Kind()) && isNumber(dst.Kind()) {
		dst.Set(srcValue.Convert(dst.Type()))
		return nil
	}

	return errors.Errorf("key %s: cannot convert %T to %v", path, src, dst.Type())
}

func bindStruct(src map[string]any, dst reflect.Value, path string) error {
	keys := make(map[string]string, len(src))
	for k := range src {
		keys[strings.ToLower(k)] = k
	}

	rt := dst.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !dst.Field(i).CanSet() {
			continue
		}
		name := fieldKey(field)
		if name == "-" {
			continue
		}
		key, ok := keys[strings.ToLower(name)]
		if !ok {
			continue
		}
		if err := bindValue(src[key], dst.Field(i), joinPath(path, name, -1)); err != nil {
			return err
		}
	}
	return nil
}

func fieldKey(field reflect.StructField) string {
	if tag := field.Tag.Get("cfg"); tag != "" {
		return strings.Split(tag, ",")[0]
	}
	return field.Name
}

func isNumber(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func joinPath(path string, key string, index int) string {
	if index >= 0 {
		return path + "[" + strconv.Itoa(index) + "]"
	}
	if path == "" {
		return key
	}
	return path + "." + key
}
