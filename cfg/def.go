package cfg

import (
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

var (
	durationType = reflect.TypeOf(time.Duration(0))
	timeType     = reflect.TypeOf(time.Time{})
)

// SetDefaults 为结构体设置默认值，基于 def tag，只修改零值字段
func SetDefaults(object any) error {
	if object == nil {
		return errors.New("object cannot be nil")
	}

	rv := reflect.ValueOf(object)
	if rv.Kind() != reflect.Pointer {
		return errors.New("object must be a pointer")
	}
	if rv.IsNil() {
		return errors.New("object cannot be nil")
	}

	return setDefaults(rv.Elem())
}

func setDefaults(rv reflect.Value) error {
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			rv.Set(reflect.New(rv.Type().Elem()))
		}
		return setDefaults(rv.Elem())
	case reflect.Slice:
		for i := 0; i < rv.Len(); i++ {
			if err := setDefaults(rv.Index(i)); err != nil {
				return errors.WithMessagef(err, "element %d", i)
			}
		}
		return nil
	case reflect.Struct:
		if rv.Type() == timeType {
			return nil
		}
	default:
		return nil
	}

	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		fieldValue := rv.Field(i)
		if !fieldValue.CanSet() {
			continue
		}
		defTag := field.Tag.Get("def")

		if isNested(fieldValue.Type()) {
			// 空指针只在有 def tag 时分配
			if fieldValue.Kind() == reflect.Pointer && fieldValue.IsNil() && defTag == "" {
				continue
			}
			if err := setDefaults(fieldValue); err != nil {
				return errors.WithMessagef(err, "failed to set defaults for field %s", field.Name)
			}
			continue
		}
		if fieldValue.Kind() == reflect.Slice && fieldValue.Len() > 0 {
			if err := setDefaults(fieldValue); err != nil {
				return errors.WithMessagef(err, "failed to set defaults for field %s", field.Name)
			}
			continue
		}

		if defTag == "" || !fieldValue.IsZero() {
			continue
		}
		if err := setString(fieldValue, defTag); err != nil {
			return errors.WithMessagef(err, "failed to set default value for field %s", field.Name)
		}
	}

	return nil
}

// isNested 需要递归处理的结构体，time.Time 作为值处理
func isNested(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct && t != timeType
}

// setString 把字符串解析为 rv 的类型，def tag、环境变量和 ini 的值都经过这里
func setString(rv reflect.Value, value string) error {
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			rv.Set(reflect.New(rv.Type().Elem()))
		}
		return setString(rv.Elem(), value)
	}

	switch rv.Kind() {
	case reflect.String:
		rv.SetString(value)
		return nil

	case reflect.Bool:
		val, err := strconv.ParseBool(value)
		if err != nil {
			return errors.Wrapf(err, "invalid bool value %q", value)
		}
		rv.SetBool(val)
		return nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if rv.Type() == durationType {
			return setDuration(rv, value)
		}
		val, err := strconv.ParseInt(value, 0, rv.Type().Bits())
		if err != nil {
			return errors.Wrapf(err, "invalid int value %q", value)
		}
		rv.SetInt(val)
		return nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		val, err := strconv.ParseUint(value, 0, rv.Type().Bits())
		if err != nil {
			return errors.Wrapf(err, "invalid uint value %q", value)
		}
		rv.SetUint(val)
		return nil

	case reflect.Float32, reflect.Float64:
		val, err := strconv.ParseFloat(value, rv.Type().Bits())
		if err != nil {
			return errors.Wrapf(err, "invalid float value %q", value)
		}
		rv.SetFloat(val)
		return nil

	case reflect.Struct:
		if rv.Type() == timeType {
			return setTime(rv, value)
		}

	case reflect.Slice:
		parts := strings.Split(value, ",")
		slice := reflect.MakeSlice(rv.Type(), len(parts), len(parts))
		for i, part := range parts {
			if err := setString(slice.Index(i), strings.TrimSpace(part)); err != nil {
				return errors.WithMessagef(err, "failed to set slice element %d", i)
			}
		}
		rv.Set(slice)
		return nil

	case reflect.Interface:
		if rv.NumMethod() == 0 {
			rv.Set(reflect.ValueOf(value))
			return nil
		}
	}

	return errors.Errorf("unsupported type %v", rv.Type())
}

// setDuration 支持 "30s" 这样的写法，纯数字按纳秒处理
func setDuration(rv reflect.Value, value string) error {
	duration, err := time.ParseDuration(value)
	if err != nil {
		n, numErr := strconv.ParseInt(value, 10, 64)
		if numErr != nil {
			return errors.Wrapf(err, "invalid duration value %q", value)
		}
		duration = time.Duration(n)
	}
	rv.SetInt(int64(duration))
	return nil
}

var timeFormats = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// setTime 支持常见的时间格式和 Unix 秒
func setTime(rv reflect.Value, value string) error {
	for _, format := range timeFormats {
		if t, err := time.Parse(format, value); err == nil {
			rv.Set(reflect.ValueOf(t))
			return nil
		}
	}
	if timestamp, err := strconv.ParseInt(value, 10, 64); err == nil {
		rv.Set(reflect.ValueOf(time.Unix(timestamp, 0)))
		return nil
	}
	return errors.Errorf("invalid time value %q", value)
}
