package cfg

import (
	"os"

	"github.com/pkg/errors"
)

// Load 依次应用 def 默认值、配置文件和校验，filename 为空时跳过文件
func Load(filename string, object any) error {
	return LoadWithEnv(filename, "", object)
}

// LoadWithEnv 在 Load 的基础上用 envPrefix 开头的环境变量覆盖文件中的值
//
// 配置优先级（从低到高）：def 默认值 < 文件 < 环境变量
func LoadWithEnv(filename string, envPrefix string, object any) error {
	if err := SetDefaults(object); err != nil {
		return errors.WithMessage(err, "failed to set defaults")
	}

	if filename != "" {
		format, err := FormatOf(filename)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(filename)
		if err != nil {
			return errors.Wrapf(err, "failed to read config file %s", filename)
		}
		tree, err := Decode(data, format)
		if err != nil {
			return errors.WithMessagef(err, "failed to decode config file %s", filename)
		}
		if err := Bind(tree, object); err != nil {
			return errors.WithMessagef(err, "failed to bind config file %s", filename)
		}
	}

	if envPrefix != "" {
		if err := ApplyEnv(envPrefix, object); err != nil {
			return errors.WithMessage(err, "failed to apply env")
		}
	}

	if err := Validate(object); err != nil {
		return errors.Wrap(err, "invalid config")
	}
	return nil
}
